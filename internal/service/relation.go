package service

import (
	"context"
	"fmt"

	"messenger/internal/access"
	"messenger/internal/domain"
)

func loadChat(ctx context.Context, st domain.Store, chatID int64) (*domain.Chat, error) {
	chat, err := st.Chats().GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "chat not found")
	}
	return chat, nil
}

// loadChatOfKind treats a chat of the wrong kind as absent.
func loadChatOfKind(ctx context.Context, st domain.Store, chatID int64, kind domain.ChatType) (*domain.Chat, error) {
	chat, err := st.Chats().GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil || chat.Type != kind {
		return nil, domain.Errorf(domain.ErrNotFound, "chat not found or is not a %s", kind)
	}
	return chat, nil
}

// resolveRelation gathers what the access table needs about actorID and chat.
func resolveRelation(ctx context.Context, st domain.Store, chat *domain.Chat, actorID int64) (access.Relation, error) {
	rel := access.Relation{Kind: chat.Type}
	switch chat.Type {
	case domain.ChatPrivate:
		link, err := st.Chats().GetPrivateLink(ctx, chat.ID)
		if err != nil {
			return rel, fmt.Errorf("get private link: %w", err)
		}
		rel.Participant = link != nil && link.Has(actorID)
	case domain.ChatGroup:
		m, err := st.Members().GetGroupMember(ctx, chat.ID, actorID)
		if err != nil {
			return rel, fmt.Errorf("get group member: %w", err)
		}
		if m != nil {
			rel.Role = m.Role
		}
	case domain.ChatChannel:
		rel.Owner = chat.IsOwner(actorID)
		subscribed, err := st.Members().IsSubscribed(ctx, chat.ID, actorID)
		if err != nil {
			return rel, fmt.Errorf("check subscription: %w", err)
		}
		rel.Subscribed = subscribed
	}
	return rel, nil
}

// authorize resolves the relation and fails Forbidden unless it grants want.
func authorize(ctx context.Context, st domain.Store, chat *domain.Chat, actorID int64, want access.Capability, msg string) (access.Relation, error) {
	rel, err := resolveRelation(ctx, st, chat, actorID)
	if err != nil {
		return rel, err
	}
	if !access.Capabilities(rel).Has(want) {
		return rel, domain.Errorf(domain.ErrForbidden, "%s", msg)
	}
	return rel, nil
}

// activeUser returns the user or NotFound when missing or anonymized.
func activeUser(u *domain.User) (*domain.User, error) {
	if u == nil || u.IsDeleted {
		return nil, domain.Errorf(domain.ErrNotFound, "user not found or deleted")
	}
	return u, nil
}
