package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"messenger/internal/access"
	"messenger/internal/domain"
)

// ChatService creates, lists, updates and deletes chats of all three kinds.
type ChatService struct {
	store domain.Store
}

func NewChatService(store domain.Store) *ChatService {
	return &ChatService{store: store}
}

// ChatCreateInput is shared by group and channel creation. Member ids and
// usernames that cannot be resolved to live users are skipped.
type ChatCreateInput struct {
	Name            string
	AvatarURL       *string
	MemberIDs       []int64
	MemberUsernames []string
}

// CreatePrivate opens a private chat between actorID and otherID. An
// existing chat for the pair is reported as *domain.ChatExistsError.
func (s *ChatService) CreatePrivate(ctx context.Context, actorID, otherID int64) (*domain.Chat, error) {
	if otherID == actorID {
		return nil, domain.Errorf(domain.ErrInvalidInput, "cannot create a private chat with yourself")
	}
	pair := domain.NewPrivateChatLink(0, actorID, otherID)

	var chat *domain.Chat
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		other, err := tx.Users().GetByID(ctx, otherID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if _, err := activeUser(other); err != nil {
			return err
		}

		existing, err := tx.Chats().FindPrivateLink(ctx, pair.LesserID, pair.GreaterID)
		if err != nil {
			return fmt.Errorf("find private chat: %w", err)
		}
		if existing != nil {
			return &domain.ChatExistsError{ChatID: existing.ChatID}
		}

		chat = &domain.Chat{Type: domain.ChatPrivate}
		if err := tx.Chats().Create(ctx, chat); err != nil {
			return err
		}
		pair.ChatID = chat.ID
		return tx.Chats().CreatePrivateLink(ctx, pair)
	})

	var exists *domain.ChatExistsError
	if errors.Is(err, domain.ErrConflict) && !errors.As(err, &exists) {
		// Lost a race with a concurrent creation of the same pair.
		if link, ferr := s.store.Chats().FindPrivateLink(ctx, pair.LesserID, pair.GreaterID); ferr == nil && link != nil {
			return nil, &domain.ChatExistsError{ChatID: link.ChatID}
		}
	}
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// CreatePrivateWithUsername resolves the counterpart by username.
func (s *ChatService) CreatePrivateWithUsername(ctx context.Context, actorID int64, username string) (*domain.Chat, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "username is required for a private chat")
	}
	u, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if _, err := activeUser(u); err != nil {
		return nil, err
	}
	return s.CreatePrivate(ctx, actorID, u.ID)
}

// CreateGroup makes actorID the first admin; resolved members join as members.
func (s *ChatService) CreateGroup(ctx context.Context, actorID int64, in ChatCreateInput) (*domain.Chat, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "group name is required")
	}

	var chat *domain.Chat
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		chat = &domain.Chat{Type: domain.ChatGroup, Name: &name, AvatarURL: blankToNil(in.AvatarURL)}
		if err := tx.Chats().Create(ctx, chat); err != nil {
			return err
		}
		admin := domain.GroupMembership{GroupID: chat.ID, UserID: actorID, Role: domain.RoleAdmin}
		if err := tx.Members().AddGroupMember(ctx, admin); err != nil {
			return err
		}
		ids, err := resolveMembers(ctx, tx, actorID, in.MemberIDs, in.MemberUsernames)
		if err != nil {
			return err
		}
		for _, id := range ids {
			m := domain.GroupMembership{GroupID: chat.ID, UserID: id, Role: domain.RoleMember}
			if err := tx.Members().AddGroupMember(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// CreateChannel makes actorID the owner and first subscriber.
func (s *ChatService) CreateChannel(ctx context.Context, actorID int64, in ChatCreateInput) (*domain.Chat, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "channel name is required")
	}

	var chat *domain.Chat
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		owner := actorID
		chat = &domain.Chat{Type: domain.ChatChannel, Name: &name, AvatarURL: blankToNil(in.AvatarURL), OwnerID: &owner}
		if err := tx.Chats().Create(ctx, chat); err != nil {
			return err
		}
		if err := tx.Members().AddSubscriber(ctx, domain.ChannelSubscription{ChannelID: chat.ID, UserID: actorID}); err != nil {
			return err
		}
		ids, err := resolveMembers(ctx, tx, actorID, in.MemberIDs, in.MemberUsernames)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := tx.Members().AddSubscriber(ctx, domain.ChannelSubscription{ChannelID: chat.ID, UserID: id}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// resolveMembers de-duplicates ids and usernames, drops the actor and keeps
// only live users.
func resolveMembers(ctx context.Context, tx domain.Store, actorID int64, ids []int64, usernames []string) ([]int64, error) {
	seen := map[int64]struct{}{actorID: {}}
	var out []int64

	keep := func(u *domain.User) {
		if u == nil || u.IsDeleted {
			return
		}
		if _, dup := seen[u.ID]; dup {
			return
		}
		seen[u.ID] = struct{}{}
		out = append(out, u.ID)
	}

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		u, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve member %d: %w", id, err)
		}
		keep(u)
	}
	for _, name := range usernames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		u, err := tx.Users().GetByUsername(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve member %q: %w", name, err)
		}
		keep(u)
	}
	return out, nil
}

// Get returns the chat with its members if actorID may see it.
func (s *ChatService) Get(ctx context.Context, chatID, actorID int64) (*ChatDetail, error) {
	chat, err := loadChat(ctx, s.store, chatID)
	if err != nil {
		return nil, err
	}
	if _, err := authorize(ctx, s.store, chat, actorID, access.Read, "you do not have access to this chat"); err != nil {
		return nil, err
	}

	detail := &ChatDetail{ChatSummary: toChatSummary(chat), Members: []MemberView{}}
	switch chat.Type {
	case domain.ChatPrivate:
		link, err := s.store.Chats().GetPrivateLink(ctx, chat.ID)
		if err != nil {
			return nil, fmt.Errorf("get private link: %w", err)
		}
		for _, id := range []int64{link.LesserID, link.GreaterID} {
			view, err := s.userView(ctx, id)
			if err != nil {
				return nil, err
			}
			detail.Members = append(detail.Members, MemberView{UserView: view})
			if id != actorID {
				applyCounterpart(&detail.ChatSummary, view)
			}
		}
		detail.Participants = []int64{link.LesserID, link.GreaterID}
	case domain.ChatGroup:
		members, err := s.store.Members().ListGroupMembers(ctx, chat.ID)
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		for _, m := range members {
			detail.Members = append(detail.Members, toMemberView(m))
		}
	case domain.ChatChannel:
		subs, err := s.store.Members().ListSubscribers(ctx, chat.ID)
		if err != nil {
			return nil, fmt.Errorf("list subscribers: %w", err)
		}
		for _, m := range subs {
			detail.Members = append(detail.Members, toMemberView(m))
		}
		if chat.OwnerID != nil {
			owner, err := s.userView(ctx, *chat.OwnerID)
			if err != nil {
				return nil, err
			}
			detail.Owner = &owner
		}
	}
	return detail, nil
}

// userView loads a user for display, substituting a placeholder for
// anonymized or missing rows.
func (s *ChatService) userView(ctx context.Context, id int64) (UserView, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return UserView{}, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return deletedUserView(id), nil
	}
	return ToUserView(u, false), nil
}

// applyCounterpart names a private chat after the other participant.
func applyCounterpart(c *ChatSummary, other UserView) {
	name := other.DisplayName
	c.Name = &name
	c.AvatarURL = other.AvatarURL
}

// ListForUser returns private chats, then groups, then channels, each in
// id order.
func (s *ChatService) ListForUser(ctx context.Context, actorID int64) ([]ChatSummary, error) {
	out := []ChatSummary{}

	privates, err := s.store.Chats().ListPrivateForUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list private chats: %w", err)
	}
	for _, p := range privates {
		sum := toChatSummary(p.Chat)
		other, err := s.userView(ctx, p.Link.Other(actorID))
		if err != nil {
			return nil, err
		}
		applyCounterpart(&sum, other)
		sum.Participants = []int64{p.Link.LesserID, p.Link.GreaterID}
		out = append(out, sum)
	}

	groups, err := s.store.Chats().ListGroupsForUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	for _, g := range groups {
		sum := toChatSummary(g.Chat)
		sum.Role = g.Role
		out = append(out, sum)
	}

	channels, err := s.store.Chats().ListChannelsForUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	for _, c := range channels {
		out = append(out, toChatSummary(c))
	}
	return out, nil
}

// Update renames or re-avatars a group or channel.
func (s *ChatService) Update(ctx context.Context, chatID, actorID int64, upd domain.ChatUpdate) (*domain.Chat, error) {
	var out *domain.Chat
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		chat, err := loadChat(ctx, tx, chatID)
		if err != nil {
			return err
		}
		if chat.Type == domain.ChatPrivate {
			return domain.Errorf(domain.ErrInvalidInput, "private chat info cannot be updated")
		}
		msg := "only a group admin can update group info"
		if chat.Type == domain.ChatChannel {
			msg = "only the channel owner can update channel info"
		}
		if _, err := authorize(ctx, tx, chat, actorID, access.Manage, msg); err != nil {
			return err
		}
		if upd.Empty() {
			return domain.Errorf(domain.ErrInvalidInput, "nothing to update, provide name or avatar_url")
		}
		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if name == "" {
				return domain.Errorf(domain.ErrInvalidInput, "name must not be empty")
			}
			upd.Name = &name
		}
		if err := tx.Chats().Update(ctx, chatID, upd); err != nil {
			return err
		}
		out, err = loadChat(ctx, tx, chatID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the chat with its memberships and messages.
func (s *ChatService) Delete(ctx context.Context, chatID, actorID int64) error {
	return s.store.WithinTx(ctx, func(tx domain.Store) error {
		chat, err := loadChat(ctx, tx, chatID)
		if err != nil {
			return err
		}
		if _, err := authorize(ctx, tx, chat, actorID, access.Delete, "you are not allowed to delete this chat"); err != nil {
			return err
		}
		return tx.Chats().Delete(ctx, chatID)
	})
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
