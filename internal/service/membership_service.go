package service

import (
	"context"
	"fmt"
	"strings"

	"messenger/internal/access"
	"messenger/internal/domain"
)

// MembershipService manages group roles and channel subscriptions.
type MembershipService struct {
	store domain.Store
}

func NewMembershipService(store domain.Store) *MembershipService {
	return &MembershipService{store: store}
}

// requireGroupAdmin locks the group row, serializing membership changes of
// one group, and checks that actorID is one of its admins.
func (s *MembershipService) requireGroupAdmin(ctx context.Context, tx domain.Store, groupID, actorID int64, msg string) error {
	group, err := tx.Chats().LockForUpdate(ctx, groupID)
	if err != nil {
		return fmt.Errorf("lock group: %w", err)
	}
	if group == nil || group.Type != domain.ChatGroup {
		return domain.Errorf(domain.ErrNotFound, "chat not found or is not a %s", domain.ChatGroup)
	}
	_, err = authorize(ctx, tx, group, actorID, access.Manage, msg)
	return err
}

// AddGroupMember adds the user named username with role, member by default.
func (s *MembershipService) AddGroupMember(ctx context.Context, groupID, actorID int64, username string, role domain.Role) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Errorf(domain.ErrInvalidInput, "username is required")
	}
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() {
		return domain.Errorf(domain.ErrInvalidInput, "invalid role, allowed: admin, member, restricted")
	}

	return s.store.WithinTx(ctx, func(tx domain.Store) error {
		if err := s.requireGroupAdmin(ctx, tx, groupID, actorID, "only a group admin can add members"); err != nil {
			return err
		}
		target, err := tx.Users().GetByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if _, err := activeUser(target); err != nil {
			return err
		}
		existing, err := tx.Members().GetGroupMember(ctx, groupID, target.ID)
		if err != nil {
			return fmt.Errorf("get group member: %w", err)
		}
		if existing != nil {
			return domain.Errorf(domain.ErrConflict, "user is already a member of this group")
		}
		return tx.Members().AddGroupMember(ctx, domain.GroupMembership{GroupID: groupID, UserID: target.ID, Role: role})
	})
}

// guardSoleAdmin blocks the last admin from demoting or removing themself.
func guardSoleAdmin(ctx context.Context, tx domain.Store, groupID, actorID, targetID int64, msg string) error {
	if targetID != actorID {
		return nil
	}
	admins, err := tx.Members().CountGroupAdmins(ctx, groupID)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins <= 1 {
		return domain.Errorf(domain.ErrInvalidInput, "%s", msg)
	}
	return nil
}

func (s *MembershipService) ChangeGroupMemberRole(ctx context.Context, groupID, actorID, targetID int64, role domain.Role) error {
	if !role.Valid() {
		return domain.Errorf(domain.ErrInvalidInput, "invalid role, allowed: admin, member, restricted")
	}

	return s.store.WithinTx(ctx, func(tx domain.Store) error {
		if err := s.requireGroupAdmin(ctx, tx, groupID, actorID, "only a group admin can change member roles"); err != nil {
			return err
		}
		if role != domain.RoleAdmin {
			if err := guardSoleAdmin(ctx, tx, groupID, actorID, targetID, "cannot demote yourself while you are the only admin"); err != nil {
				return err
			}
		}
		ok, err := tx.Members().UpdateGroupMemberRole(ctx, groupID, targetID, role)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Errorf(domain.ErrNotFound, "user is not a member of this group")
		}
		return nil
	})
}

func (s *MembershipService) RemoveGroupMember(ctx context.Context, groupID, actorID, targetID int64) error {
	return s.store.WithinTx(ctx, func(tx domain.Store) error {
		if err := s.requireGroupAdmin(ctx, tx, groupID, actorID, "only a group admin can remove members"); err != nil {
			return err
		}
		if err := guardSoleAdmin(ctx, tx, groupID, actorID, targetID, "cannot remove yourself while you are the only admin"); err != nil {
			return err
		}
		ok, err := tx.Members().RemoveGroupMember(ctx, groupID, targetID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Errorf(domain.ErrNotFound, "user is not a member of this group")
		}
		return nil
	})
}

func addSubscription(ctx context.Context, tx domain.Store, channelID, userID int64, msg string) error {
	subscribed, err := tx.Members().IsSubscribed(ctx, channelID, userID)
	if err != nil {
		return fmt.Errorf("check subscription: %w", err)
	}
	if subscribed {
		return domain.Errorf(domain.ErrConflict, "%s", msg)
	}
	return tx.Members().AddSubscriber(ctx, domain.ChannelSubscription{ChannelID: channelID, UserID: userID})
}

// Subscribe subscribes the actor to a channel.
func (s *MembershipService) Subscribe(ctx context.Context, channelID, actorID int64) error {
	return s.store.WithinTx(ctx, func(tx domain.Store) error {
		if _, err := loadChatOfKind(ctx, tx, channelID, domain.ChatChannel); err != nil {
			return err
		}
		return addSubscription(ctx, tx, channelID, actorID, "you are already subscribed to this channel")
	})
}

// AddSubscriber lets the channel owner subscribe someone else.
func (s *MembershipService) AddSubscriber(ctx context.Context, channelID, actorID int64, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Errorf(domain.ErrInvalidInput, "username is required")
	}

	return s.store.WithinTx(ctx, func(tx domain.Store) error {
		channel, err := loadChatOfKind(ctx, tx, channelID, domain.ChatChannel)
		if err != nil {
			return err
		}
		if !channel.IsOwner(actorID) {
			return domain.Errorf(domain.ErrForbidden, "only the channel owner can add subscribers")
		}
		target, err := tx.Users().GetByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if _, err := activeUser(target); err != nil {
			return err
		}
		return addSubscription(ctx, tx, channelID, target.ID, "user is already subscribed to this channel")
	})
}

// Unsubscribe removes the actor's subscription. Owners must delete the
// channel instead.
func (s *MembershipService) Unsubscribe(ctx context.Context, channelID, actorID int64) error {
	return s.store.WithinTx(ctx, func(tx domain.Store) error {
		channel, err := loadChatOfKind(ctx, tx, channelID, domain.ChatChannel)
		if err != nil {
			return err
		}
		if channel.IsOwner(actorID) {
			return domain.Errorf(domain.ErrForbidden, "the owner cannot unsubscribe from their own channel, delete it instead")
		}
		ok, err := tx.Members().RemoveSubscriber(ctx, channelID, actorID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Errorf(domain.ErrNotFound, "you are not subscribed to this channel")
		}
		return nil
	})
}
