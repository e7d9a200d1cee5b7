package domain

import (
	"context"
)

// ProfileUpdate holds the optional fields of a profile change. A nil field
// is left untouched.
type ProfileUpdate struct {
	DisplayName *string
	Email       *string
	AvatarURL   *string
}

// Empty reports whether no field was supplied.
func (p ProfileUpdate) Empty() bool {
	return p.DisplayName == nil && p.Email == nil && p.AvatarURL == nil
}

// ChatUpdate holds the optional fields of a group or channel change.
type ChatUpdate struct {
	Name      *string
	AvatarURL *string
}

// Empty reports whether no field was supplied.
func (c ChatUpdate) Empty() bool {
	return c.Name == nil && c.AvatarURL == nil
}

// Tombstone is what a soft-deleted user row is overwritten with.
type Tombstone struct {
	Username     string
	DisplayName  string
	PasswordHash string
}

// UserRepository defines persistence operations for users.
// Lookups return (nil, nil) when the row does not exist.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SoftDelete(ctx context.Context, id int64, t Tombstone) error
	Search(ctx context.Context, query string, limit int) ([]*User, error)
}

// ChatRepository defines persistence operations for chats and private links.
type ChatRepository interface {
	Create(ctx context.Context, c *Chat) error
	GetByID(ctx context.Context, id int64) (*Chat, error)
	// LockForUpdate is GetByID that also blocks concurrent lockers of the
	// same chat until the transaction ends. Call it inside WithinTx.
	LockForUpdate(ctx context.Context, id int64) (*Chat, error)
	Update(ctx context.Context, id int64, upd ChatUpdate) error
	Delete(ctx context.Context, id int64) error

	CreatePrivateLink(ctx context.Context, link PrivateChatLink) error
	GetPrivateLink(ctx context.Context, chatID int64) (*PrivateChatLink, error)
	FindPrivateLink(ctx context.Context, lesserID, greaterID int64) (*PrivateChatLink, error)

	ListPrivateForUser(ctx context.Context, userID int64) ([]*PrivateEntry, error)
	ListGroupsForUser(ctx context.Context, userID int64) ([]*GroupEntry, error)
	ListChannelsForUser(ctx context.Context, userID int64) ([]*Chat, error)
}

// MembershipRepository defines operations on group memberships and
// channel subscriptions.
type MembershipRepository interface {
	AddGroupMember(ctx context.Context, m GroupMembership) error
	GetGroupMember(ctx context.Context, groupID, userID int64) (*GroupMembership, error)
	UpdateGroupMemberRole(ctx context.Context, groupID, userID int64, role Role) (bool, error)
	RemoveGroupMember(ctx context.Context, groupID, userID int64) (bool, error)
	CountGroupAdmins(ctx context.Context, groupID int64) (int, error)
	ListGroupMembers(ctx context.Context, groupID int64) ([]*Member, error)

	AddSubscriber(ctx context.Context, s ChannelSubscription) error
	IsSubscribed(ctx context.Context, channelID, userID int64) (bool, error)
	RemoveSubscriber(ctx context.Context, channelID, userID int64) (bool, error)
	ListSubscribers(ctx context.Context, channelID int64) ([]*Member, error)
}

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)
	ListForChat(ctx context.Context, chatID int64) ([]*MessageWithSender, error)
	SoftDelete(ctx context.Context, id, deletedBy int64) error
}

// Store groups the repositories over one connection or transaction.
type Store interface {
	Users() UserRepository
	Chats() ChatRepository
	Members() MembershipRepository
	Messages() MessageRepository

	// WithinTx runs fn against a transactional view of the store. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
