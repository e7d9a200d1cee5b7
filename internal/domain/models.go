package domain

import "time"

// ChatType is the kind of a conversation.
type ChatType string

const (
	ChatPrivate ChatType = "private"
	ChatGroup   ChatType = "group"
	ChatChannel ChatType = "channel"
)

// Role is a user's rank inside a group chat.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleMember     Role = "member"
	RoleRestricted Role = "restricted"
)

// Valid reports whether r is one of the known group roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleRestricted:
		return true
	}
	return false
}

// MessageType discriminates message payloads.
type MessageType string

const (
	MessageText MessageType = "text"
	MessageFile MessageType = "file"
)

// User represents an application user. Users are never hard-deleted;
// deletion anonymizes the row and sets IsDeleted.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        *string   `db:"email" json:"email,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	IsDeleted    bool      `db:"is_deleted" json:"is_deleted"`
}

// Chat is a conversation container of one of the three kinds.
// Name and AvatarURL are meaningful for groups and channels only,
// OwnerID for channels only.
type Chat struct {
	ID        int64     `db:"id"`
	Type      ChatType  `db:"type"`
	Name      *string   `db:"name"`
	AvatarURL *string   `db:"avatar_url"`
	OwnerID   *int64    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsOwner reports whether userID owns the chat (channels only).
func (c *Chat) IsOwner(userID int64) bool {
	return c.OwnerID != nil && *c.OwnerID == userID
}

// PrivateChatLink binds a private chat to an unordered pair of users,
// stored with LesserID < GreaterID.
type PrivateChatLink struct {
	ChatID    int64 `db:"chat_id"`
	LesserID  int64 `db:"user1_id"`
	GreaterID int64 `db:"user2_id"`
}

// NewPrivateChatLink canonicalizes the pair a, b.
func NewPrivateChatLink(chatID, a, b int64) PrivateChatLink {
	if a > b {
		a, b = b, a
	}
	return PrivateChatLink{ChatID: chatID, LesserID: a, GreaterID: b}
}

// Has reports whether userID is one of the two participants.
func (l *PrivateChatLink) Has(userID int64) bool {
	return l.LesserID == userID || l.GreaterID == userID
}

// Other returns the participant that is not userID.
func (l *PrivateChatLink) Other(userID int64) int64 {
	if l.LesserID == userID {
		return l.GreaterID
	}
	return l.LesserID
}

// GroupMembership is a user's role-bearing membership in a group.
type GroupMembership struct {
	GroupID  int64     `db:"group_id"`
	UserID   int64     `db:"user_id"`
	Role     Role      `db:"role"`
	JoinedAt time.Time `db:"joined_at"`
}

// ChannelSubscription is a user's subscription to a channel.
type ChannelSubscription struct {
	ChannelID int64     `db:"channel_id"`
	UserID    int64     `db:"user_id"`
	JoinedAt  time.Time `db:"joined_at"`
}

// Message is a single chat message. Exactly one of Content or the File*
// fields is set while the message is live; all of them are nil once
// IsDeleted is true.
type Message struct {
	ID        int64       `db:"id"`
	ChatID    int64       `db:"chat_id"`
	SenderID  int64       `db:"sender_id"`
	Type      MessageType `db:"message_type"`
	Content   *string     `db:"content"` // encrypted at rest
	FileURL   *string     `db:"file_url"`
	FileName  *string     `db:"file_name"`
	FileSize  *int64      `db:"file_size"`
	SentAt    time.Time   `db:"sent_at"`
	IsDeleted bool        `db:"is_deleted"`
	DeletedBy *int64      `db:"deleted_by"`
}

// Member is a user row joined with its membership in a group or channel.
// Role is empty for channel subscribers and private participants.
type Member struct {
	User     *User
	Role     Role
	JoinedAt time.Time
}

// MessageWithSender is a message joined with its sender row. Sender is nil
// when the sender row is absent.
type MessageWithSender struct {
	Message
	Sender *User
}

// GroupEntry is a group chat together with the requesting user's role.
type GroupEntry struct {
	Chat *Chat
	Role Role
}

// PrivateEntry is a private chat together with its participant pair.
type PrivateEntry struct {
	Chat *Chat
	Link PrivateChatLink
}
