package service

import (
	"time"

	"messenger/internal/domain"
)

const (
	// DeletedUserLabel replaces the display name of anonymized users.
	DeletedUserLabel = "Deleted user"
	// DeletedMessageLabel is shown in place of a deleted message's payload.
	DeletedMessageLabel = "[message deleted]"
)

type UserView struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Email       *string `json:"email,omitempty"`
	IsDeleted   bool    `json:"is_deleted"`
}

type MemberView struct {
	UserView
	Role     domain.Role `json:"role,omitempty"`
	JoinedAt *time.Time  `json:"joined_at,omitempty"`
}

type ChatSummary struct {
	ID           int64           `json:"id"`
	Type         domain.ChatType `json:"type"`
	Name         *string         `json:"name"`
	AvatarURL    *string         `json:"avatar_url"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Role         domain.Role     `json:"role,omitempty"`
	Participants []int64         `json:"participants,omitempty"`
}

type ChatDetail struct {
	ChatSummary
	Members []MemberView `json:"members"`
	Owner   *UserView    `json:"owner,omitempty"`
}

type MessageView struct {
	ID                int64              `json:"id"`
	ChatID            int64              `json:"chat_id"`
	SenderID          int64              `json:"sender_id"`
	SenderDisplayName string             `json:"sender_display_name"`
	SenderAvatarURL   *string            `json:"sender_avatar_url"`
	MessageType       domain.MessageType `json:"message_type"`
	SentAt            time.Time          `json:"sent_at"`
	IsDeleted         bool               `json:"is_deleted"`
	Content           *string            `json:"content"`
	FileURL           *string            `json:"file_url"`
	FileName          *string            `json:"file_name"`
	FileSize          *int64             `json:"file_size"`
	Placeholder       string             `json:"placeholder,omitempty"`
}

// ToUserView is the single redaction point for user rows. Email is only
// exposed when self is set; anonymized users lose their display data.
func ToUserView(u *domain.User, self bool) UserView {
	v := UserView{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		IsDeleted:   u.IsDeleted,
	}
	if self {
		v.Email = u.Email
	}
	if u.IsDeleted {
		v.DisplayName = DeletedUserLabel
		v.AvatarURL = nil
		v.Email = nil
	}
	return v
}

// deletedUserView stands in for a user row that is gone.
func deletedUserView(id int64) UserView {
	return UserView{ID: id, Username: DeletedUserLabel, DisplayName: DeletedUserLabel, IsDeleted: true}
}

func toMemberView(m *domain.Member) MemberView {
	joined := m.JoinedAt
	return MemberView{UserView: ToUserView(m.User, false), Role: m.Role, JoinedAt: &joined}
}

func toChatSummary(c *domain.Chat) ChatSummary {
	return ChatSummary{
		ID:        c.ID,
		Type:      c.Type,
		Name:      c.Name,
		AvatarURL: c.AvatarURL,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// toMessageView redacts deleted messages and substitutes the sender's
// display fields when the sender is anonymized or missing. content is the
// decrypted text, nil for file messages.
func toMessageView(m *domain.MessageWithSender, content *string) MessageView {
	v := MessageView{
		ID:                m.ID,
		ChatID:            m.ChatID,
		SenderID:          m.SenderID,
		SenderDisplayName: DeletedUserLabel,
		MessageType:       m.Type,
		SentAt:            m.SentAt,
		IsDeleted:         m.IsDeleted,
	}
	if m.Sender != nil && !m.Sender.IsDeleted {
		v.SenderDisplayName = m.Sender.DisplayName
		v.SenderAvatarURL = m.Sender.AvatarURL
	}
	if m.IsDeleted {
		v.Placeholder = DeletedMessageLabel
		return v
	}
	switch m.Type {
	case domain.MessageText:
		v.Content = content
	case domain.MessageFile:
		v.FileURL = m.FileURL
		v.FileName = m.FileName
		v.FileSize = m.FileSize
	}
	return v
}
