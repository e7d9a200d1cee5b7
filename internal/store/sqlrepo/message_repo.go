package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"messenger/internal/domain"
)

var messageColumns = []string{
	"id", "chat_id", "sender_id", "message_type", "content",
	"file_url", "file_name", "file_size", "sent_at", "is_deleted", "deleted_by",
}

type MessageRepo struct {
	s *Store
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func messageDest(m *domain.Message) []any {
	return []any{
		&m.ID, &m.ChatID, &m.SenderID, &m.Type, &m.Content,
		&m.FileURL, &m.FileName, &m.FileSize, &m.SentAt, &m.IsDeleted, &m.DeletedBy,
	}
}

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	q := r.s.sb.Insert("messages").
		Columns("chat_id", "sender_id", "message_type", "content", "file_url", "file_name", "file_size", "sent_at", "is_deleted").
		Values(m.ChatID, m.SenderID, string(m.Type), m.Content, m.FileURL, m.FileName, m.FileSize, m.SentAt, false).
		Suffix("RETURNING id")

	row, err := r.s.queryRow(ctx, q)
	if err != nil {
		return err
	}
	if err := row.Scan(&m.ID); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	m.IsDeleted = false
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	row, err := r.s.queryRow(ctx, r.s.sb.Select(messageColumns...).From("messages").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	var m domain.Message
	if err := row.Scan(messageDest(&m)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select message: %w", err)
	}
	return &m, nil
}

// ListForChat returns the chat's messages oldest first, ties broken by id.
func (r *MessageRepo) ListForChat(ctx context.Context, chatID int64) ([]*domain.MessageWithSender, error) {
	cols := append(prefixed("m", messageColumns), prefixed("u", userColumns)...)
	q := r.s.sb.Select(cols...).
		From("messages m").
		LeftJoin("users u ON u.id = m.sender_id").
		Where(sq.Eq{"m.chat_id": chatID}).
		OrderBy("m.sent_at ASC", "m.id ASC")

	rows, err := r.s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []*domain.MessageWithSender
	for rows.Next() {
		var (
			m         domain.MessageWithSender
			uID       sql.NullInt64
			uName     sql.NullString
			uEmail    sql.NullString
			uHash     sql.NullString
			uDisplay  sql.NullString
			uAvatar   sql.NullString
			uCreated  sql.NullTime
			uUpdated  sql.NullTime
			uIsDelete sql.NullBool
		)
		dest := append(messageDest(&m.Message),
			&uID, &uName, &uEmail, &uHash, &uDisplay, &uAvatar, &uCreated, &uUpdated, &uIsDelete)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if uID.Valid {
			m.Sender = &domain.User{
				ID:           uID.Int64,
				Username:     uName.String,
				PasswordHash: uHash.String,
				DisplayName:  uDisplay.String,
				CreatedAt:    uCreated.Time,
				UpdatedAt:    uUpdated.Time,
				IsDeleted:    uIsDelete.Bool,
			}
			if uEmail.Valid {
				m.Sender.Email = &uEmail.String
			}
			if uAvatar.Valid {
				m.Sender.AvatarURL = &uAvatar.String
			}
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// SoftDelete clears the payload and records who deleted the message.
func (r *MessageRepo) SoftDelete(ctx context.Context, id, deletedBy int64) error {
	q := r.s.sb.Update("messages").
		Set("is_deleted", true).
		Set("deleted_by", deletedBy).
		Set("content", nil).
		Set("file_url", nil).
		Set("file_name", nil).
		Set("file_size", nil).
		Where(sq.Eq{"id": id})
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("soft delete message: %w", err)
	}
	return nil
}
