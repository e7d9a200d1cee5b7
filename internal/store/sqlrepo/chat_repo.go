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

var chatColumns = []string{"id", "type", "name", "avatar_url", "owner_id", "created_at", "updated_at"}

type ChatRepo struct {
	s *Store
}

var _ domain.ChatRepository = (*ChatRepo)(nil)

func chatDest(c *domain.Chat) []any {
	return []any{&c.ID, &c.Type, &c.Name, &c.AvatarURL, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt}
}

func (r *ChatRepo) Create(ctx context.Context, c *domain.Chat) error {
	now := time.Now().UTC()
	q := r.s.sb.Insert("chats").
		Columns("type", "name", "avatar_url", "owner_id", "created_at", "updated_at").
		Values(string(c.Type), c.Name, c.AvatarURL, c.OwnerID, now, now).
		Suffix("RETURNING id")

	row, err := r.s.queryRow(ctx, q)
	if err != nil {
		return err
	}
	if err := row.Scan(&c.ID); err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

func (r *ChatRepo) GetByID(ctx context.Context, id int64) (*domain.Chat, error) {
	row, err := r.s.queryRow(ctx, r.s.sb.Select(chatColumns...).From("chats").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	var c domain.Chat
	if err := row.Scan(chatDest(&c)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select chat: %w", err)
	}
	return &c, nil
}

func (r *ChatRepo) lockQuery(id int64) sq.SelectBuilder {
	q := r.s.sb.Select(chatColumns...).From("chats").Where(sq.Eq{"id": id})
	if r.s.dialect.RowLock != "" {
		q = q.Suffix(r.s.dialect.RowLock)
	}
	return q
}

// LockForUpdate reads the chat and holds a row lock on it until the
// surrounding transaction ends.
func (r *ChatRepo) LockForUpdate(ctx context.Context, id int64) (*domain.Chat, error) {
	row, err := r.s.queryRow(ctx, r.lockQuery(id))
	if err != nil {
		return nil, err
	}
	var c domain.Chat
	if err := row.Scan(chatDest(&c)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock chat: %w", err)
	}
	return &c, nil
}

func (r *ChatRepo) Update(ctx context.Context, id int64, upd domain.ChatUpdate) error {
	q := r.s.sb.Update("chats").Set("updated_at", time.Now().UTC()).Where(sq.Eq{"id": id})
	if upd.Name != nil {
		q = q.Set("name", *upd.Name)
	}
	if upd.AvatarURL != nil {
		q = q.Set("avatar_url", nullIfEmpty(*upd.AvatarURL))
	}
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("update chat: %w", err)
	}
	return nil
}

// Delete removes the chat together with its messages, memberships and
// private link.
func (r *ChatRepo) Delete(ctx context.Context, id int64) error {
	return r.s.WithinTx(ctx, func(tx domain.Store) error {
		s := tx.(*Store)
		stmts := []sq.Sqlizer{
			s.sb.Delete("messages").Where(sq.Eq{"chat_id": id}),
			s.sb.Delete("group_members").Where(sq.Eq{"group_id": id}),
			s.sb.Delete("channel_subscribers").Where(sq.Eq{"channel_id": id}),
			s.sb.Delete("private_chats").Where(sq.Eq{"chat_id": id}),
			s.sb.Delete("chats").Where(sq.Eq{"id": id}),
		}
		for _, stmt := range stmts {
			if _, err := s.exec(ctx, stmt); err != nil {
				return fmt.Errorf("delete chat %d: %w", id, err)
			}
		}
		return nil
	})
}

func (r *ChatRepo) CreatePrivateLink(ctx context.Context, link domain.PrivateChatLink) error {
	q := r.s.sb.Insert("private_chats").
		Columns("chat_id", "user1_id", "user2_id").
		Values(link.ChatID, link.LesserID, link.GreaterID)
	if _, err := r.s.exec(ctx, q); err != nil {
		if cerr := r.s.conflict(err, "private chat with this user already exists"); cerr != nil {
			return cerr
		}
		return fmt.Errorf("insert private link: %w", err)
	}
	return nil
}

func (r *ChatRepo) getLink(ctx context.Context, where sq.Sqlizer) (*domain.PrivateChatLink, error) {
	q := r.s.sb.Select("chat_id", "user1_id", "user2_id").From("private_chats").Where(where)
	row, err := r.s.queryRow(ctx, q)
	if err != nil {
		return nil, err
	}
	var l domain.PrivateChatLink
	if err := row.Scan(&l.ChatID, &l.LesserID, &l.GreaterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select private link: %w", err)
	}
	return &l, nil
}

func (r *ChatRepo) GetPrivateLink(ctx context.Context, chatID int64) (*domain.PrivateChatLink, error) {
	return r.getLink(ctx, sq.Eq{"chat_id": chatID})
}

func (r *ChatRepo) FindPrivateLink(ctx context.Context, lesserID, greaterID int64) (*domain.PrivateChatLink, error) {
	return r.getLink(ctx, sq.Eq{"user1_id": lesserID, "user2_id": greaterID})
}

func (r *ChatRepo) ListPrivateForUser(ctx context.Context, userID int64) ([]*domain.PrivateEntry, error) {
	cols := append(prefixed("c", chatColumns), "pc.chat_id", "pc.user1_id", "pc.user2_id")
	q := r.s.sb.Select(cols...).
		From("chats c").
		Join("private_chats pc ON pc.chat_id = c.id").
		Where(sq.Or{sq.Eq{"pc.user1_id": userID}, sq.Eq{"pc.user2_id": userID}}).
		OrderBy("c.id")

	rows, err := r.s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list private chats: %w", err)
	}
	defer rows.Close()

	var out []*domain.PrivateEntry
	for rows.Next() {
		e := &domain.PrivateEntry{Chat: &domain.Chat{}}
		dest := append(chatDest(e.Chat), &e.Link.ChatID, &e.Link.LesserID, &e.Link.GreaterID)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ChatRepo) ListGroupsForUser(ctx context.Context, userID int64) ([]*domain.GroupEntry, error) {
	cols := append(prefixed("c", chatColumns), "gm.role")
	q := r.s.sb.Select(cols...).
		From("chats c").
		Join("group_members gm ON gm.group_id = c.id").
		Where(sq.Eq{"gm.user_id": userID, "c.type": string(domain.ChatGroup)}).
		OrderBy("c.id")

	rows, err := r.s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []*domain.GroupEntry
	for rows.Next() {
		e := &domain.GroupEntry{Chat: &domain.Chat{}}
		if err := rows.Scan(append(chatDest(e.Chat), &e.Role)...); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListChannelsForUser returns channels the user owns or is subscribed to.
func (r *ChatRepo) ListChannelsForUser(ctx context.Context, userID int64) ([]*domain.Chat, error) {
	q := r.s.sb.Select(prefixed("c", chatColumns)...).
		From("chats c").
		Where(sq.Eq{"c.type": string(domain.ChatChannel)}).
		Where(sq.Or{
			sq.Eq{"c.owner_id": userID},
			sq.Expr("EXISTS (SELECT 1 FROM channel_subscribers cs WHERE cs.channel_id = c.id AND cs.user_id = ?)", userID),
		}).
		OrderBy("c.id")

	rows, err := r.s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var out []*domain.Chat
	for rows.Next() {
		var c domain.Chat
		if err := rows.Scan(chatDest(&c)...); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
