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

type MembershipRepo struct {
	s *Store
}

var _ domain.MembershipRepository = (*MembershipRepo)(nil)

func (r *MembershipRepo) AddGroupMember(ctx context.Context, m domain.GroupMembership) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	q := r.s.sb.Insert("group_members").
		Columns("group_id", "user_id", "role", "joined_at").
		Values(m.GroupID, m.UserID, string(m.Role), m.JoinedAt)
	if _, err := r.s.exec(ctx, q); err != nil {
		if cerr := r.s.conflict(err, "user is already a member"); cerr != nil {
			return cerr
		}
		return fmt.Errorf("insert group member: %w", err)
	}
	return nil
}

func (r *MembershipRepo) GetGroupMember(ctx context.Context, groupID, userID int64) (*domain.GroupMembership, error) {
	q := r.s.sb.Select("group_id", "user_id", "role", "joined_at").
		From("group_members").
		Where(sq.Eq{"group_id": groupID, "user_id": userID})
	row, err := r.s.queryRow(ctx, q)
	if err != nil {
		return nil, err
	}
	var m domain.GroupMembership
	if err := row.Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select group member: %w", err)
	}
	return &m, nil
}

func (r *MembershipRepo) UpdateGroupMemberRole(ctx context.Context, groupID, userID int64, role domain.Role) (bool, error) {
	q := r.s.sb.Update("group_members").
		Set("role", string(role)).
		Set("joined_at", time.Now().UTC()).
		Where(sq.Eq{"group_id": groupID, "user_id": userID})
	res, err := r.s.exec(ctx, q)
	if err != nil {
		return false, fmt.Errorf("update member role: %w", err)
	}
	return affected(res)
}

func (r *MembershipRepo) RemoveGroupMember(ctx context.Context, groupID, userID int64) (bool, error) {
	res, err := r.s.exec(ctx, r.s.sb.Delete("group_members").Where(sq.Eq{"group_id": groupID, "user_id": userID}))
	if err != nil {
		return false, fmt.Errorf("delete group member: %w", err)
	}
	return affected(res)
}

func (r *MembershipRepo) CountGroupAdmins(ctx context.Context, groupID int64) (int, error) {
	q := r.s.sb.Select("COUNT(*)").
		From("group_members").
		Where(sq.Eq{"group_id": groupID, "role": string(domain.RoleAdmin)})
	row, err := r.s.queryRow(ctx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func (r *MembershipRepo) ListGroupMembers(ctx context.Context, groupID int64) ([]*domain.Member, error) {
	cols := append(prefixed("u", userColumns), "gm.role", "gm.joined_at")
	q := r.s.sb.Select(cols...).
		From("group_members gm").
		Join("users u ON u.id = gm.user_id").
		Where(sq.Eq{"gm.group_id": groupID}).
		OrderBy("gm.joined_at", "u.id")
	return r.listMembers(ctx, q, true)
}

func (r *MembershipRepo) AddSubscriber(ctx context.Context, sub domain.ChannelSubscription) error {
	if sub.JoinedAt.IsZero() {
		sub.JoinedAt = time.Now().UTC()
	}
	q := r.s.sb.Insert("channel_subscribers").
		Columns("channel_id", "user_id", "joined_at").
		Values(sub.ChannelID, sub.UserID, sub.JoinedAt)
	if _, err := r.s.exec(ctx, q); err != nil {
		if cerr := r.s.conflict(err, "already subscribed"); cerr != nil {
			return cerr
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (r *MembershipRepo) IsSubscribed(ctx context.Context, channelID, userID int64) (bool, error) {
	q := r.s.sb.Select("1").
		From("channel_subscribers").
		Where(sq.Eq{"channel_id": channelID, "user_id": userID})
	row, err := r.s.queryRow(ctx, q)
	if err != nil {
		return false, err
	}
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select subscriber: %w", err)
	}
	return true, nil
}

func (r *MembershipRepo) RemoveSubscriber(ctx context.Context, channelID, userID int64) (bool, error) {
	res, err := r.s.exec(ctx, r.s.sb.Delete("channel_subscribers").Where(sq.Eq{"channel_id": channelID, "user_id": userID}))
	if err != nil {
		return false, fmt.Errorf("delete subscriber: %w", err)
	}
	return affected(res)
}

func (r *MembershipRepo) ListSubscribers(ctx context.Context, channelID int64) ([]*domain.Member, error) {
	cols := append(prefixed("u", userColumns), "cs.joined_at")
	q := r.s.sb.Select(cols...).
		From("channel_subscribers cs").
		Join("users u ON u.id = cs.user_id").
		Where(sq.Eq{"cs.channel_id": channelID}).
		OrderBy("cs.joined_at", "u.id")
	return r.listMembers(ctx, q, false)
}

func (r *MembershipRepo) listMembers(ctx context.Context, q sq.SelectBuilder, withRole bool) ([]*domain.Member, error) {
	rows, err := r.s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []*domain.Member
	for rows.Next() {
		m := &domain.Member{User: &domain.User{}}
		u := m.User
		dest := []any{
			&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName,
			&u.AvatarURL, &u.CreatedAt, &u.UpdatedAt, &u.IsDeleted,
		}
		if withRole {
			dest = append(dest, &m.Role)
		}
		dest = append(dest, &m.JoinedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
