package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"messenger/internal/domain"
)

var userColumns = []string{
	"id", "username", "email", "password_hash", "display_name",
	"avatar_url", "created_at", "updated_at", "is_deleted",
}

type UserRepo struct {
	s *Store
}

var _ domain.UserRepository = (*UserRepo)(nil)

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName,
		&u.AvatarURL, &u.CreatedAt, &u.UpdatedAt, &u.IsDeleted,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	q := r.s.sb.Insert("users").
		Columns("username", "email", "password_hash", "display_name", "avatar_url", "created_at", "updated_at", "is_deleted").
		Values(u.Username, u.Email, u.PasswordHash, u.DisplayName, u.AvatarURL, now, now, false).
		Suffix("RETURNING id")

	row, err := r.s.queryRow(ctx, q)
	if err != nil {
		return err
	}
	if err := row.Scan(&u.ID); err != nil {
		if cerr := r.s.conflict(err, "username or email already taken"); cerr != nil {
			return cerr
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.CreatedAt, u.UpdatedAt, u.IsDeleted = now, now, false
	return nil
}

func (r *UserRepo) getBy(ctx context.Context, where sq.Sqlizer) (*domain.User, error) {
	row, err := r.s.queryRow(ctx, r.s.sb.Select(userColumns...).From("users").Where(where))
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getBy(ctx, sq.Eq{"id": id})
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, sq.Eq{"username": username})
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, sq.Eq{"email": email})
}

// UpdateProfile applies the supplied fields. An empty Email or AvatarURL
// clears the column.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, upd domain.ProfileUpdate) error {
	q := r.s.sb.Update("users").Set("updated_at", time.Now().UTC()).Where(sq.Eq{"id": id})
	if upd.DisplayName != nil {
		q = q.Set("display_name", *upd.DisplayName)
	}
	if upd.Email != nil {
		q = q.Set("email", nullIfEmpty(*upd.Email))
	}
	if upd.AvatarURL != nil {
		q = q.Set("avatar_url", nullIfEmpty(*upd.AvatarURL))
	}
	if _, err := r.s.exec(ctx, q); err != nil {
		if cerr := r.s.conflict(err, "email already in use"); cerr != nil {
			return cerr
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	q := r.s.sb.Update("users").
		Set("password_hash", passwordHash).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id})
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// SoftDelete overwrites the identifying columns with t and flags the row.
func (r *UserRepo) SoftDelete(ctx context.Context, id int64, t domain.Tombstone) error {
	q := r.s.sb.Update("users").
		Set("username", t.Username).
		Set("display_name", t.DisplayName).
		Set("password_hash", t.PasswordHash).
		Set("email", nil).
		Set("avatar_url", nil).
		Set("is_deleted", true).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "is_deleted": false})
	res, err := r.s.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Errorf(domain.ErrNotFound, "user not found")
	}
	return nil
}

// Search matches query case-insensitively as a substring of username or
// display name. Deleted users never match.
func (r *UserRepo) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	q := r.s.sb.Select(userColumns...).From("users").
		Where(sq.Expr(
			fmt.Sprintf(`(%s LIKE ? ESCAPE '\' OR %s LIKE ? ESCAPE '\')`, r.s.lower("username"), r.s.lower("display_name")),
			pattern, pattern,
		)).
		Where(sq.Eq{"is_deleted": false}).
		OrderBy("username", "id").
		Limit(uint64(limit))

	rows, err := r.s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
