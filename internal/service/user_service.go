package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"messenger/internal/domain"
	"messenger/internal/security"
)

const searchLimit = 10

// MinPasswordLength applies to password changes.
const MinPasswordLength = 6

// UserService covers profile management, account deletion and search.
type UserService struct {
	store domain.Store
	hash  *security.PasswordHasher
}

func NewUserService(store domain.Store, hash *security.PasswordHasher) *UserService {
	return &UserService{store: store, hash: hash}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "user not found")
	}
	return u, nil
}

// UpdateProfile applies the supplied fields. Empty email or avatar clears it.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd domain.ProfileUpdate) (*domain.User, error) {
	if upd.Empty() {
		return nil, domain.Errorf(domain.ErrInvalidInput, "nothing to update, provide display_name, email or avatar_url")
	}
	if upd.DisplayName != nil {
		name := strings.TrimSpace(*upd.DisplayName)
		if name == "" {
			return nil, domain.Errorf(domain.ErrInvalidInput, "display_name must not be empty")
		}
		upd.DisplayName = &name
	}
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		upd.Email = &email
	}

	var out *domain.User
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		if upd.Email != nil && *upd.Email != "" {
			other, err := tx.Users().GetByEmail(ctx, *upd.Email)
			if err != nil {
				return fmt.Errorf("check email: %w", err)
			}
			if other != nil && other.ID != userID {
				return domain.Errorf(domain.ErrConflict, "email already in use by another user")
			}
		}
		if err := tx.Users().UpdateProfile(ctx, userID, upd); err != nil {
			return err
		}
		u, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		if u == nil {
			return domain.Errorf(domain.ErrNotFound, "user not found")
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if current == "" || next == "" {
		return domain.Errorf(domain.ErrInvalidInput, "current and new passwords are required")
	}
	if len([]rune(next)) < MinPasswordLength {
		return domain.Errorf(domain.ErrInvalidInput, "new password must be at least %d characters", MinPasswordLength)
	}

	return s.store.WithinTx(ctx, func(tx domain.Store) error {
		u, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if u == nil {
			return domain.Errorf(domain.ErrNotFound, "user not found")
		}
		if err := s.hash.Verify(current, u.PasswordHash); err != nil {
			return domain.Errorf(domain.ErrUnauthorized, "current password is incorrect")
		}
		hashed, err := s.hash.Hash(next)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		return tx.Users().UpdatePassword(ctx, userID, hashed)
	})
}

// SoftDelete anonymizes the account. A second call finds nothing to delete.
func (s *UserService) SoftDelete(ctx context.Context, userID int64) error {
	locked, err := s.hash.HashUnguessable()
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	tomb := domain.Tombstone{
		Username:     fmt.Sprintf("deleted_user_%d_%s", userID, strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
		DisplayName:  DeletedUserLabel,
		PasswordHash: locked,
	}
	return s.store.Users().SoftDelete(ctx, userID, tomb)
}

// Search returns up to ten live users whose username or display name
// contains query. A blank query matches nobody.
func (s *UserService) Search(ctx context.Context, query string) ([]*domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.User{}, nil
	}
	users, err := s.store.Users().Search(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}
