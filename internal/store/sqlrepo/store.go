// Package sqlrepo implements the domain repositories on database/sql with
// squirrel-built queries. The sqlite and postgres packages open a database
// and pick the Dialect; the repositories themselves are shared.
package sqlrepo

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"messenger/internal/domain"
)

// Dialect captures the few engine differences the repositories care about.
type Dialect struct {
	Name              string
	Placeholder       sq.PlaceholderFormat
	IsUniqueViolation func(error) bool

	// Lower is a SQL function folding case of arbitrary Unicode text.
	// Empty means LOWER.
	Lower string
	// RowLock is appended to a SELECT to lock the selected rows until the
	// transaction ends. Empty when the engine serializes writers itself.
	RowLock string
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// Store is the database/sql implementation of domain.Store.
type Store struct {
	db      *sql.DB
	q       querier
	inTx    bool
	sb      sq.StatementBuilderType
	dialect Dialect
}

var _ domain.Store = (*Store)(nil)

// New wraps db with the given dialect.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{
		db:      db,
		q:       db,
		sb:      sq.StatementBuilder.PlaceholderFormat(d.Placeholder),
		dialect: d,
	}
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Users() domain.UserRepository { return &UserRepo{s: s} }

func (s *Store) Chats() domain.ChatRepository { return &ChatRepo{s: s} }

func (s *Store) Members() domain.MembershipRepository { return &MembershipRepo{s: s} }

func (s *Store) Messages() domain.MessageRepository { return &MessageRepo{s: s} }

// WithinTx runs fn in a transaction. A store that is already transactional
// runs fn inside the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	txStore := &Store{db: s.db, q: tx, inTx: true, sb: s.sb, dialect: s.dialect}
	if err := fn(txStore); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) exec(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.q.ExecContext(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.q.QueryContext(ctx, query, args...)
}

func (s *Store) queryRow(ctx context.Context, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.q.QueryRowContext(ctx, query, args...), nil
}

// affected reports whether an UPDATE or DELETE touched any row.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *Store) conflict(err error, msg string) error {
	if s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err) {
		return domain.Errorf(domain.ErrConflict, "%s", msg)
	}
	return nil
}

func (s *Store) lower(expr string) string {
	fn := s.dialect.Lower
	if fn == "" {
		fn = "LOWER"
	}
	return fn + "(" + expr + ")"
}

func prefixed(prefix string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = prefix + "." + c
	}
	return out
}
