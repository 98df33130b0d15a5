package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"papertrade/internal/domain"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore implements domain.Store on top of a pgx pool
type PgStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewStore creates a new Store backed by the pool
func NewStore(pool *pgxpool.Pool) domain.Store {
	return &PgStore{pool: pool, db: pool}
}

// Users returns a UserRepository bound to the store's connection
func (s *PgStore) Users() domain.UserRepository {
	return &UserRepositoryImpl{db: s.db}
}

// Transactions returns a TransactionRepository bound to the store's connection
func (s *PgStore) Transactions() domain.TransactionRepository {
	return &TransactionRepositoryImpl{db: s.db}
}

// WithinTx runs fn inside a database transaction. Nested calls reuse the
// outer transaction.
func (s *PgStore) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	if _, ok := s.db.(pgx.Tx); ok {
		return fn(s)
	}

	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(&PgStore{pool: s.pool, db: tx})
	})
}

// isUniqueViolation reports whether err is a Postgres unique_violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// notFound maps pgx.ErrNoRows to domain.ErrNotFound
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
