package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user. Returns ErrDuplicate when the username exists.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetForUpdate retrieves a user and locks the row until the
	// surrounding transaction ends
	GetForUpdate(ctx context.Context, id uuid.UUID) (*User, error)

	// UpdateCash sets the user's cash balance
	UpdateCash(ctx context.Context, id uuid.UUID, cash decimal.Decimal) error
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Append records a new transaction and fills its ID and CreatedAt
	Append(ctx context.Context, tx *Transaction) error

	// SumShares returns the net shares of a symbol, 0 when there are no rows
	SumShares(ctx context.Context, userID uuid.UUID, symbol string) (int64, error)

	// Holdings aggregates non-zero positions per symbol, ordered by symbol
	Holdings(ctx context.Context, userID uuid.UUID) ([]Holding, error)

	// ListByUser returns every transaction of a user in recording order
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)
}

// SessionRepository defines the interface for server-side session state
type SessionRepository interface {
	// Create stores a new session
	Create(ctx context.Context, session *Session) error

	// GetByID retrieves a session by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// Delete removes a session; deleting a missing session is not an error
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes sessions that expired before now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Store groups the repositories that must change together
type Store interface {
	Users() UserRepository
	Transactions() TransactionRepository

	// WithinTx runs fn against a Store bound to a single database
	// transaction. The transaction commits when fn returns nil.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
