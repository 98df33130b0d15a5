package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"papertrade/internal/domain"
)

// TransactionRepositoryImpl implements the TransactionRepository interface
type TransactionRepositoryImpl struct {
	db DBTX
}

// Append records a new transaction
func (r *TransactionRepositoryImpl) Append(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, symbol, name, shares, price, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		tx.UserID,
		tx.Symbol,
		tx.Name,
		tx.Shares,
		tx.Price,
		tx.Type,
	).Scan(&tx.ID, &tx.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return nil
}

// SumShares returns the net shares a user holds of a symbol
func (r *TransactionRepositoryImpl) SumShares(ctx context.Context, userID uuid.UUID, symbol string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(shares), 0)::bigint
		FROM transactions
		WHERE user_id = $1 AND symbol = $2
	`

	var shares int64
	if err := r.db.QueryRow(ctx, query, userID, symbol).Scan(&shares); err != nil {
		return 0, fmt.Errorf("failed to sum shares: %w", err)
	}

	return shares, nil
}

// Holdings aggregates net shares per symbol, keeping the name and price of
// the symbol's most recent transaction
func (r *TransactionRepositoryImpl) Holdings(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	query := `
		SELECT h.symbol, l.name, l.price, h.shares
		FROM (
			SELECT symbol, SUM(shares)::bigint AS shares, MAX(id) AS last_id
			FROM transactions
			WHERE user_id = $1
			GROUP BY symbol
			HAVING SUM(shares) <> 0
		) h
		JOIN transactions l ON l.id = h.last_id
		ORDER BY h.symbol ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := []domain.Holding{}
	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.Symbol, &h.Name, &h.Price, &h.Shares); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return holdings, nil
}

// ListByUser returns all transactions of a user, oldest first
func (r *TransactionRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, symbol, name, shares, price, type, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by user ID: %w", err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx := &domain.Transaction{}
		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Symbol,
			&tx.Name,
			&tx.Shares,
			&tx.Price,
			&tx.Type,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}
