package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"

	"github.com/jackc/pgx/v5"
)

// TransactionRepository implements the service.TransactionRepository interface
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Create inserts a new ledger entry. A zero event date defaults to the
// current date on the database side.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (account_id, type, amount, description, event_date)
		VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5::date, '0001-01-01'::date), CURRENT_DATE))
		RETURNING id, event_date, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		tx.AccountID,
		tx.Type,
		tx.Amount,
		tx.Description,
		tx.EventDate,
	).Scan(&tx.ID, &tx.EventDate, &tx.CreatedAt, &tx.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create transaction for account %d: %w", tx.AccountID, err)
	}

	return nil
}

// GetByIDForOwner retrieves a transaction only when its account belongs
// to the given owner. Foreign rows look identical to missing ones.
func (r *TransactionRepository) GetByIDForOwner(ctx context.Context, id, ownerID int64) (*models.Transaction, error) {
	query := `
		SELECT t.id, t.account_id, t.type, t.amount, t.description, t.event_date, t.created_at, t.updated_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.id = $1 AND a.owner_id = $2
	`

	var tx models.Transaction
	err := r.q.QueryRow(ctx, query, id, ownerID).Scan(
		&tx.ID,
		&tx.AccountID,
		&tx.Type,
		&tx.Amount,
		&tx.Description,
		&tx.EventDate,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}

	return &tx, nil
}

// Update persists type, amount, description and event date changes
func (r *TransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $1, amount = $2, description = $3, event_date = $4, updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.q.Exec(ctx, query, tx.Type, tx.Amount, tx.Description, tx.EventDate, tx.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", tx.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d not found", tx.ID)
	}

	return nil
}

// Delete removes a transaction row
func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d not found", id)
	}

	return nil
}

// ListByAccount returns all transactions for an account, oldest first
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64) ([]*models.Transaction, error) {
	query := `
		SELECT id, account_id, type, amount, description, event_date, created_at, updated_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY event_date, id
	`

	rows, err := r.q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.AccountID,
			&tx.Type,
			&tx.Amount,
			&tx.Description,
			&tx.EventDate,
			&tx.CreatedAt,
			&tx.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}
