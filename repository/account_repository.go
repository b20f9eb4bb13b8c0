package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `id, owner_id, account_key, name, balance, total_deposits, total_withdrawals, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.OwnerID,
		&account.AccountKey,
		&account.Name,
		&account.Balance,
		&account.TotalDeposits,
		&account.TotalWithdrawals,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Create creates a new account with zero balance and totals
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (owner_id, account_key, name)
		VALUES ($1, $2, $3)
		RETURNING id, balance, total_deposits, total_withdrawals, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		account.OwnerID,
		account.AccountKey,
		account.Name,
	).Scan(
		&account.ID,
		&account.Balance,
		&account.TotalDeposits,
		&account.TotalWithdrawals,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create account %q for owner %d: %w", account.AccountKey, account.OwnerID, err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return account, nil
}

// GetByIDForUpdate retrieves an account and locks its row until the
// enclosing transaction finishes.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
	}
	return account, nil
}

// GetByKey retrieves an owner's account by its unique key
func (r *AccountRepository) GetByKey(ctx context.Context, ownerID int64, accountKey string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 AND account_key = $2`

	account, err := scanAccount(r.q.QueryRow(ctx, query, ownerID, accountKey))
	if err != nil {
		return nil, fmt.Errorf("failed to get account %q for owner %d: %w", accountKey, ownerID, err)
	}
	return account, nil
}

// GetByKeyForUpdate retrieves an owner's account by key with a row lock
func (r *AccountRepository) GetByKeyForUpdate(ctx context.Context, ownerID int64, accountKey string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 AND account_key = $2 FOR UPDATE`

	account, err := scanAccount(r.q.QueryRow(ctx, query, ownerID, accountKey))
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %q for owner %d: %w", accountKey, ownerID, err)
	}
	return account, nil
}

// ListByOwner returns all accounts belonging to an owner
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_at`

	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// ApplyDelta adjusts the cached balance and totals by a relative delta
// in a single atomic update.
func (r *AccountRepository) ApplyDelta(ctx context.Context, accountID int64, delta models.Delta) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1,
		    total_deposits = total_deposits + $2,
		    total_withdrawals = total_withdrawals + $3,
		    updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query, delta.Balance, delta.Deposits, delta.Withdrawals, accountID)
	if err != nil {
		return fmt.Errorf("failed to apply delta to account %d: %w", accountID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", accountID)
	}

	return nil
}

// SetTotals overwrites the cached balance and totals with absolute values
func (r *AccountRepository) SetTotals(ctx context.Context, accountID int64, balance, deposits, withdrawals decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $1,
		    total_deposits = $2,
		    total_withdrawals = $3,
		    updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query, balance, deposits, withdrawals, accountID)
	if err != nil {
		return fmt.Errorf("failed to set totals for account %d: %w", accountID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", accountID)
	}

	return nil
}
