package service

import (
	"context"
	"time"

	"bankroll/events"
	"bankroll/models"

	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// Create inserts a new account and fills in generated fields
	Create(ctx context.Context, account *models.Account) error

	// GetByID retrieves an account by its ID, nil when missing
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByIDForUpdate retrieves an account and locks its row for the
	// duration of the enclosing transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Account, error)

	// GetByKey retrieves an owner's account by its unique key
	GetByKey(ctx context.Context, ownerID int64, accountKey string) (*models.Account, error)

	// GetByKeyForUpdate retrieves an owner's account by key with a row lock
	GetByKeyForUpdate(ctx context.Context, ownerID int64, accountKey string) (*models.Account, error)

	// ListByOwner returns all accounts belonging to an owner
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Account, error)

	// ApplyDelta adjusts the cached balance and totals by a relative delta
	ApplyDelta(ctx context.Context, accountID int64, delta models.Delta) error

	// SetTotals overwrites the cached balance and totals with absolute values
	SetTotals(ctx context.Context, accountID int64, balance, deposits, withdrawals decimal.Decimal) error
}

// TransactionRepository defines the interface for ledger entry data access
type TransactionRepository interface {
	// Create inserts a new transaction and fills in generated fields
	Create(ctx context.Context, tx *models.Transaction) error

	// GetByIDForOwner retrieves a transaction only if its account belongs
	// to the owner, nil when missing or foreign
	GetByIDForOwner(ctx context.Context, id, ownerID int64) (*models.Transaction, error)

	// Update persists type, amount, description and event date changes
	Update(ctx context.Context, tx *models.Transaction) error

	// Delete removes a transaction row
	Delete(ctx context.Context, id int64) error

	// ListByAccount returns all transactions for an account in event order
	ListByAccount(ctx context.Context, accountID int64) ([]*models.Transaction, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create inserts a new bet and fills in generated fields
	Create(ctx context.Context, bet *models.Bet) error

	// GetByIDForOwner retrieves a bet only if its account belongs to the
	// owner, nil when missing or foreign
	GetByIDForOwner(ctx context.Context, id, ownerID int64) (*models.Bet, error)

	// Settle persists the terminal status, winnings and settlement time
	Settle(ctx context.Context, id int64, status models.BetStatus, winnings decimal.Decimal, settledAt time.Time) error

	// Delete removes a bet row
	Delete(ctx context.Context, id int64) error

	// ListByAccount returns all bets for an account in creation order
	ListByAccount(ctx context.Context, accountID int64) ([]*models.Bet, error)

	// ListSettledByAccount returns settled bets in settlement order
	ListSettledByAccount(ctx context.Context, accountID int64) ([]*models.Bet, error)

	// GetStats returns aggregated betting statistics for an account
	GetStats(ctx context.Context, accountID int64) (*models.BetStats, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new database transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	TransactionRepository() TransactionRepository
	BetRepository() BetRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AccountService defines the interface for account operations
type AccountService interface {
	// CreateAccount creates a new account for an owner
	CreateAccount(ctx context.Context, ownerID int64, accountKey, name string) (*models.Account, error)

	// GetAccount retrieves an owner's account by key
	GetAccount(ctx context.Context, ownerID int64, accountKey string) (*models.Account, error)

	// ListAccounts returns all accounts for an owner
	ListAccounts(ctx context.Context, ownerID int64) ([]*models.Account, error)

	// GetBalance returns the cached balance for an account, served from
	// the balance cache when possible
	GetBalance(ctx context.Context, ownerID int64, accountKey string) (decimal.Decimal, error)
}

// UpdateTransactionParams carries the optional fields of a transaction
// update; nil fields keep their stored value.
type UpdateTransactionParams struct {
	Type        *models.TransactionType
	Amount      *decimal.Decimal
	Description *string
	EventDate   *time.Time
}

// TransactionService defines the interface for ledger entry operations
type TransactionService interface {
	// Create validates and applies a new ledger entry. Entries of type
	// bet also insert a companion bet row.
	Create(ctx context.Context, ownerID, accountID int64, txType models.TransactionType, amount decimal.Decimal, description string, eventDate time.Time) (*models.Transaction, error)

	// Update rewrites an entry and adjusts the account by the delta
	// difference between old and new values
	Update(ctx context.Context, ownerID, txID int64, params UpdateTransactionParams) (*models.Transaction, error)

	// Delete reverses the entry's delta and removes the row
	Delete(ctx context.Context, ownerID, txID int64) error
}

// CreateBetParams carries the fields of a new bet
type CreateBetParams struct {
	Amount        decimal.Decimal
	DisplayAmount decimal.Decimal
	Description   string
	IsBonusBet    bool
}

// BetService defines the interface for bet operations
type BetService interface {
	// Create places a new pending bet and deducts the risked amount
	Create(ctx context.Context, ownerID, accountID int64, params CreateBetParams) (*models.Bet, error)

	// Settle transitions a pending bet to won or lost, crediting
	// winnings on a win
	Settle(ctx context.Context, ownerID, betID int64, status models.BetStatus, winnings decimal.Decimal) (*models.Bet, error)

	// Delete removes a bet, adjusting the balance per its state
	Delete(ctx context.Context, ownerID, betID int64) error

	// GetStreaks returns the current and longest win/lose streaks over
	// settled bets
	GetStreaks(ctx context.Context, ownerID, accountID int64) (*models.BetStreaks, error)

	// GetStats returns aggregated betting statistics
	GetStats(ctx context.Context, ownerID, accountID int64) (*models.BetStats, error)
}

// ImportService defines the interface for bulk ingestion
type ImportService interface {
	// Import parses raw text records and applies all valid lines in a
	// single database transaction; invalid lines become warnings
	Import(ctx context.Context, ownerID int64, rawText string) (*models.ImportResult, error)
}

// RecalcService defines the interface for balance recalculation
type RecalcService interface {
	// Recalculate re-derives balance and totals from the full history
	// and overwrites the stored values atomically
	Recalculate(ctx context.Context, ownerID int64, accountKey string) (*models.RecalcResult, error)
}
