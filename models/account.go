package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a bankroll account owned by a single caller.
// Balance and the running totals are caches over the account's transaction
// and bet history; every mutation path applies the matching Delta in the
// same database transaction as the row change.
type Account struct {
	ID               int64           `db:"id"`
	OwnerID          int64           `db:"owner_id"`
	AccountKey       string          `db:"account_key"`
	Name             string          `db:"name"`
	Balance          decimal.Decimal `db:"balance"`
	TotalDeposits    decimal.Decimal `db:"total_deposits"`
	TotalWithdrawals decimal.Decimal `db:"total_withdrawals"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}
