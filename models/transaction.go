package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionTypeDeposit        TransactionType = "deposit"
	TransactionTypeWithdrawal     TransactionType = "withdrawal"
	TransactionTypeBet            TransactionType = "bet"
	TransactionTypeBonusCredit    TransactionType = "bonus_credit"
	TransactionTypeHistoricalWin  TransactionType = "historical_win"
	TransactionTypeHistoricalLoss TransactionType = "historical_loss"
)

// ParseTransactionType normalizes a textual type into a TransactionType.
// Hyphenated forms ("bonus-credit") are accepted for imported records.
func ParseTransactionType(s string) (TransactionType, bool) {
	t := TransactionType(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeBet,
		TransactionTypeBonusCredit, TransactionTypeHistoricalWin, TransactionTypeHistoricalLoss:
		return t, true
	}
	return "", false
}

// Transaction represents one ledger entry against an account
type Transaction struct {
	ID          int64           `db:"id"`
	AccountID   int64           `db:"account_id"`
	Type        TransactionType `db:"type"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	EventDate   time.Time       `db:"event_date"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// IsBonusDescription reports whether a description marks a bet-form
// transaction as a bonus bet. The literal substring check is kept for
// compatibility with existing imported data.
func IsBonusDescription(description string) bool {
	return strings.Contains(description, "bonus")
}

// Delta returns the balance contribution of this transaction, with the
// bonus flag for bet entries inferred from the description.
func (t *Transaction) Delta() Delta {
	return DeltaFor(t.Type, t.Amount, IsBonusDescription(t.Description))
}
