package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus represents the settlement state of a bet
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
)

// ParseBetStatus validates a textual settlement outcome
func ParseBetStatus(s string) (BetStatus, bool) {
	switch BetStatus(s) {
	case BetStatusWon:
		return BetStatusWon, true
	case BetStatusLost:
		return BetStatusLost, true
	}
	return "", false
}

// Bet represents a wager against an account. Amount is the real money
// risked (zero for bonus bets and for companion bets created through a
// bet-form transaction); DisplayAmount is what the user sees regardless
// of real risk. pending -> won|lost, settled exactly once.
type Bet struct {
	ID            int64           `db:"id"`
	AccountID     int64           `db:"account_id"`
	Amount        decimal.Decimal `db:"amount"`
	DisplayAmount decimal.Decimal `db:"display_amount"`
	IsBonusBet    bool            `db:"is_bonus_bet"`
	Status        BetStatus       `db:"status"`
	Winnings      decimal.Decimal `db:"winnings"`
	Description   string          `db:"description"`
	CreatedAt     time.Time       `db:"created_at"`
	SettledAt     *time.Time      `db:"settled_at"`
}

// IsSettled reports whether the bet has reached a terminal state
func (b *Bet) IsSettled() bool {
	return b.Status != BetStatusPending
}

// CreationDelta is the balance contribution applied when the bet was
// placed: the risked amount leaves the balance, nothing else moves.
func (b *Bet) CreationDelta() Delta {
	return Delta{Balance: b.Amount.Neg()}
}

// SettlementDelta is the additional contribution applied at settlement.
// Only winnings on a won bet move the balance.
func (b *Bet) SettlementDelta() Delta {
	if b.Status == BetStatusWon {
		return Delta{Balance: b.Winnings}
	}
	return Delta{}
}

// DeletionDelta is the adjustment applied when the bet row is removed:
// a pending real-money bet refunds its stake, a won bet gives back its
// winnings, everything else leaves the balance alone.
func (b *Bet) DeletionDelta() Delta {
	switch {
	case b.Status == BetStatusPending && !b.IsBonusBet && b.Amount.IsPositive():
		return Delta{Balance: b.Amount}
	case b.Status == BetStatusWon:
		return Delta{Balance: b.Winnings.Neg()}
	}
	return Delta{}
}
