package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDeltaFor(t *testing.T) {
	amount := d("100")

	tests := []struct {
		name        string
		txType      TransactionType
		isBonus     bool
		balance     string
		deposits    string
		withdrawals string
	}{
		{"deposit", TransactionTypeDeposit, false, "100", "100", "0"},
		{"withdrawal", TransactionTypeWithdrawal, false, "-100", "0", "100"},
		{"bonus credit", TransactionTypeBonusCredit, false, "100", "0", "0"},
		{"historical win", TransactionTypeHistoricalWin, false, "100", "0", "0"},
		{"historical loss", TransactionTypeHistoricalLoss, false, "-100", "0", "0"},
		{"bet", TransactionTypeBet, false, "-100", "0", "0"},
		{"bonus bet risks nothing", TransactionTypeBet, true, "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := DeltaFor(tt.txType, amount, tt.isBonus)
			assert.True(t, delta.Balance.Equal(d(tt.balance)), "balance: got %s", delta.Balance)
			assert.True(t, delta.Deposits.Equal(d(tt.deposits)), "deposits: got %s", delta.Deposits)
			assert.True(t, delta.Withdrawals.Equal(d(tt.withdrawals)), "withdrawals: got %s", delta.Withdrawals)
		})
	}
}

func TestDeltaArithmetic(t *testing.T) {
	deposit := DeltaFor(TransactionTypeDeposit, d("100"), false)
	withdrawal := DeltaFor(TransactionTypeWithdrawal, d("100"), false)

	// Moving a deposit(100) to a withdrawal(100) is a -200 balance swing
	// with both totals adjusted.
	adjustment := withdrawal.Sub(deposit)
	assert.True(t, adjustment.Balance.Equal(d("-200")))
	assert.True(t, adjustment.Deposits.Equal(d("-100")))
	assert.True(t, adjustment.Withdrawals.Equal(d("100")))

	// Applying a delta and then its reversal is a no-op.
	assert.True(t, deposit.Add(deposit.Neg()).IsZero())
}

func TestTransactionDelta_BonusInference(t *testing.T) {
	tx := &Transaction{Type: TransactionTypeBet, Amount: d("50"), Description: "NBA finals bonus play"}
	assert.True(t, tx.Delta().Balance.IsZero(), "bet with bonus description risks nothing")

	tx.Description = "NBA finals"
	assert.True(t, tx.Delta().Balance.Equal(d("-50")))
}

func TestParseTransactionType(t *testing.T) {
	parsed, ok := ParseTransactionType("bonus-credit")
	assert.True(t, ok)
	assert.Equal(t, TransactionTypeBonusCredit, parsed)

	parsed, ok = ParseTransactionType(" deposit ")
	assert.True(t, ok)
	assert.Equal(t, TransactionTypeDeposit, parsed)

	_, ok = ParseTransactionType("bogus")
	assert.False(t, ok)
}

func TestBetDeltas(t *testing.T) {
	pending := &Bet{Amount: d("40"), Status: BetStatusPending}
	assert.True(t, pending.CreationDelta().Balance.Equal(d("-40")))
	assert.True(t, pending.SettlementDelta().IsZero())
	assert.True(t, pending.DeletionDelta().Balance.Equal(d("40")), "deleting a pending bet refunds the stake")

	bonus := &Bet{Amount: decimal.Zero, DisplayAmount: d("40"), IsBonusBet: true, Status: BetStatusPending}
	assert.True(t, bonus.CreationDelta().IsZero())
	assert.True(t, bonus.DeletionDelta().IsZero())

	won := &Bet{Amount: d("40"), Status: BetStatusWon, Winnings: d("90")}
	assert.True(t, won.SettlementDelta().Balance.Equal(d("90")))
	assert.True(t, won.DeletionDelta().Balance.Equal(d("-90")), "deleting a won bet removes the winnings")

	lost := &Bet{Amount: d("40"), Status: BetStatusLost}
	assert.True(t, lost.SettlementDelta().IsZero())
	assert.True(t, lost.DeletionDelta().IsZero())
}
