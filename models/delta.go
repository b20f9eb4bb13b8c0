package models

import "github.com/shopspring/decimal"

// Delta is the signed contribution of a single ledger event to an
// account's cached balance and running totals.
type Delta struct {
	Balance     decimal.Decimal
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
}

// Add returns the component-wise sum of two deltas
func (d Delta) Add(o Delta) Delta {
	return Delta{
		Balance:     d.Balance.Add(o.Balance),
		Deposits:    d.Deposits.Add(o.Deposits),
		Withdrawals: d.Withdrawals.Add(o.Withdrawals),
	}
}

// Neg returns the reversal of a delta
func (d Delta) Neg() Delta {
	return Delta{
		Balance:     d.Balance.Neg(),
		Deposits:    d.Deposits.Neg(),
		Withdrawals: d.Withdrawals.Neg(),
	}
}

// Sub returns d - o, the adjustment that moves an account from one
// applied delta to another.
func (d Delta) Sub(o Delta) Delta {
	return d.Add(o.Neg())
}

// IsZero reports whether the delta has no effect
func (d Delta) IsZero() bool {
	return d.Balance.IsZero() && d.Deposits.IsZero() && d.Withdrawals.IsZero()
}

// DeltaFor maps a transaction type and amount to its balance delta.
// isBonus only matters for bet entries: a bonus bet risks no real money.
// The type must already be validated; unknown types contribute nothing.
func DeltaFor(t TransactionType, amount decimal.Decimal, isBonus bool) Delta {
	switch t {
	case TransactionTypeDeposit:
		return Delta{Balance: amount, Deposits: amount}
	case TransactionTypeWithdrawal:
		return Delta{Balance: amount.Neg(), Withdrawals: amount}
	case TransactionTypeBonusCredit, TransactionTypeHistoricalWin:
		return Delta{Balance: amount}
	case TransactionTypeHistoricalLoss:
		return Delta{Balance: amount.Neg()}
	case TransactionTypeBet:
		if isBonus {
			return Delta{}
		}
		return Delta{Balance: amount.Neg()}
	}
	return Delta{}
}
