package testutil

import (
	"bankroll/models"

	"github.com/shopspring/decimal"
)

// CreateTestAccount creates a test account with default values
func CreateTestAccount(ownerID int64, accountKey string) *models.Account {
	return &models.Account{
		OwnerID:    ownerID,
		AccountKey: accountKey,
		Name:       "Test " + accountKey,
	}
}

// CreateTestTransaction creates a test transaction with a default amount
func CreateTestTransaction(accountID int64, txType models.TransactionType) *models.Transaction {
	return &models.Transaction{
		AccountID: accountID,
		Type:      txType,
		Amount:    decimal.NewFromInt(100),
	}
}

// CreateTestTransactionWithAmount creates a test transaction with a specific amount
func CreateTestTransactionWithAmount(accountID int64, txType models.TransactionType, amount string) *models.Transaction {
	tx := CreateTestTransaction(accountID, txType)
	tx.Amount = decimal.RequireFromString(amount)
	return tx
}

// CreateTestBet creates a pending real-money test bet
func CreateTestBet(accountID int64, amount string) *models.Bet {
	risked := decimal.RequireFromString(amount)
	return &models.Bet{
		AccountID:     accountID,
		Amount:        risked,
		DisplayAmount: risked,
		Status:        models.BetStatusPending,
	}
}

// CreateTestBonusBet creates a pending bonus test bet that risks no
// real money
func CreateTestBonusBet(accountID int64, displayAmount string) *models.Bet {
	return &models.Bet{
		AccountID:     accountID,
		Amount:        decimal.Zero,
		DisplayAmount: decimal.RequireFromString(displayAmount),
		IsBonusBet:    true,
		Status:        models.BetStatusPending,
	}
}
