package service

import (
	"context"
	"testing"

	"bankroll/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecalcService_ConsistentAccount(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccountRepo, mockTxRepo, mockBetRepo := newTransactionServiceMocks()

	service := NewRecalcService(mockFactory, nil)

	account := testAccount(10, 1, 130)
	account.TotalDeposits = decimal.NewFromInt(150)
	account.TotalWithdrawals = decimal.NewFromInt(20)

	history := []*models.Transaction{
		{AccountID: 10, Type: models.TransactionTypeDeposit, Amount: decimal.NewFromInt(150)},
		{AccountID: 10, Type: models.TransactionTypeWithdrawal, Amount: decimal.NewFromInt(20)},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByKeyForUpdate", ctx, int64(1), "main").Return(account, nil)
	mockTxRepo.On("ListByAccount", ctx, int64(10)).Return(history, nil)
	mockBetRepo.On("ListByAccount", ctx, int64(10)).Return([]*models.Bet{}, nil)

	result, err := service.Recalculate(ctx, 1, "main")

	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.True(t, result.Drift.IsZero())

	// Nothing to fix, nothing written
	mockAccountRepo.AssertNotCalled(t, "SetTotals")
}

func TestRecalcService_CorrectsDrift(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccountRepo, mockTxRepo, mockBetRepo := newTransactionServiceMocks()

	service := NewRecalcService(mockFactory, nil)

	// Stored balance drifted 25 above the history
	account := testAccount(10, 1, 125)
	account.TotalDeposits = decimal.NewFromInt(100)

	history := []*models.Transaction{
		{AccountID: 10, Type: models.TransactionTypeDeposit, Amount: decimal.NewFromInt(100)},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByKeyForUpdate", ctx, int64(1), "main").Return(account, nil)
	mockTxRepo.On("ListByAccount", ctx, int64(10)).Return(history, nil)
	mockBetRepo.On("ListByAccount", ctx, int64(10)).Return([]*models.Bet{}, nil)
	mockAccountRepo.On("SetTotals", ctx, int64(10),
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(100)) }),
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(100)) }),
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.IsZero() }),
	).Return(nil)

	result, err := service.Recalculate(ctx, 1, "main")

	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.True(t, result.Drift.Equal(decimal.NewFromInt(25)))
	assert.True(t, result.Account.Balance.Equal(decimal.NewFromInt(100)))

	mockAccountRepo.AssertExpectations(t)
}

func TestRecalcService_CountsWagersOnce(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccountRepo, mockTxRepo, mockBetRepo := newTransactionServiceMocks()

	service := NewRecalcService(mockFactory, nil)

	// deposit 200, bet-form entry 50 with its zero-risk companion row,
	// and a settled standalone bet: 200 - 50 - 30 + 70 = 190
	account := testAccount(10, 1, 190)
	account.TotalDeposits = decimal.NewFromInt(200)

	history := []*models.Transaction{
		{AccountID: 10, Type: models.TransactionTypeDeposit, Amount: decimal.NewFromInt(200)},
		{AccountID: 10, Type: models.TransactionTypeBet, Amount: decimal.NewFromInt(50)},
	}
	bets := []*models.Bet{
		{AccountID: 10, Amount: decimal.Zero, DisplayAmount: decimal.NewFromInt(50), Status: models.BetStatusPending},
		{AccountID: 10, Amount: decimal.NewFromInt(30), Status: models.BetStatusWon, Winnings: decimal.NewFromInt(70)},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByKeyForUpdate", ctx, int64(1), "main").Return(account, nil)
	mockTxRepo.On("ListByAccount", ctx, int64(10)).Return(history, nil)
	mockBetRepo.On("ListByAccount", ctx, int64(10)).Return(bets, nil)

	result, err := service.Recalculate(ctx, 1, "main")

	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.True(t, result.Drift.IsZero())
	mockAccountRepo.AssertNotCalled(t, "SetTotals")
}

func TestRecalcService_UnknownAccount(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccountRepo, _, _ := newTransactionServiceMocks()

	service := NewRecalcService(mockFactory, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByKeyForUpdate", ctx, int64(1), "ghost").Return(nil, nil)

	result, err := service.Recalculate(ctx, 1, "ghost")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}
