package repository

import (
	"context"
	"testing"
	"time"

	"bankroll/models"
	"bankroll/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount(1001, "main")
	require.NoError(t, accountRepo.Create(ctx, account))

	t.Run("fills generated fields", func(t *testing.T) {
		tx := testutil.CreateTestTransactionWithAmount(account.ID, models.TransactionTypeDeposit, "250.50")
		err := repo.Create(ctx, tx)
		require.NoError(t, err)

		assert.NotZero(t, tx.ID)
		assert.False(t, tx.CreatedAt.IsZero())
	})

	t.Run("zero event date defaults to today", func(t *testing.T) {
		tx := testutil.CreateTestTransaction(account.ID, models.TransactionTypeDeposit)
		require.True(t, tx.EventDate.IsZero())

		err := repo.Create(ctx, tx)
		require.NoError(t, err)

		assert.Equal(t, time.Now().UTC().Format("2006-01-02"), tx.EventDate.Format("2006-01-02"))
	})

	t.Run("explicit event date is kept", func(t *testing.T) {
		tx := testutil.CreateTestTransaction(account.ID, models.TransactionTypeHistoricalWin)
		tx.EventDate = time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

		err := repo.Create(ctx, tx)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-20", tx.EventDate.Format("2006-01-02"))
	})

	t.Run("non-positive amount rejected by constraint", func(t *testing.T) {
		tx := testutil.CreateTestTransaction(account.ID, models.TransactionTypeDeposit)
		tx.Amount = decimal.Zero

		err := repo.Create(ctx, tx)
		assert.Error(t, err)
	})
}

func TestTransactionRepository_GetByIDForOwner(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount(2001, "main")
	require.NoError(t, accountRepo.Create(ctx, account))

	tx := testutil.CreateTestTransaction(account.ID, models.TransactionTypeDeposit)
	require.NoError(t, repo.Create(ctx, tx))

	t.Run("owner sees the transaction", func(t *testing.T) {
		got, err := repo.GetByIDForOwner(ctx, tx.ID, 2001)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, tx.ID, got.ID)
		assert.True(t, got.Amount.Equal(tx.Amount))
	})

	t.Run("foreign owner sees nothing", func(t *testing.T) {
		got, err := repo.GetByIDForOwner(ctx, tx.ID, 9999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("missing id", func(t *testing.T) {
		got, err := repo.GetByIDForOwner(ctx, 999999, 2001)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestTransactionRepository_UpdateDelete(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount(3001, "main")
	require.NoError(t, accountRepo.Create(ctx, account))

	tx := testutil.CreateTestTransactionWithAmount(account.ID, models.TransactionTypeDeposit, "100")
	require.NoError(t, repo.Create(ctx, tx))

	t.Run("update rewrites fields", func(t *testing.T) {
		tx.Type = models.TransactionTypeWithdrawal
		tx.Amount = decimal.NewFromInt(75)
		tx.Description = "corrected"

		require.NoError(t, repo.Update(ctx, tx))

		got, err := repo.GetByIDForOwner(ctx, tx.ID, 3001)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionTypeWithdrawal, got.Type)
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(75)))
		assert.Equal(t, "corrected", got.Description)
	})

	t.Run("delete removes the row", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, tx.ID))

		got, err := repo.GetByIDForOwner(ctx, tx.ID, 3001)
		require.NoError(t, err)
		assert.Nil(t, got)

		assert.Error(t, repo.Delete(ctx, tx.ID))
	})
}

func TestTransactionRepository_ListByAccount(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount(4001, "main")
	require.NoError(t, accountRepo.Create(ctx, account))

	dates := []string{"2024-03-02", "2024-03-01", "2024-03-03"}
	for _, d := range dates {
		tx := testutil.CreateTestTransaction(account.ID, models.TransactionTypeDeposit)
		tx.EventDate, _ = time.Parse("2006-01-02", d)
		require.NoError(t, repo.Create(ctx, tx))
	}

	transactions, err := repo.ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	// Event order, not insertion order
	assert.Equal(t, "2024-03-01", transactions[0].EventDate.Format("2006-01-02"))
	assert.Equal(t, "2024-03-02", transactions[1].EventDate.Format("2006-01-02"))
	assert.Equal(t, "2024-03-03", transactions[2].EventDate.Format("2006-01-02"))
}
