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

func TestBetRepository_Settle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount(1001, "main")
	require.NoError(t, accountRepo.Create(ctx, account))

	t.Run("pending bet settles once", func(t *testing.T) {
		bet := testutil.CreateTestBet(account.ID, "50")
		require.NoError(t, repo.Create(ctx, bet))

		now := time.Now()
		err := repo.Settle(ctx, bet.ID, models.BetStatusWon, decimal.NewFromInt(120), now)
		require.NoError(t, err)

		got, err := repo.GetByIDForOwner(ctx, bet.ID, 1001)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.BetStatusWon, got.Status)
		assert.True(t, got.Winnings.Equal(decimal.NewFromInt(120)))
		require.NotNil(t, got.SettledAt)
	})

	t.Run("settled bet refuses a second settlement", func(t *testing.T) {
		bet := testutil.CreateTestBet(account.ID, "25")
		require.NoError(t, repo.Create(ctx, bet))

		require.NoError(t, repo.Settle(ctx, bet.ID, models.BetStatusLost, decimal.Zero, time.Now()))

		err := repo.Settle(ctx, bet.ID, models.BetStatusWon, decimal.NewFromInt(60), time.Now())
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrAlreadySettled)
	})
}

func TestBetRepository_OwnerScoping(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount(2001, "main")
	require.NoError(t, accountRepo.Create(ctx, account))

	bet := testutil.CreateTestBet(account.ID, "10")
	require.NoError(t, repo.Create(ctx, bet))

	t.Run("owner sees the bet", func(t *testing.T) {
		got, err := repo.GetByIDForOwner(ctx, bet.ID, 2001)
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("foreign owner sees nothing", func(t *testing.T) {
		got, err := repo.GetByIDForOwner(ctx, bet.ID, 9999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestBetRepository_GetStats(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount(3001, "main")
	require.NoError(t, accountRepo.Create(ctx, account))

	t.Run("empty account", func(t *testing.T) {
		stats, err := repo.GetStats(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalBets)
		assert.True(t, stats.TotalRisked.IsZero())
	})

	t.Run("mixed outcomes", func(t *testing.T) {
		won := testutil.CreateTestBet(account.ID, "100")
		require.NoError(t, repo.Create(ctx, won))
		require.NoError(t, repo.Settle(ctx, won.ID, models.BetStatusWon, decimal.NewFromInt(250), time.Now()))

		lost := testutil.CreateTestBet(account.ID, "40")
		require.NoError(t, repo.Create(ctx, lost))
		require.NoError(t, repo.Settle(ctx, lost.ID, models.BetStatusLost, decimal.Zero, time.Now()))

		pending := testutil.CreateTestBet(account.ID, "60")
		require.NoError(t, repo.Create(ctx, pending))

		// Bonus bet display amount must not count as risked money
		bonus := testutil.CreateTestBonusBet(account.ID, "500")
		require.NoError(t, repo.Create(ctx, bonus))

		stats, err := repo.GetStats(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.TotalBets)
		assert.Equal(t, 2, stats.TotalPending)
		assert.Equal(t, 1, stats.TotalWins)
		assert.Equal(t, 1, stats.TotalLosses)
		assert.True(t, stats.TotalRisked.Equal(decimal.NewFromInt(200)))
		assert.True(t, stats.TotalWon.Equal(decimal.NewFromInt(250)))
		assert.True(t, stats.BiggestWin.Equal(decimal.NewFromInt(250)))
		assert.True(t, stats.BiggestLoss.Equal(decimal.NewFromInt(40)))
	})
}

func TestBetRepository_ListSettledByAccount(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount(4001, "main")
	require.NoError(t, accountRepo.Create(ctx, account))

	base := time.Now().Add(-time.Hour)
	outcomes := []struct {
		status    models.BetStatus
		settledAt time.Time
	}{
		{models.BetStatusWon, base.Add(2 * time.Minute)},
		{models.BetStatusLost, base.Add(1 * time.Minute)},
		{models.BetStatusWon, base.Add(3 * time.Minute)},
	}

	for _, o := range outcomes {
		bet := testutil.CreateTestBet(account.ID, "10")
		require.NoError(t, repo.Create(ctx, bet))
		winnings := decimal.Zero
		if o.status == models.BetStatusWon {
			winnings = decimal.NewFromInt(20)
		}
		require.NoError(t, repo.Settle(ctx, bet.ID, o.status, winnings, o.settledAt))
	}

	pending := testutil.CreateTestBet(account.ID, "10")
	require.NoError(t, repo.Create(ctx, pending))

	settled, err := repo.ListSettledByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, settled, 3)

	// Settlement order, not creation order
	assert.Equal(t, models.BetStatusLost, settled[0].Status)
	assert.Equal(t, models.BetStatusWon, settled[1].Status)
	assert.Equal(t, models.BetStatusWon, settled[2].Status)
}
