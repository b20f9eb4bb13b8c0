package service

import (
	"context"
	"fmt"
	"time"

	"bankroll/cache"
	"bankroll/events"
	"bankroll/metrics"
	"bankroll/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type betService struct {
	uowFactory UnitOfWorkFactory
	balances   *cache.BalanceCache
}

// NewBetService creates a new bet service
func NewBetService(uowFactory UnitOfWorkFactory, balances *cache.BalanceCache) BetService {
	return &betService{
		uowFactory: uowFactory,
		balances:   balances,
	}
}

// Create places a new pending bet. Bonus bets risk no real money
// regardless of the requested amount; real-money bets require
// sufficient balance and deduct their stake atomically with the insert.
func (s *betService) Create(ctx context.Context, ownerID, accountID int64, params CreateBetParams) (bet *models.Bet, err error) {
	defer func() { metrics.RecordOperation("bet.create", err) }()

	if params.Amount.IsNegative() || params.DisplayAmount.IsNegative() {
		return nil, fmt.Errorf("%w: bet amounts cannot be negative", models.ErrInvalidAmount)
	}

	amount := params.Amount
	if params.IsBonusBet {
		amount = decimal.Zero
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil || account.OwnerID != ownerID {
		return nil, models.ErrAccountNotFound
	}

	if !params.IsBonusBet && amount.GreaterThan(account.Balance) {
		return nil, fmt.Errorf("%w: have %s, need %s", models.ErrInsufficientBalance, account.Balance, amount)
	}

	bet = &models.Bet{
		AccountID:     accountID,
		Amount:        amount,
		DisplayAmount: params.DisplayAmount,
		IsBonusBet:    params.IsBonusBet,
		Status:        models.BetStatusPending,
		Description:   params.Description,
	}

	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	delta := bet.CreationDelta()
	if !delta.IsZero() {
		if err := uow.AccountRepository().ApplyDelta(ctx, accountID, delta); err != nil {
			return nil, fmt.Errorf("failed to apply balance delta: %w", err)
		}
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       accountID,
		OwnerID:         ownerID,
		OldBalance:      account.Balance,
		NewBalance:      account.Balance.Add(delta.Balance),
		TransactionType: models.TransactionTypeBet,
		ChangeAmount:    delta.Balance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.balances.Invalidate(ctx, ownerID, account.AccountKey)

	log.WithFields(log.Fields{
		"accountID": accountID,
		"betID":     bet.ID,
		"amount":    amount,
		"bonus":     params.IsBonusBet,
	}).Info("Placed bet")

	return bet, nil
}

// Settle transitions a pending bet to won or lost. Settling is
// one-shot: a bet that already reached a terminal state conflicts.
func (s *betService) Settle(ctx context.Context, ownerID, betID int64, status models.BetStatus, winnings decimal.Decimal) (bet *models.Bet, err error) {
	defer func() { metrics.RecordOperation("bet.settle", err) }()

	if status != models.BetStatusWon && status != models.BetStatusLost {
		return nil, fmt.Errorf("%w: settlement status must be won or lost, got %q", models.ErrInvalidType, status)
	}
	if status == models.BetStatusWon && !winnings.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", models.ErrInvalidWinnings, winnings)
	}
	if status == models.BetStatusLost {
		winnings = decimal.Zero
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err = uow.BetRepository().GetByIDForOwner(ctx, betID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, models.ErrNotFound
	}
	if bet.IsSettled() {
		return nil, fmt.Errorf("%w: bet %d is %s", models.ErrAlreadySettled, betID, bet.Status)
	}

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, bet.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, models.ErrAccountNotFound
	}

	now := time.Now()
	if err := uow.BetRepository().Settle(ctx, betID, status, winnings, now); err != nil {
		return nil, fmt.Errorf("failed to settle bet: %w", err)
	}

	bet.Status = status
	bet.Winnings = winnings
	bet.SettledAt = &now

	delta := bet.SettlementDelta()
	if !delta.IsZero() {
		if err := uow.AccountRepository().ApplyDelta(ctx, bet.AccountID, delta); err != nil {
			return nil, fmt.Errorf("failed to apply winnings: %w", err)
		}
	}

	uow.EventBus().Publish(events.BetSettledEvent{
		BetID:     betID,
		AccountID: bet.AccountID,
		Status:    status,
		Winnings:  winnings,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.balances.Invalidate(ctx, ownerID, account.AccountKey)

	log.WithFields(log.Fields{
		"betID":    betID,
		"status":   status,
		"winnings": winnings,
	}).Info("Settled bet")

	return bet, nil
}

// Delete removes a bet, adjusting the balance by its deletion policy:
// pending real-money stakes are refunded, winnings of won bets are
// taken back, lost and pending-bonus bets leave the balance alone.
func (s *betService) Delete(ctx context.Context, ownerID, betID int64) (err error) {
	defer func() { metrics.RecordOperation("bet.delete", err) }()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByIDForOwner(ctx, betID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return models.ErrNotFound
	}

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, bet.AccountID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return models.ErrAccountNotFound
	}

	if err := uow.BetRepository().Delete(ctx, betID); err != nil {
		return fmt.Errorf("failed to delete bet: %w", err)
	}

	delta := bet.DeletionDelta()
	if !delta.IsZero() {
		if err := uow.AccountRepository().ApplyDelta(ctx, bet.AccountID, delta); err != nil {
			return fmt.Errorf("failed to apply balance adjustment: %w", err)
		}
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       bet.AccountID,
		OwnerID:         ownerID,
		OldBalance:      account.Balance,
		NewBalance:      account.Balance.Add(delta.Balance),
		TransactionType: models.TransactionTypeBet,
		ChangeAmount:    delta.Balance,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.balances.Invalidate(ctx, ownerID, account.AccountKey)

	return nil
}

// GetStreaks scans settled bets in settlement order and derives the
// current streak plus the longest run per outcome in one pass.
func (s *betService) GetStreaks(ctx context.Context, ownerID, accountID int64) (streaks *models.BetStreaks, err error) {
	defer func() { metrics.RecordOperation("bet.streaks", err) }()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil || account.OwnerID != ownerID {
		return nil, models.ErrAccountNotFound
	}

	bets, err := uow.BetRepository().ListSettledByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settled bets: %w", err)
	}

	return computeStreaks(bets), nil
}

// GetStats returns aggregated betting statistics for an account
func (s *betService) GetStats(ctx context.Context, ownerID, accountID int64) (stats *models.BetStats, err error) {
	defer func() { metrics.RecordOperation("bet.stats", err) }()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil || account.OwnerID != ownerID {
		return nil, models.ErrAccountNotFound
	}

	stats, err = uow.BetRepository().GetStats(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet stats: %w", err)
	}

	return stats, nil
}

// computeStreaks derives current and longest streaks from settled bets
// ordered oldest first.
func computeStreaks(bets []*models.Bet) *models.BetStreaks {
	streaks := &models.BetStreaks{}

	var run int
	var outcome models.BetStatus

	for _, bet := range bets {
		if bet.Status == outcome {
			run++
		} else {
			outcome = bet.Status
			run = 1
		}

		switch outcome {
		case models.BetStatusWon:
			if run > streaks.LongestWin {
				streaks.LongestWin = run
			}
		case models.BetStatusLost:
			if run > streaks.LongestLoss {
				streaks.LongestLoss = run
			}
		}
	}

	streaks.Current = run
	streaks.CurrentOutcome = outcome
	return streaks
}
