package service

import (
	"context"
	"fmt"

	"bankroll/cache"
	"bankroll/events"
	"bankroll/metrics"
	"bankroll/models"

	log "github.com/sirupsen/logrus"
)

type recalcService struct {
	uowFactory UnitOfWorkFactory
	balances   *cache.BalanceCache
}

// NewRecalcService creates a new balance recalculation service
func NewRecalcService(uowFactory UnitOfWorkFactory, balances *cache.BalanceCache) RecalcService {
	return &recalcService{
		uowFactory: uowFactory,
		balances:   balances,
	}
}

// Recalculate re-derives balance and totals from the account's full
// history with the same delta rules the incremental paths use, and
// overwrites the stored fields atomically. Repeated calls with no new
// events change nothing; this is the correctness oracle for every
// incremental operation.
func (s *recalcService) Recalculate(ctx context.Context, ownerID int64, accountKey string) (result *models.RecalcResult, err error) {
	defer func() { metrics.RecordOperation("recalculate", err) }()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByKeyForUpdate(ctx, ownerID, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, models.ErrAccountNotFound
	}

	transactions, err := uow.TransactionRepository().ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	bets, err := uow.BetRepository().ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}

	var total models.Delta
	for _, tx := range transactions {
		total = total.Add(tx.Delta())
	}
	for _, bet := range bets {
		total = total.Add(bet.CreationDelta()).Add(bet.SettlementDelta())
	}

	drift := account.Balance.Sub(total.Balance)
	changed := !drift.IsZero() ||
		!account.TotalDeposits.Equal(total.Deposits) ||
		!account.TotalWithdrawals.Equal(total.Withdrawals)

	if changed {
		metrics.RecordDrift()
		log.WithFields(log.Fields{
			"accountID":  account.ID,
			"storedBal":  account.Balance,
			"derivedBal": total.Balance,
			"drift":      drift,
		}).Warn("Recalculation found stale cached balance")

		if err := uow.AccountRepository().SetTotals(ctx, account.ID, total.Balance, total.Deposits, total.Withdrawals); err != nil {
			return nil, fmt.Errorf("failed to overwrite account totals: %w", err)
		}
	}

	account.Balance = total.Balance
	account.TotalDeposits = total.Deposits
	account.TotalWithdrawals = total.Withdrawals

	uow.EventBus().Publish(events.AccountRecalculatedEvent{
		AccountID: account.ID,
		Drift:     drift,
		Changed:   changed,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recalculation: %w", err)
	}

	s.balances.Invalidate(ctx, ownerID, accountKey)

	return &models.RecalcResult{
		Account: account,
		Drift:   drift,
		Changed: changed,
	}, nil
}
