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

type transactionService struct {
	uowFactory UnitOfWorkFactory
	balances   *cache.BalanceCache
}

// NewTransactionService creates a new transaction service
func NewTransactionService(uowFactory UnitOfWorkFactory, balances *cache.BalanceCache) TransactionService {
	return &transactionService{
		uowFactory: uowFactory,
		balances:   balances,
	}
}

// Create validates and applies a new ledger entry. Entries of type bet
// also insert a companion bet row whose bonus flag is inferred from the
// description text; the companion risks no real money of its own, the
// wager's balance effect comes from the transaction entry.
func (s *transactionService) Create(ctx context.Context, ownerID, accountID int64, txType models.TransactionType, amount decimal.Decimal, description string, eventDate time.Time) (tx *models.Transaction, err error) {
	defer func() { metrics.RecordOperation("transaction.create", err) }()

	// Validate before opening a transaction
	if _, ok := models.ParseTransactionType(string(txType)); !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidType, txType)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", models.ErrInvalidAmount, amount)
	}
	if eventDate.IsZero() {
		eventDate = time.Now()
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Lock the account row for the duration of the transaction
	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil || account.OwnerID != ownerID {
		return nil, models.ErrAccountNotFound
	}

	if txType == models.TransactionTypeWithdrawal && amount.GreaterThan(account.Balance) {
		return nil, fmt.Errorf("%w: have %s, need %s", models.ErrInsufficientBalance, account.Balance, amount)
	}

	tx = &models.Transaction{
		AccountID:   accountID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		EventDate:   eventDate,
	}

	if err := uow.TransactionRepository().Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if txType == models.TransactionTypeBet {
		// Companion bet: display amount mirrors the entry, real risk is
		// zero so the recalculation oracle counts the wager once.
		companion := &models.Bet{
			AccountID:     accountID,
			Amount:        decimal.Zero,
			DisplayAmount: amount,
			IsBonusBet:    models.IsBonusDescription(description),
			Status:        models.BetStatusPending,
			Description:   description,
		}
		if err := uow.BetRepository().Create(ctx, companion); err != nil {
			return nil, fmt.Errorf("failed to create companion bet: %w", err)
		}
	}

	delta := tx.Delta()
	if err := uow.AccountRepository().ApplyDelta(ctx, accountID, delta); err != nil {
		return nil, fmt.Errorf("failed to apply balance delta: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       accountID,
		OwnerID:         ownerID,
		OldBalance:      account.Balance,
		NewBalance:      account.Balance.Add(delta.Balance),
		TransactionType: txType,
		ChangeAmount:    delta.Balance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.balances.Invalidate(ctx, ownerID, account.AccountKey)

	log.WithFields(log.Fields{
		"accountID":     accountID,
		"transactionID": tx.ID,
		"type":          txType,
		"amount":        amount,
	}).Info("Created ledger entry")

	return tx, nil
}

// Update rewrites an entry and adjusts the account by the difference
// between the old and new deltas, moving totals when the type crosses
// into or out of deposit/withdrawal.
func (s *transactionService) Update(ctx context.Context, ownerID, txID int64, params UpdateTransactionParams) (tx *models.Transaction, err error) {
	defer func() { metrics.RecordOperation("transaction.update", err) }()

	if params.Type != nil {
		if _, ok := models.ParseTransactionType(string(*params.Type)); !ok {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidType, *params.Type)
		}
	}
	if params.Amount != nil && !params.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", models.ErrInvalidAmount, params.Amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tx, err = uow.TransactionRepository().GetByIDForOwner(ctx, txID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx == nil {
		return nil, models.ErrNotFound
	}

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, tx.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, models.ErrAccountNotFound
	}

	oldDelta := tx.Delta()

	if params.Type != nil {
		tx.Type = *params.Type
	}
	if params.Amount != nil {
		tx.Amount = *params.Amount
	}
	if params.Description != nil {
		tx.Description = *params.Description
	}
	if params.EventDate != nil {
		tx.EventDate = *params.EventDate
	}

	newDelta := tx.Delta()
	adjustment := newDelta.Sub(oldDelta)

	if err := uow.TransactionRepository().Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	if err := uow.AccountRepository().ApplyDelta(ctx, tx.AccountID, adjustment); err != nil {
		return nil, fmt.Errorf("failed to apply balance adjustment: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       tx.AccountID,
		OwnerID:         ownerID,
		OldBalance:      account.Balance,
		NewBalance:      account.Balance.Add(adjustment.Balance),
		TransactionType: tx.Type,
		ChangeAmount:    adjustment.Balance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.balances.Invalidate(ctx, ownerID, account.AccountKey)

	return tx, nil
}

// Delete reverses the stored delta and removes the entry
func (s *transactionService) Delete(ctx context.Context, ownerID, txID int64) (err error) {
	defer func() { metrics.RecordOperation("transaction.delete", err) }()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tx, err := uow.TransactionRepository().GetByIDForOwner(ctx, txID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx == nil {
		return models.ErrNotFound
	}

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, tx.AccountID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return models.ErrAccountNotFound
	}

	reversal := tx.Delta().Neg()

	if err := uow.TransactionRepository().Delete(ctx, txID); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if err := uow.AccountRepository().ApplyDelta(ctx, tx.AccountID, reversal); err != nil {
		return fmt.Errorf("failed to reverse balance delta: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       tx.AccountID,
		OwnerID:         ownerID,
		OldBalance:      account.Balance,
		NewBalance:      account.Balance.Add(reversal.Balance),
		TransactionType: tx.Type,
		ChangeAmount:    reversal.Balance,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.balances.Invalidate(ctx, ownerID, account.AccountKey)

	log.WithFields(log.Fields{
		"accountID":     tx.AccountID,
		"transactionID": txID,
	}).Info("Deleted ledger entry")

	return nil
}
