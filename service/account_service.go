package service

import (
	"context"
	"fmt"
	"strings"

	"bankroll/cache"
	"bankroll/metrics"
	"bankroll/models"

	"github.com/shopspring/decimal"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
	balances   *cache.BalanceCache
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, balances *cache.BalanceCache) AccountService {
	return &accountService{
		uowFactory: uowFactory,
		balances:   balances,
	}
}

// CreateAccount creates a new account for an owner. The key must be
// unique per owner; uniqueness is enforced by the database constraint.
func (s *accountService) CreateAccount(ctx context.Context, ownerID int64, accountKey, name string) (account *models.Account, err error) {
	defer func() { metrics.RecordOperation("account.create", err) }()

	accountKey = strings.TrimSpace(accountKey)
	if accountKey == "" {
		return nil, fmt.Errorf("%w: account key cannot be empty", models.ErrInvalidType)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account = &models.Account{
		OwnerID:    ownerID,
		AccountKey: accountKey,
		Name:       name,
	}

	if err := uow.AccountRepository().Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// GetAccount retrieves an owner's account by key
func (s *accountService) GetAccount(ctx context.Context, ownerID int64, accountKey string) (account *models.Account, err error) {
	defer func() { metrics.RecordOperation("account.get", err) }()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err = uow.AccountRepository().GetByKey(ctx, ownerID, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, models.ErrAccountNotFound
	}

	return account, nil
}

// ListAccounts returns all accounts for an owner
func (s *accountService) ListAccounts(ctx context.Context, ownerID int64) (accounts []*models.Account, err error) {
	defer func() { metrics.RecordOperation("account.list", err) }()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	accounts, err = uow.AccountRepository().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, nil
}

// GetBalance returns the cached balance for an account, serving from
// the balance cache when a fresh entry exists.
func (s *accountService) GetBalance(ctx context.Context, ownerID int64, accountKey string) (balance decimal.Decimal, err error) {
	defer func() { metrics.RecordOperation("account.balance", err) }()

	if cached, ok := s.balances.Get(ctx, ownerID, accountKey); ok {
		return cached, nil
	}

	account, err := s.GetAccount(ctx, ownerID, accountKey)
	if err != nil {
		return decimal.Zero, err
	}

	s.balances.Set(ctx, ownerID, accountKey, account.Balance)
	return account.Balance, nil
}
