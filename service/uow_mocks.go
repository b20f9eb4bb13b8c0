package service

import (
	"context"

	"bankroll/events"

	"github.com/stretchr/testify/mock"
)

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock

	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	betRepo         BetRepository
	eventPublisher  EventPublisher
}

// SetRepositories wires the repositories returned by the getters. The
// getters bypass expectation tracking so tests only assert the calls
// that matter.
func (m *MockUnitOfWork) SetRepositories(accounts AccountRepository, transactions TransactionRepository, bets BetRepository) {
	m.accountRepo = accounts
	m.transactionRepo = transactions
	m.betRepo = bets
}

// SetEventPublisher wires the publisher returned by EventBus
func (m *MockUnitOfWork) SetEventPublisher(publisher EventPublisher) {
	m.eventPublisher = publisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) BetRepository() BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventPublisher != nil {
		return m.eventPublisher
	}
	return nopPublisher{}
}

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) {}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (f *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := f.Called()
	return args.Get(0).(UnitOfWork)
}
