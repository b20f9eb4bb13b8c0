package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"bankroll/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			select {
			case eventReceived <- balanceEvent:
			case <-time.After(1 * time.Second):
				t.Error("Timeout sending event to channel")
			}
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		AccountID:       42,
		OwnerID:         7,
		OldBalance:      decimal.NewFromInt(1000),
		NewBalance:      decimal.NewFromInt(1500),
		TransactionType: models.TransactionTypeDeposit,
		ChangeAmount:    decimal.NewFromInt(500),
	}

	// Publish to the transactional bus and flush, simulating a commit
	transactionalBus.Publish(testEvent)
	transactionalBus.Flush(context.Background())

	wg.Wait()

	select {
	case receivedEvent := <-eventReceived:
		assert.Equal(t, testEvent.AccountID, receivedEvent.AccountID)
		assert.Equal(t, testEvent.OwnerID, receivedEvent.OwnerID)
		assert.True(t, testEvent.OldBalance.Equal(receivedEvent.OldBalance))
		assert.True(t, testEvent.NewBalance.Equal(receivedEvent.NewBalance))
		assert.Equal(t, testEvent.TransactionType, receivedEvent.TransactionType)
		assert.True(t, testEvent.ChangeAmount.Equal(receivedEvent.ChangeAmount))
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan BalanceChangeEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			eventsReceived <- balanceEvent
		}
	})

	published := []BalanceChangeEvent{
		{AccountID: 1, OldBalance: decimal.NewFromInt(100), NewBalance: decimal.NewFromInt(200), TransactionType: models.TransactionTypeDeposit, ChangeAmount: decimal.NewFromInt(100)},
		{AccountID: 2, OldBalance: decimal.NewFromInt(200), NewBalance: decimal.NewFromInt(150), TransactionType: models.TransactionTypeWithdrawal, ChangeAmount: decimal.NewFromInt(-50)},
		{AccountID: 3, OldBalance: decimal.NewFromInt(300), NewBalance: decimal.NewFromInt(300), TransactionType: models.TransactionTypeBet, ChangeAmount: decimal.Zero},
	}

	for _, event := range published {
		transactionalBus.Publish(event)
	}

	transactionalBus.Flush(context.Background())
	wg.Wait()

	receivedEvents := make([]BalanceChangeEvent, 0, 3)
	for i := 0; i < 3; i++ {
		select {
		case event := <-eventsReceived:
			receivedEvents = append(receivedEvents, event)
		case <-time.After(2 * time.Second):
			t.Fatalf("Only received %d out of 3 events", len(receivedEvents))
		}
	}

	assert.Len(t, receivedEvents, 3)

	// Handlers run concurrently, so order may vary
	accountIDs := make(map[int64]bool)
	for _, received := range receivedEvents {
		accountIDs[received.AccountID] = true
	}

	assert.True(t, accountIDs[1])
	assert.True(t, accountIDs[2])
	assert.True(t, accountIDs[3])
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)

	mainBus.Subscribe(EventTypeBetSettled, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(BetSettledEvent{
		BetID:     9,
		AccountID: 42,
		Status:    models.BetStatusWon,
		Winnings:  decimal.NewFromInt(75),
	})

	// Discard instead of flush, simulating a rollback
	transactionalBus.Discard()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
		// Expected
	}
}
