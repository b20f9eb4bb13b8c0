package service

import (
	"context"
	"fmt"
	"strings"

	"bankroll/cache"
	"bankroll/events"
	"bankroll/metrics"
	"bankroll/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type importService struct {
	uowFactory UnitOfWorkFactory
	balances   *cache.BalanceCache
}

// NewImportService creates a new bulk import service
func NewImportService(uowFactory UnitOfWorkFactory, balances *cache.BalanceCache) ImportService {
	return &importService{
		uowFactory: uowFactory,
		balances:   balances,
	}
}

// importLine is one parsed and validated input record
type importLine struct {
	account     *models.Account
	txType      models.TransactionType
	amount      decimal.Decimal
	description string
}

// Import applies a batch of textual records of the form
// "accountKey,type,amount[,description]". Each line is validated
// independently: a bad line becomes a warning and processing continues.
// All valid lines are applied inside a single database transaction, so
// a storage failure rolls back the entire batch.
func (s *importService) Import(ctx context.Context, ownerID int64, rawText string) (result *models.ImportResult, err error) {
	defer func() { metrics.RecordOperation("import", err) }()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result = &models.ImportResult{}

	// Accounts are resolved once per key and locked on first touch;
	// running balances track the effect of earlier lines in the batch.
	accounts := make(map[string]*models.Account)
	running := make(map[int64]decimal.Decimal)
	deltas := make(map[int64]models.Delta)

	var applied []importLine

	for i, raw := range strings.Split(rawText, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}
		result.TotalLines++

		parsed, warnMsg := s.parseLine(ctx, uow, ownerID, line, accounts)
		if warnMsg == "" {
			if _, ok := running[parsed.account.ID]; !ok {
				running[parsed.account.ID] = parsed.account.Balance
			}
		}
		if warnMsg == "" && parsed.txType == models.TransactionTypeWithdrawal {
			if parsed.amount.GreaterThan(running[parsed.account.ID]) {
				warnMsg = fmt.Sprintf("withdrawal of %s exceeds balance %s", parsed.amount, running[parsed.account.ID])
			}
		}
		if warnMsg != "" {
			result.Warnings = append(result.Warnings, models.ImportWarning{Line: lineNo, Message: warnMsg})
			metrics.RecordImportLine("skipped")
			continue
		}

		delta := models.DeltaFor(parsed.txType, parsed.amount, models.IsBonusDescription(parsed.description))
		running[parsed.account.ID] = running[parsed.account.ID].Add(delta.Balance)
		deltas[parsed.account.ID] = deltas[parsed.account.ID].Add(delta)
		applied = append(applied, parsed)
		metrics.RecordImportLine("applied")
	}

	// Storage failures from here on are fatal to the whole batch
	for _, line := range applied {
		tx := &models.Transaction{
			AccountID:   line.account.ID,
			Type:        line.txType,
			Amount:      line.amount,
			Description: line.description,
		}
		if err := uow.TransactionRepository().Create(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to insert imported transaction: %w", err)
		}

		if line.txType == models.TransactionTypeBet {
			companion := &models.Bet{
				AccountID:     line.account.ID,
				Amount:        decimal.Zero,
				DisplayAmount: line.amount,
				IsBonusBet:    models.IsBonusDescription(line.description),
				Status:        models.BetStatusPending,
				Description:   line.description,
			}
			if err := uow.BetRepository().Create(ctx, companion); err != nil {
				return nil, fmt.Errorf("failed to insert companion bet: %w", err)
			}
		}

		result.Processed++
	}

	for accountID, delta := range deltas {
		if delta.IsZero() {
			continue
		}
		if err := uow.AccountRepository().ApplyDelta(ctx, accountID, delta); err != nil {
			return nil, fmt.Errorf("failed to apply import deltas: %w", err)
		}
	}

	uow.EventBus().Publish(events.ImportCompletedEvent{
		OwnerID:    ownerID,
		Processed:  result.Processed,
		TotalLines: result.TotalLines,
		Skipped:    len(result.Warnings),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import batch: %w", err)
	}

	for _, account := range accounts {
		if account != nil {
			s.balances.Invalidate(ctx, ownerID, account.AccountKey)
		}
	}

	log.WithFields(log.Fields{
		"ownerID":    ownerID,
		"processed":  result.Processed,
		"totalLines": result.TotalLines,
		"skipped":    len(result.Warnings),
	}).Info("Completed bulk import")

	return result, nil
}

// parseLine splits and validates one record. It returns a warning
// message for input problems; lookup failures from storage surface as
// warnings only when the account genuinely does not exist.
func (s *importService) parseLine(ctx context.Context, uow UnitOfWork, ownerID int64, line string, accounts map[string]*models.Account) (importLine, string) {
	parts := strings.SplitN(line, ",", 4)
	if len(parts) < 3 {
		return importLine{}, "malformed record, want accountKey,type,amount[,description]"
	}

	key := strings.TrimSpace(parts[0])
	account, seen := accounts[key]
	if !seen {
		var err error
		account, err = uow.AccountRepository().GetByKeyForUpdate(ctx, ownerID, key)
		if err != nil {
			// Not an input problem; let the caller abort the batch
			account = nil
		}
		accounts[key] = account
	}
	if account == nil {
		return importLine{}, fmt.Sprintf("unknown account %q", key)
	}

	txType, ok := models.ParseTransactionType(parts[1])
	if !ok {
		return importLine{}, fmt.Sprintf("unknown transaction type %q", strings.TrimSpace(parts[1]))
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return importLine{}, fmt.Sprintf("invalid amount %q", strings.TrimSpace(parts[2]))
	}
	if !amount.IsPositive() {
		return importLine{}, fmt.Sprintf("amount must be positive, got %s", amount)
	}

	description := ""
	if len(parts) == 4 {
		description = strings.TrimSpace(parts[3])
	}

	return importLine{
		account:     account,
		txType:      txType,
		amount:      amount,
		description: description,
	}, ""
}
