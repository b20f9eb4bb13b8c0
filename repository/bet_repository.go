package repository

import (
	"context"
	"fmt"
	"time"

	"bankroll/database"
	"bankroll/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

const betColumns = `id, account_id, amount, display_amount, is_bonus_bet, status, winnings, description, created_at, settled_at`

func scanBet(row pgx.Row) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.ID,
		&bet.AccountID,
		&bet.Amount,
		&bet.DisplayAmount,
		&bet.IsBonusBet,
		&bet.Status,
		&bet.Winnings,
		&bet.Description,
		&bet.CreatedAt,
		&bet.SettledAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// Create inserts a new bet
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (account_id, amount, display_amount, is_bonus_bet, status, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, winnings, created_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.AccountID,
		bet.Amount,
		bet.DisplayAmount,
		bet.IsBonusBet,
		bet.Status,
		bet.Description,
	).Scan(&bet.ID, &bet.Winnings, &bet.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bet for account %d: %w", bet.AccountID, err)
	}

	return nil
}

// GetByIDForOwner retrieves a bet only when its account belongs to the
// given owner. Foreign rows look identical to missing ones.
func (r *BetRepository) GetByIDForOwner(ctx context.Context, id, ownerID int64) (*models.Bet, error) {
	query := `
		SELECT b.id, b.account_id, b.amount, b.display_amount, b.is_bonus_bet, b.status, b.winnings, b.description, b.created_at, b.settled_at
		FROM bets b
		JOIN accounts a ON a.id = b.account_id
		WHERE b.id = $1 AND a.owner_id = $2
	`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}
	return bet, nil
}

// Settle persists the terminal status, winnings and settlement time.
// The guard on the current status keeps concurrent settlements from
// both succeeding.
func (r *BetRepository) Settle(ctx context.Context, id int64, status models.BetStatus, winnings decimal.Decimal, settledAt time.Time) error {
	query := `
		UPDATE bets
		SET status = $1, winnings = $2, settled_at = $3
		WHERE id = $4 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, status, winnings, settledAt, id)
	if err != nil {
		return fmt.Errorf("failed to settle bet %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: bet %d", models.ErrAlreadySettled, id)
	}

	return nil
}

// Delete removes a bet row
func (r *BetRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM bets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bet %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %d not found", id)
	}

	return nil
}

// ListByAccount returns all bets for an account, oldest first
func (r *BetRepository) ListByAccount(ctx context.Context, accountID int64) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE account_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, accountID)
}

// ListSettledByAccount returns settled bets in settlement order
func (r *BetRepository) ListSettledByAccount(ctx context.Context, accountID int64) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE account_id = $1 AND status != 'pending'
		ORDER BY settled_at, id
	`
	return r.list(ctx, query, accountID)
}

func (r *BetRepository) list(ctx context.Context, query string, accountID int64) ([]*models.Bet, error) {
	rows, err := r.q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}

// GetStats aggregates betting statistics for an account in one query.
// TotalRisked counts real money only; display amounts of bonus and
// companion bets do not contribute.
func (r *BetRepository) GetStats(ctx context.Context, accountID int64) (*models.BetStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'won'),
			COUNT(*) FILTER (WHERE status = 'lost'),
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(winnings) FILTER (WHERE status = 'won'), 0),
			COALESCE(MAX(winnings) FILTER (WHERE status = 'won'), 0),
			COALESCE(MAX(amount) FILTER (WHERE status = 'lost'), 0)
		FROM bets
		WHERE account_id = $1
	`

	var stats models.BetStats
	err := r.q.QueryRow(ctx, query, accountID).Scan(
		&stats.TotalBets,
		&stats.TotalPending,
		&stats.TotalWins,
		&stats.TotalLosses,
		&stats.TotalRisked,
		&stats.TotalWon,
		&stats.BiggestWin,
		&stats.BiggestLoss,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get bet stats for account %d: %w", accountID, err)
	}

	return &stats, nil
}
