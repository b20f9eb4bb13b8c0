package api

import (
	"time"

	"bankroll/models"

	"github.com/shopspring/decimal"
)

// ErrorResponse is the JSON body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type CreateAccountRequest struct {
	AccountKey string `json:"account_key"`
	Name       string `json:"name"`
}

type AccountDTO struct {
	ID               int64           `json:"id"`
	AccountKey       string          `json:"account_key"`
	Name             string          `json:"name"`
	Balance          decimal.Decimal `json:"balance"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	CreatedAt        string          `json:"created_at"`
}

func toAccountDTO(a *models.Account) AccountDTO {
	return AccountDTO{
		ID:               a.ID,
		AccountKey:       a.AccountKey,
		Name:             a.Name,
		Balance:          a.Balance,
		TotalDeposits:    a.TotalDeposits,
		TotalWithdrawals: a.TotalWithdrawals,
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
	}
}

type BalanceDTO struct {
	AccountKey string          `json:"account_key"`
	Balance    decimal.Decimal `json:"balance"`
}

type CreateTransactionRequest struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	EventDate   string          `json:"event_date,omitempty"`
}

type UpdateTransactionRequest struct {
	Type        *string          `json:"type,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	EventDate   *string          `json:"event_date,omitempty"`
}

type TransactionDTO struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	EventDate   string          `json:"event_date"`
	CreatedAt   string          `json:"created_at"`
}

func toTransactionDTO(t *models.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Description: t.Description,
		EventDate:   t.EventDate.Format("2006-01-02"),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

type CreateBetRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	DisplayAmount decimal.Decimal `json:"display_amount"`
	Description   string          `json:"description"`
	IsBonusBet    bool            `json:"is_bonus_bet"`
}

type SettleBetRequest struct {
	Status   string          `json:"status"`
	Winnings decimal.Decimal `json:"winnings"`
}

type BetDTO struct {
	ID            int64           `json:"id"`
	AccountID     int64           `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	DisplayAmount decimal.Decimal `json:"display_amount"`
	IsBonusBet    bool            `json:"is_bonus_bet"`
	Status        string          `json:"status"`
	Winnings      decimal.Decimal `json:"winnings"`
	Description   string          `json:"description"`
	CreatedAt     string          `json:"created_at"`
	SettledAt     *string         `json:"settled_at,omitempty"`
}

func toBetDTO(b *models.Bet) BetDTO {
	dto := BetDTO{
		ID:            b.ID,
		AccountID:     b.AccountID,
		Amount:        b.Amount,
		DisplayAmount: b.DisplayAmount,
		IsBonusBet:    b.IsBonusBet,
		Status:        string(b.Status),
		Winnings:      b.Winnings,
		Description:   b.Description,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
	if b.SettledAt != nil {
		settled := b.SettledAt.Format(time.RFC3339)
		dto.SettledAt = &settled
	}
	return dto
}

type StatsDTO struct {
	TotalBets    int             `json:"total_bets"`
	TotalPending int             `json:"total_pending"`
	TotalWins    int             `json:"total_wins"`
	TotalLosses  int             `json:"total_losses"`
	TotalRisked  decimal.Decimal `json:"total_risked"`
	TotalWon     decimal.Decimal `json:"total_won"`
	BiggestWin   decimal.Decimal `json:"biggest_win"`
	BiggestLoss  decimal.Decimal `json:"biggest_loss"`
	WinRate      float64         `json:"win_rate"`
}

func toStatsDTO(s *models.BetStats) StatsDTO {
	return StatsDTO{
		TotalBets:    s.TotalBets,
		TotalPending: s.TotalPending,
		TotalWins:    s.TotalWins,
		TotalLosses:  s.TotalLosses,
		TotalRisked:  s.TotalRisked,
		TotalWon:     s.TotalWon,
		BiggestWin:   s.BiggestWin,
		BiggestLoss:  s.BiggestLoss,
		WinRate:      s.WinRate(),
	}
}

type StreaksDTO struct {
	Current        int    `json:"current"`
	CurrentOutcome string `json:"current_outcome,omitempty"`
	LongestWin     int    `json:"longest_win"`
	LongestLoss    int    `json:"longest_loss"`
}

type ImportRequest struct {
	Records string `json:"records"`
}

type ImportWarningDTO struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type ImportResultDTO struct {
	Processed  int                `json:"processed"`
	TotalLines int                `json:"total_lines"`
	Warnings   []ImportWarningDTO `json:"warnings"`
}

func toImportResultDTO(r *models.ImportResult) ImportResultDTO {
	warnings := make([]ImportWarningDTO, len(r.Warnings))
	for i, w := range r.Warnings {
		warnings[i] = ImportWarningDTO{Line: w.Line, Message: w.Message}
	}
	return ImportResultDTO{
		Processed:  r.Processed,
		TotalLines: r.TotalLines,
		Warnings:   warnings,
	}
}

type RecalcResultDTO struct {
	Account AccountDTO      `json:"account"`
	Drift   decimal.Decimal `json:"drift"`
	Changed bool            `json:"changed"`
}
