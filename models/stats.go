package models

import "github.com/shopspring/decimal"

// BetStats represents aggregated betting statistics for an account
type BetStats struct {
	TotalBets    int
	TotalPending int
	TotalWins    int
	TotalLosses  int
	TotalRisked  decimal.Decimal
	TotalWon     decimal.Decimal
	BiggestWin   decimal.Decimal
	BiggestLoss  decimal.Decimal
}

// WinRate returns the win percentage over settled bets (0-100)
func (s *BetStats) WinRate() float64 {
	settled := s.TotalWins + s.TotalLosses
	if settled == 0 {
		return 0
	}
	return float64(s.TotalWins) / float64(settled) * 100
}

// BetStreaks holds the derived streak view over an account's settled
// bets in settlement order.
type BetStreaks struct {
	Current        int
	CurrentOutcome BetStatus
	LongestWin     int
	LongestLoss    int
}

// ImportWarning records one skipped line of a bulk import
type ImportWarning struct {
	Line    int
	Message string
}

// ImportResult summarizes a bulk import: how many records were applied,
// how many lines were read, and why the rest were skipped.
type ImportResult struct {
	Processed  int
	TotalLines int
	Warnings   []ImportWarning
}

// RecalcResult reports a balance recalculation. Drift is the difference
// between the stored balance and the value recomputed from history
// (zero when the caches were already consistent).
type RecalcResult struct {
	Account *Account
	Drift   decimal.Decimal
	Changed bool
}
