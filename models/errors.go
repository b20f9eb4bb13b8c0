package models

import "errors"

// Engine error kinds. Services return these (possibly wrapped) so callers
// can classify failures with errors.Is; anything else is a persistence
// failure that already triggered a rollback.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrNotFound            = errors.New("not found")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidWinnings     = errors.New("winnings must be positive for a won bet")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadySettled      = errors.New("bet is already settled")
)
