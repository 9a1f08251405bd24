package service

import "errors"

var (
	// ErrInvalidDate indicates a date that does not parse as YYYY-MM-DD.
	// It aborts the operation before any write.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrInvalidType indicates a transaction type other than deposit or
	// withdrawal.
	ErrInvalidType = errors.New("invalid transaction type")

	// ErrInvalidAmount indicates a non-positive monetary amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrNotFound indicates the referenced record does not exist for the
	// owner.
	ErrNotFound = errors.New("record not found")

	// ErrNoTarget indicates a forecast was requested with no target value
	// and no stored goal.
	ErrNoTarget = errors.New("no goal target set")
)
