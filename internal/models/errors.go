package models

import "errors"

// Sentinel errors shared across layers. Callers match with errors.Is.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrModelUnavailable    = errors.New("model unavailable")
)
