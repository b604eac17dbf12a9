package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrChainMismatch = errors.New("chain id mismatch")
	ErrNoQuote       = errors.New("no valid quote")
)
