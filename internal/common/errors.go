package common

import "errors"

var (
	// ErrNotFound indicates a referenced item or warehouse is missing.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock indicates the requested quantity exceeds on-hand stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrValidation indicates a request failed field-level constraints.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
