package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyCart indicates no valid line items remained after pricing.
	ErrEmptyCart = errors.New("no valid items found for checkout")
	// ErrInsufficientBalance indicates the wallet cannot cover the amount due.
	ErrInsufficientBalance = errors.New("insufficient cashback balance")
	// ErrUnauthorized indicates the caller is not authenticated.
	ErrUnauthorized = errors.New("unauthorized")
)
