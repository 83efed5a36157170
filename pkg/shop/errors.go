package shop

import "errors"

// Sentinel errors returned by the shop services. Callers compare them with
// errors.Is; returned errors may wrap them with more context.
var (
	ErrInvalidIndex      = errors.New("invalid id")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInvalidRole       = errors.New("invalid role")
	ErrAuthFailure       = errors.New("invalid username or password")
)

// IsUserError reports whether err is one of the sentinels above, as
// opposed to a storage failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidIndex) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrAuthFailure)
}
