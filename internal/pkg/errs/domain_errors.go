package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Inventory errors
	ErrInventoryConflict = errors.New("inventory conflict")
	ErrInventoryNotHeld  = errors.New("inventory not held by session")
	ErrHoldExpired       = errors.New("hold expired")
	ErrUnitNotFound      = errors.New("inventory unit not found")

	// Order errors
	ErrOrderNotFound          = errors.New("order not found")
	ErrTerminalStateViolation = errors.New("order is in a terminal state")

	// Event errors
	ErrEventNotFound        = errors.New("event not found")
	ErrEventAlreadyLive     = errors.New("event already published")
	ErrInsufficientCredits  = errors.New("insufficient publishing credits")
	ErrInvalidSectionLayout = errors.New("invalid section layout")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
