package services

import "github.com/kcoltin/SWSDITAB-sub001/internal/errors"

// Service errors
var (
	ErrBaseURLNotConfigured = errors.Precondition("base_url not configured")
	ErrEmptyName            = errors.InvalidInput("name must not be empty")
	ErrInvalidDemoSize      = errors.InvalidInput("demo sizes must be between 0 and 500")
)
