// internal/services/errors.go
package services

import "errors"

// Business errors surfaced by the lease lifecycle engine and its neighbors.
// Handlers map these to HTTP status codes; services never wrap them in a way
// that breaks errors.Is.
var (
	ErrLeaseNotFound   = errors.New("lease not found")
	ErrUnitNotFound    = errors.New("unit not found")
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrCompanyNotFound = errors.New("company not found")

	ErrLeaseNotDraft      = errors.New("lease is not in draft status")
	ErrLeaseNotActive     = errors.New("lease is not active")
	ErrLeaseAlreadyActive = errors.New("lease is already active")

	ErrUnitAlreadyLeased = errors.New("unit already has an active lease")
	ErrUnitUnavailable   = errors.New("cannot activate a lease on an unavailable unit")

	ErrInvalidLeaseDates = errors.New("lease end date must be after start date")

	ErrInsufficientPermissions = errors.New("insufficient permissions")

	ErrTransferTargetRequired = errors.New("transfer requires a new tenant, a new unit, or both")
)
