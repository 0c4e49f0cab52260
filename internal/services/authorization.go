// internal/services/authorization.go
package services

import (
	"github.com/google/uuid"

	"github.com/rentloop/rentloop-backend/internal/models"
)

// AuthContext is the caller identity every lease operation receives. It is
// either a super admin, or a member of exactly one company with a role there.
// Keeping it an explicit value (rather than a bool threaded through
// conditionals) keeps the permission checks exhaustive and testable apart
// from the state machine.
type AuthContext struct {
	UserID     uuid.UUID
	SuperAdmin bool

	// CompanyID and Role are only meaningful when SuperAdmin is false.
	CompanyID uuid.UUID
	Role      models.UserRole
}

// SuperAdminContext returns an AuthContext that bypasses all role checks.
func SuperAdminContext(userID uuid.UUID) AuthContext {
	return AuthContext{UserID: userID, SuperAdmin: true}
}

// CompanyMemberContext returns an AuthContext scoped to one company.
func CompanyMemberContext(userID, companyID uuid.UUID, role models.UserRole) AuthContext {
	return AuthContext{UserID: userID, CompanyID: companyID, Role: role}
}

// InCompany reports whether the caller may act on resources of the given
// company at all.
func (a AuthContext) InCompany(companyID uuid.UUID) bool {
	return a.SuperAdmin || a.CompanyID == companyID
}

// CanManageLeases covers activate, terminate, renew, transfer and delete.
func (a AuthContext) CanManageLeases() bool {
	if a.SuperAdmin {
		return true
	}
	return a.Role == models.UserRoleCompanyAdmin || a.Role == models.UserRoleManager
}

// CanCreateLeases additionally allows landlords to draft leases.
func (a AuthContext) CanCreateLeases() bool {
	return a.CanManageLeases() || a.Role == models.UserRoleLandlord
}

// authorizeLeaseOp is the shared permission gate for lease mutations. The
// create flag widens the role set to include landlords.
func authorizeLeaseOp(actx AuthContext, companyID uuid.UUID, create bool) error {
	if !actx.InCompany(companyID) {
		return ErrInsufficientPermissions
	}
	if create {
		if !actx.CanCreateLeases() {
			return ErrInsufficientPermissions
		}
		return nil
	}
	if !actx.CanManageLeases() {
		return ErrInsufficientPermissions
	}
	return nil
}
