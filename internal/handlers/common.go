// internal/handlers/common.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rentloop/rentloop-backend/internal/models"
	"github.com/rentloop/rentloop-backend/internal/services"
	"github.com/rentloop/rentloop-backend/internal/utils"
)

// buildAuthContext assembles the caller identity from the JWT claims the auth
// middleware left in the gin context. Returns false (and writes the response)
// when the claims are missing or malformed.
func buildAuthContext(c *gin.Context) (services.AuthContext, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return services.AuthContext{}, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "Invalid user ID")
		return services.AuthContext{}, false
	}

	role, _ := utils.GetRoleFromContext(c)
	if role == string(models.UserRoleSuperAdmin) {
		return services.SuperAdminContext(userID), true
	}

	companyIDStr, exists := utils.GetCompanyIDFromContext(c)
	if !exists {
		utils.ForbiddenResponse(c, "Account is not attached to a company")
		return services.AuthContext{}, false
	}
	companyID, err := uuid.Parse(companyIDStr)
	if err != nil {
		utils.ForbiddenResponse(c, "Account is not attached to a company")
		return services.AuthContext{}, false
	}

	return services.CompanyMemberContext(userID, companyID, models.UserRole(role)), true
}

// parseIDParam reads a uuid path parameter, writing the error response itself.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError translates service sentinel errors into HTTP statuses.
// Unrecognized errors become a 400 rather than a 500: nearly everything the
// services return at that point is caller-induced.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrLeaseNotFound),
		errors.Is(err, services.ErrUnitNotFound),
		errors.Is(err, services.ErrTenantNotFound),
		errors.Is(err, services.ErrCompanyNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrUnitAlreadyLeased),
		errors.Is(err, services.ErrLeaseAlreadyActive):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrInsufficientPermissions):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrLeaseNotDraft),
		errors.Is(err, services.ErrLeaseNotActive),
		errors.Is(err, services.ErrUnitUnavailable):
		utils.UnprocessableResponse(c, err.Error())
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
