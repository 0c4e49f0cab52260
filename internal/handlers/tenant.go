// internal/handlers/tenant.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/rentloop/rentloop-backend/internal/models"
	"github.com/rentloop/rentloop-backend/internal/services"
	"github.com/rentloop/rentloop-backend/internal/utils"
)

type TenantHandler struct {
	tenantService *services.TenantService
}

func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
	}
}

// GET /tenants/:id
func (h *TenantHandler) GetTenant(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	tenantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tenant, err := h.tenantService.GetTenant(actx, tenantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"tenant": tenant})
}

// GET /tenants
func (h *TenantHandler) GetTenants(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}

	params := services.TenantSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if v := c.Query("status"); v != "" {
		status := models.TenantStatus(v)
		params.Status = &status
	}

	tenants, total, err := h.tenantService.SearchTenants(actx, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(tenants, total, params.PaginationParams))
}

// GET /tenants/:id/leases
func (h *TenantHandler) GetTenantLeases(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	tenantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	leases, err := h.tenantService.GetTenantLeases(actx, tenantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"leases": leases})
}
