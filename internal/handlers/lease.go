// internal/handlers/lease.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rentloop/rentloop-backend/internal/models"
	"github.com/rentloop/rentloop-backend/internal/services"
	"github.com/rentloop/rentloop-backend/internal/utils"
)

type LeaseHandler struct {
	leaseService   *services.LeaseService
	storageService *services.StorageService
}

func NewLeaseHandler(leaseService *services.LeaseService, storageService *services.StorageService) *LeaseHandler {
	return &LeaseHandler{
		leaseService:   leaseService,
		storageService: storageService,
	}
}

// POST /leases
func (h *LeaseHandler) CreateLease(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}

	var req services.CreateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	lease, err := h.leaseService.CreateLease(actx, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"lease": lease})
}

// GET /leases/:id
func (h *LeaseHandler) GetLease(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lease, err := h.leaseService.GetLease(actx, leaseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"lease": lease})
}

// GET /leases
func (h *LeaseHandler) GetLeases(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}

	params := services.LeaseSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if v := c.Query("status"); v != "" {
		status := models.LeaseStatus(v)
		params.Status = &status
	}
	if v := c.Query("unit_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			params.UnitID = &id
		}
	}
	if v := c.Query("tenant_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			params.TenantID = &id
		}
	}
	if v := c.Query("company_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			params.CompanyID = &id
		}
	}

	leases, total, err := h.leaseService.SearchLeases(actx, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(leases, total, params.PaginationParams))
}

// PUT /leases/:id
func (h *LeaseHandler) UpdateLease(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateDraftLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	lease, err := h.leaseService.UpdateDraftLease(actx, leaseID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"lease": lease})
}

// PUT /leases/:id/activate
func (h *LeaseHandler) ActivateLease(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lease, err := h.leaseService.ActivateLease(actx, leaseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"lease": lease})
}

// PUT /leases/:id/terminate
func (h *LeaseHandler) TerminateLease(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.TerminateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	lease, err := h.leaseService.TerminateLease(actx, leaseID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"lease": lease})
}

// POST /leases/:id/renew
func (h *LeaseHandler) RenewLease(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.RenewLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	renewal, err := h.leaseService.RenewLease(actx, leaseID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"lease": renewal})
}

// POST /leases/:id/transfer
func (h *LeaseHandler) TransferLease(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.TransferLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	successor, err := h.leaseService.TransferLease(actx, leaseID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"lease": successor})
}

// DELETE /leases/:id
func (h *LeaseHandler) DeleteLease(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.leaseService.DeleteLease(actx, leaseID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// GET /leases/:id/chain
func (h *LeaseHandler) GetRenewalChain(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	chain, err := h.leaseService.GetRenewalChain(actx, leaseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"chain": chain})
}

// POST /leases/upload-document
func (h *LeaseHandler) UploadDocument(c *gin.Context) {
	if _, ok := buildAuthContext(c); !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "No file provided", nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadFile(file, header, services.LeaseDocumentOptions())
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"document": result})
}

// POST /admin/leases/expire
// Runs the expiry sweep on demand, outside the scheduler cadence.
func (h *LeaseHandler) RunExpirySweep(c *gin.Context) {
	expired, err := h.leaseService.CheckAndExpireLeases(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, "Expiry sweep failed")
		return
	}

	utils.SuccessResponse(c, gin.H{"expired": expired})
}
