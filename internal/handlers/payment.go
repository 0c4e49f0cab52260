// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/rentloop/rentloop-backend/internal/services"
	"github.com/rentloop/rentloop-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /payments/record
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}

	var req services.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	payment, err := h.paymentService.RecordPayment(actx, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"payment": payment})
}

// POST /payments/intent
func (h *PaymentHandler) CreateRentIntent(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}

	var req services.CreateRentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	intent, err := h.paymentService.CreateRentIntent(actx, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"client_secret": intent.ClientSecret,
		"payment_id":    intent.PaymentID,
		"status":        intent.Status,
	})
}

// GET /leases/:id/payments
func (h *PaymentHandler) GetLeasePayments(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	payments, total, err := h.paymentService.ListLeasePayments(actx, leaseID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(payments, total, params))
}
