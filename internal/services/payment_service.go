// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/rentloop/rentloop-backend/internal/config"
	"github.com/rentloop/rentloop-backend/internal/models"
	"github.com/rentloop/rentloop-backend/internal/utils"
)

// PaymentService records rent received against leases and creates Stripe
// intents for card collection. It never computes balances or proration; the
// amount recorded is the amount received.
type PaymentService struct {
	db  *gorm.DB
	cfg *config.Config
}

type RecordPaymentRequest struct {
	LeaseID       uuid.UUID            `json:"lease_id" validate:"required"`
	Amount        float64              `json:"amount" validate:"required,gt=0"`
	Method        models.PaymentMethod `json:"method" validate:"required"`
	PeriodStart   time.Time            `json:"period_start" validate:"required"`
	PeriodEnd     time.Time            `json:"period_end" validate:"required"`
	ReferenceNote string               `json:"reference_note,omitempty"`
}

type CreateRentIntentRequest struct {
	LeaseID  uuid.UUID `json:"lease_id" validate:"required"`
	Currency string    `json:"currency,omitempty"`
}

type RentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config) *PaymentService {
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:  db,
		cfg: cfg,
	}
}

// RecordPayment stores a received rent payment for an active lease.
func (s *PaymentService) RecordPayment(actx AuthContext, req *RecordPaymentRequest) (*models.RentPayment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var lease models.Lease
	if err := s.db.First(&lease, "id = ?", req.LeaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !actx.InCompany(lease.CompanyID) || !actx.CanManageLeases() {
		return nil, ErrInsufficientPermissions
	}
	if lease.Status != models.LeaseStatusActive {
		return nil, ErrLeaseNotActive
	}

	now := time.Now()
	actorID := actx.UserID
	payment := &models.RentPayment{
		LeaseID:       lease.ID,
		CompanyID:     lease.CompanyID,
		TenantID:      lease.TenantID,
		Amount:        req.Amount,
		Currency:      "usd",
		Method:        req.Method,
		Status:        models.PaymentStatusPaid,
		PeriodStart:   req.PeriodStart,
		PeriodEnd:     req.PeriodEnd,
		PaidAt:        &now,
		ReferenceNote: req.ReferenceNote,
		RecordedBy:    &actorID,
	}
	if err := s.db.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	return payment, nil
}

// CreateRentIntent opens a Stripe PaymentIntent for one month of rent on an
// active lease. The pending payment row is reconciled by webhook outside
// this core.
func (s *PaymentService) CreateRentIntent(actx AuthContext, req *CreateRentIntentRequest) (*RentIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var lease models.Lease
	if err := s.db.First(&lease, "id = ?", req.LeaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !actx.InCompany(lease.CompanyID) {
		return nil, ErrInsufficientPermissions
	}
	if lease.Status != models.LeaseStatusActive {
		return nil, ErrLeaseNotActive
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	// Stripe works in cents.
	amountInCents := int64(lease.MonthlyRent * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("lease_id", lease.ID.String())
	params.AddMetadata("company_id", lease.CompanyID.String())
	params.AddMetadata("tenant_id", lease.TenantID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	payment := &models.RentPayment{
		LeaseID:      lease.ID,
		CompanyID:    lease.CompanyID,
		TenantID:     lease.TenantID,
		Amount:       lease.MonthlyRent,
		Currency:     currency,
		Method:       models.PaymentMethodCard,
		Status:       models.PaymentStatusPending,
		StripeIntent: pi.ID,
	}
	if err := s.db.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create pending payment: %w", err)
	}

	return &RentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// ListLeasePayments returns payments recorded against one lease.
func (s *PaymentService) ListLeasePayments(actx AuthContext, leaseID uuid.UUID, params utils.PaginationParams) ([]models.RentPayment, int64, error) {
	var lease models.Lease
	if err := s.db.First(&lease, "id = ?", leaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrLeaseNotFound
		}
		return nil, 0, fmt.Errorf("database error: %w", err)
	}
	if !actx.InCompany(lease.CompanyID) {
		return nil, 0, ErrInsufficientPermissions
	}

	query := s.db.Model(&models.RentPayment{}).Where("lease_id = ?", leaseID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	allowedSortFields := []string{"created_at", "paid_at", "amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var payments []models.RentPayment
	if err := query.Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}
	return payments, total, nil
}
