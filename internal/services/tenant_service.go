// internal/services/tenant_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentloop/rentloop-backend/internal/models"
	"github.com/rentloop/rentloop-backend/internal/utils"
)

type TenantService struct {
	db *gorm.DB
}

type TenantSearchParams struct {
	utils.PaginationParams
	Status *models.TenantStatus `json:"status,omitempty"`
}

func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{db: db}
}

func (s *TenantService) GetTenant(actx AuthContext, tenantID uuid.UUID) (*models.TenantProfile, error) {
	var profile models.TenantProfile
	if err := s.db.Preload("User").Preload("Leases").First(&profile, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !actx.InCompany(profile.CompanyID) {
		return nil, ErrInsufficientPermissions
	}
	return &profile, nil
}

func (s *TenantService) SearchTenants(actx AuthContext, params TenantSearchParams) ([]models.TenantProfile, int64, error) {
	query := s.db.Model(&models.TenantProfile{}).Preload("User")

	if !actx.SuperAdmin {
		query = query.Where("company_id = ?", actx.CompanyID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Search != "" {
		term := "%" + params.Search + "%"
		query = query.Where(
			"user_id IN (SELECT id FROM users WHERE username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?)",
			term, term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tenants: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var tenants []models.TenantProfile
	if err := query.Find(&tenants).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tenants: %w", err)
	}
	return tenants, total, nil
}

// GetTenantLeases lists a tenant's leases newest first, the renewal chain
// view the dashboard shows.
func (s *TenantService) GetTenantLeases(actx AuthContext, tenantID uuid.UUID) ([]models.Lease, error) {
	profile, err := s.GetTenant(actx, tenantID)
	if err != nil {
		return nil, err
	}

	var leases []models.Lease
	if err := s.db.Preload("Unit").
		Where("tenant_id = ?", profile.ID).
		Order("created_at DESC").
		Find(&leases).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch tenant leases: %w", err)
	}
	return leases, nil
}
