// internal/services/tenant_status.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentloop/rentloop-backend/internal/models"
)

// TenantStatusResolver keeps TenantProfile.Status consistent with the
// tenant's active-lease count within a company. The count must be computed
// inside the same transaction as the lease mutation that changed it, after
// that mutation's write, so the resolver never sees a stale count.
type TenantStatusResolver struct{}

func NewTenantStatusResolver() *TenantStatusResolver {
	return &TenantStatusResolver{}
}

// Resolve is the pure rule: any active lease makes the tenant active; losing
// the last one demotes an active tenant to former; a tenant who never
// activated stays as they are (pending, or former from an earlier demotion).
func (r *TenantStatusResolver) Resolve(current models.TenantStatus, activeLeaseCount int64) models.TenantStatus {
	if activeLeaseCount > 0 {
		return models.TenantStatusActive
	}
	if current == models.TenantStatusActive {
		return models.TenantStatusFormer
	}
	return current
}

// Apply persists the resolved status, writing only when it differs from the
// stored value to avoid update-timestamp churn.
func (r *TenantStatusResolver) Apply(tx *gorm.DB, profile *models.TenantProfile, activeLeaseCount int64) error {
	resolved := r.Resolve(profile.Status, activeLeaseCount)
	if resolved == profile.Status {
		return nil
	}
	profile.Status = resolved
	if err := tx.Model(profile).Update("status", resolved).Error; err != nil {
		return fmt.Errorf("failed to update tenant status: %w", err)
	}
	return nil
}

// Recompute loads the profile, counts its active leases within the ambient
// transaction and applies the resolved status.
func (r *TenantStatusResolver) Recompute(tx *gorm.DB, tenantID uuid.UUID) error {
	var profile models.TenantProfile
	if err := tx.First(&profile, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTenantNotFound
		}
		return fmt.Errorf("failed to load tenant profile: %w", err)
	}

	var activeCount int64
	if err := tx.Model(&models.Lease{}).
		Where("tenant_id = ? AND company_id = ? AND status = ?",
			profile.ID, profile.CompanyID, models.LeaseStatusActive).
		Count(&activeCount).Error; err != nil {
		return fmt.Errorf("failed to count active leases for tenant: %w", err)
	}

	return r.Apply(tx, &profile, activeCount)
}
