// internal/services/unit_availability.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentloop/rentloop-backend/internal/models"
)

// UnitAvailabilityGate enforces "at most one active lease per unit" and flips
// unit status in lockstep with lease activation, termination and expiry. All
// methods expect to run inside the caller's transaction, with the unit row
// already locked where the dialect supports it.
type UnitAvailabilityGate struct{}

func NewUnitAvailabilityGate() *UnitAvailabilityGate {
	return &UnitAvailabilityGate{}
}

// AssertLeasable fails when any lease other than excludeLeaseID is active on
// the unit. This is the half of the occupancy invariant that transfer needs
// for its target unit (a draft successor doesn't require the unit to be
// available yet, only unclaimed).
func (g *UnitAvailabilityGate) AssertLeasable(tx *gorm.DB, unitID, excludeLeaseID uuid.UUID) error {
	var activeCount int64
	if err := tx.Model(&models.Lease{}).
		Where("unit_id = ? AND status = ? AND id != ?", unitID, models.LeaseStatusActive, excludeLeaseID).
		Count(&activeCount).Error; err != nil {
		return fmt.Errorf("failed to count active leases for unit: %w", err)
	}
	if activeCount > 0 {
		return ErrUnitAlreadyLeased
	}
	return nil
}

// AssertActivatable fails when another lease is active on the unit or the
// unit itself is not available.
func (g *UnitAvailabilityGate) AssertActivatable(tx *gorm.DB, unit *models.Unit, leaseID uuid.UUID) error {
	if err := g.AssertLeasable(tx, unit.ID, leaseID); err != nil {
		return err
	}
	if unit.Status != models.UnitStatusAvailable {
		return ErrUnitUnavailable
	}
	return nil
}

// OnActivated marks the unit occupied.
func (g *UnitAvailabilityGate) OnActivated(tx *gorm.DB, unit *models.Unit) error {
	unit.Status = models.UnitStatusOccupied
	if err := tx.Model(unit).Update("status", models.UnitStatusOccupied).Error; err != nil {
		return fmt.Errorf("failed to mark unit occupied: %w", err)
	}
	return nil
}

// OnVacated marks the unit available. Idempotent: calling it on an already
// available unit is a no-op, so transfer's terminate+create composition does
// not depend on call ordering.
func (g *UnitAvailabilityGate) OnVacated(tx *gorm.DB, unit *models.Unit) error {
	if unit.Status == models.UnitStatusAvailable {
		return nil
	}
	unit.Status = models.UnitStatusAvailable
	if err := tx.Model(unit).Update("status", models.UnitStatusAvailable).Error; err != nil {
		return fmt.Errorf("failed to mark unit available: %w", err)
	}
	return nil
}
