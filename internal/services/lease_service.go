// internal/services/lease_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rentloop/rentloop-backend/internal/models"
	"github.com/rentloop/rentloop-backend/internal/utils"
)

// LeaseService orchestrates the lease lifecycle: every operation runs inside
// one transaction and follows the same skeleton. Lock the lease row,
// authorize, apply the state machine, write the lease, mirror the unit,
// recompute the tenant. Either all three aggregates change or none do.
type LeaseService struct {
	db            *gorm.DB
	machine       *LeaseStateMachine
	unitGate      *UnitAvailabilityGate
	tenantStatus  *TenantStatusResolver
	notifications *NotificationService
}

type CreateLeaseRequest struct {
	UnitID          uuid.UUID  `json:"unit_id" validate:"required"`
	TenantID        uuid.UUID  `json:"tenant_id" validate:"required"`
	LandlordUserID  *uuid.UUID `json:"landlord_user_id,omitempty"`
	StartDate       time.Time  `json:"start_date" validate:"required"`
	EndDate         time.Time  `json:"end_date" validate:"required"`
	MoveInDate      *time.Time `json:"move_in_date,omitempty"`
	MonthlyRent     float64    `json:"monthly_rent" validate:"required,gt=0"`
	SecurityDeposit float64    `json:"security_deposit" validate:"gte=0"`
	PetDeposit      float64    `json:"pet_deposit" validate:"gte=0"`
	Notes           string     `json:"notes,omitempty"`
}

type UpdateDraftLeaseRequest struct {
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	MoveInDate      *time.Time `json:"move_in_date,omitempty"`
	MonthlyRent     *float64   `json:"monthly_rent,omitempty" validate:"omitempty,gt=0"`
	SecurityDeposit *float64   `json:"security_deposit,omitempty" validate:"omitempty,gte=0"`
	PetDeposit      *float64   `json:"pet_deposit,omitempty" validate:"omitempty,gte=0"`
	Notes           *string    `json:"notes,omitempty"`
}

type TerminateLeaseRequest struct {
	Reason     string     `json:"reason" validate:"required"`
	Notes      string     `json:"notes,omitempty"`
	ActualDate *time.Time `json:"actual_date,omitempty"`
}

type RenewLeaseRequest struct {
	StartDate       time.Time `json:"start_date" validate:"required"`
	EndDate         time.Time `json:"end_date" validate:"required"`
	MonthlyRent     *float64  `json:"monthly_rent,omitempty" validate:"omitempty,gt=0"`
	SecurityDeposit *float64  `json:"security_deposit,omitempty" validate:"omitempty,gte=0"`
	PetDeposit      *float64  `json:"pet_deposit,omitempty" validate:"omitempty,gte=0"`
}

type TransferLeaseRequest struct {
	NewTenantID *uuid.UUID `json:"new_tenant_id,omitempty"`
	NewUnitID   *uuid.UUID `json:"new_unit_id,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

type LeaseSearchParams struct {
	utils.PaginationParams
	CompanyID *uuid.UUID          `json:"company_id,omitempty"`
	UnitID    *uuid.UUID          `json:"unit_id,omitempty"`
	TenantID  *uuid.UUID          `json:"tenant_id,omitempty"`
	Status    *models.LeaseStatus `json:"status,omitempty"`
}

func NewLeaseService(db *gorm.DB, notificationService *NotificationService) *LeaseService {
	return &LeaseService{
		db:            db,
		machine:       NewLeaseStateMachine(),
		unitGate:      NewUnitAvailabilityGate(),
		tenantStatus:  NewTenantStatusResolver(),
		notifications: notificationService,
	}
}

// CreateLease drafts a lease. The company scope is taken from the unit; the
// tenant profile must belong to the same company.
func (s *LeaseService) CreateLease(actx AuthContext, req *CreateLeaseRequest) (*models.Lease, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, ErrInvalidLeaseDates
	}

	var lease *models.Lease
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var unit models.Unit
		if err := tx.First(&unit, "id = ?", req.UnitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnitNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := authorizeLeaseOp(actx, unit.CompanyID, true); err != nil {
			return err
		}

		var tenant models.TenantProfile
		if err := tx.First(&tenant, "id = ?", req.TenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTenantNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		if tenant.CompanyID != unit.CompanyID {
			return ErrTenantNotFound
		}

		number, err := s.generateLeaseNumber(tx, unit.CompanyID)
		if err != nil {
			return err
		}

		lease = &models.Lease{
			LeaseNumber:     number,
			CompanyID:       unit.CompanyID,
			UnitID:          unit.ID,
			TenantID:        tenant.ID,
			LandlordUserID:  req.LandlordUserID,
			Status:          models.LeaseStatusDraft,
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			MoveInDate:      req.MoveInDate,
			MonthlyRent:     req.MonthlyRent,
			SecurityDeposit: req.SecurityDeposit,
			PetDeposit:      req.PetDeposit,
			Notes:           req.Notes,
		}
		if err := tx.Create(lease).Error; err != nil {
			return fmt.Errorf("failed to create lease: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetLease(actx, lease.ID)
}

// UpdateDraftLease edits dates and terms while the lease is still a draft.
func (s *LeaseService) UpdateDraftLease(actx AuthContext, leaseID uuid.UUID, req *UpdateDraftLeaseRequest) (*models.Lease, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		lease, err := s.lockLease(tx, leaseID)
		if err != nil {
			return err
		}
		if err := authorizeLeaseOp(actx, lease.CompanyID, false); err != nil {
			return err
		}
		if lease.Status != models.LeaseStatusDraft {
			return ErrLeaseNotDraft
		}

		if req.StartDate != nil {
			lease.StartDate = *req.StartDate
		}
		if req.EndDate != nil {
			lease.EndDate = *req.EndDate
		}
		if !lease.EndDate.After(lease.StartDate) {
			return ErrInvalidLeaseDates
		}
		if req.MoveInDate != nil {
			lease.MoveInDate = req.MoveInDate
		}
		if req.MonthlyRent != nil {
			lease.MonthlyRent = *req.MonthlyRent
		}
		if req.SecurityDeposit != nil {
			lease.SecurityDeposit = *req.SecurityDeposit
		}
		if req.PetDeposit != nil {
			lease.PetDeposit = *req.PetDeposit
		}
		if req.Notes != nil {
			lease.Notes = *req.Notes
		}

		if err := tx.Save(lease).Error; err != nil {
			return fmt.Errorf("failed to update lease: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetLease(actx, leaseID)
}

// ActivateLease moves a draft lease to active, marks the unit occupied and
// resolves the tenant to active. The unit row is locked for the whole
// read-check-write sequence so two concurrent activations on the same unit
// cannot both pass the gate.
func (s *LeaseService) ActivateLease(actx AuthContext, leaseID uuid.UUID) (*models.Lease, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		lease, err := s.lockLease(tx, leaseID)
		if err != nil {
			return err
		}
		if err := authorizeLeaseOp(actx, lease.CompanyID, false); err != nil {
			return err
		}
		next, err := s.machine.Apply(tx.Statement.Context, lease.Status, LeaseEventActivate)
		if err != nil {
			return err
		}

		unit, err := s.lockUnit(tx, lease.UnitID)
		if err != nil {
			return err
		}
		if err := s.unitGate.AssertActivatable(tx, unit, lease.ID); err != nil {
			return err
		}

		updates := map[string]interface{}{"status": next}
		if lease.MoveInDate == nil {
			now := time.Now()
			lease.MoveInDate = &now
			updates["move_in_date"] = &now
		}
		lease.Status = next
		if err := tx.Model(lease).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to activate lease: %w", err)
		}

		if err := s.unitGate.OnActivated(tx, unit); err != nil {
			return err
		}

		// Count after the status write so the resolver sees this lease.
		return s.tenantStatus.Recompute(tx, lease.TenantID)
	})
	if err != nil {
		return nil, err
	}

	lease, err := s.GetLease(actx, leaseID)
	if err != nil {
		return nil, err
	}

	if s.notifications != nil {
		go s.notifications.SendLeaseActivatedNotification(lease)
	}
	return lease, nil
}

// TerminateLease ends an active lease, frees the unit and recomputes the
// tenant, which drops to former when this was their only active lease.
func (s *LeaseService) TerminateLease(actx AuthContext, leaseID uuid.UUID, req *TerminateLeaseRequest) (*models.Lease, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		lease, err := s.lockLease(tx, leaseID)
		if err != nil {
			return err
		}
		if err := authorizeLeaseOp(actx, lease.CompanyID, false); err != nil {
			return err
		}
		return s.terminateTx(tx, lease, req.Reason, req.Notes, req.ActualDate, actx.UserID)
	})
	if err != nil {
		return nil, err
	}

	lease, err := s.GetLease(actx, leaseID)
	if err != nil {
		return nil, err
	}

	if s.notifications != nil {
		go s.notifications.SendLeaseTerminatedNotification(lease)
	}
	return lease, nil
}

// terminateTx is the terminate critical section, shared with transfer. The
// caller has already authorized against the lease's company.
func (s *LeaseService) terminateTx(tx *gorm.DB, lease *models.Lease, reason, notes string, actualDate *time.Time, actorID uuid.UUID) error {
	next, err := s.machine.Apply(tx.Statement.Context, lease.Status, LeaseEventTerminate)
	if err != nil {
		return err
	}

	unit, err := s.lockUnit(tx, lease.UnitID)
	if err != nil {
		return err
	}

	when := time.Now()
	if actualDate != nil {
		when = *actualDate
	}

	lease.Status = next
	updates := map[string]interface{}{
		"status":                  next,
		"termination_reason":      reason,
		"termination_notes":       notes,
		"terminated_by":           actorID,
		"actual_termination_date": when,
		"move_out_date":           when,
	}
	if err := tx.Model(lease).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to terminate lease: %w", err)
	}

	if err := s.unitGate.OnVacated(tx, unit); err != nil {
		return err
	}

	// Count after the status write: this lease no longer counts as active.
	return s.tenantStatus.Recompute(tx, lease.TenantID)
}

// RenewLease drafts a successor lease and marks the old one renewed. Renewal
// is paperwork, not an occupancy change: the new lease starts as a draft and
// the unit keeps whatever status the old lease's end left it with.
func (s *LeaseService) RenewLease(actx AuthContext, leaseID uuid.UUID, req *RenewLeaseRequest) (*models.Lease, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, ErrInvalidLeaseDates
	}

	var renewal *models.Lease
	err := s.db.Transaction(func(tx *gorm.DB) error {
		lease, err := s.lockLease(tx, leaseID)
		if err != nil {
			return err
		}
		if err := authorizeLeaseOp(actx, lease.CompanyID, false); err != nil {
			return err
		}
		next, err := s.machine.Apply(tx.Statement.Context, lease.Status, LeaseEventRenew)
		if err != nil {
			return err
		}

		number, err := s.generateLeaseNumber(tx, lease.CompanyID)
		if err != nil {
			return err
		}

		renewal = &models.Lease{
			LeaseNumber:        number,
			CompanyID:          lease.CompanyID,
			UnitID:             lease.UnitID,
			TenantID:           lease.TenantID,
			LandlordUserID:     lease.LandlordUserID,
			Status:             models.LeaseStatusDraft,
			StartDate:          req.StartDate,
			EndDate:            req.EndDate,
			MonthlyRent:        lease.MonthlyRent,
			SecurityDeposit:    lease.SecurityDeposit,
			PetDeposit:         lease.PetDeposit,
			RenewedFromLeaseID: &lease.ID,
		}
		if req.MonthlyRent != nil {
			renewal.MonthlyRent = *req.MonthlyRent
		}
		if req.SecurityDeposit != nil {
			renewal.SecurityDeposit = *req.SecurityDeposit
		}
		if req.PetDeposit != nil {
			renewal.PetDeposit = *req.PetDeposit
		}
		if err := tx.Create(renewal).Error; err != nil {
			return fmt.Errorf("failed to create renewal lease: %w", err)
		}

		lease.Status = next
		lease.RenewedToLeaseID = &renewal.ID
		if err := tx.Model(lease).Updates(map[string]interface{}{
			"status":              next,
			"renewed_to_lease_id": renewal.ID,
		}).Error; err != nil {
			return fmt.Errorf("failed to mark lease renewed: %w", err)
		}

		// Renewing an active lease ends its occupancy claim on paper; keep
		// the tenant's derived status in step with the new active count.
		return s.tenantStatus.Recompute(tx, lease.TenantID)
	})
	if err != nil {
		return nil, err
	}

	newLease, err := s.GetLease(actx, renewal.ID)
	if err != nil {
		return nil, err
	}

	if s.notifications != nil {
		go s.notifications.SendLeaseRenewedNotification(newLease)
	}
	return newLease, nil
}

// TransferLease moves an occupancy to a new tenant, a new unit, or both, by
// terminating the old lease and drafting a successor with the old terms in a
// single transaction. The target unit is checked before the terminate
// sub-step runs, so a conflict leaves everything untouched.
func (s *LeaseService) TransferLease(actx AuthContext, leaseID uuid.UUID, req *TransferLeaseRequest) (*models.Lease, error) {
	if req.NewTenantID == nil && req.NewUnitID == nil {
		return nil, ErrTransferTargetRequired
	}

	var successor *models.Lease
	err := s.db.Transaction(func(tx *gorm.DB) error {
		lease, err := s.lockLease(tx, leaseID)
		if err != nil {
			return err
		}
		if err := authorizeLeaseOp(actx, lease.CompanyID, false); err != nil {
			return err
		}
		if lease.Status != models.LeaseStatusActive {
			return ErrLeaseNotActive
		}

		targetUnitID := lease.UnitID
		targetTenantID := lease.TenantID

		if req.NewUnitID != nil {
			unit, err := s.lockUnit(tx, *req.NewUnitID)
			if err != nil {
				return err
			}
			if unit.CompanyID != lease.CompanyID {
				return ErrUnitNotFound
			}
			if err := s.unitGate.AssertLeasable(tx, unit.ID, lease.ID); err != nil {
				return err
			}
			targetUnitID = unit.ID
		}

		if req.NewTenantID != nil {
			var tenant models.TenantProfile
			if err := tx.First(&tenant, "id = ?", *req.NewTenantID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTenantNotFound
				}
				return fmt.Errorf("database error: %w", err)
			}
			if tenant.CompanyID != lease.CompanyID {
				return ErrTenantNotFound
			}
			targetTenantID = tenant.ID
		}

		if err := s.terminateTx(tx, lease, "transferred", req.Notes, nil, actx.UserID); err != nil {
			return err
		}

		number, err := s.generateLeaseNumber(tx, lease.CompanyID)
		if err != nil {
			return err
		}

		successor = &models.Lease{
			LeaseNumber:     number,
			CompanyID:       lease.CompanyID,
			UnitID:          targetUnitID,
			TenantID:        targetTenantID,
			LandlordUserID:  lease.LandlordUserID,
			Status:          models.LeaseStatusDraft,
			StartDate:       lease.StartDate,
			EndDate:         lease.EndDate,
			MonthlyRent:     lease.MonthlyRent,
			SecurityDeposit: lease.SecurityDeposit,
			PetDeposit:      lease.PetDeposit,
			Notes:           req.Notes,
		}
		if err := tx.Create(successor).Error; err != nil {
			return fmt.Errorf("failed to create transfer lease: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetLease(actx, successor.ID)
}

// DeleteLease removes a draft. Leases past draft are never deleted; they end
// through terminate, expire or renew.
func (s *LeaseService) DeleteLease(actx AuthContext, leaseID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		lease, err := s.lockLease(tx, leaseID)
		if err != nil {
			return err
		}
		if err := authorizeLeaseOp(actx, lease.CompanyID, false); err != nil {
			return err
		}
		if !s.machine.CanDelete(lease.Status) {
			return ErrLeaseNotDraft
		}
		if err := tx.Delete(lease).Error; err != nil {
			return fmt.Errorf("failed to delete lease: %w", err)
		}
		return nil
	})
}

// CheckAndExpireLeases expires every active lease whose end date has passed.
// Each lease is its own transaction: a crash mid-sweep leaves processed
// leases expired and the rest untouched, and re-running is a no-op for
// leases already expired. Returns the number of leases expired.
func (s *LeaseService) CheckAndExpireLeases(ctx context.Context) (int, error) {
	today := time.Now().Truncate(24 * time.Hour)

	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Lease{}).
		Where("status = ? AND end_date < ?", models.LeaseStatusActive, today).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to list expiring leases: %w", err)
	}

	expired := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		didExpire, err := s.expireLease(id)
		if err != nil {
			// One lease's failure must not poison the rest of the sweep.
			logrus.WithError(err).WithField("lease_id", id).Error("Failed to expire lease")
			continue
		}
		if didExpire {
			expired++
		}
	}
	return expired, nil
}

// expireLease runs the three-way expiry mutation for one lease. The status is
// re-checked inside the transaction; a lease already expired by a concurrent
// sweep or terminated by a user is skipped without error.
func (s *LeaseService) expireLease(leaseID uuid.UUID) (bool, error) {
	var didExpire bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		lease, err := s.lockLease(tx, leaseID)
		if err != nil {
			return err
		}
		if lease.Status != models.LeaseStatusActive {
			return nil
		}
		next, err := s.machine.Apply(tx.Statement.Context, lease.Status, LeaseEventExpire)
		if err != nil {
			return err
		}

		unit, err := s.lockUnit(tx, lease.UnitID)
		if err != nil {
			return err
		}

		lease.Status = next
		if err := tx.Model(lease).Update("status", next).Error; err != nil {
			return fmt.Errorf("failed to expire lease: %w", err)
		}

		if err := s.unitGate.OnVacated(tx, unit); err != nil {
			return err
		}
		if err := s.tenantStatus.Recompute(tx, lease.TenantID); err != nil {
			return err
		}
		didExpire = true
		return nil
	})
	return didExpire, err
}

// GetLease returns the lease with its unit and tenant loaded.
func (s *LeaseService) GetLease(actx AuthContext, leaseID uuid.UUID) (*models.Lease, error) {
	var lease models.Lease
	if err := s.db.Preload("Unit").Preload("Tenant").Preload("Tenant.User").
		First(&lease, "id = ?", leaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !actx.InCompany(lease.CompanyID) {
		return nil, ErrInsufficientPermissions
	}
	return &lease, nil
}

// GetRenewalChain walks the renewal links from the earliest predecessor to
// the latest successor by repeated lookup.
func (s *LeaseService) GetRenewalChain(actx AuthContext, leaseID uuid.UUID) ([]models.Lease, error) {
	lease, err := s.GetLease(actx, leaseID)
	if err != nil {
		return nil, err
	}

	head := *lease
	for head.RenewedFromLeaseID != nil {
		var prev models.Lease
		if err := s.db.First(&prev, "id = ?", *head.RenewedFromLeaseID).Error; err != nil {
			return nil, fmt.Errorf("broken renewal chain: %w", err)
		}
		head = prev
	}

	chain := []models.Lease{head}
	current := head
	for current.RenewedToLeaseID != nil {
		var next models.Lease
		if err := s.db.First(&next, "id = ?", *current.RenewedToLeaseID).Error; err != nil {
			return nil, fmt.Errorf("broken renewal chain: %w", err)
		}
		chain = append(chain, next)
		current = next
	}
	return chain, nil
}

// SearchLeases lists leases visible to the caller with pagination.
func (s *LeaseService) SearchLeases(actx AuthContext, params LeaseSearchParams) ([]models.Lease, int64, error) {
	query := s.db.Model(&models.Lease{}).
		Preload("Unit").Preload("Tenant").Preload("Tenant.User")

	if !actx.SuperAdmin {
		query = query.Where("company_id = ?", actx.CompanyID)
	} else if params.CompanyID != nil {
		query = query.Where("company_id = ?", *params.CompanyID)
	}
	if params.UnitID != nil {
		query = query.Where("unit_id = ?", *params.UnitID)
	}
	if params.TenantID != nil {
		query = query.Where("tenant_id = ?", *params.TenantID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count leases: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "start_date", "end_date", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var leases []models.Lease
	if err := query.Find(&leases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch leases: %w", err)
	}
	return leases, total, nil
}

// Helpers

// lockLease reads the lease row under FOR UPDATE so the transition check and
// the status write are one critical section; a concurrent mutation blocks on
// the lock and then fails the state machine instead of overwriting a
// terminal status. Lock order is lease first, then unit, in every operation.
// sqlite (tests) has no row locks and serializes writers anyway.
func (s *LeaseService) lockLease(tx *gorm.DB, leaseID uuid.UUID) (*models.Lease, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var lease models.Lease
	if err := q.First(&lease, "id = ?", leaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &lease, nil
}

// lockUnit reads the unit row under FOR UPDATE so the availability check and
// the status write are one critical section. sqlite (tests) has no row locks
// and serializes writers anyway.
func (s *LeaseService) lockUnit(tx *gorm.DB, unitID uuid.UUID) (*models.Unit, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var unit models.Unit
	if err := q.First(&unit, "id = ?", unitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &unit, nil
}

// generateLeaseNumber builds the human-readable LEASE-{year}-{seq} label from
// a row count. Best-effort: concurrent creates can collide on the sequence,
// which is acceptable because nothing keys on the number.
func (s *LeaseService) generateLeaseNumber(tx *gorm.DB, companyID uuid.UUID) (string, error) {
	year := time.Now().Year()

	yearExpr := "EXTRACT(YEAR FROM created_at) = ?"
	yearArg := interface{}(year)
	if tx.Dialector.Name() == "sqlite" {
		yearExpr = "strftime('%Y', created_at) = ?"
		yearArg = fmt.Sprintf("%d", year)
	}

	var count int64
	if err := tx.Model(&models.Lease{}).
		Where("company_id = ?", companyID).
		Where(yearExpr, yearArg).
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to count leases for numbering: %w", err)
	}
	return fmt.Sprintf("LEASE-%d-%04d", year, count+1), nil
}
