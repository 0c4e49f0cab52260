// internal/services/lease_service_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rentloop/rentloop-backend/internal/models"
	"github.com/rentloop/rentloop-backend/internal/utils"
)

type LeaseLifecycleSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *LeaseService

	company  models.Company
	manager  models.User
	property models.Property
	unitA    models.Unit
	unitB    models.Unit
	tenant1  models.TenantProfile
	tenant2  models.TenantProfile

	actx AuthContext
}

func (s *LeaseLifecycleSuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Property{},
		&models.Unit{},
		&models.TenantProfile{},
		&models.Lease{},
		&models.RentPayment{},
		&models.AuditLog{},
	))
	s.db = db
	s.svc = NewLeaseService(db, nil)

	s.company = models.Company{Name: "Acme Property Management"}
	s.Require().NoError(db.Create(&s.company).Error)

	s.manager = models.User{
		Username: "manager",
		Email:    "manager@acme.test",
		Role:     models.UserRoleManager,
		Status:   models.UserStatusActive,
	}
	s.Require().NoError(s.manager.SetPassword("Secret123!"))
	companyID := s.company.ID
	s.manager.CompanyID = &companyID
	s.Require().NoError(db.Create(&s.manager).Error)

	s.property = models.Property{
		CompanyID: s.company.ID,
		Name:      "Maple Court",
		Address:   "12 Maple St",
	}
	s.Require().NoError(db.Create(&s.property).Error)

	s.unitA = models.Unit{
		PropertyID: s.property.ID,
		CompanyID:  s.company.ID,
		UnitNumber: "101",
		Status:     models.UnitStatusAvailable,
	}
	s.Require().NoError(db.Create(&s.unitA).Error)

	s.unitB = models.Unit{
		PropertyID: s.property.ID,
		CompanyID:  s.company.ID,
		UnitNumber: "102",
		Status:     models.UnitStatusAvailable,
	}
	s.Require().NoError(db.Create(&s.unitB).Error)

	s.tenant1 = s.createTenant("alice")
	s.tenant2 = s.createTenant("bob")

	s.actx = CompanyMemberContext(s.manager.ID, s.company.ID, models.UserRoleManager)
}

func (s *LeaseLifecycleSuite) createTenant(name string) models.TenantProfile {
	user := models.User{
		Username: name,
		Email:    name + "@tenant.test",
		Role:     models.UserRoleTenant,
		Status:   models.UserStatusActive,
	}
	s.Require().NoError(user.SetPassword("Secret123!"))
	companyID := s.company.ID
	user.CompanyID = &companyID
	s.Require().NoError(s.db.Create(&user).Error)

	profile := models.TenantProfile{
		UserID:    user.ID,
		CompanyID: s.company.ID,
		Status:    models.TenantStatusPending,
	}
	s.Require().NoError(s.db.Create(&profile).Error)
	return profile
}

func (s *LeaseLifecycleSuite) draftLease(unit models.Unit, tenant models.TenantProfile) *models.Lease {
	lease, err := s.svc.CreateLease(s.actx, &CreateLeaseRequest{
		UnitID:      unit.ID,
		TenantID:    tenant.ID,
		StartDate:   time.Now(),
		EndDate:     time.Now().AddDate(1, 0, 0),
		MonthlyRent: 1500,
	})
	s.Require().NoError(err)
	s.Require().Equal(models.LeaseStatusDraft, lease.Status)
	return lease
}

func (s *LeaseLifecycleSuite) reloadUnit(id uuid.UUID) models.Unit {
	var unit models.Unit
	s.Require().NoError(s.db.First(&unit, "id = ?", id).Error)
	return unit
}

func (s *LeaseLifecycleSuite) reloadTenant(id uuid.UUID) models.TenantProfile {
	var profile models.TenantProfile
	s.Require().NoError(s.db.First(&profile, "id = ?", id).Error)
	return profile
}

func (s *LeaseLifecycleSuite) reloadLease(id uuid.UUID) models.Lease {
	var lease models.Lease
	s.Require().NoError(s.db.First(&lease, "id = ?", id).Error)
	return lease
}

func (s *LeaseLifecycleSuite) TestCreateAssignsLeaseNumber() {
	lease := s.draftLease(s.unitA, s.tenant1)
	s.Regexp(`^LEASE-\d{4}-\d{4}$`, lease.LeaseNumber)
	s.Equal(s.company.ID, lease.CompanyID)
}

func (s *LeaseLifecycleSuite) TestCreateRejectsInvalidDates() {
	_, err := s.svc.CreateLease(s.actx, &CreateLeaseRequest{
		UnitID:      s.unitA.ID,
		TenantID:    s.tenant1.ID,
		StartDate:   time.Now(),
		EndDate:     time.Now().AddDate(0, 0, -1),
		MonthlyRent: 1500,
	})
	s.ErrorIs(err, ErrInvalidLeaseDates)
}

func (s *LeaseLifecycleSuite) TestCreateRejectsForeignTenant() {
	other := models.Company{Name: "Other Co"}
	s.Require().NoError(s.db.Create(&other).Error)
	stranger := models.User{Username: "carol", Email: "carol@other.test", Role: models.UserRoleTenant}
	s.Require().NoError(stranger.SetPassword("Secret123!"))
	otherID := other.ID
	stranger.CompanyID = &otherID
	s.Require().NoError(s.db.Create(&stranger).Error)
	profile := models.TenantProfile{UserID: stranger.ID, CompanyID: other.ID, Status: models.TenantStatusPending}
	s.Require().NoError(s.db.Create(&profile).Error)

	_, err := s.svc.CreateLease(s.actx, &CreateLeaseRequest{
		UnitID:      s.unitA.ID,
		TenantID:    profile.ID,
		StartDate:   time.Now(),
		EndDate:     time.Now().AddDate(1, 0, 0),
		MonthlyRent: 1500,
	})
	s.ErrorIs(err, ErrTenantNotFound)
}

func (s *LeaseLifecycleSuite) TestActivateScenario() {
	lease := s.draftLease(s.unitA, s.tenant1)

	activated, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	s.Equal(models.LeaseStatusActive, activated.Status)
	s.NotNil(activated.MoveInDate)
	s.Equal(models.UnitStatusOccupied, s.reloadUnit(s.unitA.ID).Status)
	s.Equal(models.TenantStatusActive, s.reloadTenant(s.tenant1.ID).Status)
}

func (s *LeaseLifecycleSuite) TestActivatePreservesMoveInDate() {
	moveIn := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	lease, err := s.svc.CreateLease(s.actx, &CreateLeaseRequest{
		UnitID:      s.unitA.ID,
		TenantID:    s.tenant1.ID,
		StartDate:   time.Now(),
		EndDate:     time.Now().AddDate(1, 0, 0),
		MoveInDate:  &moveIn,
		MonthlyRent: 1500,
	})
	s.Require().NoError(err)

	activated, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)
	s.Require().NotNil(activated.MoveInDate)
	s.True(activated.MoveInDate.Equal(moveIn), "first non-null move-in date wins")
}

func (s *LeaseLifecycleSuite) TestActivateConflictLeavesEverythingUntouched() {
	first := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, first.ID)
	s.Require().NoError(err)

	second := s.draftLease(s.unitA, s.tenant2)
	_, err = s.svc.ActivateLease(s.actx, second.ID)
	s.ErrorIs(err, ErrUnitAlreadyLeased)

	s.Equal(models.LeaseStatusDraft, s.reloadLease(second.ID).Status)
	s.Equal(models.UnitStatusOccupied, s.reloadUnit(s.unitA.ID).Status)
	s.Equal(models.TenantStatusPending, s.reloadTenant(s.tenant2.ID).Status)
}

func (s *LeaseLifecycleSuite) TestActivateTwiceFails() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	_, err = s.svc.ActivateLease(s.actx, lease.ID)
	s.ErrorIs(err, ErrLeaseAlreadyActive)
}

func (s *LeaseLifecycleSuite) TestActivateOnMaintenanceUnitFails() {
	s.Require().NoError(s.db.Model(&s.unitA).Update("status", models.UnitStatusMaintenance).Error)

	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.ErrorIs(err, ErrUnitUnavailable)
}

func (s *LeaseLifecycleSuite) TestTerminateRoundTrip() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	terminated, err := s.svc.TerminateLease(s.actx, lease.ID, &TerminateLeaseRequest{
		Reason: "tenant request",
		Notes:  "moving out of state",
	})
	s.Require().NoError(err)

	s.Equal(models.LeaseStatusTerminated, terminated.Status)
	s.Equal("tenant request", terminated.TerminationReason)
	s.Require().NotNil(terminated.TerminatedBy)
	s.Equal(s.manager.ID, *terminated.TerminatedBy)
	s.NotNil(terminated.ActualTerminationDate)
	s.NotNil(terminated.MoveOutDate)

	s.Equal(models.UnitStatusAvailable, s.reloadUnit(s.unitA.ID).Status)
	s.Equal(models.TenantStatusFormer, s.reloadTenant(s.tenant1.ID).Status)

	// The freed unit accepts a fresh lease.
	next := s.draftLease(s.unitA, s.tenant2)
	_, err = s.svc.ActivateLease(s.actx, next.ID)
	s.Require().NoError(err)
	s.Equal(models.UnitStatusOccupied, s.reloadUnit(s.unitA.ID).Status)
}

func (s *LeaseLifecycleSuite) TestDoubleTerminateFailsWithoutMutation() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	_, err = s.svc.TerminateLease(s.actx, lease.ID, &TerminateLeaseRequest{Reason: "first"})
	s.Require().NoError(err)

	// Re-lease the unit so a bad second terminate would visibly corrupt state.
	next := s.draftLease(s.unitA, s.tenant2)
	_, err = s.svc.ActivateLease(s.actx, next.ID)
	s.Require().NoError(err)

	_, err = s.svc.TerminateLease(s.actx, lease.ID, &TerminateLeaseRequest{Reason: "second"})
	s.ErrorIs(err, ErrLeaseNotActive)

	s.Equal("first", s.reloadLease(lease.ID).TerminationReason)
	s.Equal(models.UnitStatusOccupied, s.reloadUnit(s.unitA.ID).Status)
	s.Equal(models.TenantStatusActive, s.reloadTenant(s.tenant2.ID).Status)
}

func (s *LeaseLifecycleSuite) TestTerminateKeepsTenantWithOtherActiveLease() {
	leaseA := s.draftLease(s.unitA, s.tenant1)
	leaseB := s.draftLease(s.unitB, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, leaseA.ID)
	s.Require().NoError(err)
	_, err = s.svc.ActivateLease(s.actx, leaseB.ID)
	s.Require().NoError(err)

	_, err = s.svc.TerminateLease(s.actx, leaseA.ID, &TerminateLeaseRequest{Reason: "downsizing"})
	s.Require().NoError(err)

	s.Equal(models.TenantStatusActive, s.reloadTenant(s.tenant1.ID).Status)
	s.Equal(models.UnitStatusAvailable, s.reloadUnit(s.unitA.ID).Status)
	s.Equal(models.UnitStatusOccupied, s.reloadUnit(s.unitB.ID).Status)
}

func (s *LeaseLifecycleSuite) TestRenewDraftsSuccessor() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	newRent := 1650.0
	renewal, err := s.svc.RenewLease(s.actx, lease.ID, &RenewLeaseRequest{
		StartDate:   time.Now().AddDate(1, 0, 0),
		EndDate:     time.Now().AddDate(2, 0, 0),
		MonthlyRent: &newRent,
	})
	s.Require().NoError(err)

	s.Equal(models.LeaseStatusDraft, renewal.Status, "renewal never auto-activates")
	s.Equal(newRent, renewal.MonthlyRent)
	s.Require().NotNil(renewal.RenewedFromLeaseID)
	s.Equal(lease.ID, *renewal.RenewedFromLeaseID)

	old := s.reloadLease(lease.ID)
	s.Equal(models.LeaseStatusRenewed, old.Status)
	s.Require().NotNil(old.RenewedToLeaseID)
	s.Equal(renewal.ID, *old.RenewedToLeaseID)
}

func (s *LeaseLifecycleSuite) TestRenewCopiesTermsForward() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	renewal, err := s.svc.RenewLease(s.actx, lease.ID, &RenewLeaseRequest{
		StartDate: time.Now().AddDate(1, 0, 0),
		EndDate:   time.Now().AddDate(2, 0, 0),
	})
	s.Require().NoError(err)
	s.Equal(lease.MonthlyRent, renewal.MonthlyRent)
	s.Equal(lease.UnitID, renewal.UnitID)
	s.Equal(lease.TenantID, renewal.TenantID)
}

func (s *LeaseLifecycleSuite) TestRenewRequiresLiveLease() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.RenewLease(s.actx, lease.ID, &RenewLeaseRequest{
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(1, 0, 0),
	})
	s.ErrorIs(err, ErrLeaseNotActive)
}

func (s *LeaseLifecycleSuite) TestRenewalChainWalk() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	renewal, err := s.svc.RenewLease(s.actx, lease.ID, &RenewLeaseRequest{
		StartDate: time.Now().AddDate(1, 0, 0),
		EndDate:   time.Now().AddDate(2, 0, 0),
	})
	s.Require().NoError(err)

	chain, err := s.svc.GetRenewalChain(s.actx, renewal.ID)
	s.Require().NoError(err)
	s.Require().Len(chain, 2)
	s.Equal(lease.ID, chain[0].ID)
	s.Equal(renewal.ID, chain[1].ID)

	// Same chain from either end.
	fromHead, err := s.svc.GetRenewalChain(s.actx, lease.ID)
	s.Require().NoError(err)
	s.Require().Len(fromHead, 2)
	s.Equal(chain[0].ID, fromHead[0].ID)
}

func (s *LeaseLifecycleSuite) TestTransferToNewUnit() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	unitBID := s.unitB.ID
	successor, err := s.svc.TransferLease(s.actx, lease.ID, &TransferLeaseRequest{
		NewUnitID: &unitBID,
	})
	s.Require().NoError(err)

	s.Equal(models.LeaseStatusDraft, successor.Status)
	s.Equal(s.unitB.ID, successor.UnitID)
	s.Equal(s.tenant1.ID, successor.TenantID)
	s.Equal(lease.MonthlyRent, successor.MonthlyRent)
	s.Nil(successor.RenewedFromLeaseID, "transfer successors are not renewal links")

	old := s.reloadLease(lease.ID)
	s.Equal(models.LeaseStatusTerminated, old.Status)
	s.Equal("transferred", old.TerminationReason)
	s.Equal(models.UnitStatusAvailable, s.reloadUnit(s.unitA.ID).Status)
}

func (s *LeaseLifecycleSuite) TestTransferTargetConflictRollsBack() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	blocker := s.draftLease(s.unitB, s.tenant2)
	_, err = s.svc.ActivateLease(s.actx, blocker.ID)
	s.Require().NoError(err)

	unitBID := s.unitB.ID
	_, err = s.svc.TransferLease(s.actx, lease.ID, &TransferLeaseRequest{
		NewUnitID: &unitBID,
	})
	s.ErrorIs(err, ErrUnitAlreadyLeased)

	s.Equal(models.LeaseStatusActive, s.reloadLease(lease.ID).Status)
	s.Equal(models.UnitStatusOccupied, s.reloadUnit(s.unitA.ID).Status)
	s.Equal(models.TenantStatusActive, s.reloadTenant(s.tenant1.ID).Status)
}

func (s *LeaseLifecycleSuite) TestTransferRequiresTarget() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.TransferLease(s.actx, lease.ID, &TransferLeaseRequest{})
	s.ErrorIs(err, ErrTransferTargetRequired)
}

func (s *LeaseLifecycleSuite) TestTransferToNewTenant() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	tenant2ID := s.tenant2.ID
	successor, err := s.svc.TransferLease(s.actx, lease.ID, &TransferLeaseRequest{
		NewTenantID: &tenant2ID,
	})
	s.Require().NoError(err)

	s.Equal(s.tenant2.ID, successor.TenantID)
	s.Equal(s.unitA.ID, successor.UnitID)
	s.Equal(models.TenantStatusFormer, s.reloadTenant(s.tenant1.ID).Status)
}

func (s *LeaseLifecycleSuite) TestDeleteDraftOnly() {
	draft := s.draftLease(s.unitA, s.tenant1)
	s.Require().NoError(s.svc.DeleteLease(s.actx, draft.ID))

	_, err := s.svc.GetLease(s.actx, draft.ID)
	s.ErrorIs(err, ErrLeaseNotFound)

	active := s.draftLease(s.unitA, s.tenant1)
	_, err = s.svc.ActivateLease(s.actx, active.ID)
	s.Require().NoError(err)
	s.ErrorIs(s.svc.DeleteLease(s.actx, active.ID), ErrLeaseNotDraft)
}

func (s *LeaseLifecycleSuite) TestExpirySweepIsIdempotent() {
	lease, err := s.svc.CreateLease(s.actx, &CreateLeaseRequest{
		UnitID:      s.unitA.ID,
		TenantID:    s.tenant1.ID,
		StartDate:   time.Now().AddDate(-1, 0, 0),
		EndDate:     time.Now().AddDate(0, 0, -2),
		MonthlyRent: 1500,
	})
	s.Require().NoError(err)
	_, err = s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	expired, err := s.svc.CheckAndExpireLeases(context.Background())
	s.Require().NoError(err)
	s.Equal(1, expired)

	s.Equal(models.LeaseStatusExpired, s.reloadLease(lease.ID).Status)
	s.Equal(models.UnitStatusAvailable, s.reloadUnit(s.unitA.ID).Status)
	s.Equal(models.TenantStatusFormer, s.reloadTenant(s.tenant1.ID).Status)

	// Second run finds nothing to do.
	expired, err = s.svc.CheckAndExpireLeases(context.Background())
	s.Require().NoError(err)
	s.Equal(0, expired)
}

func (s *LeaseLifecycleSuite) TestExpirySweepSkipsCurrentLeases() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	expired, err := s.svc.CheckAndExpireLeases(context.Background())
	s.Require().NoError(err)
	s.Equal(0, expired)
	s.Equal(models.LeaseStatusActive, s.reloadLease(lease.ID).Status)
}

func (s *LeaseLifecycleSuite) TestExpiredLeaseCanBeRenewed() {
	lease, err := s.svc.CreateLease(s.actx, &CreateLeaseRequest{
		UnitID:      s.unitA.ID,
		TenantID:    s.tenant1.ID,
		StartDate:   time.Now().AddDate(-1, 0, 0),
		EndDate:     time.Now().AddDate(0, 0, -2),
		MonthlyRent: 1500,
	})
	s.Require().NoError(err)
	_, err = s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	_, err = s.svc.CheckAndExpireLeases(context.Background())
	s.Require().NoError(err)

	renewal, err := s.svc.RenewLease(s.actx, lease.ID, &RenewLeaseRequest{
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(1, 0, 0),
	})
	s.Require().NoError(err)
	s.Equal(models.LeaseStatusDraft, renewal.Status)
	s.Equal(models.LeaseStatusRenewed, s.reloadLease(lease.ID).Status)
}

func (s *LeaseLifecycleSuite) TestLandlordCanCreateButNotActivate() {
	landlord := CompanyMemberContext(uuid.New(), s.company.ID, models.UserRoleLandlord)

	lease, err := s.svc.CreateLease(landlord, &CreateLeaseRequest{
		UnitID:      s.unitA.ID,
		TenantID:    s.tenant1.ID,
		StartDate:   time.Now(),
		EndDate:     time.Now().AddDate(1, 0, 0),
		MonthlyRent: 1500,
	})
	s.Require().NoError(err)

	_, err = s.svc.ActivateLease(landlord, lease.ID)
	s.ErrorIs(err, ErrInsufficientPermissions)
}

func (s *LeaseLifecycleSuite) TestTenantRoleCannotMutateLeases() {
	tenantCtx := CompanyMemberContext(uuid.New(), s.company.ID, models.UserRoleTenant)

	_, err := s.svc.CreateLease(tenantCtx, &CreateLeaseRequest{
		UnitID:      s.unitA.ID,
		TenantID:    s.tenant1.ID,
		StartDate:   time.Now(),
		EndDate:     time.Now().AddDate(1, 0, 0),
		MonthlyRent: 1500,
	})
	s.ErrorIs(err, ErrInsufficientPermissions)
}

func (s *LeaseLifecycleSuite) TestOtherCompanyCannotSeeLease() {
	lease := s.draftLease(s.unitA, s.tenant1)

	outsider := CompanyMemberContext(uuid.New(), uuid.New(), models.UserRoleCompanyAdmin)
	_, err := s.svc.GetLease(outsider, lease.ID)
	s.ErrorIs(err, ErrInsufficientPermissions)
}

func (s *LeaseLifecycleSuite) TestSuperAdminBypassesRoleChecks() {
	super := SuperAdminContext(uuid.New())

	lease := s.draftLease(s.unitA, s.tenant1)
	activated, err := s.svc.ActivateLease(super, lease.ID)
	s.Require().NoError(err)
	s.Equal(models.LeaseStatusActive, activated.Status)
}

func (s *LeaseLifecycleSuite) TestUpdateDraftRejectsActiveLease() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	rent := 999.0
	_, err = s.svc.UpdateDraftLease(s.actx, lease.ID, &UpdateDraftLeaseRequest{MonthlyRent: &rent})
	s.ErrorIs(err, ErrLeaseNotDraft)
}

func (s *LeaseLifecycleSuite) TestSearchLeasesScopedToCompany() {
	s.draftLease(s.unitA, s.tenant1)
	s.draftLease(s.unitB, s.tenant2)

	page := utils.PaginationParams{Page: 1, Limit: 20, Order: "desc"}
	leases, total, err := s.svc.SearchLeases(s.actx, LeaseSearchParams{PaginationParams: page})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	assert.Len(s.T(), leases, 2)

	status := models.LeaseStatusActive
	_, total, err = s.svc.SearchLeases(s.actx, LeaseSearchParams{PaginationParams: page, Status: &status})
	s.Require().NoError(err)
	s.Equal(int64(0), total)
}

func (s *LeaseLifecycleSuite) TestMutationsReadStatusFromLockedRow() {
	lease := s.draftLease(s.unitA, s.tenant1)
	_, err := s.svc.ActivateLease(s.actx, lease.ID)
	s.Require().NoError(err)

	// Another writer finished first: the row is terminal by the time the
	// mutation's transaction reads it.
	s.Require().NoError(s.db.Model(&models.Lease{}).
		Where("id = ?", lease.ID).
		Update("status", models.LeaseStatusTerminated).Error)

	_, err = s.svc.TerminateLease(s.actx, lease.ID, &TerminateLeaseRequest{Reason: "late"})
	s.ErrorIs(err, ErrLeaseNotActive)

	_, err = s.svc.RenewLease(s.actx, lease.ID, &RenewLeaseRequest{
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(1, 0, 0),
	})
	s.ErrorIs(err, ErrLeaseNotActive)

	unitBID := s.unitB.ID
	_, err = s.svc.TransferLease(s.actx, lease.ID, &TransferLeaseRequest{NewUnitID: &unitBID})
	s.ErrorIs(err, ErrLeaseNotActive)

	s.Equal(models.LeaseStatusTerminated, s.reloadLease(lease.ID).Status)
	s.Empty(s.reloadLease(lease.ID).TerminationReason)
}

// Random walks over the lifecycle. After every step each unit holds at most
// one active lease and is occupied exactly when it holds one.
func (s *LeaseLifecycleSuite) TestRandomizedLifecycleKeepsOccupancyInvariant() {
	rng := rand.New(rand.NewSource(42))
	units := []models.Unit{s.unitA, s.unitB}
	tenants := []models.TenantProfile{s.tenant1, s.tenant2}

	var leaseIDs []uuid.UUID
	randomLease := func() uuid.UUID {
		return leaseIDs[rng.Intn(len(leaseIDs))]
	}

	for step := 0; step < 80; step++ {
		switch op := rng.Intn(4); {
		case op == 0 || len(leaseIDs) == 0:
			unit := units[rng.Intn(len(units))]
			tenant := tenants[rng.Intn(len(tenants))]
			lease, err := s.svc.CreateLease(s.actx, &CreateLeaseRequest{
				UnitID:      unit.ID,
				TenantID:    tenant.ID,
				StartDate:   time.Now(),
				EndDate:     time.Now().AddDate(1, 0, 0),
				MonthlyRent: 1500,
			})
			s.Require().NoError(err)
			leaseIDs = append(leaseIDs, lease.ID)
		case op == 1:
			if _, err := s.svc.ActivateLease(s.actx, randomLease()); err != nil {
				s.requireLifecycleError(err)
			}
		case op == 2:
			if _, err := s.svc.TerminateLease(s.actx, randomLease(), &TerminateLeaseRequest{Reason: "walk"}); err != nil {
				s.requireLifecycleError(err)
			}
		default:
			// Age a random lease out and run the sweep.
			s.Require().NoError(s.db.Model(&models.Lease{}).
				Where("id = ?", randomLease()).
				Update("end_date", time.Now().AddDate(0, 0, -2)).Error)
			_, err := s.svc.CheckAndExpireLeases(context.Background())
			s.Require().NoError(err)
		}

		s.assertOccupancyInvariant(units)
	}
}

// requireLifecycleError accepts only the typed rejections a legal random
// step can produce; anything else fails the walk.
func (s *LeaseLifecycleSuite) requireLifecycleError(err error) {
	ok := errors.Is(err, ErrLeaseNotDraft) ||
		errors.Is(err, ErrLeaseNotActive) ||
		errors.Is(err, ErrLeaseAlreadyActive) ||
		errors.Is(err, ErrUnitAlreadyLeased) ||
		errors.Is(err, ErrUnitUnavailable)
	s.Require().True(ok, "unexpected error: %v", err)
}

func (s *LeaseLifecycleSuite) assertOccupancyInvariant(units []models.Unit) {
	for _, u := range units {
		var active int64
		s.Require().NoError(s.db.Model(&models.Lease{}).
			Where("unit_id = ? AND status = ?", u.ID, models.LeaseStatusActive).
			Count(&active).Error)
		s.Require().LessOrEqual(active, int64(1), "unit %s has %d active leases", u.UnitNumber, active)

		status := s.reloadUnit(u.ID).Status
		if active == 1 {
			s.Require().Equal(models.UnitStatusOccupied, status, "unit %s", u.UnitNumber)
		} else {
			s.Require().Equal(models.UnitStatusAvailable, status, "unit %s", u.UnitNumber)
		}
	}
}

func TestLeaseLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LeaseLifecycleSuite))
}
