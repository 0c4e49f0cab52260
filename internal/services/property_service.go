// internal/services/property_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentloop/rentloop-backend/internal/models"
	"github.com/rentloop/rentloop-backend/internal/utils"
)

type PropertyService struct {
	db *gorm.DB
}

type CreatePropertyRequest struct {
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address" validate:"required"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Country     string `json:"country,omitempty"`
	Description string `json:"description,omitempty"`
}

type CreateUnitRequest struct {
	PropertyID uuid.UUID `json:"property_id" validate:"required"`
	UnitNumber string    `json:"unit_number" validate:"required"`
	Floor      int       `json:"floor"`
	Bedrooms   int       `json:"bedrooms" validate:"gte=0"`
	Bathrooms  float64   `json:"bathrooms" validate:"gte=0"`
	SquareFeet float64   `json:"square_feet" validate:"gte=0"`
	MarketRent float64   `json:"market_rent" validate:"gte=0"`
}

type UpdateUnitRequest struct {
	UnitNumber *string            `json:"unit_number,omitempty"`
	Floor      *int               `json:"floor,omitempty"`
	Bedrooms   *int               `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms  *float64           `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	SquareFeet *float64           `json:"square_feet,omitempty" validate:"omitempty,gte=0"`
	MarketRent *float64           `json:"market_rent,omitempty" validate:"omitempty,gte=0"`
	Status     *models.UnitStatus `json:"status,omitempty"`
}

type PropertySearchParams struct {
	utils.PaginationParams
	City *string `json:"city,omitempty"`
}

func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{db: db}
}

func (s *PropertyService) CreateProperty(actx AuthContext, req *CreatePropertyRequest) (*models.Property, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if actx.SuperAdmin {
		return nil, errors.New("super admin must act through a company account for property creation")
	}
	if !actx.CanCreateLeases() {
		return nil, ErrInsufficientPermissions
	}

	property := &models.Property{
		CompanyID:   actx.CompanyID,
		Name:        req.Name,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		Description: req.Description,
	}
	if err := s.db.Create(property).Error; err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	return property, nil
}

func (s *PropertyService) GetProperty(actx AuthContext, propertyID uuid.UUID) (*models.Property, error) {
	var property models.Property
	if err := s.db.Preload("Units").First(&property, "id = ?", propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("property not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !actx.InCompany(property.CompanyID) {
		return nil, ErrInsufficientPermissions
	}
	return &property, nil
}

func (s *PropertyService) SearchProperties(actx AuthContext, params PropertySearchParams) ([]models.Property, int64, error) {
	query := s.db.Model(&models.Property{})

	if !actx.SuperAdmin {
		query = query.Where("company_id = ?", actx.CompanyID)
	}
	if params.City != nil {
		query = query.Where("city = ?", *params.City)
	}
	if params.Search != "" {
		term := "%" + params.Search + "%"
		query = query.Where("name LIKE ? OR address LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "city"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var properties []models.Property
	if err := query.Preload("Units").Find(&properties).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch properties: %w", err)
	}
	return properties, total, nil
}

func (s *PropertyService) CreateUnit(actx AuthContext, req *CreateUnitRequest) (*models.Unit, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var property models.Property
	if err := s.db.First(&property, "id = ?", req.PropertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("property not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !actx.InCompany(property.CompanyID) || !actx.CanCreateLeases() {
		return nil, ErrInsufficientPermissions
	}

	unit := &models.Unit{
		PropertyID: property.ID,
		CompanyID:  property.CompanyID,
		UnitNumber: req.UnitNumber,
		Floor:      req.Floor,
		Bedrooms:   req.Bedrooms,
		Bathrooms:  req.Bathrooms,
		SquareFeet: req.SquareFeet,
		MarketRent: req.MarketRent,
		Status:     models.UnitStatusAvailable,
	}
	if err := s.db.Create(unit).Error; err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}
	return unit, nil
}

func (s *PropertyService) GetUnit(actx AuthContext, unitID uuid.UUID) (*models.Unit, error) {
	var unit models.Unit
	if err := s.db.Preload("Property").First(&unit, "id = ?", unitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !actx.InCompany(unit.CompanyID) {
		return nil, ErrInsufficientPermissions
	}
	return &unit, nil
}

// UpdateUnit edits unit attributes. Occupancy is owned by the lease
// lifecycle: callers may park a unit in maintenance or unavailable, but they
// cannot set occupied, and they cannot change status at all while an active
// lease holds the unit.
func (s *PropertyService) UpdateUnit(actx AuthContext, unitID uuid.UUID, req *UpdateUnitRequest) (*models.Unit, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var unit *models.Unit
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var u models.Unit
		if err := tx.First(&u, "id = ?", unitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnitNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		if !actx.InCompany(u.CompanyID) || !actx.CanManageLeases() {
			return ErrInsufficientPermissions
		}

		if req.UnitNumber != nil {
			u.UnitNumber = *req.UnitNumber
		}
		if req.Floor != nil {
			u.Floor = *req.Floor
		}
		if req.Bedrooms != nil {
			u.Bedrooms = *req.Bedrooms
		}
		if req.Bathrooms != nil {
			u.Bathrooms = *req.Bathrooms
		}
		if req.SquareFeet != nil {
			u.SquareFeet = *req.SquareFeet
		}
		if req.MarketRent != nil {
			u.MarketRent = *req.MarketRent
		}
		if req.Status != nil {
			if *req.Status == models.UnitStatusOccupied {
				return errors.New("unit occupancy is managed by the lease lifecycle")
			}
			var activeLeases int64
			if err := tx.Model(&models.Lease{}).
				Where("unit_id = ? AND status = ?", u.ID, models.LeaseStatusActive).
				Count(&activeLeases).Error; err != nil {
				return fmt.Errorf("failed to count active leases: %w", err)
			}
			if activeLeases > 0 {
				return ErrUnitAlreadyLeased
			}
			u.Status = *req.Status
		}

		if err := tx.Save(&u).Error; err != nil {
			return fmt.Errorf("failed to update unit: %w", err)
		}
		unit = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *PropertyService) ListUnits(actx AuthContext, propertyID uuid.UUID, params utils.PaginationParams) ([]models.Unit, int64, error) {
	var property models.Property
	if err := s.db.First(&property, "id = ?", propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, errors.New("property not found")
		}
		return nil, 0, fmt.Errorf("database error: %w", err)
	}
	if !actx.InCompany(property.CompanyID) {
		return nil, 0, ErrInsufficientPermissions
	}

	query := s.db.Model(&models.Unit{}).Where("property_id = ?", propertyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count units: %w", err)
	}

	allowedSortFields := []string{"created_at", "unit_number", "floor", "market_rent", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var units []models.Unit
	if err := query.Find(&units).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch units: %w", err)
	}
	return units, total, nil
}
