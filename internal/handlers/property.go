// internal/handlers/property.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/rentloop/rentloop-backend/internal/services"
	"github.com/rentloop/rentloop-backend/internal/utils"
)

type PropertyHandler struct {
	propertyService *services.PropertyService
	storageService  *services.StorageService
}

func NewPropertyHandler(propertyService *services.PropertyService, storageService *services.StorageService) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		storageService:  storageService,
	}
}

// POST /properties
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}

	var req services.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	property, err := h.propertyService.CreateProperty(actx, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"property": property})
}

// GET /properties/:id
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	propertyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	property, err := h.propertyService.GetProperty(actx, propertyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"property": property})
}

// GET /properties
func (h *PropertyHandler) GetProperties(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}

	params := services.PropertySearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if v := c.Query("city"); v != "" {
		params.City = &v
	}

	properties, total, err := h.propertyService.SearchProperties(actx, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(properties, total, params.PaginationParams))
}

// POST /units
func (h *PropertyHandler) CreateUnit(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}

	var req services.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	unit, err := h.propertyService.CreateUnit(actx, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"unit": unit})
}

// GET /units/:id
func (h *PropertyHandler) GetUnit(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	unitID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	unit, err := h.propertyService.GetUnit(actx, unitID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"unit": unit})
}

// PUT /units/:id
func (h *PropertyHandler) UpdateUnit(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	unitID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	unit, err := h.propertyService.UpdateUnit(actx, unitID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"unit": unit})
}

// GET /properties/:id/units
func (h *PropertyHandler) ListUnits(c *gin.Context) {
	actx, ok := buildAuthContext(c)
	if !ok {
		return
	}
	propertyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	units, total, err := h.propertyService.ListUnits(actx, propertyID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(units, total, params))
}

// POST /properties/upload-photos
func (h *PropertyHandler) UploadPhotos(c *gin.Context) {
	if _, ok := buildAuthContext(c); !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "No files provided", nil)
		return
	}

	files := form.File["photos"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "No files provided", nil)
		return
	}

	var results []*services.UploadResult
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			utils.BadRequestResponse(c, "Failed to read file", nil)
			return
		}

		result, err := h.storageService.UploadFile(file, header, services.PropertyPhotoOptions())
		file.Close()
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		results = append(results, result)
	}

	utils.SuccessResponse(c, gin.H{"photos": results})
}
