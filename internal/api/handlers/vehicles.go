package handlers

import (
	"net/http"
	"strconv"

	"rentwheels-backend/internal/services"
	"rentwheels-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type VehicleHandler struct {
	vehicleService *services.VehicleService
	reviewService  *services.ReviewService
	validator      *validator.Validate
}

func NewVehicleHandler(vehicleService *services.VehicleService, reviewService *services.ReviewService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		reviewService:  reviewService,
		validator:      validator.New(),
	}
}

// GetVehicles retrieves the catalog, optionally filtered by query params
func (h *VehicleHandler) GetVehicles(c *gin.Context) {
	if brand := c.Query("brand"); brand != "" {
		vehicles, err := h.vehicleService.GetVehiclesByBrand(brand)
		if err != nil {
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve vehicles", err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Vehicles retrieved successfully", vehicles)
		return
	}

	if fuelType := c.Query("fuelType"); fuelType != "" {
		vehicles, err := h.vehicleService.GetVehiclesByFuelType(fuelType)
		if err != nil {
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve vehicles", err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Vehicles retrieved successfully", vehicles)
		return
	}

	if maxPrice := c.Query("maxPrice"); maxPrice != "" {
		price, err := strconv.ParseFloat(maxPrice, 64)
		if err != nil || price <= 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "maxPrice must be a positive number", err)
			return
		}
		vehicles, err := h.vehicleService.GetVehiclesByMaxPrice(price)
		if err != nil {
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve vehicles", err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Vehicles retrieved successfully", vehicles)
		return
	}

	if available := c.Query("available"); available == "true" {
		vehicles, err := h.vehicleService.GetAvailableVehicles()
		if err != nil {
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve vehicles", err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Vehicles retrieved successfully", vehicles)
		return
	}

	vehicles, err := h.vehicleService.GetAllVehicles()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve vehicles", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicles retrieved successfully", vehicles)
}

// GetVehicle retrieves a specific vehicle by ID with its aggregated rating
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Vehicle ID is required", nil)
		return
	}

	vehicle, err := h.vehicleService.GetVehicleByID(vehicleID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Vehicle not found", err)
		return
	}

	response := gin.H{"vehicle": vehicle}
	if rating, err := h.reviewService.AggregateRatings(vehicleID); err == nil {
		response["rating"] = rating
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle retrieved successfully", response)
}

// CreateVehicle creates a new vehicle
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req services.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(&req)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to create vehicle", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Vehicle created successfully", vehicle)
}

// UpdateVehicle updates an existing vehicle
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Vehicle ID is required", nil)
		return
	}

	var req services.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(vehicleID, &req)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to update vehicle", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle updated successfully", vehicle)
}

// SetAvailability toggles a vehicle's availability flag
func (h *VehicleHandler) SetAvailability(c *gin.Context) {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Vehicle ID is required", nil)
		return
	}

	available, err := strconv.ParseBool(c.Query("available"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "available query parameter must be true or false", err)
		return
	}

	vehicle, err := h.vehicleService.SetAvailability(vehicleID, available)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to update availability", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle availability updated successfully", vehicle)
}

// DeleteVehicle deletes a vehicle
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Vehicle ID is required", nil)
		return
	}

	err := h.vehicleService.DeleteVehicle(vehicleID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to delete vehicle", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle deleted successfully", nil)
}
