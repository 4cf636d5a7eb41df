package handlers

import (
	"net/http"
	"time"

	"rentwheels-backend/internal/services"
	"rentwheels-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type BookingHandler struct {
	bookingService *services.BookingService
	validator      *validator.Validate
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		validator:      validator.New(),
	}
}

func callerFromContext(c *gin.Context) services.Caller {
	return services.Caller{
		UserID: c.GetString("user_id"),
		Role:   c.GetString("role"),
	}
}

// CreateBooking books a vehicle for the authenticated user
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	booking, err := h.bookingService.CreateBooking(callerFromContext(c), &req)
	if err != nil {
		status := http.StatusBadRequest
		switch err.Error() {
		case "vehicle is already booked for the selected dates":
			status = http.StatusConflict
		case "account is blocked":
			status = http.StatusForbidden
		}
		utils.ErrorResponse(c, status, "Failed to create booking", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Booking created successfully", booking)
}

// CheckConflict reports whether a date range collides with an existing booking
func (h *BookingHandler) CheckConflict(c *gin.Context) {
	var req services.CheckConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	conflict, err := h.bookingService.CheckConflict(&req)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to check availability", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Availability checked successfully", gin.H{"conflict": conflict})
}

// GetMyBookings lists the authenticated user's bookings
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	bookings, err := h.bookingService.GetUserBookings(callerFromContext(c))
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve bookings", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Bookings retrieved successfully", bookings)
}

// CancelBooking cancels the caller's own booking
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("id")
	if bookingID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Booking ID is required", nil)
		return
	}

	if err := h.bookingService.CancelBooking(callerFromContext(c), bookingID); err != nil {
		status := http.StatusBadRequest
		if err.Error() == "only the booking owner can cancel it" {
			status = http.StatusForbidden
		}
		utils.ErrorResponse(c, status, "Failed to cancel booking", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Booking cancelled successfully", nil)
}

// GetAllBookings lists every booking with vehicle and user detail, admin only
func (h *BookingHandler) GetAllBookings(c *gin.Context) {
	bookings, err := h.bookingService.GetAllBookings()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve bookings", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Bookings retrieved successfully", bookings)
}

// UpdateBookingStatus sets a booking's status, admin only
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	bookingID := c.Param("id")
	if bookingID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Booking ID is required", nil)
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=booked cancelled completed"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	booking, err := h.bookingService.UpdateBookingStatus(bookingID, req.Status)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to update booking status", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Booking status updated successfully", booking)
}

// GetBookingStats returns earnings and booking counts for the admin dashboard
func (h *BookingHandler) GetBookingStats(c *gin.Context) {
	stats, err := h.bookingService.ComputeStats(time.Now())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to compute booking stats", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Booking stats retrieved successfully", stats)
}
