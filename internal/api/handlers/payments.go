package handlers

import (
	"errors"
	"io"
	"net/http"

	"rentwheels-backend/internal/services"
	"rentwheels-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type PaymentHandler struct {
	bookingService *services.BookingService
	validator      *validator.Validate
}

func NewPaymentHandler(bookingService *services.BookingService) *PaymentHandler {
	return &PaymentHandler{
		bookingService: bookingService,
		validator:      validator.New(),
	}
}

// InitiatePayment creates a mock payment order for a booking amount
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req services.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	order, err := h.bookingService.InitiatePayment(&req)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to initiate payment", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment order created successfully", order)
}

// VerifyPayment marks a booking as paid with the supplied payment reference
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	bookingID := c.Param("id")
	if bookingID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Booking ID is required", nil)
		return
	}

	var req struct {
		PaymentRef string `json:"paymentRef"`
	}

	// The body is optional: with no paymentRef the service generates one.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	booking, err := h.bookingService.VerifyPayment(bookingID, req.PaymentRef)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to verify payment", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment verified successfully", booking)
}
