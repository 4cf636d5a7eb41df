package handlers

import (
	"net/http"

	"rentwheels-backend/internal/services"
	"rentwheels-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
	validator     *validator.Validate
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// AddReview creates or updates the caller's review for a vehicle
func (h *ReviewHandler) AddReview(c *gin.Context) {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Vehicle ID is required", nil)
		return
	}

	var req services.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	review, err := h.reviewService.AddOrUpdateReview(callerFromContext(c), vehicleID, &req)
	if err != nil {
		status := http.StatusBadRequest
		if err.Error() == "only users with a completed booking can review this vehicle" {
			status = http.StatusForbidden
		}
		utils.ErrorResponse(c, status, "Failed to save review", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Review saved successfully", review)
}

// GetVehicleReviews lists a vehicle's reviews with its aggregated rating
func (h *ReviewHandler) GetVehicleReviews(c *gin.Context) {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Vehicle ID is required", nil)
		return
	}

	reviews, err := h.reviewService.GetVehicleReviews(vehicleID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve reviews", err)
		return
	}

	rating, err := h.reviewService.AggregateRatings(vehicleID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to aggregate ratings", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reviews retrieved successfully", gin.H{
		"reviews": reviews,
		"rating":  rating,
	})
}

// GetAllReviews lists every review, admin only
func (h *ReviewHandler) GetAllReviews(c *gin.Context) {
	reviews, err := h.reviewService.GetAllReviews()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve reviews", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reviews retrieved successfully", reviews)
}

// DeleteReview removes a review, allowed for its author or an admin
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID := c.Param("id")
	if reviewID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Review ID is required", nil)
		return
	}

	if err := h.reviewService.DeleteReview(callerFromContext(c), reviewID); err != nil {
		status := http.StatusBadRequest
		if err.Error() == "only the review owner or an admin can delete it" {
			status = http.StatusForbidden
		}
		utils.ErrorResponse(c, status, "Failed to delete review", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Review deleted successfully", nil)
}

// ReplyToReview attaches an admin reply to a review
func (h *ReviewHandler) ReplyToReview(c *gin.Context) {
	reviewID := c.Param("id")
	if reviewID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Review ID is required", nil)
		return
	}

	var req services.ReplyToReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	review, err := h.reviewService.ReplyToReview(reviewID, &req)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to reply to review", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reply saved successfully", review)
}
