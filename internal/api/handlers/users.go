package handlers

import (
	"net/http"

	"rentwheels-backend/internal/services"
	"rentwheels-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetUsers lists all users, admin only
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetAllUsers()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve users", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Users retrieved successfully", users)
}

// GetUser retrieves a single user, admin only
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "User ID is required", nil)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "User not found", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User retrieved successfully", user)
}

// BlockUser blocks a user account, admin only
func (h *UserHandler) BlockUser(c *gin.Context) {
	h.setBlocked(c, true, "User blocked successfully")
}

// UnblockUser unblocks a user account, admin only
func (h *UserHandler) UnblockUser(c *gin.Context) {
	h.setBlocked(c, false, "User unblocked successfully")
}

func (h *UserHandler) setBlocked(c *gin.Context, blocked bool, message string) {
	userID := c.Param("id")
	if userID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "User ID is required", nil)
		return
	}

	user, err := h.userService.SetBlocked(userID, blocked, callerFromContext(c))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to update user", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, message, user)
}

// DeleteUser removes a user account, admin only
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "User ID is required", nil)
		return
	}

	if err := h.userService.DeleteUser(userID, callerFromContext(c)); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to delete user", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User deleted successfully", nil)
}

// GetWishlist returns the caller's wishlisted vehicles
func (h *UserHandler) GetWishlist(c *gin.Context) {
	vehicles, err := h.userService.GetWishlist(c.GetString("user_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve wishlist", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Wishlist retrieved successfully", vehicles)
}

// AddToWishlist adds a vehicle to the caller's wishlist
func (h *UserHandler) AddToWishlist(c *gin.Context) {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Vehicle ID is required", nil)
		return
	}

	if err := h.userService.AddToWishlist(c.GetString("user_id"), vehicleID); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to add vehicle to wishlist", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle added to wishlist", nil)
}

// RemoveFromWishlist removes a vehicle from the caller's wishlist
func (h *UserHandler) RemoveFromWishlist(c *gin.Context) {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Vehicle ID is required", nil)
		return
	}

	if err := h.userService.RemoveFromWishlist(c.GetString("user_id"), vehicleID); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to remove vehicle from wishlist", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle removed from wishlist", nil)
}
