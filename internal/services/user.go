package services

import (
	"errors"

	"rentwheels-backend/internal/models"
	"rentwheels-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService struct {
	userRepo    *repository.UserRepository
	vehicleRepo *repository.VehicleRepository
}

func NewUserService(userRepo *repository.UserRepository, vehicleRepo *repository.VehicleRepository) *UserService {
	return &UserService{
		userRepo:    userRepo,
		vehicleRepo: vehicleRepo,
	}
}

func (s *UserService) GetAllUsers() ([]*models.AuthUser, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	result := make([]*models.AuthUser, 0, len(users))
	for _, user := range users {
		result = append(result, user.ToAuthUser())
	}

	return result, nil
}

func (s *UserService) GetUserByID(id string) (*models.AuthUser, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return user.ToAuthUser(), nil
}

func (s *UserService) SetBlocked(id string, blocked bool, caller Caller) (*models.AuthUser, error) {
	if !caller.IsAdmin() {
		return nil, errors.New("admin access required")
	}

	// Admins must not lock themselves out.
	if id == caller.UserID {
		return nil, errors.New("cannot block your own account")
	}

	user, err := s.userRepo.SetBlocked(id, blocked)
	if err != nil {
		return nil, err
	}

	return user.ToAuthUser(), nil
}

func (s *UserService) DeleteUser(id string, caller Caller) error {
	if !caller.IsAdmin() {
		return errors.New("admin access required")
	}

	if id == caller.UserID {
		return errors.New("cannot delete your own account")
	}

	return s.userRepo.Delete(id)
}

func (s *UserService) AddToWishlist(userID, vehicleID string) error {
	objectID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return errors.New("invalid vehicle ID")
	}

	if _, err := s.vehicleRepo.FindByID(vehicleID); err != nil {
		return errors.New("vehicle not found")
	}

	return s.userRepo.AddToWishlist(userID, objectID)
}

func (s *UserService) RemoveFromWishlist(userID, vehicleID string) error {
	objectID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return errors.New("invalid vehicle ID")
	}

	return s.userRepo.RemoveFromWishlist(userID, objectID)
}

func (s *UserService) GetWishlist(userID string) ([]*models.Vehicle, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if len(user.Wishlist) == 0 {
		return []*models.Vehicle{}, nil
	}

	return s.vehicleRepo.FindByIDs(user.Wishlist)
}
