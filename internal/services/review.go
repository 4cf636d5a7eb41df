package services

import (
	"errors"
	"log"
	"math"

	"rentwheels-backend/internal/events"
	"rentwheels-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewStore is the persistence surface the review service depends on.
type ReviewStore interface {
	Upsert(review *models.Review) (*models.Review, error)
	FindByID(id string) (*models.Review, error)
	FindByVehicle(vehicleID primitive.ObjectID) ([]*models.Review, error)
	FindAll() ([]*models.Review, error)
	AggregateRating(vehicleID primitive.ObjectID) (float64, int64, error)
	SetAdminReply(id string, reply string) (*models.Review, error)
	Delete(id string) error
}

// CompletedBookingChecker gates review creation on booking history.
type CompletedBookingChecker interface {
	HasUserCompletedBooking(userID, vehicleID primitive.ObjectID) (bool, error)
}

type ReviewService struct {
	reviewRepo  ReviewStore
	bookingRepo CompletedBookingChecker
	vehicleRepo VehicleFinder
	publisher   events.Publisher
}

func NewReviewService(reviewRepo ReviewStore, bookingRepo CompletedBookingChecker, vehicleRepo VehicleFinder) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		bookingRepo: bookingRepo,
		vehicleRepo: vehicleRepo,
	}
}

// SetPublisher allows setting the event publisher for real-time updates
func (s *ReviewService) SetPublisher(publisher events.Publisher) {
	s.publisher = publisher
}

type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// AddOrUpdateReview upserts the caller's review for a vehicle. A review is
// only accepted from users holding a completed booking for the vehicle; a
// repeat submission overwrites the earlier rating and comment in place.
func (s *ReviewService) AddOrUpdateReview(caller Caller, vehicleID string, req *AddReviewRequest) (*models.Review, error) {
	userObjID, err := primitive.ObjectIDFromHex(caller.UserID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}

	vehicle, err := s.vehicleRepo.FindByID(vehicleID)
	if err != nil {
		return nil, err
	}

	completed, err := s.bookingRepo.HasUserCompletedBooking(userObjID, vehicle.ID)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, errors.New("only users with a completed booking can review this vehicle")
	}

	review := &models.Review{
		VehicleID: vehicle.ID,
		UserID:    userObjID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	stored, err := s.reviewRepo.Upsert(review)
	if err != nil {
		return nil, err
	}

	s.publishVehicleChange(vehicle.ID.Hex())
	return stored, nil
}

// AggregateRatings returns the vehicle's mean rating rounded to one decimal
// place and the review count. Zero values when no reviews exist, never nil.
func (s *ReviewService) AggregateRatings(vehicleID string) (*models.VehicleRating, error) {
	vehicleObjID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, errors.New("invalid vehicle ID")
	}

	average, count, err := s.reviewRepo.AggregateRating(vehicleObjID)
	if err != nil {
		return nil, err
	}

	return &models.VehicleRating{
		Average: roundToOneDecimal(average),
		Count:   count,
	}, nil
}

func (s *ReviewService) GetVehicleReviews(vehicleID string) ([]*models.Review, error) {
	vehicleObjID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, errors.New("invalid vehicle ID")
	}

	return s.reviewRepo.FindByVehicle(vehicleObjID)
}

func (s *ReviewService) GetAllReviews() ([]*models.Review, error) {
	return s.reviewRepo.FindAll()
}

// DeleteReview removes a review. Owners delete their own; admins delete any.
func (s *ReviewService) DeleteReview(caller Caller, reviewID string) error {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		return err
	}

	if !caller.IsAdmin() && review.UserID.Hex() != caller.UserID {
		return errors.New("only the review owner or an admin can delete it")
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return err
	}

	s.publishVehicleChange(review.VehicleID.Hex())
	return nil
}

type ReplyToReviewRequest struct {
	Reply string `json:"reply" validate:"required,max=2000"`
}

// ReplyToReview attaches an admin reply without touching the rating or
// comment. Admin route.
func (s *ReviewService) ReplyToReview(reviewID string, req *ReplyToReviewRequest) (*models.Review, error) {
	updated, err := s.reviewRepo.SetAdminReply(reviewID, req.Reply)
	if err != nil {
		return nil, err
	}

	s.publishVehicleChange(updated.VehicleID.Hex())
	return updated, nil
}

func (s *ReviewService) publishVehicleChange(vehicleID string) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(events.VehicleChanged(vehicleID)); err != nil {
		log.Printf("Failed to publish vehicle-changed for %s: %v", vehicleID, err)
	}
}

func roundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
