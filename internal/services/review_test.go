package services

import (
	"errors"
	"testing"
	"time"

	"rentwheels-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRoundToOneDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"whole number unchanged", 4.0, 4.0},
		{"mean of 4 5 3", 4.0, 4.0},
		{"rounds down", 4.44, 4.4},
		{"rounds up", 4.45, 4.5},
		{"repeating third", 11.0 / 3.0, 3.7},
		{"zero for no reviews", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roundToOneDecimal(tt.input))
		})
	}
}

type stubReviewStore struct {
	reviews map[string]*models.Review
}

func newStubReviewStore() *stubReviewStore {
	return &stubReviewStore{reviews: make(map[string]*models.Review)}
}

// Upsert mirrors the unique (vehicle_id, user_id) index: a repeat
// submission replaces the earlier rating and comment in place.
func (s *stubReviewStore) Upsert(review *models.Review) (*models.Review, error) {
	key := review.VehicleID.Hex() + "/" + review.UserID.Hex()
	if existing, ok := s.reviews[key]; ok {
		existing.Rating = review.Rating
		existing.Comment = review.Comment
		existing.UpdatedAt = time.Now()
		return existing, nil
	}

	stored := *review
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.reviews[key] = &stored
	return &stored, nil
}

func (s *stubReviewStore) FindByID(id string) (*models.Review, error) {
	for _, review := range s.reviews {
		if review.ID.Hex() == id {
			return review, nil
		}
	}
	return nil, errors.New("review not found")
}

func (s *stubReviewStore) FindByVehicle(vehicleID primitive.ObjectID) ([]*models.Review, error) {
	var out []*models.Review
	for _, review := range s.reviews {
		if review.VehicleID == vehicleID {
			out = append(out, review)
		}
	}
	return out, nil
}

func (s *stubReviewStore) FindAll() ([]*models.Review, error) {
	all := make([]*models.Review, 0, len(s.reviews))
	for _, review := range s.reviews {
		all = append(all, review)
	}
	return all, nil
}

func (s *stubReviewStore) AggregateRating(vehicleID primitive.ObjectID) (float64, int64, error) {
	var sum float64
	var count int64
	for _, review := range s.reviews {
		if review.VehicleID == vehicleID {
			sum += float64(review.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

func (s *stubReviewStore) SetAdminReply(id string, reply string) (*models.Review, error) {
	review, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	review.AdminReply = reply
	return review, nil
}

func (s *stubReviewStore) Delete(id string) error {
	for key, review := range s.reviews {
		if review.ID.Hex() == id {
			delete(s.reviews, key)
			return nil
		}
	}
	return errors.New("review not found")
}

type stubCompletedChecker struct {
	completed bool
}

func (s stubCompletedChecker) HasUserCompletedBooking(userID, vehicleID primitive.ObjectID) (bool, error) {
	return s.completed, nil
}

func newReviewFixture(t *testing.T, completed bool) (*ReviewService, *stubReviewStore, *models.Vehicle, Caller) {
	t.Helper()

	vehicle := &models.Vehicle{ID: primitive.NewObjectID(), Name: "Demio", Brand: "Mazda"}
	store := newStubReviewStore()
	service := NewReviewService(
		store,
		stubCompletedChecker{completed: completed},
		&stubVehicleFinder{vehicles: map[string]*models.Vehicle{vehicle.ID.Hex(): vehicle}},
	)

	return service, store, vehicle, Caller{UserID: primitive.NewObjectID().Hex(), Role: models.RoleUser}
}

func TestAddOrUpdateReview_RequiresCompletedBooking(t *testing.T) {
	service, store, vehicle, caller := newReviewFixture(t, false)

	_, err := service.AddOrUpdateReview(caller, vehicle.ID.Hex(), &AddReviewRequest{Rating: 5, Comment: "great ride"})
	require.Error(t, err)
	assert.Equal(t, "only users with a completed booking can review this vehicle", err.Error())
	assert.Empty(t, store.reviews)
}

func TestAddOrUpdateReview_SecondSubmissionOverwrites(t *testing.T) {
	service, store, vehicle, caller := newReviewFixture(t, true)

	first, err := service.AddOrUpdateReview(caller, vehicle.ID.Hex(), &AddReviewRequest{Rating: 5, Comment: "smooth"})
	require.NoError(t, err)

	second, err := service.AddOrUpdateReview(caller, vehicle.ID.Hex(), &AddReviewRequest{Rating: 3, Comment: "clutch started slipping"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.reviews, 1)
	assert.Equal(t, 3, second.Rating)

	rating, err := service.AggregateRatings(vehicle.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 3.0, rating.Average)
	assert.Equal(t, int64(1), rating.Count)
}

func TestDeleteReview_OwnerOrAdmin(t *testing.T) {
	service, store, vehicle, caller := newReviewFixture(t, true)

	review, err := service.AddOrUpdateReview(caller, vehicle.ID.Hex(), &AddReviewRequest{Rating: 4})
	require.NoError(t, err)

	stranger := Caller{UserID: primitive.NewObjectID().Hex(), Role: models.RoleUser}
	err = service.DeleteReview(stranger, review.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, "only the review owner or an admin can delete it", err.Error())

	admin := Caller{UserID: primitive.NewObjectID().Hex(), Role: models.RoleAdmin}
	require.NoError(t, service.DeleteReview(admin, review.ID.Hex()))
	assert.Empty(t, store.reviews)
}
