package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"rentwheels-backend/internal/events"
	"rentwheels-backend/internal/models"
	"rentwheels-backend/pkg/email"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Caller carries the authenticated identity into service operations so the
// authorization dependency is visible in the signature.
type Caller struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// TransitionPolicy validates a booking status change. The default policy
// allows any jump, matching the permissive admin status path; deployments
// wanting a strict state machine plug in their own.
type TransitionPolicy func(from, to string) error

// AllowAllTransitions permits every status change to a known status.
func AllowAllTransitions(from, to string) error {
	switch to {
	case models.BookingStatusBooked, models.BookingStatusCancelled, models.BookingStatusCompleted:
		return nil
	}
	return fmt.Errorf("unknown booking status %q", to)
}

// BookingStore is the persistence surface the booking service depends on.
// The Mongo repository satisfies it; tests substitute in-memory stores.
type BookingStore interface {
	Create(booking *models.Booking) (*models.Booking, error)
	FindByID(id string) (*models.Booking, error)
	FindAll() ([]*models.Booking, error)
	FindByUser(userID primitive.ObjectID) ([]*models.Booking, error)
	FindActiveOverlapping(vehicleID primitive.ObjectID, pickup, returnDate time.Time) ([]*models.Booking, error)
	UpdateStatus(id string, status string) (*models.Booking, error)
	MarkPaid(id string, paymentRef string) (*models.Booking, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
	SumCompletedCreatedBetween(from, to time.Time) (float64, error)
}

// VehicleFinder resolves vehicles by id.
type VehicleFinder interface {
	FindByID(id string) (*models.Vehicle, error)
}

// UserFinder resolves users by id.
type UserFinder interface {
	FindByID(id string) (*models.User, error)
}

type BookingService struct {
	bookingRepo  BookingStore
	vehicleRepo  VehicleFinder
	userRepo     UserFinder
	publisher    events.Publisher
	emailService *email.EmailService
	policy       TransitionPolicy

	// vehicleLocks serializes the conflict-check-then-insert sequence per
	// vehicle, closing the double-booking race within this process.
	vehicleLocks sync.Map
}

func NewBookingService(bookingRepo BookingStore, vehicleRepo VehicleFinder, userRepo UserFinder) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
		policy:      AllowAllTransitions,
	}
}

// SetPublisher allows setting the event publisher for real-time updates
func (s *BookingService) SetPublisher(publisher events.Publisher) {
	s.publisher = publisher
}

// SetEmailService allows setting the email service for booking confirmations
func (s *BookingService) SetEmailService(emailService *email.EmailService) {
	s.emailService = emailService
}

// SetTransitionPolicy allows replacing the status transition policy
func (s *BookingService) SetTransitionPolicy(policy TransitionPolicy) {
	s.policy = policy
}

type CreateBookingRequest struct {
	VehicleID  string    `json:"vehicleId" validate:"required"`
	PickupDate time.Time `json:"pickupDate" validate:"required"`
	ReturnDate time.Time `json:"returnDate" validate:"required"`
}

type CheckConflictRequest struct {
	VehicleID  string    `json:"vehicleId" validate:"required"`
	PickupDate time.Time `json:"pickupDate" validate:"required"`
	ReturnDate time.Time `json:"returnDate" validate:"required"`
}

// intervalsOverlap decides whether two rental intervals collide. Inclusive
// on both ends: an existing return on the same day as a new pickup is a
// conflict.
func intervalsOverlap(existingPickup, existingReturn, newPickup, newReturn time.Time) bool {
	return !existingPickup.After(newReturn) && !existingReturn.Before(newPickup)
}

// hasDateConflict applies intervalsOverlap to the candidate bookings the
// store returns. The Mongo range query narrows candidates over the booking
// index; this predicate makes the final call for both CreateBooking and
// CheckConflict.
func (s *BookingService) hasDateConflict(vehicleID primitive.ObjectID, pickup, returnDate time.Time) (bool, error) {
	candidates, err := s.bookingRepo.FindActiveOverlapping(vehicleID, pickup, returnDate)
	if err != nil {
		return false, err
	}

	for _, existing := range candidates {
		if intervalsOverlap(existing.PickupDate, existing.ReturnDate, pickup, returnDate) {
			return true, nil
		}
	}
	return false, nil
}

// billableDays rounds a rental duration up to whole days. Minimum billable
// duration is one day.
func billableDays(pickup, returnDate time.Time) int {
	days := int(math.Ceil(returnDate.Sub(pickup).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

func computeTotalPrice(pricePerDay float64, pickup, returnDate time.Time) float64 {
	return pricePerDay * float64(billableDays(pickup, returnDate))
}

func (s *BookingService) CreateBooking(caller Caller, req *CreateBookingRequest) (*models.Booking, error) {
	userID, err := primitive.ObjectIDFromHex(caller.UserID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}

	user, err := s.userRepo.FindByID(caller.UserID)
	if err != nil {
		return nil, err
	}
	if user.Blocked {
		return nil, errors.New("account is blocked")
	}

	vehicle, err := s.vehicleRepo.FindByID(req.VehicleID)
	if err != nil {
		return nil, err
	}

	if !vehicle.Available {
		return nil, errors.New("vehicle is not available")
	}

	// Fractional days round up for billing, not for the minimum-duration
	// check: the rental must span at least a full day.
	if req.ReturnDate.Sub(req.PickupDate) < 24*time.Hour {
		return nil, errors.New("booking must be for at least one day")
	}

	lock := s.lockForVehicle(vehicle.ID.Hex())
	lock.Lock()
	defer lock.Unlock()

	conflict, err := s.hasDateConflict(vehicle.ID, req.PickupDate, req.ReturnDate)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, errors.New("vehicle is already booked for the selected dates")
	}

	now := time.Now()
	booking := &models.Booking{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		VehicleID:  vehicle.ID,
		PickupDate: req.PickupDate,
		ReturnDate: req.ReturnDate,
		TotalPrice: computeTotalPrice(vehicle.PricePerDay, req.PickupDate, req.ReturnDate),
		Status:     models.BookingStatusBooked,
		Paid:       false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := s.bookingRepo.Create(booking)
	if err != nil {
		return nil, err
	}

	s.publishBookingChange(created)
	s.sendConfirmationEmail(caller.UserID, created, vehicle)

	return created, nil
}

// CheckConflict is the read-only variant of the conflict rule, used for
// pre-submission validation. Same predicate as CreateBooking.
func (s *BookingService) CheckConflict(req *CheckConflictRequest) (bool, error) {
	vehicleID, err := primitive.ObjectIDFromHex(req.VehicleID)
	if err != nil {
		return false, errors.New("invalid vehicle ID")
	}

	return s.hasDateConflict(vehicleID, req.PickupDate, req.ReturnDate)
}

func (s *BookingService) CancelBooking(caller Caller, bookingID string) error {
	booking, err := s.bookingRepo.FindByID(bookingID)
	if err != nil {
		return err
	}

	// Only the owning user cancels here; admins go through UpdateStatus.
	if booking.UserID.Hex() != caller.UserID {
		return errors.New("only the booking owner can cancel it")
	}

	updated, err := s.bookingRepo.UpdateStatus(bookingID, models.BookingStatusCancelled)
	if err != nil {
		return err
	}

	s.publishBookingChange(updated)
	return nil
}

func (s *BookingService) UpdateBookingStatus(bookingID, status string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.policy(booking.Status, status); err != nil {
		return nil, err
	}

	updated, err := s.bookingRepo.UpdateStatus(bookingID, status)
	if err != nil {
		return nil, err
	}

	s.publishBookingChange(updated)
	return updated, nil
}

// GetUserBookings lists the caller's bookings with vehicle documents
// embedded for display.
func (s *BookingService) GetUserBookings(caller Caller) ([]*models.BookingWithVehicle, error) {
	userID, err := primitive.ObjectIDFromHex(caller.UserID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}

	bookings, err := s.bookingRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	result := make([]*models.BookingWithVehicle, 0, len(bookings))
	for _, booking := range bookings {
		entry := &models.BookingWithVehicle{Booking: *booking}
		if vehicle, err := s.vehicleRepo.FindByID(booking.VehicleID.Hex()); err == nil {
			entry.Vehicle = vehicle
		}
		result = append(result, entry)
	}

	return result, nil
}

// GetAllBookings lists every booking with vehicle and user embedded.
// Admin listing.
func (s *BookingService) GetAllBookings() ([]*models.BookingDetail, error) {
	bookings, err := s.bookingRepo.FindAll()
	if err != nil {
		return nil, err
	}

	result := make([]*models.BookingDetail, 0, len(bookings))
	for _, booking := range bookings {
		entry := &models.BookingDetail{Booking: *booking}
		if vehicle, err := s.vehicleRepo.FindByID(booking.VehicleID.Hex()); err == nil {
			entry.Vehicle = vehicle
		}
		if user, err := s.userRepo.FindByID(booking.UserID.Hex()); err == nil {
			entry.User = user.ToAuthUser()
		}
		result = append(result, entry)
	}

	return result, nil
}

func (s *BookingService) GetBooking(id string) (*models.Booking, error) {
	return s.bookingRepo.FindByID(id)
}

// startOfDay, startOfMonth and startOfYear align the stats windows in the
// server's local time zone. The windows nest: today ⊂ month ⊂ year.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// ComputeStats builds the admin dashboard aggregate as of the given time.
func (s *BookingService) ComputeStats(asOf time.Time) (*models.BookingStats, error) {
	todayEarnings, err := s.bookingRepo.SumCompletedCreatedBetween(startOfDay(asOf), asOf)
	if err != nil {
		return nil, err
	}

	monthlyEarnings, err := s.bookingRepo.SumCompletedCreatedBetween(startOfMonth(asOf), asOf)
	if err != nil {
		return nil, err
	}

	yearlyEarnings, err := s.bookingRepo.SumCompletedCreatedBetween(startOfYear(asOf), asOf)
	if err != nil {
		return nil, err
	}

	total, err := s.bookingRepo.Count()
	if err != nil {
		return nil, err
	}

	completed, err := s.bookingRepo.CountByStatus(models.BookingStatusCompleted)
	if err != nil {
		return nil, err
	}

	cancelled, err := s.bookingRepo.CountByStatus(models.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	return &models.BookingStats{
		TodayEarnings:     todayEarnings,
		MonthlyEarnings:   monthlyEarnings,
		YearlyEarnings:    yearlyEarnings,
		TotalBookings:     total,
		CompletedBookings: completed,
		CancelledBookings: cancelled,
	}, nil
}

type InitiatePaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type PaymentOrder struct {
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
}

// InitiatePayment returns a synthetic order identifier. The gateway is
// mocked; no external call happens.
func (s *BookingService) InitiatePayment(req *InitiatePaymentRequest) (*PaymentOrder, error) {
	return &PaymentOrder{
		OrderID: "order_" + uuid.New().String(),
		Amount:  req.Amount,
	}, nil
}

// VerifyPayment marks the booking paid and stamps the payment reference.
func (s *BookingService) VerifyPayment(bookingID, paymentRef string) (*models.Booking, error) {
	if paymentRef == "" {
		paymentRef = "pay_" + uuid.New().String()
	}

	updated, err := s.bookingRepo.MarkPaid(bookingID, paymentRef)
	if err != nil {
		return nil, err
	}

	s.publishBookingChange(updated)
	return updated, nil
}

// publishBookingChange fires booking-changed and vehicle-changed events.
// Event delivery is best-effort; failures are logged, never propagated.
func (s *BookingService) publishBookingChange(booking *models.Booking) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(events.BookingChanged(booking.ID.Hex())); err != nil {
		log.Printf("Failed to publish booking-changed for %s: %v", booking.ID.Hex(), err)
	}
	if err := s.publisher.Publish(events.VehicleChanged(booking.VehicleID.Hex())); err != nil {
		log.Printf("Failed to publish vehicle-changed for %s: %v", booking.VehicleID.Hex(), err)
	}
}

func (s *BookingService) sendConfirmationEmail(userID string, booking *models.Booking, vehicle *models.Vehicle) {
	if s.emailService == nil {
		return
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		log.Printf("Skipping confirmation email, user lookup failed: %v", err)
		return
	}

	if err := s.emailService.SendBookingConfirmation(user.Email, vehicle.Name, booking.PickupDate, booking.ReturnDate, booking.TotalPrice); err != nil {
		log.Printf("Failed to send booking confirmation to %s: %v", user.Email, err)
	}
}

func (s *BookingService) lockForVehicle(vehicleID string) *sync.Mutex {
	lock, _ := s.vehicleLocks.LoadOrStore(vehicleID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
