package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"rentwheels-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestIntervalsOverlap(t *testing.T) {
	tests := []struct {
		name           string
		existingPickup time.Time
		existingReturn time.Time
		newPickup      time.Time
		newReturn      time.Time
		want           bool
	}{
		{
			name:           "fully inside existing booking",
			existingPickup: date(2026, time.January, 1),
			existingReturn: date(2026, time.January, 10),
			newPickup:      date(2026, time.January, 3),
			newReturn:      date(2026, time.January, 5),
			want:           true,
		},
		{
			name:           "existing fully inside new booking",
			existingPickup: date(2026, time.January, 3),
			existingReturn: date(2026, time.January, 5),
			newPickup:      date(2026, time.January, 1),
			newReturn:      date(2026, time.January, 10),
			want:           true,
		},
		{
			name:           "partial overlap at the start",
			existingPickup: date(2026, time.January, 1),
			existingReturn: date(2026, time.January, 5),
			newPickup:      date(2026, time.January, 4),
			newReturn:      date(2026, time.January, 8),
			want:           true,
		},
		{
			name:           "touching endpoints conflict",
			existingPickup: date(2026, time.January, 1),
			existingReturn: date(2026, time.January, 5),
			newPickup:      date(2026, time.January, 5),
			newReturn:      date(2026, time.January, 8),
			want:           true,
		},
		{
			name:           "new booking starts the day after return",
			existingPickup: date(2026, time.January, 1),
			existingReturn: date(2026, time.January, 5),
			newPickup:      date(2026, time.January, 6),
			newReturn:      date(2026, time.January, 10),
			want:           false,
		},
		{
			name:           "new booking entirely before",
			existingPickup: date(2026, time.March, 10),
			existingReturn: date(2026, time.March, 15),
			newPickup:      date(2026, time.March, 1),
			newReturn:      date(2026, time.March, 5),
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intervalsOverlap(tt.existingPickup, tt.existingReturn, tt.newPickup, tt.newReturn)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBillableDays(t *testing.T) {
	tests := []struct {
		name   string
		pickup time.Time
		ret    time.Time
		want   int
	}{
		{
			name:   "exactly two days",
			pickup: date(2026, time.January, 1),
			ret:    date(2026, time.January, 3),
			want:   2,
		},
		{
			name:   "fractional day rounds up",
			pickup: date(2026, time.January, 1),
			ret:    date(2026, time.January, 2).Add(6 * time.Hour),
			want:   2,
		},
		{
			name:   "less than a day bills one day",
			pickup: date(2026, time.January, 1),
			ret:    date(2026, time.January, 1).Add(3 * time.Hour),
			want:   1,
		},
		{
			name:   "same instant bills one day",
			pickup: date(2026, time.January, 1),
			ret:    date(2026, time.January, 1),
			want:   1,
		},
		{
			name:   "seven days",
			pickup: date(2026, time.February, 1),
			ret:    date(2026, time.February, 8),
			want:   7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, billableDays(tt.pickup, tt.ret))
		})
	}
}

func TestComputeTotalPrice(t *testing.T) {
	t.Run("whole days", func(t *testing.T) {
		total := computeTotalPrice(1000, date(2026, time.January, 1), date(2026, time.January, 3))
		assert.Equal(t, 2000.0, total)
	})

	t.Run("fractional days billed as whole", func(t *testing.T) {
		ret := date(2026, time.January, 2).Add(6 * time.Hour)
		total := computeTotalPrice(1000, date(2026, time.January, 1), ret)
		assert.Equal(t, 2000.0, total)
	})
}

func TestAllowAllTransitions(t *testing.T) {
	knownStatuses := []string{
		models.BookingStatusBooked,
		models.BookingStatusCancelled,
		models.BookingStatusCompleted,
	}

	for _, from := range knownStatuses {
		for _, to := range knownStatuses {
			assert.NoError(t, AllowAllTransitions(from, to))
		}
	}

	err := AllowAllTransitions(models.BookingStatusBooked, "shipped")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown booking status")
}

func TestStatsWindows(t *testing.T) {
	asOf := time.Date(2026, time.August, 15, 14, 30, 0, 0, time.Local)

	day := startOfDay(asOf)
	month := startOfMonth(asOf)
	year := startOfYear(asOf)

	assert.Equal(t, time.Date(2026, time.August, 15, 0, 0, 0, 0, time.Local), day)
	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.Local), month)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.Local), year)

	// The windows nest: year start <= month start <= day start <= asOf.
	assert.False(t, year.After(month))
	assert.False(t, month.After(day))
	assert.False(t, day.After(asOf))
}

func TestInitiatePayment(t *testing.T) {
	service := &BookingService{}

	order, err := service.InitiatePayment(&InitiatePaymentRequest{Amount: 4500})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderID, "order_"))
	assert.Equal(t, 4500.0, order.Amount)

	second, err := service.InitiatePayment(&InitiatePaymentRequest{Amount: 4500})
	require.NoError(t, err)
	assert.NotEqual(t, order.OrderID, second.OrderID)
}

func TestCallerIsAdmin(t *testing.T) {
	assert.True(t, Caller{Role: models.RoleAdmin}.IsAdmin())
	assert.False(t, Caller{Role: models.RoleUser}.IsAdmin())
	assert.False(t, Caller{}.IsAdmin())
}

func TestLockForVehicle(t *testing.T) {
	service := &BookingService{}

	first := service.lockForVehicle("abc")
	second := service.lockForVehicle("abc")
	other := service.lockForVehicle("def")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

type stubBookingStore struct {
	bookings map[string]*models.Booking
	created  []*models.Booking
}

func newStubBookingStore() *stubBookingStore {
	return &stubBookingStore{bookings: make(map[string]*models.Booking)}
}

func (s *stubBookingStore) Create(booking *models.Booking) (*models.Booking, error) {
	s.bookings[booking.ID.Hex()] = booking
	s.created = append(s.created, booking)
	return booking, nil
}

func (s *stubBookingStore) FindByID(id string) (*models.Booking, error) {
	booking, ok := s.bookings[id]
	if !ok {
		return nil, errors.New("booking not found")
	}
	return booking, nil
}

func (s *stubBookingStore) FindAll() ([]*models.Booking, error) {
	all := make([]*models.Booking, 0, len(s.bookings))
	for _, booking := range s.bookings {
		all = append(all, booking)
	}
	return all, nil
}

func (s *stubBookingStore) FindByUser(userID primitive.ObjectID) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, booking := range s.bookings {
		if booking.UserID == userID {
			out = append(out, booking)
		}
	}
	return out, nil
}

// FindActiveOverlapping returns every active booking on the vehicle without
// narrowing by date, so the service predicate has to make the call.
func (s *stubBookingStore) FindActiveOverlapping(vehicleID primitive.ObjectID, pickup, returnDate time.Time) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, booking := range s.bookings {
		if booking.VehicleID != vehicleID {
			continue
		}
		if booking.Status == models.BookingStatusBooked || booking.Status == models.BookingStatusCompleted {
			out = append(out, booking)
		}
	}
	return out, nil
}

func (s *stubBookingStore) UpdateStatus(id string, status string) (*models.Booking, error) {
	booking, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	booking.Status = status
	return booking, nil
}

func (s *stubBookingStore) MarkPaid(id string, paymentRef string) (*models.Booking, error) {
	booking, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	booking.Paid = true
	booking.PaymentRef = paymentRef
	booking.PaidAt = &now
	return booking, nil
}

func (s *stubBookingStore) Count() (int64, error) {
	return int64(len(s.bookings)), nil
}

func (s *stubBookingStore) CountByStatus(status string) (int64, error) {
	var n int64
	for _, booking := range s.bookings {
		if booking.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *stubBookingStore) SumCompletedCreatedBetween(from, to time.Time) (float64, error) {
	var sum float64
	for _, booking := range s.bookings {
		if booking.Status == models.BookingStatusCompleted && !booking.CreatedAt.Before(from) && booking.CreatedAt.Before(to) {
			sum += booking.TotalPrice
		}
	}
	return sum, nil
}

type stubVehicleFinder struct {
	vehicles map[string]*models.Vehicle
}

func (s *stubVehicleFinder) FindByID(id string) (*models.Vehicle, error) {
	vehicle, ok := s.vehicles[id]
	if !ok {
		return nil, errors.New("vehicle not found")
	}
	return vehicle, nil
}

type stubUserFinder struct {
	users map[string]*models.User
}

func (s *stubUserFinder) FindByID(id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func newBookingFixture(t *testing.T) (*BookingService, *stubBookingStore, *models.Vehicle, Caller) {
	t.Helper()

	vehicle := &models.Vehicle{
		ID:          primitive.NewObjectID(),
		Name:        "Corolla",
		Brand:       "Toyota",
		PricePerDay: 1000,
		Available:   true,
	}
	user := &models.User{ID: primitive.NewObjectID(), Username: "wanjiku", Role: models.RoleUser}

	store := newStubBookingStore()
	service := NewBookingService(
		store,
		&stubVehicleFinder{vehicles: map[string]*models.Vehicle{vehicle.ID.Hex(): vehicle}},
		&stubUserFinder{users: map[string]*models.User{user.ID.Hex(): user}},
	)

	return service, store, vehicle, Caller{UserID: user.ID.Hex(), Role: models.RoleUser}
}

func TestCreateBooking_ConflictDecision(t *testing.T) {
	service, store, vehicle, caller := newBookingFixture(t)

	_, err := service.CreateBooking(caller, &CreateBookingRequest{
		VehicleID:  vehicle.ID.Hex(),
		PickupDate: date(2026, time.March, 1),
		ReturnDate: date(2026, time.March, 5),
	})
	require.NoError(t, err)

	t.Run("touching endpoints conflict", func(t *testing.T) {
		_, err := service.CreateBooking(caller, &CreateBookingRequest{
			VehicleID:  vehicle.ID.Hex(),
			PickupDate: date(2026, time.March, 5),
			ReturnDate: date(2026, time.March, 8),
		})
		require.Error(t, err)
		assert.Equal(t, "vehicle is already booked for the selected dates", err.Error())
	})

	t.Run("day after return is free", func(t *testing.T) {
		booking, err := service.CreateBooking(caller, &CreateBookingRequest{
			VehicleID:  vehicle.ID.Hex(),
			PickupDate: date(2026, time.March, 6),
			ReturnDate: date(2026, time.March, 10),
		})
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusBooked, booking.Status)
		assert.Equal(t, 4000.0, booking.TotalPrice)
	})

	assert.Len(t, store.created, 2)
}

func TestCreateBooking_BlockedUser(t *testing.T) {
	vehicle := &models.Vehicle{ID: primitive.NewObjectID(), PricePerDay: 500, Available: true}
	user := &models.User{ID: primitive.NewObjectID(), Blocked: true}

	service := NewBookingService(
		newStubBookingStore(),
		&stubVehicleFinder{vehicles: map[string]*models.Vehicle{vehicle.ID.Hex(): vehicle}},
		&stubUserFinder{users: map[string]*models.User{user.ID.Hex(): user}},
	)

	_, err := service.CreateBooking(Caller{UserID: user.ID.Hex(), Role: models.RoleUser}, &CreateBookingRequest{
		VehicleID:  vehicle.ID.Hex(),
		PickupDate: date(2026, time.April, 1),
		ReturnDate: date(2026, time.April, 3),
	})
	require.Error(t, err)
	assert.Equal(t, "account is blocked", err.Error())
}

func TestCancelBooking_OwnerOnly(t *testing.T) {
	service, store, vehicle, caller := newBookingFixture(t)

	booking, err := service.CreateBooking(caller, &CreateBookingRequest{
		VehicleID:  vehicle.ID.Hex(),
		PickupDate: date(2026, time.May, 1),
		ReturnDate: date(2026, time.May, 3),
	})
	require.NoError(t, err)

	stranger := Caller{UserID: primitive.NewObjectID().Hex(), Role: models.RoleUser}
	err = service.CancelBooking(stranger, booking.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, "only the booking owner can cancel it", err.Error())

	stored, err := store.FindByID(booking.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusBooked, stored.Status)

	require.NoError(t, service.CancelBooking(caller, booking.ID.Hex()))
	stored, err = store.FindByID(booking.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, stored.Status)
}

func TestCheckConflict_InclusiveBounds(t *testing.T) {
	service, _, vehicle, caller := newBookingFixture(t)

	_, err := service.CreateBooking(caller, &CreateBookingRequest{
		VehicleID:  vehicle.ID.Hex(),
		PickupDate: date(2026, time.June, 1),
		ReturnDate: date(2026, time.June, 5),
	})
	require.NoError(t, err)

	conflict, err := service.CheckConflict(&CheckConflictRequest{
		VehicleID:  vehicle.ID.Hex(),
		PickupDate: date(2026, time.June, 5),
		ReturnDate: date(2026, time.June, 8),
	})
	require.NoError(t, err)
	assert.True(t, conflict)

	conflict, err = service.CheckConflict(&CheckConflictRequest{
		VehicleID:  vehicle.ID.Hex(),
		PickupDate: date(2026, time.June, 6),
		ReturnDate: date(2026, time.June, 10),
	})
	require.NoError(t, err)
	assert.False(t, conflict)
}
