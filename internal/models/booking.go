package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking lifecycle statuses. Booked is the initial state; cancelled and
// completed are terminal for users, though admins may move a booking to any
// status through the status update path.
const (
	BookingStatusBooked    = "booked"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// ActiveBookingStatuses are the statuses that occupy a vehicle's calendar
// for conflict checking.
var ActiveBookingStatuses = []string{BookingStatusBooked, BookingStatusCompleted}

type Booking struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"userId"`
	VehicleID      primitive.ObjectID `bson:"vehicle_id" json:"vehicleId"`
	PickupDate     time.Time          `bson:"pickup_date" json:"pickupDate"`
	ReturnDate     time.Time          `bson:"return_date" json:"returnDate"`
	TotalPrice     float64            `bson:"total_price" json:"totalPrice"`
	Status         string             `bson:"status" json:"status"`
	Paid           bool               `bson:"paid" json:"paid"`
	PaidAt         *time.Time         `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	PaymentOrderID string             `bson:"payment_order_id,omitempty" json:"paymentOrderId,omitempty"`
	PaymentRef     string             `bson:"payment_ref,omitempty" json:"paymentRef,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// BookingWithVehicle embeds the vehicle document for user-facing listings.
type BookingWithVehicle struct {
	Booking `bson:",inline"`
	Vehicle *Vehicle `json:"vehicle,omitempty"`
}

// BookingDetail embeds both vehicle and user for the admin listing.
type BookingDetail struct {
	Booking `bson:",inline"`
	Vehicle *Vehicle  `json:"vehicle,omitempty"`
	User    *AuthUser `json:"user,omitempty"`
}

// BookingStats is the admin dashboard aggregate. The earnings windows nest:
// an amount counted for today is also counted for the month and year.
type BookingStats struct {
	TodayEarnings     float64 `json:"todayEarnings"`
	MonthlyEarnings   float64 `json:"monthlyEarnings"`
	YearlyEarnings    float64 `json:"yearlyEarnings"`
	TotalBookings     int64   `json:"totalBookings"`
	CompletedBookings int64   `json:"completedBookings"`
	CancelledBookings int64   `json:"cancelledBookings"`
}
