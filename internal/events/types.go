package events

import (
	"time"

	"github.com/gorilla/websocket"
)

// Event types broadcast to connected clients. Events carry identifiers
// only; consumers re-fetch authoritative state on receipt.
const (
	TypeVehicleChanged = "vehicle-changed"
	TypeBookingChanged = "booking-changed"
)

// Event is a state-change notification. Exactly one of VehicleID or
// BookingID is set, matching the event type.
type Event struct {
	Type      string    `json:"type"`
	VehicleID string    `json:"vehicleId,omitempty"`
	BookingID string    `json:"bookingId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// VehicleChanged builds a vehicle-changed event.
func VehicleChanged(vehicleID string) Event {
	return Event{
		Type:      TypeVehicleChanged,
		VehicleID: vehicleID,
		Timestamp: time.Now(),
	}
}

// BookingChanged builds a booking-changed event.
func BookingChanged(bookingID string) Event {
	return Event{
		Type:      TypeBookingChanged,
		BookingID: bookingID,
		Timestamp: time.Now(),
	}
}

// Publisher is the narrow capability services depend on to announce state
// changes. Delivery is best-effort: no acknowledgment, no replay.
type Publisher interface {
	Publish(event Event) error
}

// Client represents a WebSocket client connection
type Client struct {
	ID       string
	Conn     *websocket.Conn
	Send     chan Event
	LastPing time.Time
	IsActive bool
}

// ClientStats provides statistics about connected clients
type ClientStats struct {
	TotalClients    int `json:"totalClients"`
	ActiveClients   int `json:"activeClients"`
	InactiveClients int `json:"inactiveClients"`
}
