// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a new detailing booking is
// accepted. It carries enough for downstream consumers (confirmation
// mail, shop log) to act without querying the primary database.
type BookingCreatedEvent struct {
	BookingID   uint64   `json:"booking_id"`
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Car         string   `json:"car"`
	Services    []string `json:"services"`
	BookedFor   string   `json:"booked_for"`
	NeedsPickup bool     `json:"needs_pickup"`
	City        string   `json:"city"`
	CreatedAt   string   `json:"created_at"`
}
