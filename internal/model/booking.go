package model

import "time"

// BookingStatus tracks a vehicle through the shop.
type BookingStatus string

const (
	BookingWaiting    BookingStatus = "waiting"
	BookingInProgress BookingStatus = "in_progress"
	BookingReady      BookingStatus = "ready"
	BookingDelivered  BookingStatus = "delivered"
)

// Valid reports whether s is a known status value.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingWaiting, BookingInProgress, BookingReady, BookingDelivered:
		return true
	}
	return false
}

// Address is where the car is picked up when the customer asks for it.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
}

// Booking is one scheduled detailing job. Services holds the names of the
// catalog services booked; CustomerID links the booking to a customer
// account when one was involved, and is nil for anonymous walk-ins.
type Booking struct {
	ID           uint64        `json:"id"`
	FullName     string        `json:"fullName"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Car          string        `json:"car"`
	LicensePlate string        `json:"licensePlate"`
	Services     []string      `json:"services"`
	Date         time.Time     `json:"date"`
	Address      Address       `json:"address"`
	NeedsPickup  bool          `json:"needsPickup"`
	Status       BookingStatus `json:"status"`
	CustomerID   *uint64       `json:"customerId,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
