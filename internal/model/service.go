package model

import "time"

// Service is one entry of the detailing catalog. Prices are stored in
// cents to avoid float money; DurationMin is the estimated job length.
type Service struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  uint32    `json:"priceCents"`
	DurationMin uint32    `json:"durationMin"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
