package model

import "time"

// QuoteStatus is the approval state of a quote.
type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteApproved QuoteStatus = "approved"
	QuoteRejected QuoteStatus = "rejected"
)

// Valid reports whether s is a known quote status.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuotePending, QuoteApproved, QuoteRejected:
		return true
	}
	return false
}

// QuoteService is one priced line item of a quote. The price is frozen at
// quoting time so later catalog changes do not rewrite old quotes.
type QuoteService struct {
	Name       string `json:"name"`
	PriceCents uint32 `json:"priceCents"`
}

// Quote is a priced offer for a prospective customer. Number is the
// human-facing sequential identifier, e.g. "ORC-2026-0042".
type Quote struct {
	ID            uint64         `json:"id"`
	Number        string         `json:"quoteNumber"`
	CustomerName  string         `json:"customerName"`
	CustomerEmail string         `json:"customerEmail"`
	CustomerPhone string         `json:"customerPhone"`
	Services      []QuoteService `json:"services"`
	TotalCents    uint32         `json:"totalCents"`
	Status        QuoteStatus    `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}
