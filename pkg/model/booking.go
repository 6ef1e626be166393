package model

import (
	"time"
)

const (
	BookingPending   = "pending"
	BookingActive    = "active"
	BookingCancelled = "cancelled"
)

type Booking struct {
	ID          string    `json:"id"`
	ResourceID  string    `json:"resource_id"`
	RequesterID string    `json:"requester_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func (b *Booking) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}

func (b *Booking) Clone() *Booking {
	c := *b
	return &c
}

// BookingRequest is the inbound shape of a create call. Interval ordering is
// checked by the ledger, not here, so the ledger's rejection order holds.
type BookingRequest struct {
	RequesterID string    `json:"requester_id" validate:"required,max=64,printable_id"`
	ResourceID  string    `json:"resource_id" validate:"required,max=64,printable_id"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required"`
}

type Requester struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
