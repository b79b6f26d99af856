package events

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeBookingConfirmed Type = "booking.confirmed"
	TypeBookingCancelled Type = "booking.cancelled"
	TypeSeatsReleased    Type = "booking.seats_released"
)

// BookingEvent is published after a booking state change has been committed.
type BookingEvent struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	BookingID   int       `json:"bookingId"`
	ShowtimeID  int       `json:"showtimeId"`
	UserID      int       `json:"userId"`
	SeatIndices []int     `json:"seatIndices"`
	TotalAmount string    `json:"totalAmount"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func NewBookingEvent(t Type, bookingID, showtimeID, userID int, seats []int, totalAmount string, at time.Time) BookingEvent {
	return BookingEvent{
		ID:          uuid.New().String(),
		Type:        t,
		BookingID:   bookingID,
		ShowtimeID:  showtimeID,
		UserID:      userID,
		SeatIndices: seats,
		TotalAmount: totalAmount,
		OccurredAt:  at.UTC(),
	}
}
