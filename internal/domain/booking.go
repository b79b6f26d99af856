package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
	BookingStatusCompleted BookingStatus = "Completed"
	BookingStatusRefunded  BookingStatus = "Refunded"
)

type Booking struct {
	ID          int
	UserID      int
	ShowtimeID  int
	SeatIndices []int
	TicketCount int
	TotalAmount decimal.Decimal
	Status      BookingStatus
	// SeatsReleased is set once the booking's seats went back to the showtime.
	SeatsReleased bool
	// SeatsPerRow is the row width of the showtime, used for seat labels.
	SeatsPerRow int
	CreatedAt   time.Time
	UpdatedAt     time.Time
}

func NewBooking(userID int, showtime *Showtime, seatIndices []int) Booking {
	seats := make([]int, len(seatIndices))
	copy(seats, seatIndices)

	return Booking{
		UserID:      userID,
		ShowtimeID:  showtime.ID,
		SeatIndices: seats,
		TicketCount: len(seats),
		TotalAmount: showtime.Price.Mul(decimal.NewFromInt(int64(len(seats)))),
		Status:      BookingStatusConfirmed,
		SeatsPerRow: showtime.SeatsPerRow,
	}
}

// SeatLabels names the booked seats in the showtime's row layout.
func (b *Booking) SeatLabels() []string {
	labels := make([]string, len(b.SeatIndices))
	for i, idx := range b.SeatIndices {
		labels[i] = SeatLabel(idx, b.SeatsPerRow)
	}

	return labels
}

type BookingSummary struct {
	BookingID   int
	MovieTitle  string
	CinemaName  string
	StartTime   time.Time
	SeatIndices []int
	SeatsPerRow int
	TicketCount int
	TotalAmount decimal.Decimal
	Status      BookingStatus
	CreatedAt   time.Time
}

type BookingRepository interface {
	// Create stores the booking and the showtime's new seat state in one
	// transaction. It returns ErrEditConflict when the showtime version
	// changed since it was read.
	Create(ctx context.Context, booking *Booking, showtime *Showtime) error
	// UpdateWithShowtime persists a booking status change together with the
	// showtime's seat state, with the same version check as Create. The
	// booking must still be in status from with its seats held, otherwise
	// nothing is written and ErrEditConflict is returned.
	UpdateWithShowtime(ctx context.Context, booking *Booking, from BookingStatus, showtime *Showtime) error
	GetById(ctx context.Context, id int) (*Booking, error)
	GetSummariesByUserId(ctx context.Context, userID int) ([]BookingSummary, error)
	ExistsForShowtime(ctx context.Context, showtimeID int) (bool, error)
}

// ShowtimeReader is the part of ShowtimeRepository the booking core reads from.
type ShowtimeReader interface {
	GetById(ctx context.Context, id int) (*Showtime, error)
}
