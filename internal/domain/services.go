package domain

import "context"

// SeatBooker reserves seats on a showtime for a user.
type SeatBooker interface {
	BookSeats(ctx context.Context, showtimeID, userID int, seatIndices []int) (*Booking, error)
	BookTickets(ctx context.Context, showtimeID, userID, count int) (*Booking, error)
}

// BookingCanceller reverses bookings and returns their seats.
type BookingCanceller interface {
	Cancel(ctx context.Context, bookingID, userID int) (*Booking, error)
	ReleaseSeats(ctx context.Context, bookingID int) (*Booking, error)
}
