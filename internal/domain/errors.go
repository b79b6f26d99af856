package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrEditConflict       = errors.New("edit conflict")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrIndexOutOfRange    = errors.New("seat index out of range")
	ErrSeatConflict       = errors.New("seat occupancy conflict")
	ErrSeatUnavailable    = errors.New("seat(s) are already reserved")
	ErrInvalidState       = errors.New("booking cannot be changed in its current state")
	ErrTooLate            = errors.New("too close to showtime to cancel")
	ErrShowtimeOverlap    = errors.New("showtime overlaps with an existing showtime in the same cinema")
	ErrShowtimeHasBooking = errors.New("showtime has existing bookings")
	ErrAlreadyPaid        = errors.New("payment already processed for this booking")
	ErrInvalidCredentials = errors.New("invalid authentication credentials")
)

// SeatConflictError lists the seat indices whose state did not allow the
// requested transition.
type SeatConflictError struct {
	Indices []int
}

func (e *SeatConflictError) Error() string {
	if len(e.Indices) == 0 {
		return ErrSeatConflict.Error()
	}

	return fmt.Sprintf("%s: seats %s", ErrSeatConflict, joinIndices(e.Indices))
}

func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatConflict
}

// SeatUnavailableError is returned to callers when requested seats are
// already taken. Seats holds the conflicting indices so the client can
// re-render an up to date seat map.
type SeatUnavailableError struct {
	Seats []int
}

func (e *SeatUnavailableError) Error() string {
	if len(e.Seats) == 0 {
		return "not enough seats available"
	}

	return fmt.Sprintf("%s: %s", ErrSeatUnavailable, joinIndices(e.Seats))
}

func (e *SeatUnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}

func joinIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, v := range indices {
		parts[i] = strconv.Itoa(v)
	}

	return strings.Join(parts, ",")
}
