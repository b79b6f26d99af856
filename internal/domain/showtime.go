package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Showtime struct {
	ID             int
	MovieID        int
	CinemaID       int
	StartTime      time.Time
	EndTime        time.Time
	Price          decimal.Decimal
	TotalSeats     int
	AvailableSeats int
	SeatsPerRow    int
	SeatMap        SeatMap
	// Version is the row token checked on every seat map update.
	Version   int
	CreatedAt time.Time
}

type ShowtimeSummary struct {
	ID             int
	MovieTitle     string
	CinemaName     string
	StartTime      time.Time
	EndTime        time.Time
	Price          decimal.Decimal
	AvailableSeats int
	TotalSeats     int
}

// NewShowtime builds a showtime with an all-free seat map. The end time is
// derived from the movie duration.
func NewShowtime(movie *Movie, cinemaID int, start time.Time, price decimal.Decimal, totalSeats int) (*Showtime, error) {
	seatMap, err := NewSeatMap(totalSeats)
	if err != nil {
		return nil, err
	}

	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidRequest)
	}

	return &Showtime{
		MovieID:        movie.ID,
		CinemaID:       cinemaID,
		StartTime:      start,
		EndTime:        start.Add(time.Duration(movie.Duration) * time.Minute),
		Price:          price,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		SeatsPerRow:    DefaultSeatsPerRow,
		SeatMap:        seatMap,
	}, nil
}

// CheckInvariant reports whether the available seat counter agrees with
// the seat map.
func (s *Showtime) CheckInvariant() error {
	if s.SeatMap.Len() != s.TotalSeats {
		return fmt.Errorf("showtime %d: seat map length %d does not match total seats %d",
			s.ID, s.SeatMap.Len(), s.TotalSeats)
	}

	if want := s.TotalSeats - s.SeatMap.CountOccupied(); s.AvailableSeats != want {
		return fmt.Errorf("showtime %d: available seats %d, seat map says %d", s.ID, s.AvailableSeats, want)
	}

	return nil
}

func (s *Showtime) Overlaps(other *Showtime) bool {
	return s.CinemaID == other.CinemaID &&
		s.StartTime.Before(other.EndTime) &&
		s.EndTime.After(other.StartTime)
}

type ShowtimeRepository interface {
	Create(ctx context.Context, showtime *Showtime) error
	GetById(ctx context.Context, id int) (*Showtime, error)
	GetUpcomingByMovieId(ctx context.Context, movieID int, from time.Time) ([]ShowtimeSummary, error)
	Delete(ctx context.Context, id int) error
}
