package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/cinex/cinema-ticketing/internal/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// BookingService turns seat requests into persisted bookings while keeping
// a showtime's seat map and available seat counter in agreement.
type BookingService struct {
	core
}

func NewBookingService(
	showtimes domain.ShowtimeReader,
	bookings domain.BookingRepository,
	opts ...Option) *BookingService {

	return &BookingService{core: newCore(showtimes, bookings, opts)}
}

// BookSeats reserves exactly the requested seat indices.
func (s *BookingService) BookSeats(ctx context.Context, showtimeID, userID int, seatIndices []int) (booking *domain.Booking, err error) {
	ctx, span := tracer().Start(ctx, "BookingService.BookSeats", trace.WithAttributes(
		attribute.Int("showtime.id", showtimeID),
		attribute.Int("booking.seat_count", len(seatIndices)),
	))
	defer func() { endSpan(span, err) }()

	return s.reserve(ctx, "seats", showtimeID, userID, func(*domain.Showtime) ([]int, error) {
		if len(seatIndices) == 0 {
			return nil, fmt.Errorf("%w: at least one seat must be selected", domain.ErrInvalidRequest)
		}

		return seatIndices, nil
	})
}

// BookTickets reserves the first count free seats of the showtime.
func (s *BookingService) BookTickets(ctx context.Context, showtimeID, userID, count int) (booking *domain.Booking, err error) {
	ctx, span := tracer().Start(ctx, "BookingService.BookTickets", trace.WithAttributes(
		attribute.Int("showtime.id", showtimeID),
		attribute.Int("booking.seat_count", count),
	))
	defer func() { endSpan(span, err) }()

	return s.reserve(ctx, "tickets", showtimeID, userID, func(showtime *domain.Showtime) ([]int, error) {
		seats, err := showtime.SeatMap.FirstFree(count)
		if errors.Is(err, domain.ErrSeatConflict) {
			return nil, &domain.SeatUnavailableError{}
		}

		return seats, err
	})
}

type seatPicker func(showtime *domain.Showtime) ([]int, error)

// reserve runs one booking attempt per retry. method names the way seats
// are chosen, for logs and metrics.
func (s *BookingService) reserve(ctx context.Context, method string, showtimeID, userID int, pick seatPicker) (*domain.Booking, error) {
	attrs := metric.WithAttributes(
		attribute.Int("showtime.id", showtimeID),
		attribute.String("booking.method", method),
	)

	booking, err := s.withRetry(ctx, "book "+method, func() (*domain.Booking, error) {
		showtime, err := s.showtimes.GetById(ctx, showtimeID)
		if err != nil {
			return nil, err
		}

		if !showtime.StartTime.After(s.now()) {
			return nil, fmt.Errorf("%w: showtime has already started", domain.ErrInvalidRequest)
		}

		seats, err := pick(showtime)
		if err != nil {
			return nil, err
		}

		next, err := showtime.SeatMap.Occupy(seats)
		if err != nil {
			var conflict *domain.SeatConflictError

			switch {
			case errors.As(err, &conflict):
				return nil, &domain.SeatUnavailableError{Seats: conflict.Indices}
			case errors.Is(err, domain.ErrIndexOutOfRange):
				return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
			default:
				return nil, err
			}
		}

		updated := *showtime
		updated.SeatMap = next
		updated.AvailableSeats -= len(seats)

		if err := updated.CheckInvariant(); err != nil {
			return nil, err
		}

		booking := domain.NewBooking(userID, showtime, seats)

		err = s.bookings.Create(ctx, &booking, &updated)
		if err != nil {
			return nil, err
		}

		return &booking, nil
	})

	if err != nil {
		if errors.Is(err, domain.ErrSeatUnavailable) {
			s.metrics.seatConflicts.Add(ctx, 1, attrs)
		}

		return nil, err
	}

	s.metrics.created.Add(ctx, 1, attrs)
	s.metrics.seats.Record(ctx, int64(booking.TicketCount), attrs)
	s.logger.InfoContext(ctx, "booking created",
		"booking_id", booking.ID,
		"showtime_id", showtimeID,
		"user_id", userID,
		"seats", booking.SeatIndices)

	s.afterCommit(ctx, events.TypeBookingConfirmed, booking)

	return booking, nil
}
