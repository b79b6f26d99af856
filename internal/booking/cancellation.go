package booking

import (
	"context"
	"fmt"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/cinex/cinema-ticketing/internal/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CancellationService reverses bookings and hands their seats back to the
// showtime.
type CancellationService struct {
	core
}

func NewCancellationService(
	showtimes domain.ShowtimeReader,
	bookings domain.BookingRepository,
	opts ...Option) *CancellationService {

	return &CancellationService{core: newCore(showtimes, bookings, opts)}
}

// Cancel cancels a Confirmed booking owned by userID. A booking owned by
// someone else is reported as not found. No refund is issued.
func (s *CancellationService) Cancel(ctx context.Context, bookingID, userID int) (booking *domain.Booking, err error) {
	ctx, span := tracer().Start(ctx, "CancellationService.Cancel", trace.WithAttributes(
		attribute.Int("booking.id", bookingID),
	))
	defer func() { endSpan(span, err) }()

	booking, err = s.withRetry(ctx, "cancel booking", func() (*domain.Booking, error) {
		booking, err := s.bookings.GetById(ctx, bookingID)
		if err != nil {
			return nil, err
		}

		if booking.UserID != userID {
			return nil, domain.ErrRecordNotFound
		}

		if booking.Status != domain.BookingStatusConfirmed {
			return nil, fmt.Errorf("%w: booking is %s", domain.ErrInvalidState, booking.Status)
		}

		showtime, err := s.showtimes.GetById(ctx, booking.ShowtimeID)
		if err != nil {
			return nil, err
		}

		if !showtime.StartTime.After(s.now().Add(s.cutoff)) {
			return nil, domain.ErrTooLate
		}

		return s.release(ctx, booking, showtime, domain.BookingStatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.cancelled.Add(ctx, 1)
	s.logger.InfoContext(ctx, "booking cancelled", "booking_id", booking.ID, "showtime_id", booking.ShowtimeID)

	s.afterCommit(ctx, events.TypeBookingCancelled, booking)

	return booking, nil
}

// ReleaseSeats frees the seats of a refunded booking. Refunds leave seats
// occupied; this is the explicit step a refund flow calls when it wants
// them back on sale. It may run once per booking.
func (s *CancellationService) ReleaseSeats(ctx context.Context, bookingID int) (booking *domain.Booking, err error) {
	ctx, span := tracer().Start(ctx, "CancellationService.ReleaseSeats", trace.WithAttributes(
		attribute.Int("booking.id", bookingID),
	))
	defer func() { endSpan(span, err) }()

	booking, err = s.withRetry(ctx, "release seats", func() (*domain.Booking, error) {
		booking, err := s.bookings.GetById(ctx, bookingID)
		if err != nil {
			return nil, err
		}

		if booking.Status != domain.BookingStatusRefunded || booking.SeatsReleased {
			return nil, fmt.Errorf("%w: seats of a %s booking cannot be released", domain.ErrInvalidState, booking.Status)
		}

		showtime, err := s.showtimes.GetById(ctx, booking.ShowtimeID)
		if err != nil {
			return nil, err
		}

		return s.release(ctx, booking, showtime, booking.Status)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.released.Add(ctx, 1)
	s.logger.InfoContext(ctx, "refunded booking seats released", "booking_id", booking.ID, "showtime_id", booking.ShowtimeID)

	s.afterCommit(ctx, events.TypeSeatsReleased, booking)

	return booking, nil
}

func (s *CancellationService) release(
	ctx context.Context,
	booking *domain.Booking,
	showtime *domain.Showtime,
	status domain.BookingStatus) (*domain.Booking, error) {

	updated, err := releaseSeats(showtime, booking)
	if err != nil {
		return nil, err
	}

	next := *booking
	next.Status = status
	next.SeatsReleased = true

	err = s.bookings.UpdateWithShowtime(ctx, &next, booking.Status, updated)
	if err != nil {
		return nil, err
	}

	return &next, nil
}
