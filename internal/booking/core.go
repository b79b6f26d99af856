package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/cinex/cinema-ticketing/internal/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// core holds what BookingService and CancellationService share: the
// repositories, the optimistic retry loop and the post-commit side effects.
type core struct {
	settings
	showtimes domain.ShowtimeReader
	bookings  domain.BookingRepository
	metrics   *metrics
}

func newCore(showtimes domain.ShowtimeReader, bookings domain.BookingRepository, opts []Option) core {
	return core{
		settings:  newSettings(opts),
		showtimes: showtimes,
		bookings:  bookings,
		metrics:   newMetrics(),
	}
}

// withRetry runs attempt until it succeeds, fails with anything other than
// ErrEditConflict, or the attempt budget is spent. Each attempt must re-read
// the rows it writes.
func (c *core) withRetry(ctx context.Context, op string, attempt func() (*domain.Booking, error)) (*domain.Booking, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = c.maxBackoff

	tries := 0

	booking, err := backoff.Retry(ctx, func() (*domain.Booking, error) {
		tries++

		booking, err := attempt()
		if err == nil {
			return booking, nil
		}

		if errors.Is(err, domain.ErrEditConflict) {
			return nil, err
		}

		return nil, backoff.Permanent(err)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.metrics.retries.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
			c.logger.DebugContext(ctx, "concurrent showtime update, retrying",
				"operation", op, "attempt", tries, "backoff", next)
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	if err != nil && errors.Is(err, domain.ErrEditConflict) {
		c.logger.WarnContext(ctx, "giving up after concurrent showtime updates", "operation", op, "attempts", tries)
		return nil, fmt.Errorf("%s: gave up after %d attempts: %w", op, tries, domain.ErrEditConflict)
	}

	return booking, err
}

func (c *core) afterCommit(ctx context.Context, t events.Type, booking *domain.Booking) {
	if c.cache != nil {
		err := c.cache.Invalidate(ctx, booking.ShowtimeID)
		if err != nil {
			c.logger.ErrorContext(ctx, "failed to invalidate cached seat map",
				"showtime_id", booking.ShowtimeID, "error", err)
		}
	}

	if c.publisher != nil {
		event := events.NewBookingEvent(
			t,
			booking.ID,
			booking.ShowtimeID,
			booking.UserID,
			booking.SeatIndices,
			booking.TotalAmount.StringFixed(2),
			c.now(),
		)

		err := c.publisher.Publish(ctx, event)
		if err != nil {
			c.logger.ErrorContext(ctx, "failed to publish booking event",
				"event_type", t, "booking_id", booking.ID, "error", err)
		}
	}
}

// releaseSeats returns a copy of showtime with the booking's seats freed.
func releaseSeats(showtime *domain.Showtime, booking *domain.Booking) (*domain.Showtime, error) {
	next, err := showtime.SeatMap.Release(booking.SeatIndices)
	if err != nil {
		return nil, fmt.Errorf("booking %d seats out of sync with showtime %d: %w", booking.ID, showtime.ID, err)
	}

	updated := *showtime
	updated.SeatMap = next
	updated.AvailableSeats += booking.TicketCount

	if err := updated.CheckInvariant(); err != nil {
		return nil, err
	}

	return &updated, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}
