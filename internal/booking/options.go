package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/cinex/cinema-ticketing/internal/events"
)

const (
	DefaultMaxAttempts        = 3
	DefaultCancellationCutoff = time.Hour

	defaultInitialBackoff = 10 * time.Millisecond
	defaultMaxBackoff     = 100 * time.Millisecond
)

// SeatMapInvalidator drops cached seat map snapshots after a committed change.
type SeatMapInvalidator interface {
	Invalidate(ctx context.Context, showtimeID int) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
}

type settings struct {
	logger         *slog.Logger
	now            func() time.Time
	maxAttempts    uint
	initialBackoff time.Duration
	maxBackoff     time.Duration
	cutoff         time.Duration
	cache          SeatMapInvalidator
	publisher      EventPublisher
}

type Option func(*settings)

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithMaxAttempts bounds how many times an operation is tried when the
// showtime row changed underneath it.
func WithMaxAttempts(n uint) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithBackoff(initial, max time.Duration) Option {
	return func(s *settings) {
		s.initialBackoff = initial
		s.maxBackoff = max
	}
}

// WithCancellationCutoff sets the minimum lead time before the showtime
// start for a cancellation to be accepted.
func WithCancellationCutoff(d time.Duration) Option {
	return func(s *settings) {
		s.cutoff = d
	}
}

func WithSeatMapCache(cache SeatMapInvalidator) Option {
	return func(s *settings) {
		s.cache = cache
	}
}

func WithPublisher(publisher EventPublisher) Option {
	return func(s *settings) {
		s.publisher = publisher
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		logger:         slog.New(slog.DiscardHandler),
		now:            time.Now,
		maxAttempts:    DefaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
		cutoff:         DefaultCancellationCutoff,
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}
