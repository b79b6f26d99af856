package booking

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/cinex/cinema-ticketing/internal/booking"

type metrics struct {
	created       metric.Int64Counter
	cancelled     metric.Int64Counter
	released      metric.Int64Counter
	seatConflicts metric.Int64Counter
	retries       metric.Int64Counter
	seats         metric.Int64Histogram
}

func newMetrics() *metrics {
	meter := otel.Meter(instrumentationName)
	m := &metrics{}

	var err error

	m.created, err = meter.Int64Counter("bookings.created",
		metric.WithDescription("Bookings committed"),
		metric.WithUnit("{booking}"))
	handle(err)

	m.cancelled, err = meter.Int64Counter("bookings.cancelled",
		metric.WithDescription("Bookings cancelled by their owner"),
		metric.WithUnit("{booking}"))
	handle(err)

	m.released, err = meter.Int64Counter("bookings.seats_released",
		metric.WithDescription("Refunded bookings whose seats were released"),
		metric.WithUnit("{booking}"))
	handle(err)

	m.seatConflicts, err = meter.Int64Counter("bookings.seat_conflicts",
		metric.WithDescription("Booking attempts rejected because a seat was already taken"),
		metric.WithUnit("{request}"))
	handle(err)

	m.retries, err = meter.Int64Counter("bookings.retries",
		metric.WithDescription("Retries caused by concurrent showtime updates"),
		metric.WithUnit("{retry}"))
	handle(err)

	m.seats, err = meter.Int64Histogram("bookings.seats",
		metric.WithDescription("Seats per committed booking"),
		metric.WithUnit("{seat}"))
	handle(err)

	return m
}

func handle(err error) {
	if err != nil {
		otel.Handle(err)
	}
}

func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
