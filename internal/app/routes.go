package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestID)
	r.Use(app.logRequest)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/healthcheck", app.GetHealth)
	r.Post("/sessions", app.Login)

	r.Get("/movies/{movieId}/showtimes", app.withID("movieId", app.GetShowtimesByMovie))
	r.Get("/showtimes/{showtimeId}/seat-map", app.withID("showtimeId", app.GetSeatMap))
	r.Get("/concessions", app.GetConcessions)

	r.Group(func(r chi.Router) {
		r.Use(app.requireAuthentication)

		r.Delete("/sessions", app.Logout)

		r.Post("/showtimes/{showtimeId}/bookings", app.withID("showtimeId", app.CreateBooking))
		r.Post("/bookings/{bookingId}/payment", app.withID("bookingId", app.ProcessPayment))
		r.Post("/bookings/{bookingId}/concessions", app.withID("bookingId", app.CreateConcessionOrder))
		r.Get("/users/me/concession-orders", app.GetConcessionOrdersOfUser)

		r.Route("/users/me/bookings", func(r chi.Router) {
			r.Get("/", app.GetBookingsOfUser)
			r.Get("/export", app.ExportBookingsOfUser)
			r.Delete("/{bookingId}", app.withID("bookingId", app.CancelBooking))
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(app.requireAuthentication)
		r.Use(app.requireAdmin)

		r.Post("/showtimes", app.CreateShowtime)
		r.Delete("/showtimes/{showtimeId}", app.withID("showtimeId", app.DeleteShowtime))
		r.Post("/bookings/{bookingId}/refund", app.withID("bookingId", app.RefundBooking))
		r.Post("/bookings/{bookingId}/release-seats", app.withID("bookingId", app.ReleaseBookingSeats))
	})

	return r
}
