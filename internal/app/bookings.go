package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cinex/cinema-ticketing/api"
	"github.com/cinex/cinema-ticketing/internal/domain"
)

func (app *Application) CreateBooking(w http.ResponseWriter, r *http.Request, showtimeID int) {
	logger := app.contextGetLogger(r)

	var input api.CreateBookingRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	var booking *domain.Booking

	switch {
	case input.Seats != nil && input.TicketCount != nil:
		app.badRequestResponse(w, r, errors.New("provide either seats or ticketCount, not both"))
		return
	case input.Seats != nil:
		booking, err = app.seatBooker.BookSeats(r.Context(), showtimeID, userId, input.Seats)
	case input.TicketCount != nil:
		booking, err = app.seatBooker.BookTickets(r.Context(), showtimeID, userId, *input.TicketCount)
	default:
		app.badRequestResponse(w, r, errors.New("either seats or ticketCount is required"))
		return
	}

	if err != nil {
		if errors.Is(err, domain.ErrSeatUnavailable) {
			logger.Info("booking rejected, seats unavailable", "showtime_id", showtimeID, "error", err)
		}

		app.bookingErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/users/me/bookings/%d", booking.ID))

	err = app.writeJSON(w, http.StatusCreated, toBookingResponse(booking), headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelBooking(w http.ResponseWriter, r *http.Request, bookingID int) {
	userId := app.contextGetUserId(r)

	booking, err := app.canceller.Cancel(r.Context(), bookingID, userId)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	app.background(r, func(ctx context.Context, logger *slog.Logger) {
		app.sendBookingMail(ctx, logger, booking, "booking_cancelled.tmpl", nil)
	})

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingsOfUser(w http.ResponseWriter, r *http.Request) {
	userId := app.contextGetUserId(r)

	bookings, err := app.bookingRepo.GetSummariesByUserId(r.Context(), userId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BookingsResponse{Bookings: toBookingSummaries(bookings)}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// sendBookingMail emails the booking owner. Failures are logged only.
func (app *Application) sendBookingMail(
	ctx context.Context,
	logger *slog.Logger,
	booking *domain.Booking,
	templateFile string,
	extra map[string]any) {

	user, err := app.userRepo.GetById(ctx, booking.UserID)
	if err != nil {
		logger.Error("failed to load user for booking email", "booking_id", booking.ID, "error", err)
		return
	}

	data := map[string]any{
		"username":  user.Username,
		"bookingId": booking.ID,
		"seats":     strings.Join(booking.SeatLabels(), ", "),
		"amount":    booking.TotalAmount.StringFixed(2),
	}

	showtime, err := app.showtimeRepo.GetById(ctx, booking.ShowtimeID)
	if err == nil {
		data["startTime"] = showtime.StartTime.Format("Jan 2, 2006 15:04")

		movie, err := app.movieRepo.GetById(ctx, showtime.MovieID)
		if err == nil {
			data["movieTitle"] = movie.Title
		}
	}

	for k, v := range extra {
		data[k] = v
	}

	err = app.mailer.Send(user.Email, templateFile, data)
	if err != nil {
		logger.Error("failed to send booking email", "booking_id", booking.ID, "template", templateFile, "error", err)
		return
	}

	logger.Info("booking email sent", "booking_id", booking.ID, "template", templateFile)
}

func toBookingResponse(b *domain.Booking) api.BookingResponse {
	return api.BookingResponse{
		Id:          b.ID,
		ShowtimeId:  b.ShowtimeID,
		Seats:       b.SeatIndices,
		SeatLabels:  b.SeatLabels(),
		TicketCount: b.TicketCount,
		TotalAmount: b.TotalAmount,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
	}
}

func toBookingSummaries(bookings []domain.BookingSummary) []api.BookingSummary {
	result := make([]api.BookingSummary, 0, len(bookings))

	for _, b := range bookings {
		labels := make([]string, len(b.SeatIndices))
		for i, idx := range b.SeatIndices {
			labels[i] = domain.SeatLabel(idx, b.SeatsPerRow)
		}

		result = append(result, api.BookingSummary{
			BookingId:   b.BookingID,
			MovieTitle:  b.MovieTitle,
			CinemaName:  b.CinemaName,
			StartTime:   b.StartTime,
			Seats:       labels,
			TicketCount: b.TicketCount,
			TotalAmount: b.TotalAmount,
			Status:      string(b.Status),
			BookingDate: b.CreatedAt,
		})
	}

	return result
}
