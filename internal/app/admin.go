package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cinex/cinema-ticketing/api"
	"github.com/cinex/cinema-ticketing/internal/domain"
)

func (app *Application) CreateShowtime(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateShowtimeRequest

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

	if !input.StartTime.After(app.now()) {
		app.badRequestResponse(w, r, errors.New("startTime must be in the future"))
		return
	}

	movie, err := app.movieRepo.GetById(r.Context(), input.MovieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	showtime, err := domain.NewShowtime(movie, input.CinemaId, input.StartTime, input.Price, input.TotalSeats)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.showtimeRepo.Create(r.Context(), showtime)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrShowtimeOverlap):
			app.conflictResponse(w, r, err)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	logger.Info("showtime created", "showtime_id", showtime.ID, "cinema_id", showtime.CinemaID)

	resp := api.ShowtimeResponse{
		Id:             showtime.ID,
		MovieId:        showtime.MovieID,
		CinemaId:       showtime.CinemaID,
		StartTime:      showtime.StartTime,
		EndTime:        showtime.EndTime,
		Price:          showtime.Price,
		TotalSeats:     showtime.TotalSeats,
		AvailableSeats: showtime.AvailableSeats,
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/showtimes/%d/seat-map", showtime.ID))

	err = app.writeJSON(w, http.StatusCreated, resp, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteShowtime(w http.ResponseWriter, r *http.Request, showtimeID int) {
	hasBookings, err := app.bookingRepo.ExistsForShowtime(r.Context(), showtimeID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if hasBookings {
		app.conflictResponse(w, r, domain.ErrShowtimeHasBooking)
		return
	}

	err = app.showtimeRepo.Delete(r.Context(), showtimeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrShowtimeHasBooking):
			app.conflictResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.seatMapCache.Invalidate(r.Context(), showtimeID)
	if err != nil {
		app.contextGetLogger(r).Warn("failed to drop cached seat map", "showtime_id", showtimeID, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefundBooking refunds the booking's completed payment. Seats stay occupied
// unless releaseSeats=true is passed.
func (app *Application) RefundBooking(w http.ResponseWriter, r *http.Request, bookingID int) {
	logger := app.contextGetLogger(r)

	releaseSeats := false

	if v := r.URL.Query().Get("releaseSeats"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			app.badRequestResponse(w, r, errors.New("releaseSeats must be true or false"))
			return
		}
		releaseSeats = parsed
	}

	payment, err := app.paymentRepo.Refund(r.Context(), bookingID, "Refunded by administrator")
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	logger.Info("booking refunded", "booking_id", bookingID, "payment_id", payment.ID)

	resp := api.RefundResponse{Payment: toPaymentResponse(payment)}

	if releaseSeats {
		_, err = app.canceller.ReleaseSeats(r.Context(), bookingID)
		if err != nil {
			// the refund is committed; the seats can be released separately
			logger.Error("refund succeeded but seats were not released", "booking_id", bookingID, "error", err)
		} else {
			resp.SeatsReleased = true
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ReleaseBookingSeats frees the seats of an already refunded booking.
func (app *Application) ReleaseBookingSeats(w http.ResponseWriter, r *http.Request, bookingID int) {
	booking, err := app.canceller.ReleaseSeats(r.Context(), bookingID)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
