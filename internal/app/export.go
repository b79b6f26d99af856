package app

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cinex/cinema-ticketing/api"
)

const exportTimeLayout = "2006-01-02 15:04"

var exportHeader = []string{
	"BookingID", "Movie", "Cinema", "Showtime", "Seats", "Tickets", "TotalAmount", "Status", "BookingDate",
}

// ExportBookingsOfUser returns the user's bookings as a downloadable CSV or
// JSON file, chosen by the format query parameter.
func (app *Application) ExportBookingsOfUser(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	if format != "csv" && format != "json" {
		app.badRequestResponse(w, r, errors.New("format must be csv or json"))
		return
	}

	userId := app.contextGetUserId(r)

	summaries, err := app.bookingRepo.GetSummariesByUserId(r.Context(), userId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	bookings := toBookingSummaries(summaries)

	if format == "json" {
		headers := http.Header{"Content-Disposition": []string{`attachment; filename="bookings.json"`}}

		err = app.writeJSON(w, http.StatusOK, api.BookingsResponse{Bookings: bookings}, headers)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	cw.Write(exportHeader)

	for _, b := range bookings {
		cw.Write([]string{
			strconv.Itoa(b.BookingId),
			b.MovieTitle,
			b.CinemaName,
			b.StartTime.Format(exportTimeLayout),
			strings.Join(b.Seats, ", "),
			strconv.Itoa(b.TicketCount),
			b.TotalAmount.StringFixed(2),
			b.Status,
			b.BookingDate.Format(exportTimeLayout),
		})
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		// headers are gone, nothing left but to log
		app.logError(r, err)
	}
}
