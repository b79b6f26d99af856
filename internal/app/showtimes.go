package app

import (
	"errors"
	"net/http"

	"github.com/cinex/cinema-ticketing/api"
	"github.com/cinex/cinema-ticketing/internal/cache"
	"github.com/cinex/cinema-ticketing/internal/domain"
)

func (app *Application) GetShowtimesByMovie(w http.ResponseWriter, r *http.Request, movieID int) {
	_, err := app.movieRepo.GetById(r.Context(), movieID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	showtimes, err := app.showtimeRepo.GetUpcomingByMovieId(r.Context(), movieID, app.now())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ShowtimesResponse{Showtimes: make([]api.ShowtimeSummary, 0, len(showtimes))}

	for _, s := range showtimes {
		resp.Showtimes = append(resp.Showtimes, api.ShowtimeSummary{
			Id:             s.ID,
			MovieTitle:     s.MovieTitle,
			CinemaName:     s.CinemaName,
			StartTime:      s.StartTime,
			EndTime:        s.EndTime,
			Price:          s.Price,
			AvailableSeats: s.AvailableSeats,
			TotalSeats:     s.TotalSeats,
		})
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetSeatMap serves the seat map from the Redis snapshot when one exists.
// Cache failures fall back to the database.
func (app *Application) GetSeatMap(w http.ResponseWriter, r *http.Request, showtimeID int) {
	logger := app.contextGetLogger(r)

	cacheable := true

	snapshot, generation, err := app.seatMapCache.Get(r.Context(), showtimeID)
	if err != nil {
		logger.Warn("failed to read cached seat map", "showtime_id", showtimeID, "error", err)
		cacheable = false
	}

	if snapshot == nil {
		showtime, err := app.showtimeRepo.GetById(r.Context(), showtimeID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRecordNotFound):
				app.notFoundResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}

			return
		}

		s := cache.SnapshotOf(showtime)
		snapshot = &s

		if cacheable {
			stored, err := app.seatMapCache.Store(r.Context(), s, generation)
			switch {
			case err != nil:
				logger.Warn("failed to cache seat map", "showtime_id", showtimeID, "error", err)
			case !stored:
				logger.Debug("seat map changed while loading, not cached", "showtime_id", showtimeID)
			}
		}
	}

	resp, err := toSeatMapResponse(snapshot)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(snapshot *cache.SeatMapSnapshot) (api.SeatMapResponse, error) {
	seatMap, err := domain.ParseSeatMap(snapshot.SeatMap)
	if err != nil {
		return api.SeatMapResponse{}, err
	}

	views := seatMap.Seats(snapshot.SeatsPerRow)
	seats := make([]api.Seat, 0, len(views))

	for _, v := range views {
		seats = append(seats, api.Seat{Index: v.Index, Label: v.Label, Available: v.Available})
	}

	return api.SeatMapResponse{
		ShowtimeId:     snapshot.ShowtimeID,
		TotalSeats:     snapshot.TotalSeats,
		AvailableSeats: snapshot.AvailableSeats,
		SeatsPerRow:    snapshot.SeatsPerRow,
		SeatMap:        snapshot.SeatMap,
		Seats:          seats,
	}, nil
}
