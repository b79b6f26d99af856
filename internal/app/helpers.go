package app

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cinex/cinema-ticketing/internal/jsonutil"
	"github.com/go-chi/chi/v5"
)

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	return jsonutil.WriteJSON(w, status, data, headers)
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return jsonutil.ReadJSON(w, r, dst)
}

// withID reads a positive integer path parameter and hands it to fn.
func (app *Application) withID(param string, fn func(http.ResponseWriter, *http.Request, int)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, param))
		if err != nil || id < 1 {
			app.badRequestResponse(w, r, fmt.Errorf("%s must be a positive integer", param))
			return
		}

		fn(w, r, id)
	}
}
