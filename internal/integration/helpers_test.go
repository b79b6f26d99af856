package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/cinex/cinema-ticketing/internal/repository"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	TestPassword = "Test123!@#"

	AliceId    = 1
	AliceEmail = "alice@example.com"
	BobId      = 2
	BobEmail   = "bob@example.com"
	AdminEmail = "admin@example.com"

	TestMovieId       = 1
	TestMovieTitle    = "Arrival"
	TestMovieDuration = 116
	TestCinemaId      = 1
	TestCinemaName    = "Hall 1"
	OtherCinemaId     = 2

	TestShowtimeId = 1
	TestTotalSeats = 100
	TestPrice      = "12.50"

	PopcornId      = 1
	PopcornPrice   = "6.99"
	PopcornStock   = 10
	WaterId        = 2
	WaterPrice     = "3.50"
	WaterStock     = 2
	RetiredSnackId = 3
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req
}

func compareResponse(t testing.TB, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func decode[T any](t testing.TB, res *http.Response) T {
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))

	return v
}

// resetState empties every table and seeds two users, an admin, one movie,
// two cinemas, a showtime starting three hours from now and a small
// concession catalog.
func resetState(t testing.TB, app *TestApp) {
	ctx := context.Background()

	_, err := app.DB.Exec(ctx, `
		TRUNCATE concession_order_items, concession_orders, concessions,
			payments, bookings, showtimes, cinemas, movies, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	require.NoError(t, app.Redis.FlushDB(ctx).Err())
	app.Mailer.Reset()

	insertUser(t, app.DB, "alice", AliceEmail, domain.RoleUser)
	insertUser(t, app.DB, "bob", BobEmail, domain.RoleUser)
	insertUser(t, app.DB, "admin", AdminEmail, domain.RoleAdmin)

	_, err = app.DB.Exec(ctx, `INSERT INTO movies (title, duration_minutes) VALUES ($1, $2)`,
		TestMovieTitle, TestMovieDuration)
	require.NoError(t, err)

	_, err = app.DB.Exec(ctx, `INSERT INTO cinemas (name) VALUES ($1), ($2)`, TestCinemaName, "Hall 2")
	require.NoError(t, err)

	insertShowtime(t, app.DB, TestCinemaId, time.Now().Add(3*time.Hour).Truncate(time.Minute))

	_, err = app.DB.Exec(ctx, `
		INSERT INTO concessions (name, category, price, stock_quantity, is_available)
		VALUES ('Small Popcorn', 'Popcorn', $1, $2, TRUE),
		       ('Bottled Water', 'Drinks', $3, $4, TRUE),
		       ('Licorice', 'Candy', 2.00, 50, FALSE)`,
		decimal.RequireFromString(PopcornPrice), PopcornStock, decimal.RequireFromString(WaterPrice), WaterStock)
	require.NoError(t, err)
}

func concessionStock(t testing.TB, db *pgxpool.Pool, id int) int {
	var stock int

	err := db.QueryRow(context.Background(), `SELECT stock_quantity FROM concessions WHERE id = $1`, id).Scan(&stock)
	require.NoError(t, err)

	return stock
}

func insertUser(t testing.TB, db *pgxpool.Pool, username, email string, role domain.Role) {
	var user domain.User
	require.NoError(t, user.Password.Set(TestPassword))

	_, err := db.Exec(context.Background(), `
		INSERT INTO users (username, email, password_hash, role) VALUES ($1, $2, $3, $4)`,
		username, email, user.Password.Hash, role)
	require.NoError(t, err)
}

func insertShowtime(t testing.TB, db *pgxpool.Pool, cinemaId int, start time.Time) *domain.Showtime {
	movie := &domain.Movie{ID: TestMovieId, Title: TestMovieTitle, Duration: TestMovieDuration}

	showtime, err := domain.NewShowtime(movie, cinemaId, start, decimal.RequireFromString(TestPrice), TestTotalSeats)
	require.NoError(t, err)

	err = repository.NewPostgresShowtimeRepository(db).Create(context.Background(), showtime)
	require.NoError(t, err)

	return showtime
}

// moveShowtime shifts the showtime's start, e.g. to put it inside the
// cancellation cutoff.
func moveShowtime(t testing.TB, db *pgxpool.Pool, showtimeId int, start time.Time) {
	_, err := db.Exec(context.Background(), `
		UPDATE showtimes
		SET start_time = $2, end_time = $2 + make_interval(mins => $3::int)
		WHERE id = $1`, showtimeId, start, TestMovieDuration)
	require.NoError(t, err)
}

type showtimeRow struct {
	AvailableSeats int
	SeatMap        string
	Version        int
}

func loadShowtimeRow(t testing.TB, db *pgxpool.Pool, showtimeId int) showtimeRow {
	var row showtimeRow

	err := db.QueryRow(context.Background(),
		`SELECT available_seats, seat_map, version FROM showtimes WHERE id = $1`, showtimeId).
		Scan(&row.AvailableSeats, &row.SeatMap, &row.Version)
	require.NoError(t, err)

	return row
}

// requireSeatState checks that the seat map matches the seats held by active
// bookings and that the available count agrees with both.
func requireSeatState(t testing.TB, db *pgxpool.Pool, showtimeId int) showtimeRow {
	row := loadShowtimeRow(t, db, showtimeId)

	rows, err := db.Query(context.Background(), `
		SELECT seat_indices FROM bookings
		WHERE showtime_id = $1 AND NOT seats_released AND status <> 'Cancelled'`, showtimeId)
	require.NoError(t, err)
	defer rows.Close()

	held := make(map[int]bool)

	for rows.Next() {
		var seats []int32
		require.NoError(t, rows.Scan(&seats))

		for _, s := range seats {
			require.False(t, held[int(s)], "seat %d held by two bookings", s)
			held[int(s)] = true
		}
	}
	require.NoError(t, rows.Err())

	occupied := strings.Count(row.SeatMap, "1")
	require.Equal(t, len(held), occupied, "seat map disagrees with bookings")
	require.Equal(t, len(row.SeatMap)-occupied, row.AvailableSeats, "available count disagrees with seat map")

	for idx := range held {
		require.Equal(t, byte('1'), row.SeatMap[idx], "seat %d held but free in seat map", idx)
	}

	return row
}
