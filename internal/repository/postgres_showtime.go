package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresShowtimeRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowtimeRepository(db *pgxpool.Pool) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{
		db: db,
	}
}

// Create inserts the showtime unless it overlaps another showtime of the
// same cinema. The exclusion constraint on the table catches the races the
// pre-check cannot see.
func (p *PostgresShowtimeRepository) Create(ctx context.Context, showtime *domain.Showtime) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			SELECT EXISTS (
				SELECT 1 FROM showtimes
				WHERE cinema_id = $1 AND start_time < $3 AND end_time > $2
			)
		`

		var overlaps bool

		err := tx.QueryRow(ctx, query, showtime.CinemaID, showtime.StartTime, showtime.EndTime).Scan(&overlaps)
		if err != nil {
			return err
		}

		if overlaps {
			return domain.ErrShowtimeOverlap
		}

		query = `
			INSERT INTO showtimes (
				movie_id,
				cinema_id,
				start_time,
				end_time,
				price,
				total_seats,
				available_seats,
				seats_per_row,
				seat_map
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, version, created_at
		`

		return tx.QueryRow(
			ctx,
			query,
			showtime.MovieID,
			showtime.CinemaID,
			showtime.StartTime,
			showtime.EndTime,
			showtime.Price,
			showtime.TotalSeats,
			showtime.AvailableSeats,
			showtime.SeatsPerRow,
			showtime.SeatMap.String(),
		).Scan(&showtime.ID, &showtime.Version, &showtime.CreatedAt)
	})

	switch {
	case err == nil:
		return nil
	case hasErrorCode(err, pgerrcode.ExclusionViolation):
		return domain.ErrShowtimeOverlap
	case hasErrorCode(err, pgerrcode.ForeignKeyViolation):
		return domain.ErrRecordNotFound
	default:
		return err
	}
}

func (p *PostgresShowtimeRepository) GetById(ctx context.Context, id int) (*domain.Showtime, error) {
	query := `
		SELECT
			id,
			movie_id,
			cinema_id,
			start_time,
			end_time,
			price,
			total_seats,
			available_seats,
			seats_per_row,
			seat_map,
			version,
			created_at
		FROM showtimes
		WHERE id = $1
	`

	var showtime domain.Showtime
	var seatMap string

	err := p.db.QueryRow(ctx, query, id).Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.CinemaID,
		&showtime.StartTime,
		&showtime.EndTime,
		&showtime.Price,
		&showtime.TotalSeats,
		&showtime.AvailableSeats,
		&showtime.SeatsPerRow,
		&seatMap,
		&showtime.Version,
		&showtime.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	showtime.SeatMap, err = domain.ParseSeatMap(seatMap)
	if err != nil {
		return nil, fmt.Errorf("showtime %d: %w", id, err)
	}

	return &showtime, nil
}

func (p *PostgresShowtimeRepository) GetUpcomingByMovieId(
	ctx context.Context,
	movieID int,
	from time.Time) ([]domain.ShowtimeSummary, error) {

	query := `
		SELECT
			s.id,
			m.title,
			c.name,
			s.start_time,
			s.end_time,
			s.price,
			s.available_seats,
			s.total_seats
		FROM showtimes s
		JOIN movies m ON s.movie_id = m.id
		JOIN cinemas c ON s.cinema_id = c.id
		WHERE s.movie_id = $1 AND s.start_time > $2
		ORDER BY s.start_time
	`

	rows, err := p.db.Query(ctx, query, movieID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showtimes := make([]domain.ShowtimeSummary, 0)

	for rows.Next() {
		var showtime domain.ShowtimeSummary

		err := rows.Scan(
			&showtime.ID,
			&showtime.MovieTitle,
			&showtime.CinemaName,
			&showtime.StartTime,
			&showtime.EndTime,
			&showtime.Price,
			&showtime.AvailableSeats,
			&showtime.TotalSeats,
		)
		if err != nil {
			return nil, err
		}

		showtimes = append(showtimes, showtime)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return showtimes, nil
}

func (p *PostgresShowtimeRepository) Delete(ctx context.Context, id int) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM showtimes WHERE id = $1`, id)
	if err != nil {
		if hasErrorCode(err, pgerrcode.ForeignKeyViolation) {
			return domain.ErrShowtimeHasBooking
		}

		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
