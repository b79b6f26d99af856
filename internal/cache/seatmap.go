// Package cache keeps short-lived snapshots of showtime seat maps in Redis
// for the read-only seat-map endpoint. Booking decisions never read from it.
//
// Every showtime has a generation counter next to its snapshot. Invalidate
// bumps it, and Store only writes a snapshot when the counter still holds
// the value the reader saw before loading from the database, so a snapshot
// read before a commit cannot overwrite the invalidation that followed it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultSeatMapTTL = 30 * time.Second

	generationTTL = 24 * time.Hour
)

var storeSeatMapScript = redis.NewScript(`
    -- KEYS = [seat_map:<id>, seat_map_gen:<id>]
    -- ARGV = [snapshot, generation seen by the reader, ttl in ms]

    local current = redis.call("GET", KEYS[2]) or "0"
    if current ~= ARGV[2] then
        return 0
    end

    redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
    return 1
`)

var invalidateSeatMapScript = redis.NewScript(`
    -- KEYS = [seat_map:<id>, seat_map_gen:<id>]
    -- ARGV = [generation ttl in ms]

    redis.call("INCR", KEYS[2])
    redis.call("PEXPIRE", KEYS[2], ARGV[1])
    redis.call("DEL", KEYS[1])
    return 1
`)

type SeatMapSnapshot struct {
	ShowtimeID     int    `json:"showtimeId"`
	TotalSeats     int    `json:"totalSeats"`
	AvailableSeats int    `json:"availableSeats"`
	SeatsPerRow    int    `json:"seatsPerRow"`
	SeatMap        string `json:"seatMap"`
	Version        int    `json:"version"`
}

func SnapshotOf(s *domain.Showtime) SeatMapSnapshot {
	return SeatMapSnapshot{
		ShowtimeID:     s.ID,
		TotalSeats:     s.TotalSeats,
		AvailableSeats: s.AvailableSeats,
		SeatsPerRow:    s.SeatsPerRow,
		SeatMap:        s.SeatMap.String(),
		Version:        s.Version,
	}
}

type SeatMapCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewSeatMapCache(client redis.UniversalClient, ttl time.Duration) *SeatMapCache {
	if ttl <= 0 {
		ttl = DefaultSeatMapTTL
	}

	return &SeatMapCache{client: client, ttl: ttl}
}

func seatMapKey(showtimeID int) string {
	return "seat_map:" + strconv.Itoa(showtimeID)
}

func generationKey(showtimeID int) string {
	return "seat_map_gen:" + strconv.Itoa(showtimeID)
}

// Get returns the cached snapshot, or nil on a miss. The generation is read
// in the same round trip and must be handed to Store when the caller fills
// the miss from the database.
func (c *SeatMapCache) Get(ctx context.Context, showtimeID int) (*SeatMapSnapshot, int64, error) {
	values, err := c.client.MGet(ctx, seatMapKey(showtimeID), generationKey(showtimeID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("get cached seat map: %w", err)
	}

	if len(values) != 2 {
		return nil, 0, fmt.Errorf("get cached seat map: unexpected reply of %d values", len(values))
	}

	var generation int64
	if raw, ok := values[1].(string); ok {
		generation, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("decode seat map generation: %w", err)
		}
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, generation, nil
	}

	var snapshot SeatMapSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, generation, fmt.Errorf("decode cached seat map: %w", err)
	}

	return &snapshot, generation, nil
}

// Store caches snapshot unless the showtime was invalidated after generation
// was read. It reports whether the snapshot was written.
func (c *SeatMapCache) Store(ctx context.Context, snapshot SeatMapSnapshot, generation int64) (bool, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return false, err
	}

	keys := []string{seatMapKey(snapshot.ShowtimeID), generationKey(snapshot.ShowtimeID)}

	stored, err := storeSeatMapScript.Run(ctx, c.client, keys,
		string(raw), strconv.FormatInt(generation, 10), c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("cache seat map: %w", err)
	}

	return stored == 1, nil
}

func (c *SeatMapCache) Invalidate(ctx context.Context, showtimeID int) error {
	keys := []string{seatMapKey(showtimeID), generationKey(showtimeID)}

	err := invalidateSeatMapScript.Run(ctx, c.client, keys, generationTTL.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("invalidate cached seat map: %w", err)
	}

	return nil
}
