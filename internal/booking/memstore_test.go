package booking

import (
	"context"
	"sync"
	"time"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/cinex/cinema-ticketing/internal/events"
)

// memStore mimics the Postgres repositories: every showtime write is
// checked against the version that was read.
type memStore struct {
	mu        sync.Mutex
	showtimes map[int]domain.Showtime
	bookings  map[int]domain.Booking
	nextID    int

	// beforeWrite runs with the lock released right before a write is
	// validated; tests use it to interleave competing writers.
	beforeWrite func()
}

func newMemStore(showtimes ...domain.Showtime) *memStore {
	m := &memStore{
		showtimes: make(map[int]domain.Showtime),
		bookings:  make(map[int]domain.Booking),
		nextID:    1,
	}

	for _, s := range showtimes {
		m.showtimes[s.ID] = s
	}

	return m
}

func (m *memStore) GetById(_ context.Context, id int) (*domain.Showtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.showtimes[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return &s, nil
}

func (m *memStore) showtime(id int) domain.Showtime {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.showtimes[id]
}

func (m *memStore) booking(id int) domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.bookings[id]
}

// putBooking stores b as if another writer committed it. Callers running
// inside beforeWrite must not hold the lock.
func (m *memStore) putBooking(b domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bookings[b.ID] = b
	if b.ID >= m.nextID {
		m.nextID = b.ID + 1
	}
}

func (m *memStore) writeShowtime(s *domain.Showtime) error {
	current, ok := m.showtimes[s.ID]
	if !ok {
		return domain.ErrRecordNotFound
	}

	if current.Version != s.Version {
		return domain.ErrEditConflict
	}

	s.Version++
	m.showtimes[s.ID] = *s

	return nil
}

func (m *memStore) Create(_ context.Context, b *domain.Booking, s *domain.Showtime) error {
	if m.beforeWrite != nil {
		m.beforeWrite()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.writeShowtime(s); err != nil {
		return err
	}

	b.ID = m.nextID
	b.CreatedAt = time.Now()
	m.nextID++
	m.bookings[b.ID] = *b

	return nil
}

func (m *memStore) UpdateWithShowtime(_ context.Context, b *domain.Booking, from domain.BookingStatus, s *domain.Showtime) error {
	if m.beforeWrite != nil {
		m.beforeWrite()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.bookings[b.ID]
	if !ok {
		return domain.ErrRecordNotFound
	}

	if current.Status != from || current.SeatsReleased {
		return domain.ErrEditConflict
	}

	if err := m.writeShowtime(s); err != nil {
		return err
	}

	m.bookings[b.ID] = *b

	return nil
}

func (m *memStore) GetBookingById(_ context.Context, id int) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return &b, nil
}

func (m *memStore) GetSummariesByUserId(context.Context, int) ([]domain.BookingSummary, error) {
	return nil, nil
}

func (m *memStore) ExistsForShowtime(context.Context, int) (bool, error) {
	return false, nil
}

// bookingRepo adapts memStore to domain.BookingRepository; GetById collides
// with the showtime reader method.
type bookingRepo struct {
	*memStore
}

func (r bookingRepo) GetById(ctx context.Context, id int) (*domain.Booking, error) {
	return r.GetBookingById(ctx, id)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, e)

	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]events.Type, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}

	return types
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []int
}

func (c *recordingCache) Invalidate(_ context.Context, showtimeID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invalidated = append(c.invalidated, showtimeID)

	return nil
}
