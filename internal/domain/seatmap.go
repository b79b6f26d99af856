package domain

import (
	"fmt"
	"strings"
)

const (
	seatFree     = '0'
	seatOccupied = '1'

	DefaultSeatsPerRow = 10
)

// SeatMap is the per-showtime occupancy sequence. Its length is fixed at
// creation; every mutation returns a new map and leaves the receiver untouched.
type SeatMap struct {
	occupied []bool
}

// SeatView is a single seat prepared for rendering.
type SeatView struct {
	Index     int
	Label     string
	Available bool
}

func NewSeatMap(totalSeats int) (SeatMap, error) {
	if totalSeats <= 0 {
		return SeatMap{}, fmt.Errorf("%w: total seats must be greater than zero", ErrInvalidRequest)
	}

	return SeatMap{occupied: make([]bool, totalSeats)}, nil
}

// ParseSeatMap decodes the stored form: one '0' (free) or '1' (occupied)
// character per seat.
func ParseSeatMap(encoded string) (SeatMap, error) {
	if encoded == "" {
		return SeatMap{}, fmt.Errorf("%w: empty seat map", ErrInvalidRequest)
	}

	occupied := make([]bool, len(encoded))

	for i := 0; i < len(encoded); i++ {
		switch encoded[i] {
		case seatFree:
		case seatOccupied:
			occupied[i] = true
		default:
			return SeatMap{}, fmt.Errorf("%w: invalid seat map character %q at %d", ErrInvalidRequest, encoded[i], i)
		}
	}

	return SeatMap{occupied: occupied}, nil
}

func (m SeatMap) String() string {
	var sb strings.Builder
	sb.Grow(len(m.occupied))

	for _, taken := range m.occupied {
		if taken {
			sb.WriteByte(seatOccupied)
		} else {
			sb.WriteByte(seatFree)
		}
	}

	return sb.String()
}

func (m SeatMap) Len() int {
	return len(m.occupied)
}

func (m SeatMap) IsFree(index int) (bool, error) {
	if err := m.checkIndex(index); err != nil {
		return false, err
	}

	return !m.occupied[index], nil
}

func (m SeatMap) CountFree() int {
	free := 0

	for _, taken := range m.occupied {
		if !taken {
			free++
		}
	}

	return free
}

func (m SeatMap) CountOccupied() int {
	return m.Len() - m.CountFree()
}

// Occupy marks every index as occupied. It fails without changing anything
// when an index is out of range or already occupied; a SeatConflictError
// lists every offending index.
func (m SeatMap) Occupy(indices []int) (SeatMap, error) {
	return m.transition(indices, true)
}

// Release is the inverse of Occupy. Releasing a free seat is a conflict.
func (m SeatMap) Release(indices []int) (SeatMap, error) {
	return m.transition(indices, false)
}

func (m SeatMap) transition(indices []int, occupy bool) (SeatMap, error) {
	for _, idx := range indices {
		if err := m.checkIndex(idx); err != nil {
			return SeatMap{}, err
		}
	}

	next := m.clone()
	var conflicts []int

	for _, idx := range indices {
		if next.occupied[idx] == occupy {
			conflicts = append(conflicts, idx)
			continue
		}

		next.occupied[idx] = occupy
	}

	if len(conflicts) > 0 {
		return SeatMap{}, &SeatConflictError{Indices: conflicts}
	}

	return next, nil
}

// FirstFree returns the first n free seat indices scanning from index 0.
func (m SeatMap) FirstFree(n int) ([]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: ticket count must be greater than zero", ErrInvalidRequest)
	}

	indices := make([]int, 0, n)

	for i, taken := range m.occupied {
		if taken {
			continue
		}

		indices = append(indices, i)
		if len(indices) == n {
			return indices, nil
		}
	}

	return nil, &SeatConflictError{}
}

func (m SeatMap) Seats(seatsPerRow int) []SeatView {
	seats := make([]SeatView, len(m.occupied))

	for i, taken := range m.occupied {
		seats[i] = SeatView{
			Index:     i,
			Label:     SeatLabel(i, seatsPerRow),
			Available: !taken,
		}
	}

	return seats
}

func (m SeatMap) Equal(other SeatMap) bool {
	if len(m.occupied) != len(other.occupied) {
		return false
	}

	for i := range m.occupied {
		if m.occupied[i] != other.occupied[i] {
			return false
		}
	}

	return true
}

func (m SeatMap) checkIndex(index int) error {
	if index < 0 || index >= len(m.occupied) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(m.occupied))
	}

	return nil
}

func (m SeatMap) clone() SeatMap {
	occupied := make([]bool, len(m.occupied))
	copy(occupied, m.occupied)

	return SeatMap{occupied: occupied}
}

// SeatLabel converts a seat index into a row letter and 1-based column, e.g. 12 -> "B3"
// with ten seats per row.
func SeatLabel(index, seatsPerRow int) string {
	if seatsPerRow <= 0 {
		seatsPerRow = DefaultSeatsPerRow
	}

	row := index / seatsPerRow
	col := index%seatsPerRow + 1

	return fmt.Sprintf("%s%d", rowName(row), col)
}

// rowName yields A..Z, then AA, AB, ... for halls with more than 26 rows.
func rowName(row int) string {
	name := ""

	for row >= 0 {
		name = string(rune('A'+row%26)) + name
		row = row/26 - 1
	}

	return name
}
