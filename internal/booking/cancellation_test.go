package booking

import (
	"context"
	"time"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/cinex/cinema-ticketing/internal/events"
)

func (s *BookingServiceTestSuite) bookFirst() *domain.Booking {
	booking, err := s.bookings.BookSeats(context.Background(), testShowtimeID, testUserID, []int{5, 6, 7})
	s.Require().NoError(err)

	return booking
}

func (s *BookingServiceTestSuite) TestCancel() {
	booking := s.bookFirst()

	// two hours before start
	s.now = testNow.Add(time.Hour)

	cancelled, err := s.cancellation.Cancel(context.Background(), booking.ID, testUserID)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusCancelled, cancelled.Status)
	s.True(cancelled.SeatsReleased)

	showtime := s.store.showtime(testShowtimeID)
	s.Equal(testTotalSeats, showtime.AvailableSeats)
	for _, idx := range []int{5, 6, 7} {
		free, err := showtime.SeatMap.IsFree(idx)
		s.Require().NoError(err)
		s.True(free)
	}
	s.assertInvariant()

	s.Equal(domain.BookingStatusCancelled, s.store.booking(booking.ID).Status)
	s.Equal([]events.Type{events.TypeBookingConfirmed, events.TypeBookingCancelled}, s.publisher.types())
	s.Equal([]int{testShowtimeID, testShowtimeID}, s.cache.invalidated)
}

func (s *BookingServiceTestSuite) TestCancelFailures() {
	tests := []struct {
		name    string
		now     time.Time
		userID  int
		prepare func(b *domain.Booking) int
		wantErr error
	}{
		{
			name:    "should fail when less than an hour remains",
			now:     testNow.Add(2*time.Hour + 30*time.Minute),
			userID:  testUserID,
			wantErr: domain.ErrTooLate,
		},
		{
			name:    "should fail when exactly an hour remains",
			now:     testNow.Add(2 * time.Hour),
			userID:  testUserID,
			wantErr: domain.ErrTooLate,
		},
		{
			name:    "should fail when showtime has started",
			now:     testNow.Add(4 * time.Hour),
			userID:  testUserID,
			wantErr: domain.ErrTooLate,
		},
		{
			name:    "should hide bookings of other users",
			now:     testNow,
			userID:  otherUserID,
			wantErr: domain.ErrRecordNotFound,
		},
		{
			name:   "should fail when booking does not exist",
			now:    testNow,
			userID: testUserID,
			prepare: func(*domain.Booking) int {
				return 999
			},
			wantErr: domain.ErrRecordNotFound,
		},
		{
			name:   "should fail when booking is refunded",
			now:    testNow,
			userID: testUserID,
			prepare: func(b *domain.Booking) int {
				refunded := *b
				refunded.Status = domain.BookingStatusRefunded
				s.store.putBooking(refunded)
				return b.ID
			},
			wantErr: domain.ErrInvalidState,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			booking := s.bookFirst()

			bookingID := booking.ID
			if tt.prepare != nil {
				bookingID = tt.prepare(booking)
			}

			before := s.store.showtime(testShowtimeID)
			s.now = tt.now

			_, err := s.cancellation.Cancel(context.Background(), bookingID, tt.userID)
			s.ErrorIs(err, tt.wantErr)

			after := s.store.showtime(testShowtimeID)
			s.Equal(before.AvailableSeats, after.AvailableSeats)
			s.True(before.SeatMap.Equal(after.SeatMap))
			s.Equal(before.Version, after.Version)
			s.Equal([]events.Type{events.TypeBookingConfirmed}, s.publisher.types())
		})
	}
}

func (s *BookingServiceTestSuite) TestCancelTwice() {
	booking := s.bookFirst()

	_, err := s.cancellation.Cancel(context.Background(), booking.ID, testUserID)
	s.Require().NoError(err)

	_, err = s.cancellation.Cancel(context.Background(), booking.ID, testUserID)
	s.ErrorIs(err, domain.ErrInvalidState)
	s.Equal(testTotalSeats, s.store.showtime(testShowtimeID).AvailableSeats)
}

func (s *BookingServiceTestSuite) TestCancelFreesSeatsForRebooking() {
	booking := s.bookFirst()

	_, err := s.cancellation.Cancel(context.Background(), booking.ID, testUserID)
	s.Require().NoError(err)

	rebooked, err := s.bookings.BookSeats(context.Background(), testShowtimeID, otherUserID, []int{6, 7})
	s.Require().NoError(err)
	s.Equal([]int{6, 7}, rebooked.SeatIndices)
	s.Equal(98, s.store.showtime(testShowtimeID).AvailableSeats)
}

func (s *BookingServiceTestSuite) TestCancelRetriesAfterConcurrentWrite() {
	booking := s.bookFirst()

	calls := 0
	s.store.beforeWrite = func() {
		calls++
		if calls == 1 {
			s.bumpVersion()
		}
	}

	_, err := s.cancellation.Cancel(context.Background(), booking.ID, testUserID)
	s.Require().NoError(err)
	s.Equal(2, calls)
	s.Equal(testTotalSeats, s.store.showtime(testShowtimeID).AvailableSeats)
}

func (s *BookingServiceTestSuite) TestCancelLosesToConcurrentRefund() {
	booking := s.bookFirst()

	calls := 0
	s.store.beforeWrite = func() {
		calls++
		if calls == 1 {
			refunded := s.store.booking(booking.ID)
			refunded.Status = domain.BookingStatusRefunded
			s.store.putBooking(refunded)
		}
	}

	_, err := s.cancellation.Cancel(context.Background(), booking.ID, testUserID)
	s.ErrorIs(err, domain.ErrInvalidState)
	s.Equal(1, calls, "the retry must stop at the status check")

	s.Equal(domain.BookingStatusRefunded, s.store.booking(booking.ID).Status)
	s.False(s.store.booking(booking.ID).SeatsReleased)
	s.Equal(97, s.store.showtime(testShowtimeID).AvailableSeats)
	s.assertInvariant()
	s.Equal([]events.Type{events.TypeBookingConfirmed}, s.publisher.types())
}

func (s *BookingServiceTestSuite) TestReleaseSeatsRacingRelease() {
	booking := s.bookFirst()

	refunded := s.store.booking(booking.ID)
	refunded.Status = domain.BookingStatusRefunded
	s.store.putBooking(refunded)

	calls := 0
	s.store.beforeWrite = func() {
		calls++
		if calls == 1 {
			released := s.store.booking(booking.ID)
			released.SeatsReleased = true
			s.store.putBooking(released)
		}
	}

	_, err := s.cancellation.ReleaseSeats(context.Background(), booking.ID)
	s.ErrorIs(err, domain.ErrInvalidState)
	s.Equal(97, s.store.showtime(testShowtimeID).AvailableSeats, "seats must not be released twice")
}

func (s *BookingServiceTestSuite) TestReleaseSeats() {
	booking := s.bookFirst()

	_, err := s.cancellation.ReleaseSeats(context.Background(), booking.ID)
	s.Require().ErrorIs(err, domain.ErrInvalidState, "confirmed bookings go through Cancel")

	refunded := s.store.booking(booking.ID)
	refunded.Status = domain.BookingStatusRefunded
	s.store.putBooking(refunded)

	s.Equal(97, s.store.showtime(testShowtimeID).AvailableSeats, "refunds keep seats occupied")

	released, err := s.cancellation.ReleaseSeats(context.Background(), booking.ID)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusRefunded, released.Status)
	s.True(released.SeatsReleased)
	s.Equal(testTotalSeats, s.store.showtime(testShowtimeID).AvailableSeats)
	s.assertInvariant()

	_, err = s.cancellation.ReleaseSeats(context.Background(), booking.ID)
	s.ErrorIs(err, domain.ErrInvalidState)
	s.Equal(testTotalSeats, s.store.showtime(testShowtimeID).AvailableSeats)

	s.Equal([]events.Type{events.TypeBookingConfirmed, events.TypeSeatsReleased}, s.publisher.types())
}

func (s *BookingServiceTestSuite) TestReleaseSeatsNotFound() {
	_, err := s.cancellation.ReleaseSeats(context.Background(), 42)
	s.ErrorIs(err, domain.ErrRecordNotFound)
}
