package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahq/agenda/internal/domain"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 1, 1, hour, min, 0, 0, time.UTC)
}

type stubBookingSource struct {
	bookings []domain.Booking
}

func (s *stubBookingSource) FindMany(_ context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range s.bookings {
		if f.Cancelled != nil && b.Cancelled != *f.Cancelled {
			continue
		}
		if f.From != nil && b.StartTime.Before(*f.From) {
			continue
		}
		if f.To != nil && b.StartTime.After(*f.To) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type recordingSink struct {
	created []domain.NotificationParams
}

func (s *recordingSink) ExistsForBooking(_ context.Context, bookingID int64, typ domain.NotificationType) (bool, error) {
	for _, p := range s.created {
		if p.BookingID != nil && *p.BookingID == bookingID && p.Type == typ {
			return true, nil
		}
	}
	return false, nil
}

func (s *recordingSink) CreateForBooking(_ context.Context, p domain.NotificationParams) error {
	s.created = append(s.created, p)
	return nil
}

func TestReminderSweep(t *testing.T) {
	ctx := context.Background()
	now := at(10, 0)

	source := &stubBookingSource{bookings: []domain.Booking{
		{ID: 1, UserID: 5, StartTime: at(10, 30), EndTime: at(11, 0)},                  // within window
		{ID: 2, UserID: 5, StartTime: at(12, 0), EndTime: at(13, 0)},                   // beyond window
		{ID: 3, UserID: 6, StartTime: at(10, 45), EndTime: at(11, 30), Cancelled: true}, // cancelled
		{ID: 4, UserID: 6, StartTime: at(10, 0), EndTime: at(11, 0)},                   // already started
	}}
	sink := &recordingSink{}
	reminder := NewReminder(source, sink, time.Minute, time.Hour)

	require.NoError(t, reminder.Sweep(ctx, now))

	require.Len(t, sink.created, 1)
	p := sink.created[0]
	assert.Equal(t, domain.NotificationBookingReminder, p.Type)
	assert.Equal(t, int64(5), p.UserID)
	require.NotNil(t, p.BookingID)
	assert.Equal(t, int64(1), *p.BookingID)
	require.NotNil(t, p.ScheduledFor)
	assert.Equal(t, at(10, 30), *p.ScheduledFor)
}

func TestReminderSweep_Idempotent(t *testing.T) {
	ctx := context.Background()
	now := at(10, 0)

	source := &stubBookingSource{bookings: []domain.Booking{
		{ID: 1, UserID: 5, StartTime: at(10, 30), EndTime: at(11, 0)},
	}}
	sink := &recordingSink{}
	reminder := NewReminder(source, sink, time.Minute, time.Hour)

	require.NoError(t, reminder.Sweep(ctx, now))
	require.NoError(t, reminder.Sweep(ctx, now))
	require.NoError(t, reminder.Sweep(ctx, now.Add(5*time.Minute)))

	assert.Len(t, sink.created, 1, "each booking is reminded at most once")
}

func TestNewReminder_Defaults(t *testing.T) {
	reminder := NewReminder(&stubBookingSource{}, &recordingSink{}, 0, 0)
	assert.Equal(t, time.Minute, reminder.interval)
	assert.Equal(t, domain.DefaultLookahead, reminder.lookahead)
}
