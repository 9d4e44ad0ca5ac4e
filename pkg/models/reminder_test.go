package models

import (
	"testing"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// meetingAt stores a meeting starting at at with a reminder minutes before.
func meetingAt(t *testing.T, e *testEnv, at time.Time, minutes int64, emails ...string) *domain.ScheduledMeeting {
	t.Helper()
	room, err := domain.NewRoom(domain.NewRoomOptions{})
	require.NoError(t, err)
	m, err := domain.NewScheduledMeeting(&domain.ScheduleMeetingRequest{
		HostId:        "host",
		Title:         "sync",
		ScheduledDate: "2030-01-01",
		ScheduledTime: "10:00",
		ReminderTime:  &minutes,
	}, room)
	require.NoError(t, err)
	m.ScheduledDateTime = at
	for _, email := range emails {
		m.Participants = append(m.Participants, domain.MeetingParticipant{Email: email})
	}
	require.NoError(t, e.ds.SaveScheduledMeeting(e.ctx, m))
	return m
}

func TestReminderModel_QueueOrder(t *testing.T) {
	e := newTestEnv(t)
	base := time.Now().Add(time.Hour)

	late := meetingAt(t, e, base.Add(3*time.Hour), 10)
	early := meetingAt(t, e, base.Add(time.Hour), 10)
	middle := meetingAt(t, e, base.Add(2*time.Hour), 10)
	for _, m := range []*domain.ScheduledMeeting{late, early, middle} {
		require.True(t, e.reminder.Schedule(m))
	}
	assert.Equal(t, 3, e.reminder.Pending())
	assert.Equal(t, early.Id, e.reminder.queue[0].meetingId)

	// rescheduling replaces the pending entry
	middle.ScheduledDateTime = base
	require.True(t, e.reminder.Schedule(middle))
	assert.Equal(t, 3, e.reminder.Pending())
	assert.Equal(t, middle.Id, e.reminder.queue[0].meetingId)

	assert.True(t, e.reminder.Cancel(middle.Id))
	assert.False(t, e.reminder.Cancel(middle.Id))
	assert.Equal(t, 2, e.reminder.Pending())
	assert.Equal(t, early.Id, e.reminder.queue[0].meetingId)
}

func TestReminderModel_NothingToArm(t *testing.T) {
	e := newTestEnv(t)

	// reminder time already passed
	past := meetingAt(t, e, time.Now().Add(5*time.Minute), 10)
	assert.False(t, e.reminder.Schedule(past))

	none := meetingAt(t, e, time.Now().Add(time.Hour), 0)
	assert.False(t, e.reminder.Schedule(none))

	cancelled := meetingAt(t, e, time.Now().Add(time.Hour), 10)
	cancelled.Status = domain.ScheduledStatusCancelled
	assert.False(t, e.reminder.Schedule(cancelled))

	assert.Equal(t, 0, e.reminder.Pending())
}

func TestReminderModel_Fires(t *testing.T) {
	e := newTestEnv(t)
	go e.reminder.StartReminders()

	m := meetingAt(t, e, time.Now().Add(time.Minute+100*time.Millisecond), 1, "a@example.com", "b@example.com")
	require.True(t, e.reminder.Schedule(m))

	assert.Eventually(t, func() bool {
		return len(e.mailer.sentReminders()) == 2
	}, 3*time.Second, 20*time.Millisecond)
	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, e.mailer.sentReminders())
	assert.Equal(t, 0, e.reminder.Pending())
}

func TestReminderModel_CancelledDoesNotFire(t *testing.T) {
	e := newTestEnv(t)
	go e.reminder.StartReminders()

	m := meetingAt(t, e, time.Now().Add(time.Minute+100*time.Millisecond), 1, "a@example.com")
	require.True(t, e.reminder.Schedule(m))
	require.True(t, e.reminder.Cancel(m.Id))

	deleted := meetingAt(t, e, time.Now().Add(time.Minute+100*time.Millisecond), 1, "b@example.com")
	require.True(t, e.reminder.Schedule(deleted))
	require.NoError(t, e.ds.DeleteScheduledMeeting(e.ctx, deleted.Id))

	time.Sleep(400 * time.Millisecond)
	assert.Empty(t, e.mailer.sentReminders())
}

func TestReminderModel_RecurringArmsNextOccurrence(t *testing.T) {
	e := newTestEnv(t)
	m := meetingAt(t, e, time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC), 15)
	m.IsRecurring = true
	m.RecurrencePattern = domain.RecurrenceDaily

	e.reminder.now = func() time.Time {
		return time.Date(2030, 1, 3, 12, 0, 0, 0, time.UTC)
	}
	require.True(t, e.reminder.Schedule(m))
	fireAt, ok := e.reminder.FireAt(m.Id)
	require.True(t, ok)
	assert.Equal(t, time.Date(2030, 1, 4, 9, 45, 0, 0, time.UTC), fireAt)

	count := int64(2)
	m.RecurrenceCount = &count
	assert.False(t, e.reminder.Schedule(m), "both occurrences are over")
}

func TestReminderModel_Rehydrate(t *testing.T) {
	e := newTestEnv(t)
	meetingAt(t, e, time.Now().Add(time.Hour), 10)
	meetingAt(t, e, time.Now().Add(2*time.Hour), 10)
	meetingAt(t, e, time.Now().Add(time.Minute), 10)

	assert.Equal(t, 2, e.reminder.Rehydrate(e.ctx))
	assert.Equal(t, 2, e.reminder.Pending())
}

func TestReminderModel_ShutdownDropsLateSubmissions(t *testing.T) {
	e := newTestEnv(t)
	e.reminder.Shutdown()

	m := meetingAt(t, e, time.Now().Add(time.Hour), 10, "a@example.com")
	assert.NotPanics(t, func() {
		e.reminder.SendInvites(m)
	})
	assert.Empty(t, e.mailer.sentInvites())
}
