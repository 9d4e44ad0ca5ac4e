package models

import (
	"testing"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleReq(hostId string) *domain.ScheduleMeetingRequest {
	reminder := int64(15)
	return &domain.ScheduleMeetingRequest{
		HostId:        hostId,
		Title:         "Quarterly review",
		ScheduledDate: "2031-03-04",
		ScheduledTime: "14:30",
		ReminderTime:  &reminder,
		Participants: []domain.MeetingParticipant{
			{Email: "a@example.com"},
			{Email: "b@example.com"},
		},
	}
}

func TestScheduleModel_ScheduleMeeting(t *testing.T) {
	e := newTestEnv(t)

	m, err := e.schedule.ScheduleMeeting(e.ctx, scheduleReq("host"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2031, 3, 4, 14, 30, 0, 0, time.UTC), m.ScheduledDateTime)
	assert.Equal(t, int64(domain.DefaultMeetingDuration), m.Duration)
	assert.Equal(t, domain.RecurrenceNone, m.RecurrencePattern)

	room := e.ds.GetRoom(e.ctx, m.RoomId)
	require.NotNil(t, room)
	assert.Equal(t, m.RoomPassword, room.Password)
	assert.Equal(t, "host", room.CreatedBy)
	require.NotNil(t, room.ExpiresAt)
	assert.True(t, room.ExpiresAt.After(m.ScheduledDateTime))

	fireAt, ok := e.reminder.FireAt(m.Id)
	require.True(t, ok)
	assert.Equal(t, m.ScheduledDateTime.Add(-15*time.Minute), fireAt)

	assert.Eventually(t, func() bool {
		return len(e.mailer.sentInvites()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, e.mailer.sentInvites()[0])
}

func TestScheduleModel_ScheduleMeetingValidation(t *testing.T) {
	e := newTestEnv(t)

	req := scheduleReq("host")
	req.Title = ""
	_, err := e.schedule.ScheduleMeeting(e.ctx, req)
	assert.True(t, domain.IsValidation(err))

	req = scheduleReq("host")
	req.Password = "no spaces allowed"
	_, err = e.schedule.ScheduleMeeting(e.ctx, req)
	assert.True(t, domain.IsValidation(err))

	_, err = e.schedule.ScheduleMeeting(e.ctx, scheduleReq(""))
	assert.True(t, domain.IsValidation(err))

	assert.Empty(t, e.ds.GetAllRooms(e.ctx))
	assert.Empty(t, e.schedule.GetScheduledMeetings(e.ctx, ""))
}

func TestScheduleModel_UpdateTimeOnly(t *testing.T) {
	e := newTestEnv(t)
	m, err := e.schedule.ScheduleMeeting(e.ctx, scheduleReq("host"))
	require.NoError(t, err)

	clock := "09:15"
	_, err = e.schedule.UpdateScheduledMeeting(e.ctx, m.Id, "intruder", false, &domain.ScheduledMeetingPatch{ScheduledTime: &clock})
	assert.True(t, domain.IsForbidden(err))

	updated, err := e.schedule.UpdateScheduledMeeting(e.ctx, m.Id, "host", false, &domain.ScheduledMeetingPatch{ScheduledTime: &clock})
	require.NoError(t, err)
	want := time.Date(2031, 3, 4, 9, 15, 0, 0, time.UTC)
	assert.Equal(t, want, updated.ScheduledDateTime)
	assert.Equal(t, "Quarterly review", updated.Title)

	stored, err := e.schedule.GetScheduledMeeting(e.ctx, m.Id)
	require.NoError(t, err)
	assert.Equal(t, want, stored.ScheduledDateTime)

	fireAt, ok := e.reminder.FireAt(m.Id)
	require.True(t, ok)
	assert.Equal(t, want.Add(-15*time.Minute), fireAt)
	assert.Equal(t, 1, e.reminder.Pending())

	// admins can edit any meeting; clearing the reminder disarms it
	off := int64(0)
	_, err = e.schedule.UpdateScheduledMeeting(e.ctx, m.Id, "admin", true, &domain.ScheduledMeetingPatch{ReminderTime: &off})
	require.NoError(t, err)
	_, ok = e.reminder.FireAt(m.Id)
	assert.False(t, ok)
}

func TestScheduleModel_RescheduleMovesRoomExpiry(t *testing.T) {
	e := newTestEnv(t)
	req := scheduleReq("host")
	req.ScheduledDate = "2020-01-01"
	m, err := e.schedule.ScheduleMeeting(e.ctx, req)
	require.NoError(t, err)

	day := "2031-06-01"
	updated, err := e.schedule.UpdateScheduledMeeting(e.ctx, m.Id, "host", false, &domain.ScheduledMeetingPatch{ScheduledDate: &day})
	require.NoError(t, err)

	room := e.ds.GetRoom(e.ctx, m.RoomId)
	require.NotNil(t, room)
	require.NotNil(t, room.ExpiresAt)
	want := updated.ScheduledDateTime.Add(time.Duration(updated.Duration)*time.Minute + e.app.RoomSettings.DefaultTTL)
	assert.True(t, want.Equal(*room.ExpiresAt))

	n, err := e.ds.CleanupExpiredRooms(e.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NotNil(t, e.ds.GetRoom(e.ctx, m.RoomId))

	// a recurring meeting keeps its room for good
	recurring, weekly := true, domain.RecurrenceWeekly
	_, err = e.schedule.UpdateScheduledMeeting(e.ctx, m.Id, "host", false, &domain.ScheduledMeetingPatch{
		IsRecurring:       &recurring,
		RecurrencePattern: &weekly,
	})
	require.NoError(t, err)
	assert.Nil(t, e.ds.GetRoom(e.ctx, m.RoomId).ExpiresAt)
}

func TestScheduleModel_UpdateAbortsOnRoomReadFault(t *testing.T) {
	e, d := newFaultyTestEnv(t)
	m, err := e.schedule.ScheduleMeeting(e.ctx, scheduleReq("host"))
	require.NoError(t, err)

	day := "2032-01-01"
	d.Fail(storagetest.OpGetRoom, 1)
	_, err = e.schedule.UpdateScheduledMeeting(e.ctx, m.Id, "host", false, &domain.ScheduledMeetingPatch{ScheduledDate: &day})
	assert.True(t, domain.IsBackend(err))

	stored := e.ds.GetScheduledMeeting(e.ctx, m.Id)
	require.NotNil(t, stored)
	assert.Equal(t, m.ScheduledDateTime, stored.ScheduledDateTime)
}

func TestScheduleModel_DeleteRemovesRoomDespiteReadFault(t *testing.T) {
	e, d := newFaultyTestEnv(t)
	m, err := e.schedule.ScheduleMeeting(e.ctx, scheduleReq("host"))
	require.NoError(t, err)

	d.Fail(storagetest.OpGetRoom, -1)
	require.NoError(t, e.schedule.DeleteScheduledMeeting(e.ctx, m.Id, "host", false))
	d.Heal()

	assert.Nil(t, e.ds.GetRoom(e.ctx, m.RoomId))
	assert.Nil(t, e.ds.GetScheduledMeeting(e.ctx, m.Id))
}

func TestScheduleModel_DeleteCascades(t *testing.T) {
	e := newTestEnv(t)
	m, err := e.schedule.ScheduleMeeting(e.ctx, scheduleReq("host"))
	require.NoError(t, err)

	assert.True(t, domain.IsForbidden(e.schedule.DeleteScheduledMeeting(e.ctx, m.Id, "other", false)))

	require.NoError(t, e.schedule.DeleteScheduledMeeting(e.ctx, m.Id, "host", false))
	assert.Nil(t, e.ds.GetRoom(e.ctx, m.RoomId))
	assert.Nil(t, e.ds.GetScheduledMeeting(e.ctx, m.Id))
	assert.Equal(t, 0, e.reminder.Pending())
	assert.True(t, domain.IsNotFound(e.schedule.DeleteScheduledMeeting(e.ctx, m.Id, "host", false)))
}

func TestScheduleModel_DeleteWhenRoomAlreadyGone(t *testing.T) {
	e := newTestEnv(t)
	m, err := e.schedule.ScheduleMeeting(e.ctx, scheduleReq("host"))
	require.NoError(t, err)

	require.NoError(t, e.room.DeleteRoom(e.ctx, m.RoomId))
	// the meeting survives its room
	require.NotNil(t, e.ds.GetScheduledMeeting(e.ctx, m.Id))

	require.NoError(t, e.schedule.DeleteScheduledMeeting(e.ctx, m.Id, "host", false))
	assert.Nil(t, e.ds.GetScheduledMeeting(e.ctx, m.Id))
}

func TestScheduleModel_Listing(t *testing.T) {
	e := newTestEnv(t)

	soon := scheduleReq("a")
	at := time.Now().UTC().Add(2 * time.Hour)
	soon.ScheduledDate = at.Format(domain.DateLayout)
	soon.ScheduledTime = at.Format(domain.TimeLayout)
	_, err := e.schedule.ScheduleMeeting(e.ctx, soon)
	require.NoError(t, err)
	_, err = e.schedule.ScheduleMeeting(e.ctx, scheduleReq("a"))
	require.NoError(t, err)
	_, err = e.schedule.ScheduleMeeting(e.ctx, scheduleReq("b"))
	require.NoError(t, err)

	assert.Len(t, e.schedule.GetScheduledMeetings(e.ctx, ""), 3)
	assert.Len(t, e.schedule.GetScheduledMeetings(e.ctx, "a"), 2)
	assert.Len(t, e.schedule.GetUpcomingMeetings(e.ctx, "a", 24*time.Hour), 1)
	assert.Empty(t, e.schedule.GetUpcomingMeetings(e.ctx, "b", 24*time.Hour))
}

func TestScheduleModel_ImportAndOccurrences(t *testing.T) {
	e := newTestEnv(t)
	ics := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\n" +
		"BEGIN:VEVENT\r\nSUMMARY:Standup\r\nDTSTART:20310105T090000Z\r\nDTEND:20310105T091500Z\r\n" +
		"RRULE:FREQ=DAILY;COUNT=3\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n")

	_, err := e.schedule.ImportMeetings(e.ctx, "free-user", ics)
	assert.True(t, domain.IsQuotaExceeded(err))

	e.givePlan(t, "basic-user", domain.PlanBasic)
	meetings, err := e.schedule.ImportMeetings(e.ctx, "basic-user", ics)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, "Standup", meetings[0].Title)
	assert.Equal(t, int64(15), meetings[0].Duration)
	assert.Equal(t, "basic-user", meetings[0].HostId)
	assert.Nil(t, e.ds.GetRoom(e.ctx, meetings[0].RoomId).ExpiresAt, "recurring rooms do not expire")

	occ, err := e.schedule.GetOccurrences(e.ctx, meetings[0].Id, 10)
	require.NoError(t, err)
	require.Len(t, occ, 3)
	assert.Equal(t, time.Date(2031, 1, 7, 9, 0, 0, 0, time.UTC), occ[2])

	assert.NoError(t, e.schedule.SyncCalendar(e.ctx, "basic-user"))
	assert.True(t, domain.IsQuotaExceeded(e.schedule.SyncCalendar(e.ctx, "free-user")))
}
