package models

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/sirupsen/logrus"
)

// UpdateScheduledMeeting applies a partial update, moves the room expiry
// with the new schedule and re-arms the reminder.
func (m *ScheduleModel) UpdateScheduledMeeting(ctx context.Context, meetingId, userId string, isAdmin bool, patch *domain.ScheduledMeetingPatch) (*domain.ScheduledMeeting, error) {
	meeting, err := m.owned(ctx, meetingId, userId, isAdmin)
	if err != nil {
		return nil, err
	}
	if err := meeting.Apply(patch); err != nil {
		return nil, err
	}

	room, err := m.ds.LookupRoom(ctx, meeting.RoomId)
	if err != nil {
		return nil, err
	}
	if room != nil {
		room.ExpiresAt = m.roomExpiry(meeting)
		if err := m.ds.SaveRoom(ctx, room); err != nil {
			return nil, err
		}
	} else {
		m.logger.WithFields(logrus.Fields{
			"meetingId": meeting.Id,
			"roomId":    meeting.RoomId,
		}).Warnln("room of scheduled meeting is missing")
	}
	if err := m.ds.SaveScheduledMeeting(ctx, meeting); err != nil {
		return nil, err
	}

	m.reminderModel.Schedule(meeting)
	if m.subModel.GetUserSubscription(ctx, meeting.HostId).Features.CalendarIntegration {
		if err := m.calendar.UpdateEvent(ctx, meeting); err != nil {
			m.logger.WithError(err).WithField("meetingId", meeting.Id).Warnln("failed to update calendar event")
		}
	}

	m.logger.WithField("meetingId", meeting.Id).Infoln("scheduled meeting updated")
	return meeting, nil
}

// DeleteScheduledMeeting removes the meeting, its room and its pending
// reminder. A room that is already gone is fine.
func (m *ScheduleModel) DeleteScheduledMeeting(ctx context.Context, meetingId, userId string, isAdmin bool) error {
	meeting, err := m.owned(ctx, meetingId, userId, isAdmin)
	if err != nil {
		return err
	}
	if err := m.ds.DeleteScheduledMeeting(ctx, meeting.Id); err != nil {
		return err
	}
	m.reminderModel.Cancel(meeting.Id)

	log := m.logger.WithFields(logrus.Fields{
		"meetingId": meeting.Id,
		"roomId":    meeting.RoomId,
	})
	if err := m.ds.DeleteRoom(ctx, meeting.RoomId); err != nil {
		log.WithError(err).Errorln("failed to delete room of scheduled meeting")
		return err
	}
	if err := m.calendar.DeleteEvent(ctx, meeting.Id); err != nil {
		log.WithError(err).Warnln("failed to delete calendar event")
	}

	log.Infoln("scheduled meeting deleted")
	return nil
}

// ImportMeetings schedules every event of an uploaded calendar file. The
// first failing event stops the import; events before it stay scheduled.
func (m *ScheduleModel) ImportMeetings(ctx context.Context, hostId string, data []byte) ([]*domain.ScheduledMeeting, error) {
	if err := m.subModel.RequireAction(ctx, hostId, domain.ActionCalendarIntegration); err != nil {
		return nil, err
	}
	reqs, err := m.calendar.ParseImportFile(ctx, data)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.ScheduledMeeting, 0, len(reqs))
	for _, req := range reqs {
		req.HostId = hostId
		meeting, err := m.ScheduleMeeting(ctx, req)
		if err != nil {
			return out, err
		}
		out = append(out, meeting)
	}
	return out, nil
}

// SyncCalendar asks the calendar provider to pull the user's events.
func (m *ScheduleModel) SyncCalendar(ctx context.Context, userId string) error {
	if err := m.subModel.RequireAction(ctx, userId, domain.ActionCalendarIntegration); err != nil {
		return err
	}
	return m.calendar.SyncCalendar(ctx, userId)
}

// GetOccurrences expands the meeting recurrence.
func (m *ScheduleModel) GetOccurrences(ctx context.Context, meetingId string, limit int) ([]time.Time, error) {
	meeting, err := m.GetScheduledMeeting(ctx, meetingId)
	if err != nil {
		return nil, err
	}
	return meeting.Occurrences(limit)
}
