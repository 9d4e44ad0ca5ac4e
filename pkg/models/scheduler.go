package models

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/collab"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
	"github.com/sirupsen/logrus"
)

type ScheduleModel struct {
	app           *config.AppConfig
	ds            *storage.Facade
	subModel      *SubscriptionModel
	reminderModel *ReminderModel
	calendar      collab.Calendar
	logger        *logrus.Entry
}

func NewScheduleModel(app *config.AppConfig, ds *storage.Facade, subModel *SubscriptionModel, reminderModel *ReminderModel, calendar collab.Calendar, logger *logrus.Logger) *ScheduleModel {
	return &ScheduleModel{
		app:           app,
		ds:            ds,
		subModel:      subModel,
		reminderModel: reminderModel,
		calendar:      calendar,
		logger:        logger.WithField("model", "schedule"),
	}
}

// ScheduleMeeting creates the meeting together with its own room, arms the
// reminder and sends invitations.
func (m *ScheduleModel) ScheduleMeeting(ctx context.Context, req *domain.ScheduleMeetingRequest) (*domain.ScheduledMeeting, error) {
	if req.HostId == "" {
		return nil, domain.NewValidationFault(config.UserIdRequired)
	}
	sub := m.subModel.GetUserSubscription(ctx, req.HostId)

	room, err := domain.NewRoom(domain.NewRoomOptions{
		Name:      req.Title,
		CreatedBy: req.HostId,
		Password:  req.Password,
		Settings: domain.RoomSettings{
			WaitingRoomEnabled: m.app.RoomSettings.WaitingRoomEnabled,
			MaxParticipants:    max(sub.MaxParticipants, 0),
		},
	})
	if err != nil {
		return nil, err
	}
	meeting, err := domain.NewScheduledMeeting(req, room)
	if err != nil {
		return nil, err
	}
	room.ExpiresAt = m.roomExpiry(meeting)

	if err := m.ds.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	if err := m.ds.SaveScheduledMeeting(ctx, meeting); err != nil {
		if derr := m.ds.DeleteRoom(ctx, room.Id); derr != nil {
			m.logger.WithError(derr).WithField("roomId", room.Id).Errorln("failed to remove room of unsaved meeting")
		}
		return nil, err
	}

	m.reminderModel.Schedule(meeting)
	m.reminderModel.SendInvites(meeting)
	if sub.Features.CalendarIntegration {
		if _, err := m.calendar.CreateEvent(ctx, meeting); err != nil {
			m.logger.WithError(err).WithField("meetingId", meeting.Id).Warnln("failed to create calendar event")
		}
	}

	m.logger.WithFields(logrus.Fields{
		"meetingId": meeting.Id,
		"roomId":    room.Id,
		"hostId":    meeting.HostId,
		"at":        meeting.ScheduledDateTime,
	}).Infoln("meeting scheduled")
	return meeting, nil
}

// roomExpiry is when the room of a one-off meeting may be swept: its end
// plus the room TTL. Rooms of recurring meetings never expire.
func (m *ScheduleModel) roomExpiry(meeting *domain.ScheduledMeeting) *time.Time {
	if meeting.IsRecurring {
		return nil
	}
	e := meeting.ScheduledDateTime.Add(time.Duration(meeting.Duration)*time.Minute + m.app.RoomSettings.DefaultTTL)
	return &e
}

func (m *ScheduleModel) GetScheduledMeeting(ctx context.Context, meetingId string) (*domain.ScheduledMeeting, error) {
	meeting := m.ds.GetScheduledMeeting(ctx, meetingId)
	if meeting == nil {
		return nil, domain.NewNotFoundFault(config.RequestedMeetingNotExist)
	}
	return meeting, nil
}

// GetScheduledMeetings lists the meetings of hostId, or every meeting when
// hostId is empty.
func (m *ScheduleModel) GetScheduledMeetings(ctx context.Context, hostId string) []*domain.ScheduledMeeting {
	if hostId == "" {
		return m.ds.GetAllScheduledMeetings(ctx)
	}
	return m.ds.GetScheduledMeetingsByHost(ctx, hostId)
}

// GetUpcomingMeetings lists the meetings starting within the next window.
func (m *ScheduleModel) GetUpcomingMeetings(ctx context.Context, hostId string, window time.Duration) []*domain.ScheduledMeeting {
	from := domain.Now()
	list := m.ds.GetScheduledMeetingsBetween(ctx, from, from.Add(window))
	if hostId == "" {
		return list
	}
	out := make([]*domain.ScheduledMeeting, 0, len(list))
	for _, meeting := range list {
		if meeting.HostId == hostId {
			out = append(out, meeting)
		}
	}
	return out
}

func (m *ScheduleModel) owned(ctx context.Context, meetingId, userId string, isAdmin bool) (*domain.ScheduledMeeting, error) {
	meeting, err := m.GetScheduledMeeting(ctx, meetingId)
	if err != nil {
		return nil, err
	}
	if !isAdmin && meeting.HostId != userId {
		return nil, domain.NewForbiddenFault(config.OnlyHostCanRequest)
	}
	return meeting, nil
}
