package storage

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
)

func (f *Facade) GetScheduledMeeting(ctx context.Context, id string) *domain.ScheduledMeeting {
	m, err := f.driver.GetScheduledMeeting(ctx, id)
	if err != nil {
		f.logger.WithError(err).WithField("meetingId", id).Errorln("failed to read scheduled meeting")
		return nil
	}
	if m != nil {
		m.Normalize()
	}
	return m
}

func (f *Facade) SaveScheduledMeeting(ctx context.Context, m *domain.ScheduledMeeting) error {
	if err := f.driver.UpsertScheduledMeeting(ctx, m); err != nil {
		f.logger.WithError(err).WithField("meetingId", m.Id).Errorln("failed to save scheduled meeting")
		return domain.NewBackendFault(err, config.StorageUnavailable)
	}
	return nil
}

func (f *Facade) DeleteScheduledMeeting(ctx context.Context, id string) error {
	if err := f.driver.DeleteScheduledMeeting(ctx, id); err != nil {
		f.logger.WithError(err).WithField("meetingId", id).Errorln("failed to delete scheduled meeting")
		return domain.NewBackendFault(err, config.StorageUnavailable)
	}
	return nil
}

func (f *Facade) GetAllScheduledMeetings(ctx context.Context) []*domain.ScheduledMeeting {
	m, err := f.driver.ListScheduledMeetings(ctx)
	return f.meetings(m, err, "failed to list scheduled meetings")
}

func (f *Facade) GetScheduledMeetingsByHost(ctx context.Context, hostId string) []*domain.ScheduledMeeting {
	m, err := f.driver.ListScheduledMeetingsByHost(ctx, hostId)
	return f.meetings(m, err, "failed to list scheduled meetings of host")
}

// GetScheduledMeetingsBetween returns meetings starting in [from, to).
func (f *Facade) GetScheduledMeetingsBetween(ctx context.Context, from, to time.Time) []*domain.ScheduledMeeting {
	m, err := f.driver.ListScheduledBetween(ctx, from, to)
	return f.meetings(m, err, "failed to list scheduled meetings in range")
}

func (f *Facade) meetings(list []*domain.ScheduledMeeting, err error, msg string) []*domain.ScheduledMeeting {
	if err != nil {
		f.logger.WithError(err).Errorln(msg)
		return []*domain.ScheduledMeeting{}
	}
	for _, m := range list {
		m.Normalize()
	}
	return list
}
