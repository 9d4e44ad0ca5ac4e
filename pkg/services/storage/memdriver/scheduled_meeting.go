package memdriver

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
)

func (d *Driver) GetScheduledMeeting(_ context.Context, id string) (*domain.ScheduledMeeting, error) {
	m, err := get[domain.ScheduledMeeting](d.meetings, id)
	if err != nil || m == nil {
		return nil, err
	}
	m.Normalize()
	return m, nil
}

func (d *Driver) UpsertScheduledMeeting(_ context.Context, m *domain.ScheduledMeeting) error {
	return put(d.meetings, m.Id, m)
}

func (d *Driver) DeleteScheduledMeeting(_ context.Context, id string) error {
	d.meetings.Delete(id)
	return nil
}

func (d *Driver) listMeetings(keep func(*domain.ScheduledMeeting) bool) ([]*domain.ScheduledMeeting, error) {
	meetings, err := all[domain.ScheduledMeeting](d.meetings, keep)
	if err != nil {
		return nil, err
	}
	for _, m := range meetings {
		m.Normalize()
	}
	backend.SortScheduledMeetings(meetings)
	return meetings, nil
}

func (d *Driver) ListScheduledMeetings(_ context.Context) ([]*domain.ScheduledMeeting, error) {
	return d.listMeetings(nil)
}

func (d *Driver) ListScheduledMeetingsByHost(_ context.Context, hostId string) ([]*domain.ScheduledMeeting, error) {
	return d.listMeetings(func(m *domain.ScheduledMeeting) bool {
		return m.HostId == hostId
	})
}

func (d *Driver) ListScheduledBetween(_ context.Context, from, to time.Time) ([]*domain.ScheduledMeeting, error) {
	return d.listMeetings(func(m *domain.ScheduledMeeting) bool {
		return !m.ScheduledDateTime.Before(from) && m.ScheduledDateTime.Before(to)
	})
}
