package collab

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/sirupsen/logrus"
)

// Calendar is the narrow view of an external calendar provider. Provider
// tokens never reach the domain model.
type Calendar interface {
	SyncCalendar(ctx context.Context, userId string) error
	CreateEvent(ctx context.Context, m *domain.ScheduledMeeting) (string, error)
	UpdateEvent(ctx context.Context, m *domain.ScheduledMeeting) error
	DeleteEvent(ctx context.Context, meetingId string) error
	ParseImportFile(ctx context.Context, data []byte) ([]*domain.ScheduleMeetingRequest, error)
}

// NoopCalendar is used when no provider is connected. Imports still work
// because they only need the file.
type NoopCalendar struct {
	logger *logrus.Entry
}

func NewNoopCalendar(logger *logrus.Logger) *NoopCalendar {
	return &NoopCalendar{logger: logger.WithField("service", "calendar")}
}

func (c *NoopCalendar) SyncCalendar(_ context.Context, userId string) error {
	c.logger.WithField("userId", userId).Debugln("calendar sync skipped, no provider")
	return nil
}

func (c *NoopCalendar) CreateEvent(_ context.Context, m *domain.ScheduledMeeting) (string, error) {
	c.logger.WithField("meetingId", m.Id).Debugln("calendar event skipped, no provider")
	return "", nil
}

func (c *NoopCalendar) UpdateEvent(_ context.Context, _ *domain.ScheduledMeeting) error {
	return nil
}

func (c *NoopCalendar) DeleteEvent(_ context.Context, _ string) error {
	return nil
}

func (c *NoopCalendar) ParseImportFile(_ context.Context, data []byte) ([]*domain.ScheduleMeetingRequest, error) {
	return ParseICS(data)
}
