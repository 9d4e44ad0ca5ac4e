package models

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
	"github.com/sirupsen/logrus"
)

// HistoryModel appends one entry per ended meeting.
type HistoryModel struct {
	ds     *storage.Facade
	logger *logrus.Entry
}

func NewHistoryModel(ds *storage.Facade, logger *logrus.Logger) *HistoryModel {
	return &HistoryModel{
		ds:     ds,
		logger: logger.WithField("model", "history"),
	}
}

func (m *HistoryModel) Record(ctx context.Context, r *domain.Room, participants int64) (*domain.MeetingHistoryEntry, error) {
	e := domain.NewMeetingHistoryEntry(r, "", participants)
	if err := m.ds.AddMeetingHistory(ctx, e); err != nil {
		return nil, err
	}
	m.logger.WithFields(logrus.Fields{
		"roomId":   e.RoomId,
		"hostId":   e.HostId,
		"duration": e.Duration,
	}).Debugln("meeting history recorded")
	return e, nil
}

// GetMeetingHistory lists the entries hosted by hostId, newest first.
func (m *HistoryModel) GetMeetingHistory(ctx context.Context, hostId string) []*domain.MeetingHistoryEntry {
	return m.ds.GetMeetingHistory(ctx, hostId)
}
