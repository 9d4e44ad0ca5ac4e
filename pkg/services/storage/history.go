package storage

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
)

func (f *Facade) AddMeetingHistory(ctx context.Context, e *domain.MeetingHistoryEntry) error {
	if err := f.driver.InsertMeetingHistory(ctx, e); err != nil {
		f.logger.WithError(err).WithField("roomId", e.RoomId).Errorln("failed to add meeting history")
		return domain.NewBackendFault(err, config.StorageUnavailable)
	}
	return nil
}

// GetMeetingHistory lists the entries of hostId, or every entry when hostId
// is empty, newest first.
func (f *Facade) GetMeetingHistory(ctx context.Context, hostId string) []*domain.MeetingHistoryEntry {
	entries, err := f.driver.ListMeetingHistory(ctx, hostId)
	if err != nil {
		f.logger.WithError(err).Errorln("failed to list meeting history")
		return []*domain.MeetingHistoryEntry{}
	}
	return entries
}
