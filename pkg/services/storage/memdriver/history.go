package memdriver

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
)

func (d *Driver) InsertMeetingHistory(_ context.Context, e *domain.MeetingHistoryEntry) error {
	return put(d.history, e.Id, e)
}

func (d *Driver) ListMeetingHistory(_ context.Context, hostId string) ([]*domain.MeetingHistoryEntry, error) {
	entries, err := all[domain.MeetingHistoryEntry](d.history, func(e *domain.MeetingHistoryEntry) bool {
		return hostId == "" || e.HostId == hostId
	})
	if err != nil {
		return nil, err
	}
	backend.SortHistory(entries)
	return entries, nil
}
