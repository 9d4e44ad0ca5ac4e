package gormdriver

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/dbmodels"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
)

func (d *Driver) InsertMeetingHistory(ctx context.Context, e *domain.MeetingHistoryEntry) error {
	return d.db.WithContext(ctx).Create(historyToRow(e)).Error
}

// ListMeetingHistory returns the entries of one host, or all of them when
// hostId is empty, newest first.
func (d *Driver) ListMeetingHistory(ctx context.Context, hostId string) ([]*domain.MeetingHistoryEntry, error) {
	tx := d.db.WithContext(ctx)
	if hostId != "" {
		tx = tx.Where("host_id = ?", hostId)
	}

	var rows []dbmodels.MeetingHistory
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]*domain.MeetingHistoryEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rowToHistory(&rows[i]))
	}
	backend.SortHistory(entries)
	return entries, nil
}
