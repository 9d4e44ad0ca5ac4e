package sqldriver

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
)

func (d *Driver) InsertMeetingHistory(ctx context.Context, e *domain.MeetingHistoryEntry) error {
	_, err := d.exec(ctx, "INSERT INTO "+historyTable.name()+
		" (id, room_id, host_id, title, duration, participants_count, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.Id, e.RoomId, e.HostId, e.Title, e.Duration, e.ParticipantsCount, e.Status, e.CreatedAt.UTC())
	return err
}

func (d *Driver) ListMeetingHistory(ctx context.Context, hostId string) ([]*domain.MeetingHistoryEntry, error) {
	query := historyTable.selectAll()
	var args []any
	if hostId != "" {
		query += " WHERE host_id = ?"
		args = append(args, hostId)
	}

	rows, err := d.query(ctx, query+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.MeetingHistoryEntry, 0)
	for rows.Next() {
		e := new(domain.MeetingHistoryEntry)
		var createdAt nullTime
		err = rows.Scan(&e.Id, &e.RoomId, &e.HostId, &e.Title, &e.Duration, &e.ParticipantsCount, &e.Status, &createdAt)
		if err != nil {
			return nil, err
		}
		e.CreatedAt = createdAt.Time
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	backend.SortHistory(entries)
	return entries, nil
}
