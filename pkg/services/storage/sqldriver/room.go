package sqldriver

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
)

func scanRoom(s rowScanner) (*domain.Room, error) {
	r := new(domain.Room)
	var mainHost, originalHost, hostId sql.NullString
	var moderators, participants, waitingRoom, streamingInfo []byte
	var chat, polls, files, reactions, settings []byte
	var status string
	var createdAt, startedAt, endedAt, expiresAt nullTime

	err := s.Scan(&r.Id, &r.Name, &r.CreatedBy, &mainHost, &originalHost, &hostId,
		&moderators, &participants, &waitingRoom, &r.Password, &status, &r.IsRecording,
		&r.IsStreaming, &streamingInfo, &chat, &polls, &files, &reactions, &settings,
		&createdAt, &startedAt, &endedAt, &expiresAt)
	if err != nil {
		return nil, err
	}

	r.MainHost = nullString(mainHost)
	r.OriginalHost = nullString(originalHost)
	r.HostId = nullString(hostId)
	r.MeetingStatus = domain.MeetingStatus(status)
	r.CreatedAt = createdAt.Time
	r.StartedAt = startedAt.ptr()
	r.EndedAt = endedAt.ptr()
	r.ExpiresAt = expiresAt.ptr()

	cols := []struct {
		src []byte
		dst any
	}{
		{moderators, &r.Moderators},
		{participants, &r.Participants},
		{waitingRoom, &r.WaitingRoom},
		{streamingInfo, &r.StreamingInfo},
		{chat, &r.Chat},
		{polls, &r.Polls},
		{files, &r.Files},
		{reactions, &r.Reactions},
		{settings, &r.Settings},
	}
	for _, c := range cols {
		if err = fromJSON(c.src, c.dst); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func (d *Driver) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	r, err := scanRoom(d.queryRow(ctx, roomsTable.selectAll()+" WHERE id = ?", id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return r, nil
}

func (d *Driver) UpsertRoom(ctx context.Context, r *domain.Room) error {
	args := []any{r.Id, r.Name, r.CreatedBy, stringArg(r.MainHost), stringArg(r.OriginalHost), stringArg(r.HostId)}

	encoded := make([]any, 0, 9)
	for _, v := range []any{r.Moderators, r.Participants, r.WaitingRoom} {
		s, err := jsonArg(v)
		if err != nil {
			return err
		}
		encoded = append(encoded, s)
	}
	args = append(args, encoded...)
	args = append(args, r.Password, string(r.MeetingStatus), r.IsRecording, r.IsStreaming)

	encoded = encoded[:0]
	for _, v := range []any{r.StreamingInfo, r.Chat, r.Polls, r.Files, r.Reactions, r.Settings} {
		s, err := jsonArg(v)
		if err != nil {
			return err
		}
		encoded = append(encoded, s)
	}
	args = append(args, encoded...)
	args = append(args, r.CreatedAt.UTC(), timeArg(r.StartedAt), timeArg(r.EndedAt), timeArg(r.ExpiresAt))

	_, err := d.exec(ctx, d.dialect.upsert(roomsTable), args...)
	return err
}

func (d *Driver) DeleteRoom(ctx context.Context, id string) error {
	_, err := d.exec(ctx, "DELETE FROM "+roomsTable.name()+" WHERE id = ?", id)
	return err
}

func (d *Driver) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	rows, err := d.query(ctx, roomsTable.selectAll())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	backend.SortRooms(rooms)
	return rooms, nil
}

func (d *Driver) DeleteExpiredRooms(ctx context.Context, now time.Time) (int64, error) {
	res, err := d.exec(ctx, "DELETE FROM "+roomsTable.name()+" WHERE expires_at IS NOT NULL AND expires_at < ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
