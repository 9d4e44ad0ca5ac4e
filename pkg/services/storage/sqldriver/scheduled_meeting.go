package sqldriver

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
)

func scanMeeting(s rowScanner) (*domain.ScheduledMeeting, error) {
	m := new(domain.ScheduledMeeting)
	var scheduledAt, createdAt, updatedAt nullTime
	var reminderTime, recurrenceCount sql.NullInt64
	var recurrenceEndDate sql.NullString
	var participants []byte
	var pattern, status string

	err := s.Scan(&m.Id, &m.RoomId, &m.HostId, &m.Title, &m.Description, &m.ScheduledDate,
		&m.ScheduledTime, &m.Timezone, &scheduledAt, &m.Duration, &m.RoomPassword, &reminderTime,
		&participants, &m.IsRecurring, &pattern, &recurrenceEndDate, &recurrenceCount, &status,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	m.ScheduledDateTime = scheduledAt.Time
	m.ReminderTime = nullInt(reminderTime)
	m.RecurrencePattern = domain.RecurrencePattern(pattern)
	m.RecurrenceEndDate = nullString(recurrenceEndDate)
	m.RecurrenceCount = nullInt(recurrenceCount)
	m.Status = domain.ScheduledStatus(status)
	m.CreatedAt = createdAt.Time
	m.UpdatedAt = updatedAt.Time

	if err = fromJSON(participants, &m.Participants); err != nil {
		return nil, err
	}
	return m, nil
}

func nullInt(i sql.NullInt64) *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Int64
	return &v
}

func (d *Driver) GetScheduledMeeting(ctx context.Context, id string) (*domain.ScheduledMeeting, error) {
	m, err := scanMeeting(d.queryRow(ctx, meetingsTable.selectAll()+" WHERE id = ?", id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return m, nil
}

func (d *Driver) UpsertScheduledMeeting(ctx context.Context, m *domain.ScheduledMeeting) error {
	participants, err := jsonArg(m.Participants)
	if err != nil {
		return err
	}

	_, err = d.exec(ctx, d.dialect.upsert(meetingsTable),
		m.Id, m.RoomId, m.HostId, m.Title, m.Description, m.ScheduledDate, m.ScheduledTime,
		m.Timezone, m.ScheduledDateTime.UTC(), m.Duration, m.RoomPassword, intArg(m.ReminderTime),
		participants, m.IsRecurring, string(m.RecurrencePattern), stringArg(m.RecurrenceEndDate),
		intArg(m.RecurrenceCount), string(m.Status), m.CreatedAt.UTC(), m.UpdatedAt.UTC())
	return err
}

func (d *Driver) DeleteScheduledMeeting(ctx context.Context, id string) error {
	_, err := d.exec(ctx, "DELETE FROM "+meetingsTable.name()+" WHERE id = ?", id)
	return err
}

func (d *Driver) ListScheduledMeetings(ctx context.Context) ([]*domain.ScheduledMeeting, error) {
	return d.findMeetings(ctx, meetingsTable.selectAll())
}

func (d *Driver) ListScheduledMeetingsByHost(ctx context.Context, hostId string) ([]*domain.ScheduledMeeting, error) {
	return d.findMeetings(ctx, meetingsTable.selectAll()+" WHERE host_id = ?", hostId)
}

func (d *Driver) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]*domain.ScheduledMeeting, error) {
	return d.findMeetings(ctx, meetingsTable.selectAll()+" WHERE scheduled_datetime >= ? AND scheduled_datetime < ?",
		from.UTC(), to.UTC())
}

func (d *Driver) findMeetings(ctx context.Context, query string, args ...any) ([]*domain.ScheduledMeeting, error) {
	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meetings := make([]*domain.ScheduledMeeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	backend.SortScheduledMeetings(meetings)
	return meetings, nil
}
