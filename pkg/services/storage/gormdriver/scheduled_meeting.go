package gormdriver

import (
	"context"
	"errors"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/dbmodels"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *Driver) GetScheduledMeeting(ctx context.Context, id string) (*domain.ScheduledMeeting, error) {
	row := new(dbmodels.ScheduledMeeting)
	result := d.db.WithContext(ctx).Where("id = ?", id).Take(row)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return nil, nil
	case result.Error != nil:
		return nil, result.Error
	}

	return rowToMeeting(row)
}

func (d *Driver) UpsertScheduledMeeting(ctx context.Context, m *domain.ScheduledMeeting) error {
	row, err := meetingToRow(m)
	if err != nil {
		return err
	}

	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(dbmodels.ScheduledMeetingMutableColumns),
	}).Create(row).Error
}

func (d *Driver) DeleteScheduledMeeting(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Where("id = ?", id).Delete(&dbmodels.ScheduledMeeting{}).Error
}

func (d *Driver) ListScheduledMeetings(ctx context.Context) ([]*domain.ScheduledMeeting, error) {
	return d.findMeetings(d.db.WithContext(ctx))
}

func (d *Driver) ListScheduledMeetingsByHost(ctx context.Context, hostId string) ([]*domain.ScheduledMeeting, error) {
	return d.findMeetings(d.db.WithContext(ctx).Where("host_id = ?", hostId))
}

func (d *Driver) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]*domain.ScheduledMeeting, error) {
	return d.findMeetings(d.db.WithContext(ctx).
		Where("scheduled_datetime >= ? AND scheduled_datetime < ?", from.UTC(), to.UTC()))
}

func (d *Driver) findMeetings(tx *gorm.DB) ([]*domain.ScheduledMeeting, error) {
	var rows []dbmodels.ScheduledMeeting
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}

	meetings := make([]*domain.ScheduledMeeting, 0, len(rows))
	for i := range rows {
		m, err := rowToMeeting(&rows[i])
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	backend.SortScheduledMeetings(meetings)
	return meetings, nil
}
