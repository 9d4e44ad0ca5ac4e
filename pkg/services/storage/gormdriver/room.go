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

func (d *Driver) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	row := new(dbmodels.Room)
	result := d.db.WithContext(ctx).Where("id = ?", id).Take(row)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return nil, nil
	case result.Error != nil:
		return nil, result.Error
	}

	return rowToRoom(row)
}

func (d *Driver) UpsertRoom(ctx context.Context, r *domain.Room) error {
	row, err := roomToRow(r)
	if err != nil {
		return err
	}

	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(dbmodels.RoomMutableColumns),
	}).Create(row).Error
}

func (d *Driver) DeleteRoom(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Where("id = ?", id).Delete(&dbmodels.Room{}).Error
}

func (d *Driver) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	var rows []dbmodels.Room
	if err := d.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	rooms := make([]*domain.Room, 0, len(rows))
	for i := range rows {
		r, err := rowToRoom(&rows[i])
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	backend.SortRooms(rooms)
	return rooms, nil
}

func (d *Driver) DeleteExpiredRooms(ctx context.Context, now time.Time) (int64, error) {
	result := d.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Delete(&dbmodels.Room{})
	return result.RowsAffected, result.Error
}
