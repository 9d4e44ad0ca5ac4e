package storage

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
)

// GetRoom returns nil when the room does not exist or cannot be read.
func (f *Facade) GetRoom(ctx context.Context, id string) *domain.Room {
	r, err := f.driver.GetRoom(ctx, id)
	if err != nil {
		f.logger.WithError(err).WithField("roomId", id).Errorln("failed to read room")
		return nil
	}
	if r != nil {
		r.Normalize()
	}
	return r
}

// LookupRoom returns (nil, nil) for a missing room and a BackendFault when
// the read fails.
func (f *Facade) LookupRoom(ctx context.Context, id string) (*domain.Room, error) {
	r, err := f.driver.GetRoom(ctx, id)
	if err != nil {
		f.logger.WithError(err).WithField("roomId", id).Errorln("failed to read room")
		return nil, domain.NewBackendFault(err, config.StorageUnavailable)
	}
	if r != nil {
		r.Normalize()
	}
	return r, nil
}

func (f *Facade) SaveRoom(ctx context.Context, r *domain.Room) error {
	if err := f.driver.UpsertRoom(ctx, r); err != nil {
		f.logger.WithError(err).WithField("roomId", r.Id).Errorln("failed to save room")
		return domain.NewBackendFault(err, config.StorageUnavailable)
	}
	return nil
}

func (f *Facade) DeleteRoom(ctx context.Context, id string) error {
	if err := f.driver.DeleteRoom(ctx, id); err != nil {
		f.logger.WithError(err).WithField("roomId", id).Errorln("failed to delete room")
		return domain.NewBackendFault(err, config.StorageUnavailable)
	}
	return nil
}

func (f *Facade) GetAllRooms(ctx context.Context) []*domain.Room {
	rooms, err := f.driver.ListRooms(ctx)
	if err != nil {
		f.logger.WithError(err).Errorln("failed to list rooms")
		return []*domain.Room{}
	}
	for _, r := range rooms {
		r.Normalize()
	}
	return rooms
}

// CleanupExpiredRooms removes every room whose expiry has passed.
func (f *Facade) CleanupExpiredRooms(ctx context.Context) (int64, error) {
	n, err := f.driver.DeleteExpiredRooms(ctx, domain.Now())
	if err != nil {
		f.logger.WithError(err).Errorln("failed to clean up expired rooms")
		return 0, domain.NewBackendFault(err, config.StorageUnavailable)
	}
	if n > 0 {
		f.logger.Infof("removed %d expired rooms", n)
	}
	return n, nil
}
