package memdriver

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
)

func (d *Driver) GetRoom(_ context.Context, id string) (*domain.Room, error) {
	r, err := get[domain.Room](d.rooms, id)
	if err != nil || r == nil {
		return nil, err
	}
	r.Normalize()
	return r, nil
}

func (d *Driver) UpsertRoom(_ context.Context, r *domain.Room) error {
	return put(d.rooms, r.Id, r)
}

func (d *Driver) DeleteRoom(_ context.Context, id string) error {
	d.rooms.Delete(id)
	return nil
}

func (d *Driver) ListRooms(_ context.Context) ([]*domain.Room, error) {
	rooms, err := all[domain.Room](d.rooms, nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rooms {
		r.Normalize()
	}
	backend.SortRooms(rooms)
	return rooms, nil
}

func (d *Driver) DeleteExpiredRooms(_ context.Context, now time.Time) (int64, error) {
	expired, err := all[domain.Room](d.rooms, func(r *domain.Room) bool {
		return r.IsExpired(now)
	})
	if err != nil {
		return 0, err
	}

	var n int64
	for _, r := range expired {
		if _, found := d.rooms.Get(r.Id); found {
			d.rooms.Delete(r.Id)
			n++
		}
	}
	return n, nil
}
