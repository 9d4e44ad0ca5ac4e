package redisdriver

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"github.com/redis/go-redis/v9"
)

const (
	roomKind         = "room"
	roomsIndex       = "rooms"
	roomsExpiryIndex = "rooms:expiry"
)

func (d *Driver) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	return getDoc[domain.Room](ctx, d.rc, d.key(roomKind, id))
}

func (d *Driver) UpsertRoom(ctx context.Context, r *domain.Room) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}

	_, err = d.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, d.key(roomKind, r.Id), raw, 0)
		pipe.SAdd(ctx, d.key(roomsIndex), r.Id)
		if r.ExpiresAt != nil {
			pipe.ZAdd(ctx, d.key(roomsExpiryIndex), redis.Z{Score: score(*r.ExpiresAt), Member: r.Id})
		} else {
			pipe.ZRem(ctx, d.key(roomsExpiryIndex), r.Id)
		}
		return nil
	})
	return err
}

func (d *Driver) DeleteRoom(ctx context.Context, id string) error {
	_, err := d.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, d.key(roomKind, id))
		pipe.SRem(ctx, d.key(roomsIndex), id)
		pipe.ZRem(ctx, d.key(roomsExpiryIndex), id)
		return nil
	})
	return err
}

func (d *Driver) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	ids, err := d.rc.SMembers(ctx, d.key(roomsIndex)).Result()
	if err != nil {
		return nil, err
	}
	rooms, err := getDocs[domain.Room](ctx, d, roomKind, ids)
	if err != nil {
		return nil, err
	}
	backend.SortRooms(rooms)
	return rooms, nil
}

func (d *Driver) DeleteExpiredRooms(ctx context.Context, now time.Time) (int64, error) {
	ids, err := d.rc.ZRangeByScore(ctx, d.key(roomsExpiryIndex), &redis.ZRangeBy{
		Min: "-inf",
		Max: before(now),
	}).Result()
	if err != nil || len(ids) == 0 {
		return 0, err
	}

	var dels []*redis.IntCmd
	_, err = d.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			dels = append(dels, pipe.Del(ctx, d.key(roomKind, id)))
			pipe.SRem(ctx, d.key(roomsIndex), id)
			pipe.ZRem(ctx, d.key(roomsExpiryIndex), id)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	var removed int64
	for _, c := range dels {
		removed += c.Val()
	}
	d.logger.Debugf("removed %d expired rooms", removed)
	return removed, nil
}
