package redisdriver

import (
	"context"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"github.com/redis/go-redis/v9"
)

const (
	meetingKind      = "meeting"
	meetingsAtIndex  = "meetings:at"
	meetingsByHostIx = "meetings:host"
)

func (d *Driver) GetScheduledMeeting(ctx context.Context, id string) (*domain.ScheduledMeeting, error) {
	return getDoc[domain.ScheduledMeeting](ctx, d.rc, d.key(meetingKind, id))
}

// UpsertScheduledMeeting watches the document so a host change moves the
// id between host sets consistently.
func (d *Driver) UpsertScheduledMeeting(ctx context.Context, m *domain.ScheduledMeeting) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	key := d.key(meetingKind, m.Id)

	return d.watch(ctx, func(tx *redis.Tx) error {
		old, err := getDoc[domain.ScheduledMeeting](ctx, tx, key)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if old != nil && old.HostId != m.HostId {
				pipe.SRem(ctx, d.key(meetingsByHostIx, old.HostId), m.Id)
			}
			pipe.Set(ctx, key, raw, 0)
			pipe.ZAdd(ctx, d.key(meetingsAtIndex), redis.Z{Score: score(m.ScheduledDateTime), Member: m.Id})
			pipe.SAdd(ctx, d.key(meetingsByHostIx, m.HostId), m.Id)
			return nil
		})
		return err
	}, key)
}

func (d *Driver) DeleteScheduledMeeting(ctx context.Context, id string) error {
	key := d.key(meetingKind, id)

	return d.watch(ctx, func(tx *redis.Tx) error {
		old, err := getDoc[domain.ScheduledMeeting](ctx, tx, key)
		if err != nil || old == nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, d.key(meetingsAtIndex), id)
			pipe.SRem(ctx, d.key(meetingsByHostIx, old.HostId), id)
			return nil
		})
		return err
	}, key)
}

func (d *Driver) ListScheduledMeetings(ctx context.Context) ([]*domain.ScheduledMeeting, error) {
	ids, err := d.rc.ZRange(ctx, d.key(meetingsAtIndex), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return d.loadMeetings(ctx, ids)
}

func (d *Driver) ListScheduledMeetingsByHost(ctx context.Context, hostId string) ([]*domain.ScheduledMeeting, error) {
	ids, err := d.rc.SMembers(ctx, d.key(meetingsByHostIx, hostId)).Result()
	if err != nil {
		return nil, err
	}
	return d.loadMeetings(ctx, ids)
}

func (d *Driver) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]*domain.ScheduledMeeting, error) {
	ids, err := d.rc.ZRangeByScore(ctx, d.key(meetingsAtIndex), &redis.ZRangeBy{
		Min: strconv.FormatInt(from.UnixMilli(), 10),
		Max: before(to),
	}).Result()
	if err != nil {
		return nil, err
	}
	return d.loadMeetings(ctx, ids)
}

func (d *Driver) loadMeetings(ctx context.Context, ids []string) ([]*domain.ScheduledMeeting, error) {
	meetings, err := getDocs[domain.ScheduledMeeting](ctx, d, meetingKind, ids)
	if err != nil {
		return nil, err
	}
	backend.SortScheduledMeetings(meetings)
	return meetings, nil
}
