package redisdriver

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"github.com/redis/go-redis/v9"
)

const (
	historyKind   = "history"
	historyIndex  = "history:all"
	historyByHost = "history:host"
)

func (d *Driver) InsertMeetingHistory(ctx context.Context, e *domain.MeetingHistoryEntry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	member := redis.Z{Score: score(e.CreatedAt), Member: e.Id}
	_, err = d.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, d.key(historyKind, e.Id), raw, 0)
		pipe.ZAdd(ctx, d.key(historyIndex), member)
		pipe.ZAdd(ctx, d.key(historyByHost, e.HostId), member)
		return nil
	})
	return err
}

func (d *Driver) ListMeetingHistory(ctx context.Context, hostId string) ([]*domain.MeetingHistoryEntry, error) {
	index := d.key(historyIndex)
	if hostId != "" {
		index = d.key(historyByHost, hostId)
	}

	ids, err := d.rc.ZRevRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	entries, err := getDocs[domain.MeetingHistoryEntry](ctx, d, historyKind, ids)
	if err != nil {
		return nil, err
	}
	backend.SortHistory(entries)
	return entries, nil
}
