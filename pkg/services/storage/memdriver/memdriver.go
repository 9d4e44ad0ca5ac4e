// Package memdriver keeps every collection in process memory. Nothing
// survives a restart; it is the fallback when no durable backend is reachable.
package memdriver

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

var _ backend.Driver = (*Driver)(nil)

// Driver stores each record as its encoded JSON document, so values handed
// out never alias the stored state.
type Driver struct {
	rooms    *cache.Cache
	meetings *cache.Cache
	history  *cache.Cache
	subs     *cache.Cache

	// guards read-modify-write sequences on subs
	subsMu sync.Mutex
	logger *logrus.Entry
}

func New(logger *logrus.Logger) *Driver {
	return &Driver{
		rooms:    cache.New(cache.NoExpiration, 0),
		meetings: cache.New(cache.NoExpiration, 0),
		history:  cache.New(cache.NoExpiration, 0),
		subs:     cache.New(cache.NoExpiration, 0),
		logger:   logger.WithField("driver", "memory"),
	}
}

func (d *Driver) Kind() backend.Kind {
	return backend.KindInMemory
}

func (d *Driver) Ping(_ context.Context) error {
	return nil
}

func (d *Driver) Close() error {
	d.rooms.Flush()
	d.meetings.Flush()
	d.history.Flush()
	d.subs.Flush()
	return nil
}

func put(c *cache.Cache, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.Set(key, b, cache.NoExpiration)
	return nil
}

func get[T any](c *cache.Cache, key string) (*T, error) {
	raw, found := c.Get(key)
	if !found {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw.([]byte), v); err != nil {
		return nil, err
	}
	return v, nil
}

func all[T any](c *cache.Cache, keep func(*T) bool) ([]*T, error) {
	items := c.Items()
	out := make([]*T, 0, len(items))
	for _, it := range items {
		v := new(T)
		if err := json.Unmarshal(it.Object.([]byte), v); err != nil {
			return nil, err
		}
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out, nil
}
