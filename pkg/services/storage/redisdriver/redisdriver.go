// Package redisdriver is the document store backend on Redis. Each entity
// is a JSON string; sets and sorted sets index them for listing and range
// queries.
package redisdriver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPrefix = "meethub:"
	// optimistic transactions give up after this many conflicting writers
	maxTxRetries = 20
)

var _ backend.Driver = (*Driver)(nil)

type Driver struct {
	rc     *redis.Client
	prefix string
	logger *logrus.Entry
}

// Open connects with a redis:// or rediss:// url.
func Open(ctx context.Context, rawURL string, log *logrus.Logger) (*Driver, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	rc := redis.NewClient(opts)

	d := &Driver{
		rc:     rc,
		prefix: DefaultPrefix,
		logger: log.WithField("driver", "redis"),
	}
	if err = d.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, err
	}

	info, err := rc.Info(ctx, "server").Result()
	if err == nil && info != "" {
		for _, line := range strings.Split(info, "\r\n") {
			if strings.HasPrefix(line, "redis_version:") {
				d.logger.WithField("version", strings.TrimPrefix(line, "redis_version:")).Info("successfully connected to Redis")
				break
			}
		}
	}
	return d, nil
}

func (d *Driver) Kind() backend.Kind {
	return backend.KindDocumentStore
}

func (d *Driver) Ping(ctx context.Context) error {
	return d.rc.Ping(ctx).Err()
}

func (d *Driver) Close() error {
	return d.rc.Close()
}

func (d *Driver) key(parts ...string) string {
	return d.prefix + strings.Join(parts, ":")
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// before is the exclusive upper bound for ZRANGEBYSCORE.
func before(t time.Time) string {
	return "(" + strconv.FormatInt(t.UnixMilli(), 10)
}

// getter is satisfied by both the client and a watched transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getDoc[T any](ctx context.Context, c getter, key string) (*T, error) {
	raw, err := c.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, err
	}

	v := new(T)
	if err = json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}

// getDocs loads the documents behind ids, skipping ids whose key vanished.
func getDocs[T any](ctx context.Context, d *Driver, kind string, ids []string) ([]*T, error) {
	out := make([]*T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = d.key(kind, id)
	}
	vals, err := d.rc.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		doc := new(T)
		if err = json.Unmarshal([]byte(s), doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// watch runs fn as an optimistic transaction, retrying when a watched key
// changed under it.
func (d *Driver) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := d.rc.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("transaction on %s: %w", strings.Join(keys, ","), redis.TxFailedErr)
}
