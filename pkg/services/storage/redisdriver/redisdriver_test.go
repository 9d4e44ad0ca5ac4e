package redisdriver

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/storagetest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	d := &Driver{prefix: DefaultPrefix}
	assert.Equal(t, "meethub:room:r1", d.key(roomKind, "r1"))
	assert.Equal(t, "meethub:meetings:host:h1", d.key(meetingsByHostIx, "h1"))

	at := time.UnixMilli(1_700_000_000_123)
	assert.Equal(t, float64(1_700_000_000_123), score(at))
	assert.Equal(t, "(1700000000123", before(at))
}

// openTestDriver isolates each run under its own key prefix.
func openTestDriver(t *testing.T) *Driver {
	t.Helper()
	raw := os.Getenv("TEST_REDIS_URL")
	if raw == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	d, err := Open(ctx, raw, logrus.New())
	require.NoError(t, err)
	d.prefix = "meethub-test-" + uuid.NewString() + ":"

	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := d.rc.Keys(ctx, d.prefix+"*").Result()
		if len(keys) > 0 {
			_ = d.rc.Del(ctx, keys...).Err()
		}
		_ = d.Close()
	})
	return d
}

func TestDriver_Conformance(t *testing.T) {
	storagetest.RunDriverSuite(t, openTestDriver(t))
}

func TestDriver_IncrementCallMinutesIsAtomic(t *testing.T) {
	d := openTestDriver(t)
	ctx := context.Background()
	require.NoError(t, d.UpsertSubscription(ctx, domain.DefaultSubscription("u1")))

	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := d.IncrementCallMinutes(ctx, "u1", 10)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := d.GetSubscription(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 12, applied)
	assert.Equal(t, int64(120), got.CallMinutesUsed)
}
