package memdriver

import (
	"context"
	"sync"
	"testing"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/storagetest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_Conformance(t *testing.T) {
	storagetest.RunDriverSuite(t, New(logrus.New()))
}

func TestDriver_ReturnedValuesDoNotAlias(t *testing.T) {
	ctx := context.Background()
	d := New(logrus.New())
	r := storagetest.SampleRoom()
	require.NoError(t, d.UpsertRoom(ctx, r))

	got, err := d.GetRoom(ctx, r.Id)
	require.NoError(t, err)
	got.Moderators[0] = "changed"
	r.Name = "changed"

	again, err := d.GetRoom(ctx, r.Id)
	require.NoError(t, err)
	assert.Equal(t, "mod-1", again.Moderators[0])
	assert.Equal(t, "weekly sync", again.Name)
}

func TestDriver_IncrementCallMinutesIsAtomic(t *testing.T) {
	ctx := context.Background()
	d := New(logrus.New())
	s := domain.DefaultSubscription("u1")
	require.NoError(t, d.UpsertSubscription(ctx, s))

	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < 50; i++ {
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
