package models

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscription_DefaultIsNotStored(t *testing.T) {
	e := newTestEnv(t)

	s := e.sub.GetUserSubscription(e.ctx, "u1")
	assert.Equal(t, domain.PlanFree, s.PlanId)
	assert.Equal(t, int64(120), s.CallMinutes)
	assert.True(t, s.Features.Advertising)
	assert.Nil(t, e.ds.GetSubscription(e.ctx, "u1"))

	_, err := e.sub.ActivateFreePlan(e.ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, e.ds.GetSubscription(e.ctx, "u1"))

	// activating again keeps the stored row
	s, err = e.sub.ActivateFreePlan(e.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, s.PlanId)

	_, err = e.sub.ActivateFreePlan(e.ctx, "")
	assert.True(t, domain.IsValidation(err))
}

func TestSubscription_CreatePaid(t *testing.T) {
	e := newTestEnv(t)
	customer, ref := "cus_1", "sub_1"

	_, err := e.sub.CreatePaidSubscription(e.ctx, &PaidSubscriptionReq{UserId: "u1", PlanId: domain.PlanFree})
	assert.True(t, domain.IsValidation(err))
	_, err = e.sub.CreatePaidSubscription(e.ctx, &PaidSubscriptionReq{UserId: "u1", PlanId: "gold"})
	assert.True(t, domain.IsValidation(err))
	_, err = e.sub.CreatePaidSubscription(e.ctx, &PaidSubscriptionReq{UserId: "u1", PlanId: domain.PlanPro, BillingCycle: "weekly"})
	assert.True(t, domain.IsValidation(err))

	s, err := e.sub.CreatePaidSubscription(e.ctx, &PaidSubscriptionReq{
		UserId:                "u1",
		PlanId:                domain.PlanPro,
		BillingCycle:          domain.BillingYearly,
		PaymentCustomerId:     &customer,
		PaymentSubscriptionId: &ref,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BillingYearly, s.BillingCycle)
	require.NotNil(t, s.ExpiresAt)
	assert.Equal(t, s.StartedAt.AddDate(1, 0, 0), *s.ExpiresAt)

	stored := e.sub.GetUserSubscription(e.ctx, "u1")
	assert.Equal(t, domain.PlanPro, stored.PlanId)
	assert.True(t, stored.IsUnlimited())
	assert.Equal(t, "sub_1", *stored.PaymentSubscriptionId)

	// a paid user cannot fall back to free while the plan runs
	_, err = e.sub.ActivateFreePlan(e.ctx, "u1")
	assert.True(t, domain.IsValidation(err))
}

func TestSubscription_GrantAndCancel(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.sub.CancelSubscription(e.ctx, "nobody")
	assert.True(t, domain.IsNotFound(err))

	s, err := e.sub.GrantPremiumSubscription(e.ctx, "vip", "admin@example.com")
	require.NoError(t, err)
	assert.True(t, s.AdminGranted)
	assert.Nil(t, s.ExpiresAt)
	assert.Equal(t, domain.Unlimited, s.MaxParticipants)

	ref := "sub_9"
	_, err = e.sub.CreatePaidSubscription(e.ctx, &PaidSubscriptionReq{UserId: "u2", PlanId: domain.PlanBasic, PaymentSubscriptionId: &ref})
	require.NoError(t, err)
	s, err = e.sub.CancelSubscription(e.ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionCancelled, s.Status)
	require.NotNil(t, s.CancelledAt)
	assert.Equal(t, []string{"sub_9"}, e.payment.cancelled)

	// the row is kept, the user is back on free
	assert.Equal(t, domain.SubscriptionCancelled, e.ds.GetSubscription(e.ctx, "u2").Status)
	assert.Equal(t, domain.PlanFree, e.sub.GetUserSubscription(e.ctx, "u2").PlanId)

	// cancelling twice is harmless
	_, err = e.sub.CancelSubscription(e.ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, e.payment.cancelled, 1)
}

func TestSubscription_CallMinutes(t *testing.T) {
	e := newTestEnv(t)
	s := e.givePlan(t, "u1", domain.PlanFree)
	s.CallMinutesUsed = 100
	require.NoError(t, e.ds.SaveSubscription(e.ctx, s))

	chk := e.sub.CheckCallMinutesLimit(e.ctx, "u1", 20)
	assert.True(t, chk.Allowed)
	assert.Equal(t, int64(20), chk.Remaining)

	chk = e.sub.CheckCallMinutesLimit(e.ctx, "u1", 30)
	assert.False(t, chk.Allowed)
	assert.Equal(t, int64(20), chk.Remaining)
	assert.NotEmpty(t, chk.Reason)

	_, err := e.sub.TrackCallMinutes(e.ctx, "u1", 25)
	require.Error(t, err)
	assert.True(t, domain.IsQuotaExceeded(err))
	var f *domain.Fault
	require.ErrorAs(t, err, &f)
	assert.Equal(t, int64(20), f.Remaining)
	assert.Equal(t, int64(100), e.ds.GetSubscription(e.ctx, "u1").CallMinutesUsed)

	s, err = e.sub.TrackCallMinutes(e.ctx, "u1", 20)
	require.NoError(t, err)
	assert.Equal(t, int64(120), s.CallMinutesUsed)
	assert.Equal(t, int64(0), s.CallMinutesRemaining())

	_, err = e.sub.TrackCallMinutes(e.ctx, "u1", 0)
	assert.True(t, domain.IsValidation(err))
}

func TestSubscription_TrackCallMinutesStoresFreePlan(t *testing.T) {
	e := newTestEnv(t)

	s, err := e.sub.TrackCallMinutes(e.ctx, "new-user", 15)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, s.PlanId)
	assert.Equal(t, int64(15), e.ds.GetSubscription(e.ctx, "new-user").CallMinutesUsed)
}

func TestSubscription_TrackCallMinutesUnlimited(t *testing.T) {
	e := newTestEnv(t)
	e.givePlan(t, "pro", domain.PlanPro)

	for i := 0; i < 5; i++ {
		_, err := e.sub.TrackCallMinutes(e.ctx, "pro", 1000)
		require.NoError(t, err)
	}
	chk := e.sub.CheckCallMinutesLimit(e.ctx, "pro", 1_000_000)
	assert.True(t, chk.Allowed)
	assert.Equal(t, domain.Unlimited, chk.Remaining)
}

func TestSubscription_TrackCallMinutesConcurrent(t *testing.T) {
	e := newTestEnv(t)
	e.givePlan(t, "u1", domain.PlanFree)

	var wg sync.WaitGroup
	var applied atomic.Int64
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.sub.TrackCallMinutes(e.ctx, "u1", 10); err == nil {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(12), applied.Load())
	assert.Equal(t, int64(120), e.ds.GetSubscription(e.ctx, "u1").CallMinutesUsed)
}

func TestSubscription_FeatureGates(t *testing.T) {
	e := newTestEnv(t)
	e.givePlan(t, "pro", domain.PlanPro)

	ok, reason := e.sub.CanPerformAction(e.ctx, "free", domain.ActionRecord)
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	ok, _ = e.sub.CanPerformAction(e.ctx, "pro", domain.ActionRecord)
	assert.True(t, ok)

	ok, _ = e.sub.CanPerformAction(e.ctx, "pro", "teleport")
	assert.False(t, ok)

	err := e.sub.RequireAction(e.ctx, "free", domain.ActionLiveStream)
	assert.True(t, domain.IsQuotaExceeded(err))
	assert.NoError(t, e.sub.RequireAction(e.ctx, "pro", domain.ActionLiveStream))
}

func TestSubscription_ParticipantsLimit(t *testing.T) {
	e := newTestEnv(t)
	e.givePlan(t, "pro", domain.PlanPro)
	_, err := e.sub.GrantPremiumSubscription(e.ctx, "vip", "admin")
	require.NoError(t, err)

	tests := []struct {
		user      string
		count     int64
		allowed   bool
		remaining int64
	}{
		{"free", 10, true, 0},
		{"free", 11, false, 0},
		{"pro", 40, true, 60},
		{"vip", 10000, true, domain.Unlimited},
	}
	for _, tt := range tests {
		chk := e.sub.CheckParticipantsLimit(e.ctx, tt.user, tt.count)
		assert.Equal(t, tt.allowed, chk.Allowed, "%s/%d", tt.user, tt.count)
		assert.Equal(t, tt.remaining, chk.Remaining, "%s/%d", tt.user, tt.count)
	}
}

func TestSubscription_DowngradeLapsed(t *testing.T) {
	e := newTestEnv(t)
	e.givePlan(t, "basic", domain.PlanBasic)
	e.givePlan(t, "pro", domain.PlanPro)
	_, err := e.sub.GrantPremiumSubscription(e.ctx, "vip", "admin")
	require.NoError(t, err)

	assert.Equal(t, 0, e.sub.DowngradeLapsed(e.ctx))

	// two months later both monthly plans have run out
	later := domain.Now().AddDate(0, 2, 0)
	e.sub.now = func() time.Time { return later }

	assert.Equal(t, domain.PlanFree, e.sub.GetUserSubscription(e.ctx, "basic").PlanId)
	assert.Equal(t, 2, e.sub.DowngradeLapsed(e.ctx))
	assert.Equal(t, domain.PlanFree, e.ds.GetSubscription(e.ctx, "basic").PlanId)
	assert.Equal(t, domain.PlanFree, e.ds.GetSubscription(e.ctx, "pro").PlanId)
	assert.Equal(t, domain.PlanPro, e.ds.GetSubscription(e.ctx, "vip").PlanId)
	assert.Equal(t, 0, e.sub.DowngradeLapsed(e.ctx))
}

func TestSubscription_PlansAndAnalytics(t *testing.T) {
	e := newTestEnv(t)
	assert.Len(t, e.sub.GetPlans(), 4)

	e.givePlan(t, "a", domain.PlanPro)
	e.givePlan(t, "b", domain.PlanPro)
	e.givePlan(t, "c", domain.PlanBasic)

	res, err := e.sub.UsageAnalytics(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.ActiveByPlan[domain.PlanPro])
	assert.Equal(t, int64(1), res.ActiveByPlan[domain.PlanBasic])
	assert.Equal(t, int64(3), res.TotalActive)
	assert.Equal(t, 3, res.Storage.Subscriptions)
}

func TestSubscription_ReadFaultKeepsStoredPlan(t *testing.T) {
	e, d := newFaultyTestEnv(t)
	e.givePlan(t, "u1", domain.PlanPro)

	d.Fail(storagetest.OpGetSubscription, 1)
	_, err := e.sub.TrackCallMinutes(e.ctx, "u1", 5)
	require.Error(t, err)
	assert.True(t, domain.IsBackend(err))

	stored := e.ds.GetSubscription(e.ctx, "u1")
	require.NotNil(t, stored)
	assert.Equal(t, domain.PlanPro, stored.PlanId)
	assert.Equal(t, int64(0), stored.CallMinutesUsed)

	d.Fail(storagetest.OpGetSubscription, 1)
	_, err = e.sub.ActivateFreePlan(e.ctx, "u1")
	assert.True(t, domain.IsBackend(err))
	assert.Equal(t, domain.PlanPro, e.ds.GetSubscription(e.ctx, "u1").PlanId)

	d.Fail(storagetest.OpGetSubscription, 1)
	_, err = e.sub.CancelSubscription(e.ctx, "u1")
	assert.True(t, domain.IsBackend(err))
	assert.Equal(t, domain.SubscriptionActive, e.ds.GetSubscription(e.ctx, "u1").Status)

	// once the store answers again the minutes are charged to the pro row
	s, err := e.sub.TrackCallMinutes(e.ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPro, s.PlanId)
	assert.Equal(t, int64(5), s.CallMinutesUsed)
}
