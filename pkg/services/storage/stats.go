package storage

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"golang.org/x/sync/errgroup"
)

type Stats struct {
	Backend             string                  `json:"backend"`
	Durable             bool                    `json:"durable"`
	Rooms               int                     `json:"rooms"`
	ScheduledMeetings   int                     `json:"scheduledMeetings"`
	HistoryEntries      int                     `json:"historyEntries"`
	Subscriptions       int                     `json:"subscriptions"`
	ActiveSubscriptions map[domain.PlanId]int64 `json:"activeSubscriptions"`
}

// Stats gathers collection sizes concurrently.
func (f *Facade) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{
		Backend: f.kind.String(),
		Durable: f.kind.Durable(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rooms, err := f.driver.ListRooms(gctx)
		st.Rooms = len(rooms)
		return err
	})
	g.Go(func() error {
		meetings, err := f.driver.ListScheduledMeetings(gctx)
		st.ScheduledMeetings = len(meetings)
		return err
	})
	g.Go(func() error {
		entries, err := f.driver.ListMeetingHistory(gctx, "")
		st.HistoryEntries = len(entries)
		return err
	})
	g.Go(func() error {
		subs, err := f.driver.ListSubscriptions(gctx)
		st.Subscriptions = len(subs)
		return err
	})
	g.Go(func() error {
		counts, err := f.driver.CountSubscriptionsByPlan(gctx)
		st.ActiveSubscriptions = counts
		return err
	})

	if err := g.Wait(); err != nil {
		f.logger.WithError(err).Errorln("failed to gather storage stats")
		return nil, domain.NewBackendFault(err, config.StorageUnavailable)
	}
	return st, nil
}
