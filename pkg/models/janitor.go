package models

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
	"github.com/sirupsen/logrus"
)

// JanitorModel performs the periodic cleanup tasks.
type JanitorModel struct {
	ctx      context.Context
	cancel   context.CancelFunc
	ds       *storage.Facade
	subModel *SubscriptionModel
	interval time.Duration
	done     chan struct{}
	logger   *logrus.Entry
}

func NewJanitorModel(mainCtx context.Context, app *config.AppConfig, ds *storage.Facade, subModel *SubscriptionModel, logger *logrus.Logger) *JanitorModel {
	ctx, cancel := context.WithCancel(mainCtx)

	return &JanitorModel{
		ctx:      ctx,
		cancel:   cancel,
		ds:       ds,
		subModel: subModel,
		interval: app.RoomSettings.CleanupInterval,
		done:     make(chan struct{}),
		logger:   logger.WithField("model", "janitor"),
	}
}

// StartJanitor runs the tasks every interval until Shutdown.
func (m *JanitorModel) StartJanitor() {
	defer close(m.done)
	m.logger.WithField("interval", m.interval).Infoln("janitor started")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			m.logger.WithError(m.ctx.Err()).Infoln("janitor shutdown completed")
			return
		case <-ticker.C:
			m.RunTasks()
		}
	}
}

// RunTasks sweeps expired rooms and lapsed subscriptions once.
func (m *JanitorModel) RunTasks() {
	removed, err := m.ds.CleanupExpiredRooms(m.ctx)
	if err != nil {
		m.logger.WithError(err).Errorln("failed to clean up expired rooms")
	} else if removed > 0 {
		m.logger.WithField("rooms", removed).Infoln("expired rooms removed")
	}

	if n := m.subModel.DowngradeLapsed(m.ctx); n > 0 {
		m.logger.WithField("subscriptions", n).Infoln("lapsed subscriptions downgraded")
	}
}

// Shutdown stops the loop and waits for a running sweep to finish. It
// must only be called after StartJanitor was started.
func (m *JanitorModel) Shutdown() {
	m.cancel()
	<-m.done
}
