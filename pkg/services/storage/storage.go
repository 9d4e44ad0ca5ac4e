// Package storage is the single entry point to persistence. It picks one
// backend at start-up and routes every entity operation to it.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/gormdriver"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/memdriver"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/mongodriver"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/redisdriver"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/sqldriver"
	"github.com/sirupsen/logrus"
)

type Facade struct {
	driver backend.Driver
	kind   backend.Kind
	logger *logrus.Entry
}

// New selects the backend. It never fails: when no durable store can be
// reached the facade runs on process memory.
func New(ctx context.Context, appCnf *config.AppConfig, log *logrus.Logger) *Facade {
	d, err := selectDriver(ctx, appCnf, log)
	if err != nil {
		log.WithError(err).Errorln("no durable storage backend reachable")
		d = nil
	}
	if d != nil {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout(appCnf))
		err = d.Ping(pctx)
		cancel()
		if err != nil {
			log.WithError(err).Errorln("selected storage backend failed its ping")
			_ = d.Close()
			d = nil
		}
	}
	if d == nil {
		log.Warnln("**************************************************************")
		log.Warnln("storage is running IN MEMORY: all rooms, meetings, history and")
		log.Warnln("subscriptions will be lost when this process stops")
		log.Warnln("**************************************************************")
		d = memdriver.New(log)
	}
	return NewWithDriver(d, log)
}

func NewWithDriver(d backend.Driver, log *logrus.Logger) *Facade {
	f := &Facade{
		driver: d,
		kind:   d.Kind(),
		logger: log.WithFields(logrus.Fields{
			"service": "storage",
			"backend": d.Kind().String(),
		}),
	}
	f.logger.Infoln("storage backend selected")
	return f
}

func probeTimeout(appCnf *config.AppConfig) time.Duration {
	if t := appCnf.StorageInfo.ProbeTimeout; t != nil && *t > 0 {
		return *t
	}
	return config.DefaultProbeTimeout
}

func selectDriver(ctx context.Context, appCnf *config.AppConfig, log *logrus.Logger) (backend.Driver, error) {
	if appCnf.DatabaseInfo.Host != "" {
		d, err := openManaged(ctx, appCnf, log)
		if err == nil {
			return d, nil
		}
		log.WithError(err).Warnln("managed relational database unavailable")
	}

	raw := strings.TrimSpace(appCnf.StorageInfo.ConnectionUrl)
	if raw == "" {
		return nil, nil
	}
	return openURL(ctx, raw, appCnf, log)
}

func openManaged(ctx context.Context, appCnf *config.AppConfig, log *logrus.Logger) (backend.Driver, error) {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout(appCnf))
	defer cancel()

	d, err := gormdriver.Open(pctx, &appCnf.DatabaseInfo, appCnf.Client.Debug, log)
	if err != nil {
		return nil, err
	}
	if err = d.VerifySchema(pctx, appCnf.DatabaseInfo.AutoMigrate); err != nil {
		log.WithError(err).Warnln("schema verification failed, set database_info.auto_migrate: true to create the tables")
	}
	return d, nil
}

// openURL dispatches on the connection string scheme.
func openURL(ctx context.Context, raw string, appCnf *config.AppConfig, log *logrus.Logger) (backend.Driver, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid connection url: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, probeTimeout(appCnf))
	defer cancel()

	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql", "mysql":
		d, err := sqldriver.Open(pctx, raw, log)
		if err != nil {
			return nil, err
		}
		if err = d.Bootstrap(pctx); err != nil {
			_ = d.Close()
			return nil, err
		}
		return d, nil

	case "mongodb", "mongodb+srv":
		d, err := mongodriver.Open(pctx, raw, appCnf.StorageInfo.MongoDatabase, log)
		if err != nil {
			return nil, err
		}
		if err = d.EnsureIndexes(pctx); err != nil {
			log.WithError(err).Warnln("could not create mongo indexes")
		}
		return d, nil

	case "redis", "rediss":
		d, err := redisdriver.Open(pctx, raw, log)
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	return nil, fmt.Errorf("unsupported storage scheme %q", u.Scheme)
}

func (f *Facade) Kind() backend.Kind {
	return f.kind
}

func (f *Facade) Ping(ctx context.Context) error {
	return f.driver.Ping(ctx)
}

func (f *Facade) Close() error {
	return f.driver.Close()
}
