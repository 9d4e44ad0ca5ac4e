// Package gormdriver is the managed relational backend: gorm over MySQL,
// with optional read replicas.
package gormdriver

import (
	"context"
	"fmt"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/dbmodels"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

var _ backend.Driver = (*Driver)(nil)

type Driver struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewWithDB wraps an already opened gorm handle.
func NewWithDB(db *gorm.DB, log *logrus.Logger) *Driver {
	return &Driver{
		db:     db,
		logger: log.WithField("driver", "gorm"),
	}
}

func formatDSN(info *config.DatabaseInfo, host string, port int32, user, password string) (string, error) {
	cnf := mysqldrv.NewConfig()
	cnf.User = user
	cnf.Passwd = password
	cnf.Net = "tcp"
	cnf.Addr = fmt.Sprintf("%s:%d", host, port)
	cnf.DBName = info.DBName
	cnf.ParseTime = true
	// conditional updates report matched rows, not changed ones
	cnf.ClientFoundRows = true
	cnf.Loc = time.UTC
	cnf.Params = map[string]string{"charset": "utf8mb4"}

	if info.Charset != nil && *info.Charset != "" {
		cnf.Params["charset"] = *info.Charset
	}
	if info.Loc != nil && *info.Loc != "" {
		loc, err := time.LoadLocation(*info.Loc)
		if err != nil {
			return "", err
		}
		cnf.Loc = loc
	}
	return cnf.FormatDSN(), nil
}

// Open connects to the configured MySQL server and pings it. Replicas, when
// present, serve reads through dbresolver.
func Open(ctx context.Context, info *config.DatabaseInfo, debug bool, log *logrus.Logger) (*Driver, error) {
	if info.Port == 0 {
		info.Port = 3306
	}
	dsn, err := formatDSN(info, info.Host, info.Port, info.Username, info.Password)
	if err != nil {
		return nil, err
	}

	loggerCnf := logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	}
	if debug {
		loggerCnf.LogLevel = logger.Info
	}
	cnf := &gorm.Config{
		Logger: logger.New(log, loggerCnf),
		// Ping below runs under the caller's deadline
		DisableAutomaticPing: true,
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}

	db, err := gorm.Open(mysql.New(mysql.Config{DSN: dsn}), cnf)
	if err != nil {
		return nil, err
	}

	if len(info.Replicas) > 0 {
		log.Infof("found %d read replicas, configuring dbresolver", len(info.Replicas))
		var replicas []gorm.Dialector

		for _, r := range info.Replicas {
			if r.Username == "" {
				r.Username = info.Username
			}
			if r.Password == "" {
				r.Password = info.Password
			}
			if r.Port == 0 {
				r.Port = info.Port
			}
			replicaDsn, err := formatDSN(info, r.Host, r.Port, r.Username, r.Password)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, mysql.Open(replicaDsn))
		}
		resolverCnf := dbresolver.Config{
			Replicas:          replicas,
			Policy:            dbresolver.RandomPolicy{},
			TraceResolverMode: debug,
		}
		if err = db.Use(dbresolver.Register(resolverCnf)); err != nil {
			return nil, err
		}
	}

	d, err := db.DB()
	if err != nil {
		return nil, err
	}

	connMaxLifetime := time.Minute * 4
	if info.ConnMaxLifetime != nil && *info.ConnMaxLifetime > 0 {
		connMaxLifetime = *info.ConnMaxLifetime
	}
	maxOpenConns := 10
	if info.MaxOpenConns != nil && *info.MaxOpenConns > 0 {
		maxOpenConns = *info.MaxOpenConns
	}
	d.SetConnMaxLifetime(connMaxLifetime)
	d.SetMaxOpenConns(maxOpenConns)
	d.SetMaxIdleConns(maxOpenConns)

	drv := NewWithDB(db, log)
	if err = drv.Ping(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}
	return drv, nil
}

func (d *Driver) Kind() backend.Kind {
	return backend.KindManagedRelational
}

// Ping checks the connection and runs a trivial query.
func (d *Driver) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	if err = sqlDB.PingContext(ctx); err != nil {
		return err
	}
	var one int
	return d.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

// VerifySchema checks that every table exists. With autoMigrate the
// missing ones are created instead of reported.
func (d *Driver) VerifySchema(ctx context.Context, autoMigrate bool) error {
	db := d.db.WithContext(ctx)
	if autoMigrate {
		return db.AutoMigrate(dbmodels.All()...)
	}

	var missing []string
	m := db.Migrator()
	for _, model := range dbmodels.All() {
		if !m.HasTable(model) {
			missing = append(missing, model.(interface{ TableName() string }).TableName())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (d *Driver) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
