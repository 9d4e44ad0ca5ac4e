package config

import (
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

var dbTablePrefix string

type AppConfig struct {
	Logger   *logrus.Logger
	NatsConn *nats.Conn

	RootWorkingDir   string
	Client           ClientInfo       `yaml:"client"`
	LogSettings      LogSettings      `yaml:"log_settings"`
	DatabaseInfo     DatabaseInfo     `yaml:"database_info"`
	StorageInfo      StorageInfo      `yaml:"storage_info"`
	NatsInfo         NatsInfo         `yaml:"nats_info"`
	RoomSettings     RoomSettings     `yaml:"room_settings"`
	ReminderSettings ReminderSettings `yaml:"reminder_settings"`
}

type ClientInfo struct {
	Port           int            `yaml:"port"`
	Debug          bool           `yaml:"debug"`
	ApiKey         string         `yaml:"api_key"`
	Secret         string         `yaml:"secret"`
	AdminEmails    []string       `yaml:"admin_emails"`
	TokenValidity  *time.Duration `yaml:"token_validity"`
	PrometheusConf PrometheusConf `yaml:"prometheus"`
	ProxyHeader    string         `yaml:"proxy_header"`
}

type PrometheusConf struct {
	Enable      bool   `yaml:"enable"`
	MetricsPath string `yaml:"metrics_path"`
}

type LogSettings struct {
	LogFile    string  `yaml:"log_file"`
	MaxSize    int     `yaml:"max_size"`
	MaxBackups int     `yaml:"max_backups"`
	MaxAge     int     `yaml:"max_age"`
	LogLevel   *string `yaml:"log_level"`
}

// DatabaseInfo configures the managed MySQL service. Leaving Host empty
// skips it during backend selection.
type DatabaseInfo struct {
	Host            string          `yaml:"host"`
	Port            int32           `yaml:"port"`
	Username        string          `yaml:"username"`
	Password        string          `yaml:"password"`
	DBName          string          `yaml:"db"`
	Prefix          string          `yaml:"prefix"`
	Charset         *string         `yaml:"charset"`
	Loc             *string         `yaml:"loc"`
	ConnMaxLifetime *time.Duration  `yaml:"conn_max_lifetime"`
	MaxOpenConns    *int            `yaml:"max_open_conns"`
	AutoMigrate     bool            `yaml:"auto_migrate"`
	Replicas        []ReplicaDBInfo `yaml:"replicas"`
}

// ReplicaDBInfo holds connection details for a read replica database.
type ReplicaDBInfo struct {
	Host     string `yaml:"host"`
	Port     int32  `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// StorageInfo holds the generic connection string. The scheme decides the
// backend: postgres://, postgresql://, mysql://, mongodb://, mongodb+srv://,
// redis:// or rediss://.
type StorageInfo struct {
	ConnectionUrl string         `yaml:"connection_url"`
	ProbeTimeout  *time.Duration `yaml:"probe_timeout"`
	MongoDatabase string         `yaml:"mongo_database"`
}

type NatsInfo struct {
	NatsUrls []string     `yaml:"nats_urls"`
	User     string       `yaml:"user"`
	Password string       `yaml:"password"`
	Nkey     *string      `yaml:"nkey"`
	Subjects NatsSubjects `yaml:"subjects"`
}

type NatsSubjects struct {
	Mail string `yaml:"mail"`
}

type RoomSettings struct {
	DefaultTTL         time.Duration `yaml:"default_ttl"`
	CleanupInterval    time.Duration `yaml:"cleanup_interval"`
	WaitingRoomEnabled bool          `yaml:"waiting_room_enabled"`
}

type ReminderSettings struct {
	Workers int `yaml:"workers"`
}

func New(appCnf *AppConfig) (*AppConfig, error) {
	if appCnf.Client.Port == 0 {
		appCnf.Client.Port = 8080
	}
	if appCnf.Client.TokenValidity == nil || *appCnf.Client.TokenValidity <= 0 {
		d := DefaultTokenValidity
		appCnf.Client.TokenValidity = &d
	}
	if appCnf.Client.PrometheusConf.MetricsPath == "" {
		appCnf.Client.PrometheusConf.MetricsPath = "/metrics"
	}

	if appCnf.StorageInfo.ConnectionUrl == "" {
		appCnf.StorageInfo.ConnectionUrl = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if appCnf.StorageInfo.ProbeTimeout == nil || *appCnf.StorageInfo.ProbeTimeout <= 0 {
		d := DefaultProbeTimeout
		appCnf.StorageInfo.ProbeTimeout = &d
	}
	if appCnf.StorageInfo.MongoDatabase == "" {
		appCnf.StorageInfo.MongoDatabase = DefaultMongoDatabase
	}

	if appCnf.NatsInfo.Subjects.Mail == "" {
		appCnf.NatsInfo.Subjects.Mail = DefaultMailSubject
	}

	if appCnf.RoomSettings.DefaultTTL <= 0 {
		appCnf.RoomSettings.DefaultTTL = DefaultRoomTTL
	}
	if appCnf.RoomSettings.CleanupInterval <= 0 {
		appCnf.RoomSettings.CleanupInterval = DefaultCleanupInterval
	}
	if appCnf.ReminderSettings.Workers <= 0 {
		appCnf.ReminderSettings.Workers = DefaultReminderWorkers
	}

	dbTablePrefix = appCnf.DatabaseInfo.Prefix

	return appCnf, nil
}

// IsAdminEmail is the static admin gate for privileged routes.
func (a *AppConfig) IsAdminEmail(email string) bool {
	for _, e := range a.Client.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

func FormatDBTable(table string) string {
	if dbTablePrefix != "" {
		return dbTablePrefix + table
	}
	return table
}
