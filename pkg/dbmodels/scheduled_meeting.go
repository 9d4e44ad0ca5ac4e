package dbmodels

import (
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"gorm.io/datatypes"
)

type ScheduledMeeting struct {
	ID                string         `gorm:"column:id;type:varchar(36);primaryKey"`
	RoomID            string         `gorm:"column:room_id;type:varchar(36);not null;index:idx_scheduled_meetings_room_id"`
	HostID            string         `gorm:"column:host_id;type:varchar(255);not null;index:idx_scheduled_meetings_host_id"`
	Title             string         `gorm:"column:title;type:varchar(255);not null"`
	Description       string         `gorm:"column:description;type:text;not null"`
	ScheduledDate     string         `gorm:"column:scheduled_date;type:varchar(10);not null"`
	ScheduledTime     string         `gorm:"column:scheduled_time;type:varchar(8);not null"`
	Timezone          string         `gorm:"column:timezone;type:varchar(64);not null"`
	ScheduledDatetime time.Time      `gorm:"column:scheduled_datetime;not null;index:idx_scheduled_meetings_scheduled_datetime"`
	Duration          int64          `gorm:"column:duration;not null"`
	RoomPassword      string         `gorm:"column:room_password;type:varchar(64);not null"`
	ReminderTime      *int64         `gorm:"column:reminder_time"`
	Participants      datatypes.JSON `gorm:"column:participants;not null"`
	IsRecurring       bool           `gorm:"column:is_recurring;not null"`
	RecurrencePattern string         `gorm:"column:recurrence_pattern;type:varchar(16);not null"`
	RecurrenceEndDate *string        `gorm:"column:recurrence_end_date;type:varchar(10)"`
	RecurrenceCount   *int64         `gorm:"column:recurrence_count"`
	Status            string         `gorm:"column:status;type:varchar(16);not null"`
	CreatedAt         time.Time      `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (m *ScheduledMeeting) TableName() string {
	return config.FormatDBTable(config.TableScheduledMeetings)
}

var ScheduledMeetingMutableColumns = []string{
	"room_id", "host_id", "title", "description", "scheduled_date", "scheduled_time",
	"timezone", "scheduled_datetime", "duration", "room_password", "reminder_time",
	"participants", "is_recurring", "recurrence_pattern", "recurrence_end_date",
	"recurrence_count", "status", "updated_at",
}
