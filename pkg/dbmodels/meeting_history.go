package dbmodels

import (
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
)

type MeetingHistory struct {
	ID                string    `gorm:"column:id;type:varchar(36);primaryKey"`
	RoomID            string    `gorm:"column:room_id;type:varchar(36);not null"`
	HostID            string    `gorm:"column:host_id;type:varchar(255);not null;index:idx_meeting_history_host_id"`
	Title             string    `gorm:"column:title;type:varchar(255);not null"`
	Duration          int64     `gorm:"column:duration;not null"`
	ParticipantsCount int64     `gorm:"column:participants_count;not null"`
	Status            string    `gorm:"column:status;type:varchar(16);not null"`
	CreatedAt         time.Time `gorm:"column:created_at;not null;autoCreateTime:false"`
}

func (m *MeetingHistory) TableName() string {
	return config.FormatDBTable(config.TableMeetingHistory)
}
