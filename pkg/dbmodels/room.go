package dbmodels

import (
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"gorm.io/datatypes"
)

// Room is the relational shape of domain.Room. Ordered logs and nested
// structures live in JSON columns.
type Room struct {
	ID            string         `gorm:"column:id;type:varchar(36);primaryKey"`
	Name          string         `gorm:"column:name;type:varchar(255);not null"`
	CreatedBy     string         `gorm:"column:created_by;type:varchar(255);not null"`
	MainHost      *string        `gorm:"column:main_host;type:varchar(255)"`
	OriginalHost  *string        `gorm:"column:original_host;type:varchar(255)"`
	HostID        *string        `gorm:"column:host_id;type:varchar(255)"`
	Moderators    datatypes.JSON `gorm:"column:moderators;not null"`
	Participants  datatypes.JSON `gorm:"column:participants;not null"`
	WaitingRoom   datatypes.JSON `gorm:"column:waiting_room;not null"`
	Password      string         `gorm:"column:password;type:varchar(64);not null"`
	MeetingStatus string         `gorm:"column:meeting_status;type:varchar(16);not null"`
	IsRecording   bool           `gorm:"column:is_recording;not null"`
	IsStreaming   bool           `gorm:"column:is_streaming;not null"`
	StreamingInfo datatypes.JSON `gorm:"column:streaming_info;not null"`
	Chat          datatypes.JSON `gorm:"column:chat;not null"`
	Polls         datatypes.JSON `gorm:"column:polls;not null"`
	Files         datatypes.JSON `gorm:"column:files;not null"`
	Reactions     datatypes.JSON `gorm:"column:reactions;not null"`
	Settings      datatypes.JSON `gorm:"column:settings;not null"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null;autoCreateTime:false"`
	StartedAt     *time.Time     `gorm:"column:started_at"`
	EndedAt       *time.Time     `gorm:"column:ended_at"`
	ExpiresAt     *time.Time     `gorm:"column:expires_at;index:idx_rooms_expires_at"`
}

func (m *Room) TableName() string {
	return config.FormatDBTable(config.TableRooms)
}

// RoomMutableColumns are rewritten on upsert; created_at is not among them.
var RoomMutableColumns = []string{
	"name", "created_by", "main_host", "original_host", "host_id", "moderators",
	"participants", "waiting_room", "password", "meeting_status", "is_recording",
	"is_streaming", "streaming_info", "chat", "polls", "files", "reactions",
	"settings", "started_at", "ended_at", "expires_at",
}
