package dbmodels

import (
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"gorm.io/datatypes"
)

type Subscription struct {
	UserID                string         `gorm:"column:user_id;type:varchar(255);primaryKey"`
	PlanID                string         `gorm:"column:plan_id;type:varchar(16);not null;index:idx_subscriptions_plan_id"`
	Status                string         `gorm:"column:status;type:varchar(16);not null"`
	BillingCycle          string         `gorm:"column:billing_cycle;type:varchar(16);not null"`
	CallMinutes           int64          `gorm:"column:call_minutes;not null"`
	CallMinutesUsed       int64          `gorm:"column:call_minutes_used;not null"`
	MaxParticipants       int64          `gorm:"column:max_participants;not null"`
	Features              datatypes.JSON `gorm:"column:features;not null"`
	StartedAt             time.Time      `gorm:"column:started_at;not null"`
	ExpiresAt             *time.Time     `gorm:"column:expires_at;index:idx_subscriptions_expires_at"`
	CancelledAt           *time.Time     `gorm:"column:cancelled_at"`
	AdminGranted          bool           `gorm:"column:admin_granted;not null"`
	PaymentCustomerID     *string        `gorm:"column:payment_customer_id;type:varchar(255)"`
	PaymentSubscriptionID *string        `gorm:"column:payment_subscription_id;type:varchar(255)"`
	CreatedAt             time.Time      `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt             time.Time      `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (m *Subscription) TableName() string {
	return config.FormatDBTable(config.TableSubscriptions)
}

var SubscriptionMutableColumns = []string{
	"plan_id", "status", "billing_cycle", "call_minutes", "call_minutes_used",
	"max_participants", "features", "started_at", "expires_at", "cancelled_at",
	"admin_granted", "payment_customer_id", "payment_subscription_id", "updated_at",
}

// All lists every model for schema verification and migration.
func All() []any {
	return []any{&Room{}, &ScheduledMeeting{}, &MeetingHistory{}, &Subscription{}}
}
