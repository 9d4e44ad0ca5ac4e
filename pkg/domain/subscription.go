package domain

import (
	"time"
)

type PlanId string

const (
	PlanFree   PlanId = "free"
	PlanBasic  PlanId = "basic"
	PlanPro    PlanId = "pro"
	PlanYearly PlanId = "yearly"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

type BillingCycle string

const (
	BillingNone    BillingCycle = "none"
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// Unlimited marks a quota without a cap.
const Unlimited int64 = -1

type Features struct {
	Recording           bool `json:"recording"`
	CloudRecording      bool `json:"cloudRecording"`
	CustomBranding      bool `json:"customBranding"`
	PrioritySupport     bool `json:"prioritySupport"`
	AdvancedFeatures    bool `json:"advancedFeatures"`
	CalendarIntegration bool `json:"calendarIntegration"`
	LiveStreaming       bool `json:"liveStreaming"`
	BreakoutRooms       bool `json:"breakoutRooms"`
	MeetingAnalytics    bool `json:"meetingAnalytics"`
	ApiAccess           bool `json:"apiAccess"`
	Advertising         bool `json:"advertising"`
}

// Subscription is the per-user plan entitlement plus the call-minute ledger.
type Subscription struct {
	UserId                string             `json:"userId"`
	PlanId                PlanId             `json:"planId"`
	Status                SubscriptionStatus `json:"status"`
	BillingCycle          BillingCycle       `json:"billingCycle"`
	CallMinutes           int64              `json:"callMinutes"`
	CallMinutesUsed       int64              `json:"callMinutesUsed"`
	MaxParticipants       int64              `json:"maxParticipants"`
	Features              Features           `json:"features"`
	StartedAt             time.Time          `json:"startedAt"`
	ExpiresAt             *time.Time         `json:"expiresAt"`
	CancelledAt           *time.Time         `json:"cancelledAt"`
	AdminGranted          bool               `json:"adminGranted"`
	PaymentCustomerId     *string            `json:"paymentCustomerId"`
	PaymentSubscriptionId *string            `json:"paymentSubscriptionId"`
	UpdatedAt             time.Time          `json:"updatedAt"`
}

func (s *Subscription) IsUnlimited() bool {
	return s.CallMinutes == Unlimited
}

// CallMinutesRemaining is quota minus usage, or Unlimited.
func (s *Subscription) CallMinutesRemaining() int64 {
	if s.IsUnlimited() {
		return Unlimited
	}
	r := s.CallMinutes - s.CallMinutesUsed
	if r < 0 {
		return 0
	}
	return r
}

func (s *Subscription) IsActive(now time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}

// View adds the derived remaining minutes for API responses.
func (s *Subscription) View() SubscriptionView {
	return SubscriptionView{
		Subscription:         *s,
		CallMinutesRemaining: s.CallMinutesRemaining(),
	}
}

type SubscriptionView struct {
	Subscription
	CallMinutesRemaining int64 `json:"callMinutesRemaining"`
}
