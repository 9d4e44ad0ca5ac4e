package domain

import (
	"time"
)

type Plan struct {
	Id              PlanId       `json:"id"`
	Name            string       `json:"name"`
	BillingCycle    BillingCycle `json:"billingCycle"`
	PriceCents      int64        `json:"priceCents"`
	CallMinutes     int64        `json:"callMinutes"`
	MaxParticipants int64        `json:"maxParticipants"`
	Features        Features     `json:"features"`
}

var premiumFeatures = Features{
	Recording:           true,
	CloudRecording:      true,
	CustomBranding:      true,
	PrioritySupport:     true,
	AdvancedFeatures:    true,
	CalendarIntegration: true,
	LiveStreaming:       true,
	BreakoutRooms:       true,
	MeetingAnalytics:    true,
	ApiAccess:           true,
}

var plans = map[PlanId]Plan{
	PlanFree: {
		Id:              PlanFree,
		Name:            "Free",
		BillingCycle:    BillingNone,
		CallMinutes:     120,
		MaxParticipants: 10,
		Features: Features{
			Advertising: true,
		},
	},
	PlanBasic: {
		Id:              PlanBasic,
		Name:            "Basic",
		BillingCycle:    BillingMonthly,
		PriceCents:      999,
		CallMinutes:     1000,
		MaxParticipants: 50,
		Features: Features{
			Recording:           true,
			CalendarIntegration: true,
			BreakoutRooms:       true,
		},
	},
	PlanPro: {
		Id:              PlanPro,
		Name:            "Pro",
		BillingCycle:    BillingMonthly,
		PriceCents:      2999,
		CallMinutes:     Unlimited,
		MaxParticipants: 100,
		Features:        premiumFeatures,
	},
	PlanYearly: {
		Id:              PlanYearly,
		Name:            "Pro Yearly",
		BillingCycle:    BillingYearly,
		PriceCents:      29990,
		CallMinutes:     Unlimited,
		MaxParticipants: 100,
		Features:        premiumFeatures,
	},
}

func GetPlan(id PlanId) (Plan, bool) {
	p, ok := plans[id]
	return p, ok
}

// Plans returns the catalogue in display order.
func Plans() []Plan {
	return []Plan{plans[PlanFree], plans[PlanBasic], plans[PlanPro], plans[PlanYearly]}
}

// NewSubscription starts userId on plan at now.
func NewSubscription(userId string, plan Plan, now time.Time) *Subscription {
	s := &Subscription{
		UserId:          userId,
		PlanId:          plan.Id,
		Status:          SubscriptionActive,
		BillingCycle:    plan.BillingCycle,
		CallMinutes:     plan.CallMinutes,
		MaxParticipants: plan.MaxParticipants,
		Features:        plan.Features,
		StartedAt:       now,
		UpdatedAt:       now,
	}
	switch plan.BillingCycle {
	case BillingMonthly:
		e := now.AddDate(0, 1, 0)
		s.ExpiresAt = &e
	case BillingYearly:
		e := now.AddDate(1, 0, 0)
		s.ExpiresAt = &e
	}
	return s
}

// DefaultSubscription is what a user without a stored row is entitled to.
func DefaultSubscription(userId string) *Subscription {
	return NewSubscription(userId, plans[PlanFree], Now())
}

// PremiumGrant is the unlimited, non-expiring subscription an admin can hand out.
func PremiumGrant(userId string, now time.Time) *Subscription {
	s := NewSubscription(userId, plans[PlanPro], now)
	s.BillingCycle = BillingNone
	s.CallMinutes = Unlimited
	s.MaxParticipants = Unlimited
	s.ExpiresAt = nil
	s.AdminGranted = true
	return s
}

// Action names a gated capability.
type Action string

const (
	ActionRecord              Action = "record"
	ActionCloudRecord         Action = "cloudRecord"
	ActionCustomBranding      Action = "customBranding"
	ActionPrioritySupport     Action = "prioritySupport"
	ActionAdvancedFeatures    Action = "advancedFeatures"
	ActionCalendarIntegration Action = "calendarIntegration"
	ActionLiveStream          Action = "liveStream"
	ActionBreakoutRooms       Action = "breakoutRooms"
	ActionMeetingAnalytics    Action = "meetingAnalytics"
	ActionApiAccess           Action = "apiAccess"
)

// Allows reports whether the feature map enables action. Unknown actions
// are not enabled.
func (f Features) Allows(a Action) (allowed bool, known bool) {
	switch a {
	case ActionRecord:
		return f.Recording, true
	case ActionCloudRecord:
		return f.CloudRecording, true
	case ActionCustomBranding:
		return f.CustomBranding, true
	case ActionPrioritySupport:
		return f.PrioritySupport, true
	case ActionAdvancedFeatures:
		return f.AdvancedFeatures, true
	case ActionCalendarIntegration:
		return f.CalendarIntegration, true
	case ActionLiveStream:
		return f.LiveStreaming, true
	case ActionBreakoutRooms:
		return f.BreakoutRooms, true
	case ActionMeetingAnalytics:
		return f.MeetingAnalytics, true
	case ActionApiAccess:
		return f.ApiAccess, true
	}
	return false, false
}
