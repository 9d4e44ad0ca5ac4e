package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/models"
)

// SubscriptionController holds dependencies for plan and usage handlers.
type SubscriptionController struct {
	SubscriptionModel *models.SubscriptionModel
}

// NewSubscriptionController creates a new SubscriptionController.
func NewSubscriptionController(m *models.SubscriptionModel) *SubscriptionController {
	return &SubscriptionController{
		SubscriptionModel: m,
	}
}

func (sc *SubscriptionController) HandleGetPlans(c *fiber.Ctx) error {
	return sendResponse(c, fiber.Map{"plans": sc.SubscriptionModel.GetPlans()})
}

// HandleGetSubscription returns the caller's effective subscription.
func (sc *SubscriptionController) HandleGetSubscription(c *fiber.Ctx) error {
	userId, _ := requestUser(c)
	return sendResponse(c, fiber.Map{
		"subscription": sc.SubscriptionModel.GetUserSubscription(c.UserContext(), userId),
	})
}

func (sc *SubscriptionController) HandleActivateFreePlan(c *fiber.Ctx) error {
	userId, _ := requestUser(c)
	s, err := sc.SubscriptionModel.ActivateFreePlan(c.UserContext(), userId)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"subscription": s})
}

func (sc *SubscriptionController) HandleCancelSubscription(c *fiber.Ctx) error {
	userId, _ := requestUser(c)
	s, err := sc.SubscriptionModel.CancelSubscription(c.UserContext(), userId)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"subscription": s})
}

// HandleCheckCallMinutes accepts ?required=N minutes.
func (sc *SubscriptionController) HandleCheckCallMinutes(c *fiber.Ctx) error {
	userId, _ := requestUser(c)
	required := int64(c.QueryInt("required"))
	if required < 0 {
		return sendFault(c, domain.NewValidationFault("required minutes must not be negative"))
	}
	return sendResponse(c, fiber.Map{
		"usage": sc.SubscriptionModel.CheckCallMinutesLimit(c.UserContext(), userId, required),
	})
}

func (sc *SubscriptionController) HandleCanPerformAction(c *fiber.Ctx) error {
	userId, _ := requestUser(c)
	allowed, reason := sc.SubscriptionModel.CanPerformAction(c.UserContext(), userId, domain.Action(c.Params("action")))
	return sendResponse(c, fiber.Map{
		"allowed": allowed,
		"reason":  reason,
	})
}

type paidSubscriptionReq struct {
	UserId                string              `json:"userId"`
	PlanId                domain.PlanId       `json:"planId"`
	BillingCycle          domain.BillingCycle `json:"billingCycle"`
	PaymentCustomerId     *string             `json:"paymentCustomerId"`
	PaymentSubscriptionId *string             `json:"paymentSubscriptionId"`
}

// HandleCreatePaidSubscription is called by the billing backend once a
// payment has settled. It sits behind the API key check.
func (sc *SubscriptionController) HandleCreatePaidSubscription(c *fiber.Ctx) error {
	req := new(paidSubscriptionReq)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}

	s, err := sc.SubscriptionModel.CreatePaidSubscription(c.UserContext(), &models.PaidSubscriptionReq{
		UserId:                req.UserId,
		PlanId:                req.PlanId,
		BillingCycle:          req.BillingCycle,
		PaymentCustomerId:     req.PaymentCustomerId,
		PaymentSubscriptionId: req.PaymentSubscriptionId,
	})
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"subscription": s})
}

type trackMinutesReq struct {
	UserId  string `json:"userId"`
	Minutes int64  `json:"minutes"`
}

// HandleTrackCallMinutes lets an integrating backend charge minutes.
func (sc *SubscriptionController) HandleTrackCallMinutes(c *fiber.Ctx) error {
	req := new(trackMinutesReq)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}

	s, err := sc.SubscriptionModel.TrackCallMinutes(c.UserContext(), req.UserId, req.Minutes)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"subscription": s})
}

// HandleGrantPremium is admin only.
func (sc *SubscriptionController) HandleGrantPremium(c *fiber.Ctx) error {
	req := new(targetUserReq)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}
	if req.UserId == "" {
		return sendFault(c, domain.NewValidationFault(config.UserIdRequired))
	}
	grantedBy, _ := requestUser(c)

	s, err := sc.SubscriptionModel.GrantPremiumSubscription(c.UserContext(), req.UserId, grantedBy)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"subscription": s})
}

// HandleUsageAnalytics is admin only.
func (sc *SubscriptionController) HandleUsageAnalytics(c *fiber.Ctx) error {
	res, err := sc.SubscriptionModel.UsageAnalytics(c.UserContext())
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"analytics": res})
}
