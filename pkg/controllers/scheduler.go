package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/models"
)

const defaultUpcomingWindow = 24 * time.Hour

// ScheduleController holds dependencies for scheduled meeting handlers.
type ScheduleController struct {
	ScheduleModel *models.ScheduleModel
}

// NewScheduleController creates a new ScheduleController.
func NewScheduleController(m *models.ScheduleModel) *ScheduleController {
	return &ScheduleController{
		ScheduleModel: m,
	}
}

func (sc *ScheduleController) HandleScheduleMeeting(c *fiber.Ctx) error {
	req := new(domain.ScheduleMeetingRequest)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}
	req.HostId, _ = requestUser(c)

	meeting, err := sc.ScheduleModel.ScheduleMeeting(c.UserContext(), req)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"meeting": meeting})
}

func (sc *ScheduleController) HandleGetScheduledMeeting(c *fiber.Ctx) error {
	meeting, err := sc.ScheduleModel.GetScheduledMeeting(c.UserContext(), c.Params("meetingId"))
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"meeting": meeting})
}

// HandleGetScheduledMeetings lists the caller's meetings. An admin may pass
// ?all=true to list everybody's.
func (sc *ScheduleController) HandleGetScheduledMeetings(c *fiber.Ctx) error {
	hostId, isAdmin := requestUser(c)
	if isAdmin && c.QueryBool("all") {
		hostId = ""
	}
	return sendResponse(c, fiber.Map{
		"meetings": sc.ScheduleModel.GetScheduledMeetings(c.UserContext(), hostId),
	})
}

// HandleGetUpcomingMeetings accepts ?hours=N, 24 by default.
func (sc *ScheduleController) HandleGetUpcomingMeetings(c *fiber.Ctx) error {
	hostId, _ := requestUser(c)
	window := defaultUpcomingWindow
	if h := c.QueryInt("hours"); h > 0 {
		window = time.Duration(h) * time.Hour
	}
	return sendResponse(c, fiber.Map{
		"meetings": sc.ScheduleModel.GetUpcomingMeetings(c.UserContext(), hostId, window),
	})
}

func (sc *ScheduleController) HandleUpdateScheduledMeeting(c *fiber.Ctx) error {
	patch := new(domain.ScheduledMeetingPatch)
	if err := parseRequest(c, patch); err != nil {
		return sendFault(c, err)
	}
	userId, isAdmin := requestUser(c)

	meeting, err := sc.ScheduleModel.UpdateScheduledMeeting(c.UserContext(), c.Params("meetingId"), userId, isAdmin, patch)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"meeting": meeting})
}

func (sc *ScheduleController) HandleDeleteScheduledMeeting(c *fiber.Ctx) error {
	userId, isAdmin := requestUser(c)
	if err := sc.ScheduleModel.DeleteScheduledMeeting(c.UserContext(), c.Params("meetingId"), userId, isAdmin); err != nil {
		return sendFault(c, err)
	}
	return sendCommonResponse(c, true, "success")
}

// HandleGetOccurrences accepts ?limit=N; 0 means the model default.
func (sc *ScheduleController) HandleGetOccurrences(c *fiber.Ctx) error {
	occ, err := sc.ScheduleModel.GetOccurrences(c.UserContext(), c.Params("meetingId"), c.QueryInt("limit"))
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"occurrences": occ})
}

// HandleImportMeetings takes a raw iCalendar file as the request body.
func (sc *ScheduleController) HandleImportMeetings(c *fiber.Ctx) error {
	hostId, _ := requestUser(c)
	meetings, err := sc.ScheduleModel.ImportMeetings(c.UserContext(), hostId, c.Body())
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"meetings": meetings})
}

func (sc *ScheduleController) HandleSyncCalendar(c *fiber.Ctx) error {
	userId, _ := requestUser(c)
	if err := sc.ScheduleModel.SyncCalendar(c.UserContext(), userId); err != nil {
		return sendFault(c, err)
	}
	return sendCommonResponse(c, true, "success")
}
