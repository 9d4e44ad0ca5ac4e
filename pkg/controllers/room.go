package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/models"
)

// RoomController holds dependencies for room-related handlers.
type RoomController struct {
	RoomModel    *models.RoomModel
	HistoryModel *models.HistoryModel
}

// NewRoomController creates a new RoomController.
func NewRoomController(m *models.RoomModel, hm *models.HistoryModel) *RoomController {
	return &RoomController{
		RoomModel:    m,
		HistoryModel: hm,
	}
}

type targetUserReq struct {
	UserId string `json:"userId"`
}

func parseTargetUser(c *fiber.Ctx) (string, error) {
	req := new(targetUserReq)
	if err := parseRequest(c, req); err != nil {
		return "", err
	}
	if req.UserId == "" {
		return "", domain.NewValidationFault(config.UserIdRequired)
	}
	return req.UserId, nil
}

// HandleRoomCreate handles creating a new room.
func (rc *RoomController) HandleRoomCreate(c *fiber.Ctx) error {
	req := new(models.CreateRoomReq)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}
	req.CreatedBy, _ = requestUser(c)

	room, err := rc.RoomModel.CreateRoom(c.UserContext(), req)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"room": room})
}

func (rc *RoomController) HandleGetRoom(c *fiber.Ctx) error {
	room, err := rc.RoomModel.GetRoom(c.UserContext(), c.Params("roomId"))
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"room": room})
}

// HandleGetRooms lists every room. Admin only.
func (rc *RoomController) HandleGetRooms(c *fiber.Ctx) error {
	return sendResponse(c, fiber.Map{"rooms": rc.RoomModel.GetAllRooms(c.UserContext())})
}

// HandleDeleteRoom is allowed for the creator or an admin.
func (rc *RoomController) HandleDeleteRoom(c *fiber.Ctx) error {
	roomId := c.Params("roomId")
	userId, isAdmin := requestUser(c)

	room, err := rc.RoomModel.GetRoom(c.UserContext(), roomId)
	if err != nil {
		return sendFault(c, err)
	}
	if room.CreatedBy != userId && !isAdmin {
		return sendFault(c, domain.NewForbiddenFault(config.OnlyHostCanRequest))
	}

	if err = rc.RoomModel.DeleteRoom(c.UserContext(), roomId); err != nil {
		return sendFault(c, err)
	}
	return sendCommonResponse(c, true, "success")
}

func (rc *RoomController) HandleJoinRoom(c *fiber.Ctx) error {
	req := new(models.JoinRoomReq)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}
	req.RoomId = c.Params("roomId")
	req.UserId, _ = requestUser(c)
	if req.Name == "" {
		req.Name, _ = c.Locals(localName).(string)
	}
	if req.Email == "" {
		req.Email, _ = c.Locals(localEmail).(string)
	}

	res, err := rc.RoomModel.JoinRoom(c.UserContext(), req)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{
		"room":    res.Room,
		"waiting": res.Waiting,
	})
}

func (rc *RoomController) HandleLeaveRoom(c *fiber.Ctx) error {
	userId, _ := requestUser(c)
	room, err := rc.RoomModel.LeaveRoom(c.UserContext(), c.Params("roomId"), userId)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"room": room})
}

// handleTargeted covers the host actions that name another participant.
func (rc *RoomController) handleTargeted(c *fiber.Ctx, fn func(roomId, requestedBy, userId string) (*domain.Room, error)) error {
	target, err := parseTargetUser(c)
	if err != nil {
		return sendFault(c, err)
	}
	requestedBy, _ := requestUser(c)

	room, err := fn(c.Params("roomId"), requestedBy, target)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"room": room})
}

func (rc *RoomController) HandleAdmitParticipant(c *fiber.Ctx) error {
	return rc.handleTargeted(c, func(roomId, requestedBy, userId string) (*domain.Room, error) {
		return rc.RoomModel.AdmitParticipant(c.UserContext(), roomId, requestedBy, userId)
	})
}

func (rc *RoomController) HandleRejectParticipant(c *fiber.Ctx) error {
	return rc.handleTargeted(c, func(roomId, requestedBy, userId string) (*domain.Room, error) {
		return rc.RoomModel.RejectParticipant(c.UserContext(), roomId, requestedBy, userId)
	})
}

func (rc *RoomController) HandleTransferHost(c *fiber.Ctx) error {
	return rc.handleTargeted(c, func(roomId, requestedBy, userId string) (*domain.Room, error) {
		return rc.RoomModel.TransferHost(c.UserContext(), roomId, requestedBy, userId)
	})
}

func (rc *RoomController) HandleAddModerator(c *fiber.Ctx) error {
	return rc.handleTargeted(c, func(roomId, requestedBy, userId string) (*domain.Room, error) {
		return rc.RoomModel.AddModerator(c.UserContext(), roomId, requestedBy, userId)
	})
}

func (rc *RoomController) HandleRemoveModerator(c *fiber.Ctx) error {
	return rc.handleTargeted(c, func(roomId, requestedBy, userId string) (*domain.Room, error) {
		return rc.RoomModel.RemoveModerator(c.UserContext(), roomId, requestedBy, userId)
	})
}

// HandleGetMeetingHistory returns the caller's past meetings.
func (rc *RoomController) HandleGetMeetingHistory(c *fiber.Ctx) error {
	userId, _ := requestUser(c)
	return sendResponse(c, fiber.Map{
		"history": rc.HistoryModel.GetMeetingHistory(c.UserContext(), userId),
	})
}
