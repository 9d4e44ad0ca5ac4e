package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/models"
)

func (rc *RoomController) HandleStartMeeting(c *fiber.Ctx) error {
	userId, _ := requestUser(c)
	room, err := rc.RoomModel.StartMeeting(c.UserContext(), c.Params("roomId"), userId)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"room": room})
}

func (rc *RoomController) HandleEndMeeting(c *fiber.Ctx) error {
	userId, _ := requestUser(c)
	room, err := rc.RoomModel.EndMeeting(c.UserContext(), c.Params("roomId"), userId)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"room": room})
}

type recordingReq struct {
	On bool `json:"on"`
}

func (rc *RoomController) HandleSetRecording(c *fiber.Ctx) error {
	req := new(recordingReq)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}
	userId, _ := requestUser(c)

	room, err := rc.RoomModel.SetRecording(c.UserContext(), c.Params("roomId"), userId, req.On)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"room": room})
}

func (rc *RoomController) HandleStartStreaming(c *fiber.Ctx) error {
	req := new(models.StartStreamingReq)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}
	userId, _ := requestUser(c)

	room, err := rc.RoomModel.StartStreaming(c.UserContext(), c.Params("roomId"), userId, req)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"room": room})
}

func (rc *RoomController) HandleStopStreaming(c *fiber.Ctx) error {
	userId, _ := requestUser(c)
	room, err := rc.RoomModel.StopStreaming(c.UserContext(), c.Params("roomId"), userId)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"room": room})
}

func (rc *RoomController) HandleGetStreamStatus(c *fiber.Ctx) error {
	info, err := rc.RoomModel.GetStreamStatus(c.UserContext(), c.Params("roomId"))
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"stream": info})
}

type chatReq struct {
	Message string `json:"message"`
}

func (rc *RoomController) HandleSendChatMessage(c *fiber.Ctx) error {
	req := new(chatReq)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}
	userId, _ := requestUser(c)
	name, _ := c.Locals(localName).(string)

	msg, err := rc.RoomModel.SendChatMessage(c.UserContext(), c.Params("roomId"), userId, name, req.Message)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"message": msg})
}

type createPollReq struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func (rc *RoomController) HandleCreatePoll(c *fiber.Ctx) error {
	req := new(createPollReq)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}
	userId, _ := requestUser(c)

	poll, err := rc.RoomModel.CreatePoll(c.UserContext(), c.Params("roomId"), userId, req.Question, req.Options)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"poll": poll})
}

type votePollReq struct {
	Option string `json:"option"`
}

func (rc *RoomController) HandleVotePoll(c *fiber.Ctx) error {
	req := new(votePollReq)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}
	userId, _ := requestUser(c)

	if err := rc.RoomModel.VotePoll(c.UserContext(), c.Params("roomId"), userId, c.Params("pollId"), req.Option); err != nil {
		return sendFault(c, err)
	}
	return sendCommonResponse(c, true, "success")
}

func (rc *RoomController) HandleShareFile(c *fiber.Ctx) error {
	req := new(domain.SharedFile)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}
	userId, _ := requestUser(c)

	f, err := rc.RoomModel.ShareFile(c.UserContext(), c.Params("roomId"), userId, *req)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"file": f})
}

type reactionReq struct {
	Emoji string `json:"emoji"`
}

func (rc *RoomController) HandleReact(c *fiber.Ctx) error {
	req := new(reactionReq)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}
	userId, _ := requestUser(c)

	re, err := rc.RoomModel.React(c.UserContext(), c.Params("roomId"), userId, req.Emoji)
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{"reaction": re})
}
