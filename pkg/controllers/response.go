package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/meethub-server/pkg/domain"
)

const (
	localUserId  = "userId"
	localIsAdmin = "isAdmin"
	localEmail   = "email"
	localName    = "name"
)

// sendResponse writes the common {status, msg} envelope plus any extra keys.
func sendResponse(c *fiber.Ctx, data fiber.Map) error {
	res := fiber.Map{
		"status": true,
		"msg":    "success",
	}
	for k, v := range data {
		res[k] = v
	}
	return c.JSON(res)
}

func sendCommonResponse(c *fiber.Ctx, status bool, msg string) error {
	return c.JSON(fiber.Map{
		"status": status,
		"msg":    msg,
	})
}

// sendFault maps the fault kind to an HTTP status. Errors that are not
// faults are treated as backend failures.
func sendFault(c *fiber.Ctx, err error) error {
	res := fiber.Map{
		"status": false,
		"msg":    err.Error(),
	}

	var f *domain.Fault
	if errors.As(err, &f) {
		res["msg"] = f.Msg
		res["kind"] = f.Kind.String()
		if f.Kind == domain.QuotaExceededFault {
			res["remaining"] = f.Remaining
		}
	}

	return c.Status(faultStatus(domain.KindOf(err))).JSON(res)
}

func faultStatus(kind domain.FaultKind) int {
	switch kind {
	case domain.ValidationFault:
		return fiber.StatusBadRequest
	case domain.NotFoundFault:
		return fiber.StatusNotFound
	case domain.QuotaExceededFault:
		return fiber.StatusPaymentRequired
	case domain.ForbiddenFault:
		return fiber.StatusForbidden
	}
	return fiber.StatusServiceUnavailable
}

// parseRequest decodes the JSON body into req. A malformed body is a
// validation fault.
func parseRequest(c *fiber.Ctx, req any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(req); err != nil {
		return domain.NewValidationFault("invalid request body: %s", err.Error())
	}
	return nil
}

func requestUser(c *fiber.Ctx) (userId string, isAdmin bool) {
	userId, _ = c.Locals(localUserId).(string)
	isAdmin, _ = c.Locals(localIsAdmin).(bool)
	return
}
