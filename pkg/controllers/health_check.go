package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheckController reports whether the selected storage backend answers.
type HealthCheckController struct {
	Storage *storage.Facade
}

func NewHealthCheckController(ds *storage.Facade) *HealthCheckController {
	return &HealthCheckController{
		Storage: ds,
	}
}

func (hc *HealthCheckController) HandleHealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	if err := hc.Storage.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("Unhealthy")
	}
	return c.Status(fiber.StatusOK).SendString("Healthy")
}

// HandleStorageInfo is admin only.
func (hc *HealthCheckController) HandleStorageInfo(c *fiber.Ctx) error {
	stats, err := hc.Storage.Stats(c.UserContext())
	if err != nil {
		return sendFault(c, err)
	}
	return sendResponse(c, fiber.Map{
		"backend": hc.Storage.Kind().String(),
		"stats":   stats,
	})
}
