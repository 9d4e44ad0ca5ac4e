package routers

import (
	"io"
	"runtime"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	rr "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/factory"
	"github.com/mynaparrot/meethub-server/version"
)

type router struct {
	app  *fiber.App
	ctrl *factory.ApplicationControllers
}

func New(appConfig *config.AppConfig, ctrl *factory.ApplicationControllers) *fiber.App {
	cnf := fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		AppName:     "meethub version: " + version.Version + " runtime: " + runtime.Version(),
	}

	if appConfig.Client.ProxyHeader != "" {
		cnf.ProxyHeader = appConfig.Client.ProxyHeader
	}

	app := fiber.New(cnf)

	app.Use(logger.New(logger.Config{
		Done: func(c *fiber.Ctx, logString []byte) {
			appConfig.Logger.Debugln(string(logString))
		},
		Format: "${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}",
		Output: io.Discard,
	}))

	if appConfig.Client.PrometheusConf.Enable {
		prometheus := fiberprometheus.New("meethub")
		prometheus.RegisterAt(app, appConfig.Client.PrometheusConf.MetricsPath)
		app.Use(prometheus.Middleware)
	}

	app.Use(rr.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "POST,GET,PATCH,DELETE,OPTIONS",
	}))

	r := &router{
		app:  app,
		ctrl: ctrl,
	}

	r.registerBaseRoutes()
	r.registerAuthRoutes()
	r.registerAPIRoutes()

	// This MUST be the last middleware to be registered.
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("not found")
	})

	return app
}

func (r *router) registerBaseRoutes() {
	r.app.Get("/healthCheck", r.ctrl.HealthCheckController.HandleHealthCheck)
	r.app.Get("/plans", r.ctrl.SubscriptionController.HandleGetPlans)
}

// registerAuthRoutes are server to server calls signed with the API secret.
func (r *router) registerAuthRoutes() {
	auth := r.app.Group("/auth", r.ctrl.AuthController.HandleAuthHeaderCheck)
	auth.Post("/user/token", r.ctrl.AuthController.HandleGenerateUserToken)

	subscription := auth.Group("/subscription")
	subscription.Post("/paid", r.ctrl.SubscriptionController.HandleCreatePaidSubscription)
	subscription.Post("/trackMinutes", r.ctrl.SubscriptionController.HandleTrackCallMinutes)
}

// registerAPIRoutes are user calls carrying a user token.
func (r *router) registerAPIRoutes() {
	api := r.app.Group("/api", r.ctrl.AuthController.HandleVerifyHeaderToken)
	api.Get("/me", r.ctrl.AuthController.HandleGetMe)
	api.Get("/history", r.ctrl.RoomController.HandleGetMeetingHistory)

	room := api.Group("/room")
	room.Post("/create", r.ctrl.RoomController.HandleRoomCreate)
	room.Get("/:roomId", r.ctrl.RoomController.HandleGetRoom)
	room.Delete("/:roomId", r.ctrl.RoomController.HandleDeleteRoom)
	room.Post("/:roomId/join", r.ctrl.RoomController.HandleJoinRoom)
	room.Post("/:roomId/leave", r.ctrl.RoomController.HandleLeaveRoom)
	room.Post("/:roomId/admit", r.ctrl.RoomController.HandleAdmitParticipant)
	room.Post("/:roomId/reject", r.ctrl.RoomController.HandleRejectParticipant)
	room.Post("/:roomId/transferHost", r.ctrl.RoomController.HandleTransferHost)
	room.Post("/:roomId/moderator/add", r.ctrl.RoomController.HandleAddModerator)
	room.Post("/:roomId/moderator/remove", r.ctrl.RoomController.HandleRemoveModerator)
	room.Post("/:roomId/start", r.ctrl.RoomController.HandleStartMeeting)
	room.Post("/:roomId/end", r.ctrl.RoomController.HandleEndMeeting)
	room.Post("/:roomId/recording", r.ctrl.RoomController.HandleSetRecording)
	room.Post("/:roomId/stream/start", r.ctrl.RoomController.HandleStartStreaming)
	room.Post("/:roomId/stream/stop", r.ctrl.RoomController.HandleStopStreaming)
	room.Get("/:roomId/stream", r.ctrl.RoomController.HandleGetStreamStatus)
	room.Post("/:roomId/chat", r.ctrl.RoomController.HandleSendChatMessage)
	room.Post("/:roomId/poll", r.ctrl.RoomController.HandleCreatePoll)
	room.Post("/:roomId/poll/:pollId/vote", r.ctrl.RoomController.HandleVotePoll)
	room.Post("/:roomId/file", r.ctrl.RoomController.HandleShareFile)
	room.Post("/:roomId/reaction", r.ctrl.RoomController.HandleReact)

	schedule := api.Group("/schedule")
	schedule.Post("/", r.ctrl.ScheduleController.HandleScheduleMeeting)
	schedule.Get("/", r.ctrl.ScheduleController.HandleGetScheduledMeetings)
	schedule.Get("/upcoming", r.ctrl.ScheduleController.HandleGetUpcomingMeetings)
	schedule.Post("/import", r.ctrl.ScheduleController.HandleImportMeetings)
	schedule.Post("/calendar/sync", r.ctrl.ScheduleController.HandleSyncCalendar)
	schedule.Get("/:meetingId", r.ctrl.ScheduleController.HandleGetScheduledMeeting)
	schedule.Patch("/:meetingId", r.ctrl.ScheduleController.HandleUpdateScheduledMeeting)
	schedule.Delete("/:meetingId", r.ctrl.ScheduleController.HandleDeleteScheduledMeeting)
	schedule.Get("/:meetingId/occurrences", r.ctrl.ScheduleController.HandleGetOccurrences)

	subscription := api.Group("/subscription")
	subscription.Get("/", r.ctrl.SubscriptionController.HandleGetSubscription)
	subscription.Post("/free", r.ctrl.SubscriptionController.HandleActivateFreePlan)
	subscription.Post("/cancel", r.ctrl.SubscriptionController.HandleCancelSubscription)
	subscription.Get("/usage", r.ctrl.SubscriptionController.HandleCheckCallMinutes)
	subscription.Get("/can/:action", r.ctrl.SubscriptionController.HandleCanPerformAction)

	admin := api.Group("/admin", r.ctrl.AuthController.HandleAdminOnly)
	admin.Get("/rooms", r.ctrl.RoomController.HandleGetRooms)
	admin.Post("/subscription/grant", r.ctrl.SubscriptionController.HandleGrantPremium)
	admin.Get("/analytics", r.ctrl.SubscriptionController.HandleUsageAnalytics)
	admin.Get("/storage", r.ctrl.HealthCheckController.HandleStorageInfo)
}
