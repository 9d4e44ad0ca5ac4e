package controllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/models"
	"github.com/mynaparrot/meethub-server/pkg/services/collab"
	"github.com/mynaparrot/meethub-server/pkg/services/mailer"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/memdriver"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	testApiKey = "plugin"
	testSecret = "a-long-enough-secret-for-hs256-signing"
)

type testServer struct {
	app  *fiber.App
	cnf  *config.AppConfig
	ds   *storage.Facade
	auth *models.AuthModel
	sub  *models.SubscriptionModel
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cnf, err := config.New(&config.AppConfig{
		Logger: logger,
		Client: config.ClientInfo{
			ApiKey:      testApiKey,
			Secret:      testSecret,
			AdminEmails: []string{"admin@example.com"},
		},
	})
	require.NoError(t, err)

	ctx := context.Background()
	ds := storage.NewWithDriver(memdriver.New(logger), logger)
	authModel := models.NewAuthModel(cnf, logger)
	subModel := models.NewSubscriptionModel(cnf, ds, collab.NewNoopPayment(), logger)
	historyModel := models.NewHistoryModel(ds, logger)
	roomModel := models.NewRoomModel(cnf, ds, subModel, historyModel, collab.NewNoopStreaming(logger), logger)
	reminderModel := models.NewReminderModel(ctx, cnf, ds, mailer.NewLogMailer(logger), logger)
	t.Cleanup(reminderModel.Shutdown)
	scheduleModel := models.NewScheduleModel(cnf, ds, subModel, reminderModel, collab.NewNoopCalendar(logger), logger)

	ac := NewAuthController(cnf, authModel)
	rc := NewRoomController(roomModel, historyModel)
	sc := NewScheduleController(scheduleModel)
	subc := NewSubscriptionController(subModel)
	hc := NewHealthCheckController(ds)

	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Get("/healthCheck", hc.HandleHealthCheck)

	auth := app.Group("/auth", ac.HandleAuthHeaderCheck)
	auth.Post("/user/token", ac.HandleGenerateUserToken)
	auth.Post("/subscription/paid", subc.HandleCreatePaidSubscription)
	auth.Post("/subscription/trackMinutes", subc.HandleTrackCallMinutes)

	api := app.Group("/api", ac.HandleVerifyHeaderToken)
	api.Get("/me", ac.HandleGetMe)
	api.Get("/history", rc.HandleGetMeetingHistory)
	api.Post("/room/create", rc.HandleRoomCreate)
	api.Get("/room/:roomId", rc.HandleGetRoom)
	api.Delete("/room/:roomId", rc.HandleDeleteRoom)
	api.Post("/room/:roomId/join", rc.HandleJoinRoom)
	api.Post("/room/:roomId/start", rc.HandleStartMeeting)
	api.Post("/room/:roomId/end", rc.HandleEndMeeting)
	api.Post("/room/:roomId/recording", rc.HandleSetRecording)
	api.Post("/room/:roomId/chat", rc.HandleSendChatMessage)
	api.Post("/schedule", sc.HandleScheduleMeeting)
	api.Get("/schedule", sc.HandleGetScheduledMeetings)
	api.Delete("/schedule/:meetingId", sc.HandleDeleteScheduledMeeting)
	api.Get("/subscription", subc.HandleGetSubscription)
	api.Get("/subscription/usage", subc.HandleCheckCallMinutes)
	api.Get("/subscription/can/:action", subc.HandleCanPerformAction)

	admin := api.Group("/admin", ac.HandleAdminOnly)
	admin.Get("/rooms", rc.HandleGetRooms)
	admin.Post("/subscription/grant", subc.HandleGrantPremium)
	admin.Get("/storage", hc.HandleStorageInfo)

	return &testServer{app: app, cnf: cnf, ds: ds, auth: authModel, sub: subModel}
}

func (s *testServer) userToken(t *testing.T, userId, email string) string {
	t.Helper()
	token, err := s.auth.GenerateUserToken(&models.GenerateUserTokenReq{UserId: userId, Name: userId, Email: email})
	require.NoError(t, err)
	return token
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// call sends body as JSON and decodes the response envelope.
func (s *testServer) call(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(t, req)
}

// signedCall sends body to an API key protected route.
func (s *testServer) signedCall(t *testing.T, path string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("API-KEY", testApiKey)
	req.Header.Set("HASH-SIGNATURE", sign(raw))
	return s.do(t, req)
}

func (s *testServer) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	res, err := s.app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	out := make(map[string]any)
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &out))
	} else {
		out["body"] = string(data)
	}
	return res.StatusCode, out
}

func field(t *testing.T, m map[string]any, keys ...string) any {
	t.Helper()
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		require.True(t, ok, "expected object at %q", k)
		cur = obj[k]
	}
	return cur
}

func (s *testServer) givePlan(t *testing.T, userId string, plan domain.PlanId) {
	t.Helper()
	p, ok := domain.GetPlan(plan)
	require.True(t, ok)
	require.NoError(t, s.ds.SaveSubscription(context.Background(), domain.NewSubscription(userId, p, domain.Now())))
}

func newJSONRequest(method, path string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}
