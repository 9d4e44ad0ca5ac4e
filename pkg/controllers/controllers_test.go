package controllers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewValidationFault("bad"), fiber.StatusBadRequest},
		{domain.NewNotFoundFault("gone"), fiber.StatusNotFound},
		{domain.NewQuotaExceededFault(3, "out"), fiber.StatusPaymentRequired},
		{domain.NewForbiddenFault("no"), fiber.StatusForbidden},
		{domain.NewBackendFault(errors.New("down"), "down"), fiber.StatusServiceUnavailable},
		{errors.New("plain"), fiber.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, faultStatus(domain.KindOf(tt.err)), tt.err.Error())
	}
}

func TestHandleHealthCheck(t *testing.T) {
	s := newTestServer(t)
	code, res := s.call(t, http.MethodGet, "/healthCheck", "", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Healthy", res["body"])
}

func TestHandleAuthHeaderCheck(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"userId":"u1"}`)

	tests := []struct {
		name      string
		apiKey    string
		signature string
		want      int
	}{
		{"wrong key", "nope", sign(body), fiber.StatusUnauthorized},
		{"missing signature", testApiKey, "", fiber.StatusUnauthorized},
		{"bad signature", testApiKey, sign([]byte("other")), fiber.StatusUnauthorized},
		{"valid", testApiKey, sign(body), fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newJSONRequest(http.MethodPost, "/auth/user/token", body)
			req.Header.Set("API-KEY", tt.apiKey)
			if tt.signature != "" {
				req.Header.Set("HASH-SIGNATURE", tt.signature)
			}
			code, res := s.do(t, req)
			assert.Equal(t, tt.want, code)
			if tt.want == fiber.StatusOK {
				assert.NotEmpty(t, res["token"])
			}
		})
	}
}

func TestHandleVerifyHeaderToken(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.call(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = s.call(t, http.MethodGet, "/api/me", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, res := s.call(t, http.MethodGet, "/api/me", s.userToken(t, "u1", "u1@example.com"), nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "u1", field(t, res, "user", "userId"))
	assert.Equal(t, false, field(t, res, "user", "isAdmin"))
}

func TestHandleAdminOnly(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.call(t, http.MethodGet, "/api/admin/rooms", s.userToken(t, "u1", "u1@example.com"), nil)
	assert.Equal(t, fiber.StatusForbidden, code)

	admin := s.userToken(t, "root", "admin@example.com")
	code, _ = s.call(t, http.MethodGet, "/api/admin/rooms", admin, nil)
	assert.Equal(t, fiber.StatusOK, code)

	code, res := s.call(t, http.MethodGet, "/api/admin/storage", admin, nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "in-memory", res["backend"])
}

func TestRoomLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner := s.userToken(t, "owner", "owner@example.com")
	guest := s.userToken(t, "guest", "guest@example.com")

	code, res := s.call(t, http.MethodPost, "/api/room/create", owner, map[string]any{"name": "standup"})
	require.Equal(t, fiber.StatusOK, code)
	roomId := field(t, res, "room", "id").(string)
	password := field(t, res, "room", "password").(string)
	assert.Equal(t, "owner", field(t, res, "room", "createdBy"))

	code, _ = s.call(t, http.MethodPost, "/api/room/"+roomId+"/join", owner, map[string]any{"password": "wrong"})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = s.call(t, http.MethodPost, "/api/room/"+roomId+"/join", owner, map[string]any{"password": password})
	require.Equal(t, fiber.StatusOK, code)
	code, _ = s.call(t, http.MethodPost, "/api/room/"+roomId+"/join", guest, map[string]any{"password": password})
	require.Equal(t, fiber.StatusOK, code)

	code, _ = s.call(t, http.MethodPost, "/api/room/"+roomId+"/start", guest, nil)
	assert.Equal(t, fiber.StatusForbidden, code)
	code, res = s.call(t, http.MethodPost, "/api/room/"+roomId+"/start", owner, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, string(domain.MeetingStatusStarted), field(t, res, "room", "meetingStatus"))

	// the free plan has no recording
	code, res = s.call(t, http.MethodPost, "/api/room/"+roomId+"/recording", owner, map[string]any{"on": true})
	assert.Equal(t, fiber.StatusPaymentRequired, code)
	assert.Equal(t, "quota_exceeded", res["kind"])

	code, res = s.call(t, http.MethodPost, "/api/room/"+roomId+"/chat", guest, map[string]any{"message": "hi"})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "hi", field(t, res, "message", "message"))

	code, _ = s.call(t, http.MethodPost, "/api/room/"+roomId+"/end", owner, nil)
	require.Equal(t, fiber.StatusOK, code)

	code, res = s.call(t, http.MethodGet, "/api/history", owner, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, res["history"], 1)

	code, _ = s.call(t, http.MethodDelete, "/api/room/"+roomId, guest, nil)
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = s.call(t, http.MethodDelete, "/api/room/"+roomId, owner, nil)
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = s.call(t, http.MethodGet, "/api/room/"+roomId, owner, nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestScheduleRoutes(t *testing.T) {
	s := newTestServer(t)
	host := s.userToken(t, "host", "host@example.com")

	code, _ := s.call(t, http.MethodPost, "/api/schedule", host, map[string]any{"title": ""})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, res := s.call(t, http.MethodPost, "/api/schedule", host, map[string]any{
		"title":         "planning",
		"scheduledDate": "2099-03-01",
		"scheduledTime": "10:00",
		"timezone":      "UTC",
		"duration":      30,
	})
	require.Equal(t, fiber.StatusOK, code)
	meetingId := field(t, res, "meeting", "id").(string)

	code, res = s.call(t, http.MethodGet, "/api/schedule", host, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, res["meetings"], 1)

	other := s.userToken(t, "other", "other@example.com")
	code, _ = s.call(t, http.MethodDelete, "/api/schedule/"+meetingId, other, nil)
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = s.call(t, http.MethodDelete, "/api/schedule/"+meetingId, host, nil)
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = s.call(t, http.MethodDelete, "/api/schedule/"+meetingId, host, nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestSubscriptionRoutes(t *testing.T) {
	s := newTestServer(t)
	user := s.userToken(t, "u1", "u1@example.com")

	code, res := s.call(t, http.MethodGet, "/api/subscription", user, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, string(domain.PlanFree), field(t, res, "subscription", "planId"))

	code, res = s.call(t, http.MethodGet, "/api/subscription/usage?required=30", user, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, field(t, res, "usage", "allowed"))

	code, res = s.call(t, http.MethodGet, "/api/subscription/can/record", user, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, false, res["allowed"])

	code, res = s.signedCall(t, "/auth/subscription/trackMinutes", map[string]any{"userId": "u1", "minutes": 500})
	assert.Equal(t, fiber.StatusPaymentRequired, code)
	assert.EqualValues(t, 120, res["remaining"])

	code, _ = s.signedCall(t, "/auth/subscription/paid", map[string]any{
		"userId":       "u1",
		"planId":       string(domain.PlanBasic),
		"billingCycle": string(domain.BillingMonthly),
	})
	require.Equal(t, fiber.StatusOK, code)

	code, res = s.call(t, http.MethodGet, "/api/subscription/can/record", user, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, res["allowed"])
}

func TestGrantPremium(t *testing.T) {
	s := newTestServer(t)
	admin := s.userToken(t, "root", "admin@example.com")

	code, _ := s.call(t, http.MethodPost, "/api/admin/subscription/grant", admin, map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, res := s.call(t, http.MethodPost, "/api/admin/subscription/grant", admin, map[string]any{"userId": "u1"})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, field(t, res, "subscription", "adminGranted"))
	assert.EqualValues(t, domain.Unlimited, field(t, res, "subscription", "callMinutes"))
}
