package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/room-escape-reservation/internal/handler"
	"github.com/iliyamo/room-escape-reservation/internal/utils"
)

const secret = "router-secret"

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newServer() *echo.Echo {
	e := echo.New()
	log := zap.NewNop()
	res := handler.NewReservationHandler(nil, 0, log)
	cat := handler.NewCatalogHandler(nil, nil, log)
	auth := handler.NewAuthHandler(nil, false, log)

	RegisterRoutes(e, okPinger{})
	RegisterAuth(e, auth, secret)
	RegisterPublic(e, cat, res, passThrough)
	RegisterMember(e, res, secret, passThrough)
	RegisterAdmin(e, AdminHandlers{Reservations: res, Catalog: cat, Auth: auth}, secret, passThrough)
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newServer()
	got := map[string]bool{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /v1/auth/signup",
		"POST /v1/auth/login",
		"POST /v1/auth/refresh",
		"POST /v1/auth/logout",
		"GET /v1/me",
		"GET /v1/themes",
		"GET /v1/themes/popular",
		"GET /v1/themes/:id",
		"GET /v1/times",
		"GET /v1/times/available",
		"GET /v1/reservations",
		"POST /v1/reservations",
		"GET /v1/reservations/mine",
		"DELETE /v1/reservations/:id",
		"POST /v1/admin/reservations",
		"DELETE /v1/admin/reservations/:id",
		"GET /v1/admin/waitings",
		"POST /v1/admin/themes",
		"DELETE /v1/admin/themes/:id",
		"POST /v1/admin/times",
		"DELETE /v1/admin/times/:id",
		"GET /v1/admin/members",
	} {
		assert.True(t, got[want], want)
	}
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAccessControl(t *testing.T) {
	e := newServer()
	member, err := utils.NewAccessToken(secret, 7, "kim", "MEMBER", 15)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/v1/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/v1/reservations/mine", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/v1/admin/members", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/v1/admin/members", member.Token).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodPost, "/v1/admin/themes", member.Token).Code)
}
