package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/room-escape-reservation/internal/middleware"
	"github.com/iliyamo/room-escape-reservation/internal/service"
)

// AuthHandler serves signup, login, token refresh, logout and member
// lookups.
type AuthHandler struct {
	members      MemberAPI
	cookieSecure bool
	log          *zap.Logger
}

func NewAuthHandler(members MemberAPI, cookieSecure bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{members: members, cookieSecure: cookieSecure, log: log}
}

// ----- DTOs -----

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	Member  service.MemberView `json:"member"`
	Access  tokenPart          `json:"access"`
	Refresh tokenPart          `json:"refresh"`
}

// respond writes the session and mirrors the access token into the
// HttpOnly token cookie.
func (h *AuthHandler) respond(c echo.Context, status int, s service.Session) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    s.Access.Token,
		Path:     "/",
		Expires:  s.Access.Exp,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(status, authResp{
		Member:  s.Member,
		Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
		Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp}, // raw back to client
	})
}

// Signup: create a member and sign them in.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req service.SignupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.members.Signup(ctx, req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, http.StatusCreated, s)
}

// Login: verify credentials and issue a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.members.Login(ctx, req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, http.StatusOK, s)
}

// Refresh: rotate the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.members.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, http.StatusOK, s)
}

// Logout revokes the posted refresh token, or every token of the caller
// when none is posted, and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	memberID, _ := middleware.MemberID(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.members.Logout(ctx, memberID, req.RefreshToken); err != nil {
		return writeError(c, h.log, err)
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	m, err := h.members.Me(ctx, uid)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, m)
}

// ListMembers lists every member for administrators.
func (h *AuthHandler) ListMembers(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	ms, err := h.members.List(ctx)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, ms)
}
