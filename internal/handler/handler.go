// Package handler exposes the services over HTTP with echo.  Handlers bind
// and shape requests, call a service and translate its error kinds to
// status codes in writeError.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/room-escape-reservation/internal/middleware"
	"github.com/iliyamo/room-escape-reservation/internal/model"
	"github.com/iliyamo/room-escape-reservation/internal/service"
)

const requestTimeout = 5 * time.Second

// ReservationAPI is the reservation service as seen by handlers.
type ReservationAPI interface {
	CreateForMember(ctx context.Context, memberID uint64, req service.ReservationRequest) (service.ReservationView, error)
	CreateByAdmin(ctx context.Context, req service.AdminReservationRequest) (service.ReservationView, error)
	FindAll(ctx context.Context) ([]service.ReservationView, error)
	FindBy(ctx context.Context, p service.ReservationFilterParams) ([]service.ReservationView, error)
	FindWaitings(ctx context.Context) ([]service.ReservationView, error)
	FindMine(ctx context.Context, memberID uint64) ([]service.MyReservation, error)
	Delete(ctx context.Context, actor service.Actor, id uint64) error
}

type ThemeAPI interface {
	Create(ctx context.Context, req service.ThemeRequest) (model.Theme, error)
	List(ctx context.Context) ([]model.Theme, error)
	Get(ctx context.Context, id uint64) (model.Theme, error)
	Popular(ctx context.Context) ([]model.Theme, error)
	Delete(ctx context.Context, id uint64) error
}

type TimeAPI interface {
	Create(ctx context.Context, req service.TimeRequest) (model.ReservationTime, error)
	List(ctx context.Context) ([]model.ReservationTime, error)
	Available(ctx context.Context, date string, themeID uint64) ([]model.TimeAvailability, error)
	Delete(ctx context.Context, id uint64) error
}

type MemberAPI interface {
	Signup(ctx context.Context, req service.SignupRequest) (service.Session, error)
	Login(ctx context.Context, req service.LoginRequest) (service.Session, error)
	Refresh(ctx context.Context, raw string) (service.Session, error)
	Logout(ctx context.Context, memberID uint64, refreshRaw string) error
	Me(ctx context.Context, memberID uint64) (service.MemberView, error)
	List(ctx context.Context) ([]service.MemberView, error)
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// writeError maps an error kind to its status.  Payment errors keep the
// provider's 4xx status and code; provider 5xx and transport failures
// become 502.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var pe *model.PaymentError
	if errors.As(err, &pe) {
		status := http.StatusBadGateway
		if pe.Status >= 400 && pe.Status < 500 {
			status = pe.Status
		}
		msg := pe.Message
		if msg == "" {
			msg = pe.Error()
		}
		return c.JSON(status, echo.Map{"error": msg, "code": pe.Code})
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrAuthorization):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err))
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// getUserID returns the member id set by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.MemberID(c)
	if !ok {
		return 0, errors.New("invalid user_id in context")
	}
	return id, nil
}

func actorOf(c echo.Context) (service.Actor, error) {
	id, err := getUserID(c)
	if err != nil {
		return service.Actor{}, err
	}
	return service.Actor{MemberID: id, Role: model.ParseRole(middleware.Role(c))}, nil
}

func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// queryID parses an optional positive id; an empty value is zero.
func queryID(c echo.Context, name string) (uint64, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	return id, err == nil && id > 0
}
