package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/room-escape-reservation/internal/model"
	"github.com/iliyamo/room-escape-reservation/internal/service"
)

// CatalogHandler serves themes and time slots: public reads and admin
// writes.
type CatalogHandler struct {
	themes ThemeAPI
	times  TimeAPI
	log    *zap.Logger
}

func NewCatalogHandler(themes ThemeAPI, times TimeAPI, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{themes: themes, times: times, log: log}
}

func (h *CatalogHandler) ListThemes(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	ts, err := h.themes.List(ctx)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if ts == nil {
		ts = []model.Theme{}
	}
	return c.JSON(http.StatusOK, ts)
}

// PopularThemes returns the most booked themes of the last week.
func (h *CatalogHandler) PopularThemes(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	ts, err := h.themes.Popular(ctx)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if ts == nil {
		ts = []model.Theme{}
	}
	return c.JSON(http.StatusOK, ts)
}

func (h *CatalogHandler) GetTheme(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	t, err := h.themes.Get(ctx, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *CatalogHandler) CreateTheme(c echo.Context) error {
	var req service.ThemeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	t, err := h.themes.Create(ctx, req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *CatalogHandler) DeleteTheme(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.themes.Delete(ctx, id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) ListTimes(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	ts, err := h.times.List(ctx)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if ts == nil {
		ts = []model.ReservationTime{}
	}
	return c.JSON(http.StatusOK, ts)
}

// AvailableTimes lists every slot for ?date=&theme_id= with whether it is
// already booked.
func (h *CatalogHandler) AvailableTimes(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))
	if date == "" {
		return badRequest(c, "date required")
	}
	themeID, ok := queryID(c, "theme_id")
	if !ok || themeID == 0 {
		return badRequest(c, "theme_id required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	av, err := h.times.Available(ctx, date, themeID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if av == nil {
		av = []model.TimeAvailability{}
	}
	return c.JSON(http.StatusOK, av)
}

func (h *CatalogHandler) CreateTime(c echo.Context) error {
	var req service.TimeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	t, err := h.times.Create(ctx, req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *CatalogHandler) DeleteTime(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.times.Delete(ctx, id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
