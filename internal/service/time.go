package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/room-escape-reservation/internal/booking"
	"github.com/iliyamo/room-escape-reservation/internal/model"
)

const clockLayout = "15:04"

// TimeRequest creates a time slot.
type TimeRequest struct {
	StartAt string `json:"start_at"`
}

type TimeService struct {
	times  TimeStore
	themes ThemeStore
	log    *zap.Logger
}

func NewTimeService(times TimeStore, themes ThemeStore, log *zap.Logger) *TimeService {
	return &TimeService{times: times, themes: themes, log: log}
}

// Create stores a new slot.  StartAt must be a 24h HH:MM clock time.
func (s *TimeService) Create(ctx context.Context, req TimeRequest) (model.ReservationTime, error) {
	raw := strings.TrimSpace(req.StartAt)
	at, err := time.Parse(clockLayout, raw)
	if err != nil {
		return model.ReservationTime{}, fmt.Errorf("%w: start_at must be HH:MM", model.ErrValidation)
	}
	t := model.ReservationTime{StartAt: at.Format(clockLayout)}
	if err := s.times.Create(ctx, &t); err != nil {
		return model.ReservationTime{}, err
	}
	s.log.Info("reservation time created", zap.Uint64("time_id", t.ID), zap.String("start_at", t.StartAt))
	return t, nil
}

func (s *TimeService) List(ctx context.Context) ([]model.ReservationTime, error) {
	return s.times.List(ctx)
}

// Available lists every slot for the theme on date, flagging the ones
// already RESERVED.
func (s *TimeService) Available(ctx context.Context, date string, themeID uint64) ([]model.TimeAvailability, error) {
	d, err := booking.ParseDate(date)
	if err != nil {
		return nil, err
	}
	if themeID == 0 {
		return nil, fmt.Errorf("%w: theme_id is required", model.ErrValidation)
	}
	if _, err := s.themes.GetByID(ctx, themeID); err != nil {
		return nil, err
	}
	return s.times.ListAvailability(ctx, d, themeID)
}

func (s *TimeService) Delete(ctx context.Context, id uint64) error {
	if err := s.times.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("reservation time deleted", zap.Uint64("time_id", id))
	return nil
}
