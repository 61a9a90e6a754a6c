package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/room-escape-reservation/internal/model"
)

const (
	popularLimit = 10
	popularDays  = 7
)

// ThemeRequest creates a theme.
type ThemeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

type ThemeService struct {
	themes ThemeStore
	log    *zap.Logger
	now    func() time.Time
}

func NewThemeService(themes ThemeStore, log *zap.Logger) *ThemeService {
	return &ThemeService{themes: themes, log: log, now: time.Now}
}

func (s *ThemeService) Create(ctx context.Context, req ThemeRequest) (model.Theme, error) {
	t := model.Theme{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Thumbnail:   strings.TrimSpace(req.Thumbnail),
	}
	if t.Name == "" {
		return model.Theme{}, fmt.Errorf("%w: theme name is required", model.ErrValidation)
	}
	if t.Thumbnail != "" {
		if u, err := url.Parse(t.Thumbnail); err != nil || u.Scheme == "" || u.Host == "" {
			return model.Theme{}, fmt.Errorf("%w: thumbnail must be an absolute URL", model.ErrValidation)
		}
	}
	if err := s.themes.Create(ctx, &t); err != nil {
		return model.Theme{}, err
	}
	s.log.Info("theme created", zap.Uint64("theme_id", t.ID), zap.String("name", t.Name))
	return t, nil
}

func (s *ThemeService) List(ctx context.Context) ([]model.Theme, error) {
	return s.themes.List(ctx)
}

func (s *ThemeService) Get(ctx context.Context, id uint64) (model.Theme, error) {
	return s.themes.GetByID(ctx, id)
}

// Popular returns the ten themes with the most RESERVED reservations over
// the seven days ending yesterday.
func (s *ThemeService) Popular(ctx context.Context) ([]model.Theme, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := today.AddDate(0, 0, -1)
	from := today.AddDate(0, 0, -popularDays)
	return s.themes.ListPopular(ctx, from, to, popularLimit)
}

func (s *ThemeService) Delete(ctx context.Context, id uint64) error {
	if err := s.themes.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("theme deleted", zap.Uint64("theme_id", id))
	return nil
}
