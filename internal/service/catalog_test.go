package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/room-escape-reservation/internal/model"
	"github.com/iliyamo/room-escape-reservation/internal/repository"
)

func TestThemeCreate(t *testing.T) {
	themes := &mockThemes{}
	svc := NewThemeService(themes, zap.NewNop())
	themes.On("Create", mock.Anything, mock.MatchedBy(func(th *model.Theme) bool { return th.Name == "Zombie" })).Return(nil).Once()

	got, err := svc.Create(context.Background(), ThemeRequest{Name: "  Zombie ", Thumbnail: "https://img.example.com/z.png"})

	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.ID)
	themes.AssertExpectations(t)
}

func TestThemeCreate_Validation(t *testing.T) {
	svc := NewThemeService(&mockThemes{}, zap.NewNop())

	_, err := svc.Create(context.Background(), ThemeRequest{Name: " "})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Create(context.Background(), ThemeRequest{Name: "x", Thumbnail: "not a url"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestThemePopular_SevenDaysEndingYesterday(t *testing.T) {
	themes := &mockThemes{}
	svc := NewThemeService(themes, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	from := time.Date(2034, 4, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2034, 5, 6, 0, 0, 0, 0, time.UTC)
	themes.On("ListPopular", mock.Anything, from, to, 10).Return([]model.Theme{zombie}, nil).Once()

	got, err := svc.Popular(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []model.Theme{zombie}, got)
	themes.AssertExpectations(t)
}

func TestThemeDelete_PassesKinds(t *testing.T) {
	themes := &mockThemes{}
	svc := NewThemeService(themes, zap.NewNop())
	themes.On("Delete", mock.Anything, uint64(1)).Return(repository.ErrThemeInUse).Once()

	assert.ErrorIs(t, svc.Delete(context.Background(), 1), model.ErrConflict)
}

func TestTimeCreate_NormalizesClock(t *testing.T) {
	times := &mockTimes{}
	svc := NewTimeService(times, &mockThemes{}, zap.NewNop())
	times.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.ReservationTime) bool { return rt.StartAt == "09:30" })).Return(nil).Once()

	got, err := svc.Create(context.Background(), TimeRequest{StartAt: "9:30"})

	require.NoError(t, err)
	assert.Equal(t, "09:30", got.StartAt)
	times.AssertExpectations(t)
}

func TestTimeCreate_RejectsBadClock(t *testing.T) {
	svc := NewTimeService(&mockTimes{}, &mockThemes{}, zap.NewNop())
	for _, in := range []string{"", "25:00", "10:60", "10am"} {
		_, err := svc.Create(context.Background(), TimeRequest{StartAt: in})
		assert.ErrorIs(t, err, model.ErrValidation, in)
	}
}

func TestTimeAvailable(t *testing.T) {
	times := &mockTimes{}
	themes := &mockThemes{}
	svc := NewTimeService(times, themes, zap.NewNop())
	themes.On("GetByID", mock.Anything, uint64(2)).Return(zombie, nil).Once()
	want := []model.TimeAvailability{{ReservationTime: slot10, AlreadyBooked: true}}
	times.On("ListAvailability", mock.Anything, tomorrow, uint64(2)).Return(want, nil).Once()

	got, err := svc.Available(context.Background(), "2034-05-08", 2)

	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = svc.Available(context.Background(), "tomorrow", 2)
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.Available(context.Background(), "2034-05-08", 0)
	assert.ErrorIs(t, err, model.ErrValidation)
}
