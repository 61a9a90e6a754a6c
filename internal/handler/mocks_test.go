package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/room-escape-reservation/internal/model"
	"github.com/iliyamo/room-escape-reservation/internal/service"
)

type mockReservations struct{ mock.Mock }

func (m *mockReservations) CreateForMember(ctx context.Context, memberID uint64, req service.ReservationRequest) (service.ReservationView, error) {
	args := m.Called(ctx, memberID, req)
	return args.Get(0).(service.ReservationView), args.Error(1)
}

func (m *mockReservations) CreateByAdmin(ctx context.Context, req service.AdminReservationRequest) (service.ReservationView, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.ReservationView), args.Error(1)
}

func (m *mockReservations) FindAll(ctx context.Context) ([]service.ReservationView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]service.ReservationView), args.Error(1)
}

func (m *mockReservations) FindBy(ctx context.Context, p service.ReservationFilterParams) ([]service.ReservationView, error) {
	args := m.Called(ctx, p)
	return args.Get(0).([]service.ReservationView), args.Error(1)
}

func (m *mockReservations) FindWaitings(ctx context.Context) ([]service.ReservationView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]service.ReservationView), args.Error(1)
}

func (m *mockReservations) FindMine(ctx context.Context, memberID uint64) ([]service.MyReservation, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]service.MyReservation), args.Error(1)
}

func (m *mockReservations) Delete(ctx context.Context, actor service.Actor, id uint64) error {
	return m.Called(ctx, actor, id).Error(0)
}

type mockThemes struct{ mock.Mock }

func (m *mockThemes) Create(ctx context.Context, req service.ThemeRequest) (model.Theme, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.Theme), args.Error(1)
}

func (m *mockThemes) List(ctx context.Context) ([]model.Theme, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Theme), args.Error(1)
}

func (m *mockThemes) Get(ctx context.Context, id uint64) (model.Theme, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Theme), args.Error(1)
}

func (m *mockThemes) Popular(ctx context.Context) ([]model.Theme, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Theme), args.Error(1)
}

func (m *mockThemes) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockTimes struct{ mock.Mock }

func (m *mockTimes) Create(ctx context.Context, req service.TimeRequest) (model.ReservationTime, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.ReservationTime), args.Error(1)
}

func (m *mockTimes) List(ctx context.Context) ([]model.ReservationTime, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.ReservationTime), args.Error(1)
}

func (m *mockTimes) Available(ctx context.Context, date string, themeID uint64) ([]model.TimeAvailability, error) {
	args := m.Called(ctx, date, themeID)
	return args.Get(0).([]model.TimeAvailability), args.Error(1)
}

func (m *mockTimes) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockMembers struct{ mock.Mock }

func (m *mockMembers) Signup(ctx context.Context, req service.SignupRequest) (service.Session, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *mockMembers) Login(ctx context.Context, req service.LoginRequest) (service.Session, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *mockMembers) Refresh(ctx context.Context, raw string) (service.Session, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *mockMembers) Logout(ctx context.Context, memberID uint64, refreshRaw string) error {
	return m.Called(ctx, memberID, refreshRaw).Error(0)
}

func (m *mockMembers) Me(ctx context.Context, memberID uint64) (service.MemberView, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(service.MemberView), args.Error(1)
}

func (m *mockMembers) List(ctx context.Context) ([]service.MemberView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]service.MemberView), args.Error(1)
}
