package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/room-escape-reservation/internal/model"
	"github.com/iliyamo/room-escape-reservation/internal/payment"
	"github.com/iliyamo/room-escape-reservation/internal/queue"
	"github.com/iliyamo/room-escape-reservation/internal/repository"
)

type mockReservations struct{ mock.Mock }

func (m *mockReservations) FindByID(ctx context.Context, id uint64) (model.Reservation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Reservation), args.Error(1)
}

func (m *mockReservations) FindAll(ctx context.Context) ([]model.ReservationDetail, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.ReservationDetail), args.Error(1)
}

func (m *mockReservations) FindBy(ctx context.Context, f model.ReservationFilter) ([]model.ReservationDetail, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.ReservationDetail), args.Error(1)
}

func (m *mockReservations) FindWaitings(ctx context.Context) ([]model.ReservationDetail, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.ReservationDetail), args.Error(1)
}

func (m *mockReservations) ListByMember(ctx context.Context, memberID uint64) ([]model.ReservationDetail, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]model.ReservationDetail), args.Error(1)
}

func (m *mockReservations) GroupsOfMember(ctx context.Context, memberID uint64) ([]model.Reservation, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *mockReservations) ExistsByMemberAndSlot(ctx context.Context, memberID uint64, key model.SlotKey) (bool, error) {
	args := m.Called(ctx, memberID, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockReservations) Admit(ctx context.Context, req repository.AdmitRequest) (model.Reservation, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.Reservation), args.Error(1)
}

func (m *mockReservations) DeleteWithPromotion(ctx context.Context, id uint64) (model.Reservation, *model.Reservation, error) {
	args := m.Called(ctx, id)
	promoted, _ := args.Get(1).(*model.Reservation)
	return args.Get(0).(model.Reservation), promoted, args.Error(2)
}

type mockMembers struct{ mock.Mock }

func (m *mockMembers) Create(ctx context.Context, mem *model.Member) error {
	args := m.Called(ctx, mem)
	if args.Error(0) == nil {
		mem.ID = 100
	}
	return args.Error(0)
}

func (m *mockMembers) GetByEmail(ctx context.Context, email string) (model.Member, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.Member), args.Error(1)
}

func (m *mockMembers) GetByID(ctx context.Context, id uint64) (model.Member, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Member), args.Error(1)
}

func (m *mockMembers) List(ctx context.Context) ([]model.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Member), args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) StoreRefresh(ctx context.Context, memberID uint64, tokenHash string, exp time.Time) error {
	return m.Called(ctx, memberID, tokenHash, exp).Error(0)
}

func (m *mockTokens) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockTokens) RevokeByHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *mockTokens) RevokeAllForMember(ctx context.Context, memberID uint64) error {
	return m.Called(ctx, memberID).Error(0)
}

type mockThemes struct{ mock.Mock }

func (m *mockThemes) Create(ctx context.Context, t *model.Theme) error {
	args := m.Called(ctx, t)
	if args.Error(0) == nil {
		t.ID = 1
	}
	return args.Error(0)
}

func (m *mockThemes) GetByID(ctx context.Context, id uint64) (model.Theme, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Theme), args.Error(1)
}

func (m *mockThemes) List(ctx context.Context) ([]model.Theme, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Theme), args.Error(1)
}

func (m *mockThemes) ListPopular(ctx context.Context, from, to time.Time, limit int) ([]model.Theme, error) {
	args := m.Called(ctx, from, to, limit)
	return args.Get(0).([]model.Theme), args.Error(1)
}

func (m *mockThemes) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockTimes struct{ mock.Mock }

func (m *mockTimes) Create(ctx context.Context, t *model.ReservationTime) error {
	args := m.Called(ctx, t)
	if args.Error(0) == nil {
		t.ID = 1
	}
	return args.Error(0)
}

func (m *mockTimes) GetByID(ctx context.Context, id uint64) (model.ReservationTime, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.ReservationTime), args.Error(1)
}

func (m *mockTimes) List(ctx context.Context) ([]model.ReservationTime, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.ReservationTime), args.Error(1)
}

func (m *mockTimes) ListAvailability(ctx context.Context, date time.Time, themeID uint64) ([]model.TimeAvailability, error) {
	args := m.Called(ctx, date, themeID)
	return args.Get(0).([]model.TimeAvailability), args.Error(1)
}

func (m *mockTimes) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) Authorize(ctx context.Context, req payment.Request) (*model.Payment, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*model.Payment)
	return p, args.Error(1)
}

func (m *mockPayments) Cancel(ctx context.Context, paymentKey, reason string) error {
	return m.Called(ctx, paymentKey, reason).Error(0)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) Publish(ctx context.Context, ev queue.ReservationEvent) error {
	return m.Called(ctx, ev).Error(0)
}
