// Package service holds the reservation use cases.  Services depend on the
// narrow interfaces below; the MySQL repositories, the payment client and
// the RabbitMQ publisher satisfy them in production.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/room-escape-reservation/internal/model"
	"github.com/iliyamo/room-escape-reservation/internal/payment"
	"github.com/iliyamo/room-escape-reservation/internal/queue"
	"github.com/iliyamo/room-escape-reservation/internal/repository"
)

type ReservationStore interface {
	FindByID(ctx context.Context, id uint64) (model.Reservation, error)
	FindAll(ctx context.Context) ([]model.ReservationDetail, error)
	FindBy(ctx context.Context, f model.ReservationFilter) ([]model.ReservationDetail, error)
	FindWaitings(ctx context.Context) ([]model.ReservationDetail, error)
	ListByMember(ctx context.Context, memberID uint64) ([]model.ReservationDetail, error)
	GroupsOfMember(ctx context.Context, memberID uint64) ([]model.Reservation, error)
	ExistsByMemberAndSlot(ctx context.Context, memberID uint64, key model.SlotKey) (bool, error)
	Admit(ctx context.Context, req repository.AdmitRequest) (model.Reservation, error)
	DeleteWithPromotion(ctx context.Context, id uint64) (model.Reservation, *model.Reservation, error)
}

type MemberStore interface {
	Create(ctx context.Context, m *model.Member) error
	GetByEmail(ctx context.Context, email string) (model.Member, error)
	GetByID(ctx context.Context, id uint64) (model.Member, error)
	List(ctx context.Context) ([]model.Member, error)
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, memberID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForMember(ctx context.Context, memberID uint64) error
}

type ThemeStore interface {
	Create(ctx context.Context, t *model.Theme) error
	GetByID(ctx context.Context, id uint64) (model.Theme, error)
	List(ctx context.Context) ([]model.Theme, error)
	ListPopular(ctx context.Context, from, to time.Time, limit int) ([]model.Theme, error)
	Delete(ctx context.Context, id uint64) error
}

type TimeStore interface {
	Create(ctx context.Context, t *model.ReservationTime) error
	GetByID(ctx context.Context, id uint64) (model.ReservationTime, error)
	List(ctx context.Context) ([]model.ReservationTime, error)
	ListAvailability(ctx context.Context, date time.Time, themeID uint64) ([]model.TimeAvailability, error)
	Delete(ctx context.Context, id uint64) error
}

// PaymentGateway authorizes and voids charges with the payment provider.
type PaymentGateway interface {
	Authorize(ctx context.Context, req payment.Request) (*model.Payment, error)
	Cancel(ctx context.Context, paymentKey, reason string) error
}

// EventPublisher emits reservation lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	MemberID uint64
	Role     model.Role
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }
