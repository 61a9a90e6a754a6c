package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/room-escape-reservation/internal/booking"
	"github.com/iliyamo/room-escape-reservation/internal/model"
	"github.com/iliyamo/room-escape-reservation/internal/payment"
	"github.com/iliyamo/room-escape-reservation/internal/queue"
	"github.com/iliyamo/room-escape-reservation/internal/repository"
)

const (
	publishTimeout = 3 * time.Second
	cancelTimeout  = 10 * time.Second
)

// ReservationRequest is a member's booking request.  The payment fields
// identify a charge the client already started with the provider.
type ReservationRequest struct {
	Date       string `json:"date"`
	TimeID     uint64 `json:"time_id"`
	ThemeID    uint64 `json:"theme_id"`
	PaymentKey string `json:"payment_key"`
	OrderID    string `json:"order_id"`
	Amount     int64  `json:"amount"`
}

// AdminReservationRequest books on behalf of a member without payment.
type AdminReservationRequest struct {
	MemberID uint64 `json:"member_id"`
	Date     string `json:"date"`
	TimeID   uint64 `json:"time_id"`
	ThemeID  uint64 `json:"theme_id"`
}

// ReservationFilterParams are the raw query values of a filtered listing.
type ReservationFilterParams struct {
	ThemeID  uint64
	MemberID uint64
	DateFrom string
	DateTo   string
}

type ReservationService struct {
	reservations ReservationStore
	members      MemberStore
	themes       ThemeStore
	times        TimeStore
	payments     PaymentGateway
	events       EventPublisher
	log          *zap.Logger
	now          func() time.Time
}

func NewReservationService(
	reservations ReservationStore,
	members MemberStore,
	themes ThemeStore,
	times TimeStore,
	payments PaymentGateway,
	events EventPublisher,
	log *zap.Logger,
) *ReservationService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &ReservationService{
		reservations: reservations,
		members:      members,
		themes:       themes,
		times:        times,
		payments:     payments,
		events:       events,
		log:          log,
		now:          time.Now,
	}
}

// admission is a request whose references all resolved.
type admission struct {
	date   time.Time
	member model.Member
	time   model.ReservationTime
	theme  model.Theme
}

func (a admission) key() model.SlotKey {
	return model.SlotKey{Date: a.date.Format(model.DateLayout), TimeID: a.time.ID, ThemeID: a.theme.ID}
}

func (a admission) view(r model.Reservation) ReservationView {
	return ReservationView{
		ID:         r.ID,
		MemberID:   a.member.ID,
		MemberName: a.member.Name,
		Date:       a.date.Format(model.DateLayout),
		TimeID:     a.time.ID,
		StartAt:    a.time.StartAt,
		ThemeID:    a.theme.ID,
		ThemeName:  a.theme.Name,
		Status:     r.Status,
	}
}

// CreateForMember authorizes the payment and then admits the reservation.
// Nothing is stored when authorization fails.  When storing fails after
// an approved charge, the charge is cancelled.
func (s *ReservationService) CreateForMember(ctx context.Context, memberID uint64, req ReservationRequest) (ReservationView, error) {
	payReq := payment.Request{PaymentKey: req.PaymentKey, OrderID: req.OrderID, Amount: req.Amount}
	if err := payReq.Validate(); err != nil {
		return ReservationView{}, err
	}
	adm, err := s.resolve(ctx, memberID, req.Date, req.TimeID, req.ThemeID)
	if err != nil {
		return ReservationView{}, err
	}

	paid, err := s.payments.Authorize(ctx, payReq)
	if err != nil {
		s.log.Warn("payment authorization failed",
			zap.Uint64("member_id", memberID), zap.String("order_id", req.OrderID), zap.Error(err))
		var pe *model.PaymentError
		if errors.As(err, &pe) && pe.Code == payment.CodeTimeout {
			s.compensate(ctx, payReq.PaymentKey, "payment confirmation timed out")
		}
		return ReservationView{}, err
	}

	res, err := s.admit(ctx, adm, paid)
	if err != nil {
		s.compensate(ctx, paid.PaymentKey, "reservation could not be stored")
		return ReservationView{}, err
	}
	return adm.view(res), nil
}

// compensate voids a charge that may have been approved without a stored
// reservation.  It runs detached from the request so a cancelled caller
// still releases the money.
func (s *ReservationService) compensate(ctx context.Context, paymentKey, reason string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cancelTimeout)
	defer cancel()
	if err := s.payments.Cancel(cctx, paymentKey, reason); err != nil {
		s.log.Error("payment compensation failed",
			zap.String("payment_key", paymentKey), zap.String("reason", reason), zap.Error(err))
	}
}

// CreateByAdmin admits a reservation for a member without payment.
func (s *ReservationService) CreateByAdmin(ctx context.Context, req AdminReservationRequest) (ReservationView, error) {
	if req.MemberID == 0 {
		return ReservationView{}, fmt.Errorf("%w: member_id is required", model.ErrValidation)
	}
	adm, err := s.resolve(ctx, req.MemberID, req.Date, req.TimeID, req.ThemeID)
	if err != nil {
		return ReservationView{}, err
	}
	res, err := s.admit(ctx, adm, nil)
	if err != nil {
		return ReservationView{}, err
	}
	return adm.view(res), nil
}

// resolve validates the date and loads every referenced entity.  It also
// rejects a member who already holds an entry in the slot, before any
// money moves.
func (s *ReservationService) resolve(ctx context.Context, memberID uint64, date string, timeID, themeID uint64) (admission, error) {
	d, err := booking.ParseDate(date)
	if err != nil {
		return admission{}, err
	}
	if err := booking.ValidateDate(d, s.now()); err != nil {
		return admission{}, err
	}
	if timeID == 0 || themeID == 0 {
		return admission{}, fmt.Errorf("%w: time_id and theme_id are required", model.ErrValidation)
	}
	adm := admission{date: d}
	if adm.member, err = s.members.GetByID(ctx, memberID); err != nil {
		return admission{}, err
	}
	if adm.time, err = s.times.GetByID(ctx, timeID); err != nil {
		return admission{}, err
	}
	if adm.theme, err = s.themes.GetByID(ctx, themeID); err != nil {
		return admission{}, err
	}
	exists, err := s.reservations.ExistsByMemberAndSlot(ctx, memberID, adm.key())
	if err != nil {
		return admission{}, err
	}
	if exists {
		return admission{}, repository.ErrDuplicateReservation
	}
	return adm, nil
}

func (s *ReservationService) admit(ctx context.Context, adm admission, paid *model.Payment) (model.Reservation, error) {
	res, err := s.reservations.Admit(ctx, repository.AdmitRequest{
		MemberID: adm.member.ID,
		Date:     adm.date,
		TimeID:   adm.time.ID,
		ThemeID:  adm.theme.ID,
		Payment:  paid,
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.log.Info("reservation admitted",
		zap.Uint64("reservation_id", res.ID),
		zap.Uint64("member_id", res.MemberID),
		zap.Stringer("slot", res.Key()),
		zap.String("status", string(res.Status)))
	s.publish(ctx, queue.EventCreated, res)
	return res, nil
}

// FindAll lists every reservation.
func (s *ReservationService) FindAll(ctx context.Context) ([]ReservationView, error) {
	ds, err := s.reservations.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toReservationViews(ds), nil
}

// FindBy lists RESERVED reservations matching the optional filters.
func (s *ReservationService) FindBy(ctx context.Context, p ReservationFilterParams) ([]ReservationView, error) {
	f := model.ReservationFilter{ThemeID: p.ThemeID, MemberID: p.MemberID}
	if p.DateFrom != "" {
		d, err := booking.ParseDate(p.DateFrom)
		if err != nil {
			return nil, err
		}
		f.DateFrom = &d
	}
	if p.DateTo != "" {
		d, err := booking.ParseDate(p.DateTo)
		if err != nil {
			return nil, err
		}
		f.DateTo = &d
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return nil, fmt.Errorf("%w: date_from is after date_to", model.ErrValidation)
	}
	ds, err := s.reservations.FindBy(ctx, f)
	if err != nil {
		return nil, err
	}
	return toReservationViews(ds), nil
}

// FindWaitings lists every PENDING reservation.
func (s *ReservationService) FindWaitings(ctx context.Context) ([]ReservationView, error) {
	ds, err := s.reservations.FindWaitings(ctx)
	if err != nil {
		return nil, err
	}
	return toReservationViews(ds), nil
}

// FindMine lists the member's reservations ordered by date and time, each
// with its rank in its slot.
func (s *ReservationService) FindMine(ctx context.Context, memberID uint64) ([]MyReservation, error) {
	ds, err := s.reservations.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	out := make([]MyReservation, 0, len(ds))
	if len(ds) == 0 {
		return out, nil
	}
	slotmates, err := s.reservations.GroupsOfMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	// Status comes from the group read so a promotion committed between
	// the two reads cannot pair a stale PENDING with a RESERVED group.
	current := make(map[uint64]model.Reservation, len(slotmates))
	for _, r := range slotmates {
		current[r.ID] = r
	}
	groups := booking.GroupBySlot(slotmates)
	for _, d := range ds {
		cur, ok := current[d.ID]
		if !ok {
			continue // deleted after the listing
		}
		d.Status = cur.Status
		rank := booking.RankFor(cur, groups[cur.Key()])
		out = append(out, MyReservation{
			ID:         d.ID,
			ThemeID:    d.ThemeID,
			Theme:      d.ThemeName,
			Date:       d.Date.Format(model.DateLayout),
			TimeID:     d.TimeID,
			Time:       d.StartAt,
			Status:     d.Status,
			Rank:       rank,
			Label:      d.Status.Label(rank),
			PaymentKey: d.PaymentKey,
			Amount:     d.Amount,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

// Delete removes a reservation owned by actor, or any reservation when
// actor is an administrator, promoting the next waiter when needed.
func (s *ReservationService) Delete(ctx context.Context, actor Actor, id uint64) error {
	target, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && target.MemberID != actor.MemberID {
		return fmt.Errorf("%w: reservation %d belongs to another member", model.ErrForbidden, id)
	}
	deleted, promoted, err := s.reservations.DeleteWithPromotion(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete reservation %d: %w", id, err)
	}
	s.log.Info("reservation deleted",
		zap.Uint64("reservation_id", deleted.ID),
		zap.Uint64("actor_id", actor.MemberID),
		zap.String("status", string(deleted.Status)))
	s.publish(ctx, queue.EventCancelled, deleted)
	if promoted != nil {
		s.log.Info("waiting reservation promoted",
			zap.Uint64("reservation_id", promoted.ID),
			zap.Uint64("member_id", promoted.MemberID),
			zap.Stringer("slot", promoted.Key()))
		s.publish(ctx, queue.EventPromoted, *promoted)
	}
	return nil
}

// publish emits an event after the change committed.  Failures are logged
// and never reach the caller.
func (s *ReservationService) publish(ctx context.Context, t queue.EventType, r model.Reservation) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pctx, queue.NewReservationEvent(t, r)); err != nil {
		s.log.Warn("event publish failed",
			zap.String("type", string(t)), zap.Uint64("reservation_id", r.ID), zap.Error(err))
	}
}
