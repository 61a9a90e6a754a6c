package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/room-escape-reservation/internal/booking"
	"github.com/iliyamo/room-escape-reservation/internal/model"
)

// ReservationRepo stores reservations and their payments.  Admission and
// deletion run in a single transaction that locks every row of the slot,
// so the count that decides RESERVED vs PENDING and the write that follows
// see the same state.  The unique index uq_reservations_slot over
// (date, time_id, theme_id, reserved_flag) backs the single RESERVED entry
// per slot; reserved_flag is 1 for RESERVED and NULL for PENDING.
type ReservationRepo struct {
	db *sql.DB
}

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for health checks.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// AdmitRequest describes a reservation to admit.  Payment is nil for
// reservations created by an administrator.
type AdmitRequest struct {
	MemberID uint64
	Date     time.Time
	TimeID   uint64
	ThemeID  uint64
	Payment  *model.Payment
}

func (a AdmitRequest) key() model.SlotKey {
	return model.SlotKey{Date: a.Date.Format(model.DateLayout), TimeID: a.TimeID, ThemeID: a.ThemeID}
}

const reservationColumns = "r.id, r.member_id, r.date, r.time_id, r.theme_id, r.status, r.created_at"

const detailSelect = `SELECT ` + reservationColumns + `, m.name, t.start_at, th.name, p.payment_key, p.amount
               FROM reservations r
               JOIN members m ON m.id = r.member_id
               JOIN reservation_times t ON t.id = r.time_id
               JOIN themes th ON th.id = r.theme_id
               LEFT JOIN payments p ON p.reservation_id = r.id`

const detailOrder = ` ORDER BY r.date, t.start_at, r.id`

// FindByID fetches one reservation.
func (r *ReservationRepo) FindByID(ctx context.Context, id uint64) (model.Reservation, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+reservationColumns+" FROM reservations r WHERE r.id = ?", id)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrReservationNotFound
	}
	return res, err
}

// FindAll returns every reservation with names resolved.
func (r *ReservationRepo) FindAll(ctx context.Context) ([]model.ReservationDetail, error) {
	return r.queryDetails(ctx, detailSelect+detailOrder)
}

// FindBy returns RESERVED reservations matching every set field of f.
func (r *ReservationRepo) FindBy(ctx context.Context, f model.ReservationFilter) ([]model.ReservationDetail, error) {
	conds := []string{"r.status = 'RESERVED'"}
	args := []any{}
	if f.ThemeID != 0 {
		conds = append(conds, "r.theme_id = ?")
		args = append(args, f.ThemeID)
	}
	if f.MemberID != 0 {
		conds = append(conds, "r.member_id = ?")
		args = append(args, f.MemberID)
	}
	if f.DateFrom != nil {
		conds = append(conds, "r.date >= ?")
		args = append(args, f.DateFrom.Format(model.DateLayout))
	}
	if f.DateTo != nil {
		conds = append(conds, "r.date <= ?")
		args = append(args, f.DateTo.Format(model.DateLayout))
	}
	q := detailSelect + " WHERE " + strings.Join(conds, " AND ") + detailOrder
	return r.queryDetails(ctx, q, args...)
}

// FindWaitings returns every PENDING reservation.
func (r *ReservationRepo) FindWaitings(ctx context.Context) ([]model.ReservationDetail, error) {
	return r.queryDetails(ctx, detailSelect+" WHERE r.status = 'PENDING'"+detailOrder)
}

// ListByMember returns the member's reservations ordered by date and time.
func (r *ReservationRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.ReservationDetail, error) {
	return r.queryDetails(ctx, detailSelect+" WHERE r.member_id = ?"+detailOrder, memberID)
}

// GroupsOfMember returns every entry of every slot the member holds an
// entry in, ordered by id.  Ranks are computed from this set.
func (r *ReservationRepo) GroupsOfMember(ctx context.Context, memberID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
               FROM reservations r
               WHERE (r.date, r.time_id, r.theme_id) IN
                     (SELECT date, time_id, theme_id FROM reservations WHERE member_id = ?)
               ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ExistsByMemberAndSlot reports whether the member already holds an entry
// in the slot.
func (r *ReservationRepo) ExistsByMemberAndSlot(ctx context.Context, memberID uint64, key model.SlotKey) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations
                        WHERE member_id = ? AND date = ? AND time_id = ? AND theme_id = ?)`,
		memberID, key.Date, key.TimeID, key.ThemeID).Scan(&exists)
	return exists, err
}

// Admit decides the status of a new reservation and stores it, together
// with its payment when one is given, in a single transaction.  The slot's
// rows are locked first; the status is RESERVED when none of them is
// RESERVED and PENDING otherwise.  If a concurrent admission still wins the
// RESERVED entry the insert is retried as PENDING.  The whole transaction
// is rerun when InnoDB picks it as a deadlock victim.
func (r *ReservationRepo) Admit(ctx context.Context, req AdmitRequest) (model.Reservation, error) {
	var out model.Reservation
	err := withRetryTx(ctx, r.db, func(tx *sql.Tx) error {
		group, err := lockSlotTx(ctx, tx, req.key())
		if err != nil {
			return err
		}
		if booking.HasMember(group, req.MemberID) {
			return ErrDuplicateReservation
		}
		status := booking.DecideStatus(booking.CountReserved(group))
		res, err := insertReservationTx(ctx, tx, req, status)
		if err != nil && status == model.StatusReserved && isDuplicateOn(err, slotIndex) {
			res, err = insertReservationTx(ctx, tx, req, model.StatusPending)
		}
		if err != nil {
			if isDuplicateOn(err, memberSlotIndex) {
				return ErrDuplicateReservation
			}
			return err
		}
		if req.Payment != nil {
			p := *req.Payment
			p.ReservationID = res.ID
			if err := insertPaymentTx(ctx, tx, &p); err != nil {
				return err
			}
		}
		out = res
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	return out, nil
}

// DeleteWithPromotion deletes reservation id.  When the deleted entry was
// RESERVED, the earliest PENDING entry of the same slot becomes RESERVED
// in the same transaction and is returned as promoted.
func (r *ReservationRepo) DeleteWithPromotion(ctx context.Context, id uint64) (deleted model.Reservation, promoted *model.Reservation, err error) {
	err = withRetryTx(ctx, r.db, func(tx *sql.Tx) error {
		promoted = nil
		row := tx.QueryRowContext(ctx, "SELECT "+reservationColumns+" FROM reservations r WHERE r.id = ? FOR UPDATE", id)
		target, err := scanReservation(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReservationNotFound
			}
			return err
		}
		group, err := lockSlotTx(ctx, tx, target.Key())
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", target.ID); err != nil {
			return err
		}
		deleted = target
		if target.Status != model.StatusReserved {
			return nil
		}
		next, ok := booking.NextInLine(group, target.ID)
		if !ok {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE reservations SET status = 'RESERVED', reserved_flag = 1 WHERE id = ?", next.ID); err != nil {
			return err
		}
		next.Status = model.StatusReserved
		promoted = &next
		return nil
	})
	if err != nil {
		return model.Reservation{}, nil, err
	}
	return deleted, promoted, nil
}

// lockSlotTx loads every entry of the slot ordered by id, holding row and
// gap locks until the transaction ends.
func lockSlotTx(ctx context.Context, tx *sql.Tx, key model.SlotKey) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
               FROM reservations r
               WHERE r.date = ? AND r.time_id = ? AND r.theme_id = ?
               ORDER BY r.id
               FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, key.Date, key.TimeID, key.ThemeID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func insertReservationTx(ctx context.Context, tx *sql.Tx, req AdmitRequest, status model.Status) (model.Reservation, error) {
	var flag any
	if status == model.StatusReserved {
		flag = 1
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (member_id, date, time_id, theme_id, status, reserved_flag)
         VALUES (?, ?, ?, ?, ?, ?)`,
		req.MemberID, req.Date.Format(model.DateLayout), req.TimeID, req.ThemeID, string(status), flag)
	if err != nil {
		return model.Reservation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Reservation{}, err
	}
	return model.Reservation{
		ID:        uint64(id),
		MemberID:  req.MemberID,
		Date:      req.Date,
		TimeID:    req.TimeID,
		ThemeID:   req.ThemeID,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func insertPaymentTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (reservation_id, payment_key, order_id, amount, approved_at)
         VALUES (?, ?, ?, ?, ?)`,
		p.ReservationID, p.PaymentKey, p.OrderID, p.Amount, p.ApprovedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

func (r *ReservationRepo) queryDetails(ctx context.Context, q string, args ...any) ([]model.ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ReservationDetail{}
	for rows.Next() {
		var (
			d          model.ReservationDetail
			status     string
			paymentKey sql.NullString
			amount     sql.NullInt64
		)
		err := rows.Scan(&d.ID, &d.MemberID, &d.Date, &d.TimeID, &d.ThemeID, &status, &d.CreatedAt,
			&d.MemberName, &d.StartAt, &d.ThemeName, &paymentKey, &amount)
		if err != nil {
			return nil, err
		}
		if d.Status, err = model.ParseStatus(status); err != nil {
			return nil, err
		}
		if paymentKey.Valid {
			d.PaymentKey = &paymentKey.String
		}
		if amount.Valid {
			d.Amount = &amount.Int64
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func scanReservation(s rowScanner) (model.Reservation, error) {
	var (
		res    model.Reservation
		status string
	)
	if err := s.Scan(&res.ID, &res.MemberID, &res.Date, &res.TimeID, &res.ThemeID, &status, &res.CreatedAt); err != nil {
		return model.Reservation{}, err
	}
	st, err := model.ParseStatus(status)
	if err != nil {
		return model.Reservation{}, err
	}
	res.Status = st
	return res, nil
}
