package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/room-escape-reservation/internal/model"
)

// TimeRepo reads and writes the `reservation_times` table.
type TimeRepo struct {
	db *sql.DB
}

func NewTimeRepo(db *sql.DB) *TimeRepo { return &TimeRepo{db: db} }

// Create inserts t and fills in its ID.
func (r *TimeRepo) Create(ctx context.Context, t *model.ReservationTime) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO reservation_times (start_at) VALUES (?)", t.StartAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrTimeExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID fetches one time slot.
func (r *TimeRepo) GetByID(ctx context.Context, id uint64) (model.ReservationTime, error) {
	var t model.ReservationTime
	err := r.db.QueryRowContext(ctx, "SELECT id, start_at FROM reservation_times WHERE id = ?", id).
		Scan(&t.ID, &t.StartAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReservationTime{}, ErrTimeNotFound
	}
	return t, err
}

// List returns every time slot ordered by start.
func (r *TimeRepo) List(ctx context.Context) ([]model.ReservationTime, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, start_at FROM reservation_times ORDER BY start_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ReservationTime{}
	for rows.Next() {
		var t model.ReservationTime
		if err := rows.Scan(&t.ID, &t.StartAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListAvailability returns every time slot with whether a RESERVED entry
// already occupies it for date and themeID.
func (r *TimeRepo) ListAvailability(ctx context.Context, date time.Time, themeID uint64) ([]model.TimeAvailability, error) {
	const q = `SELECT t.id, t.start_at,
                      EXISTS (SELECT 1 FROM reservations r
                              WHERE r.time_id = t.id AND r.date = ? AND r.theme_id = ? AND r.status = 'RESERVED')
               FROM reservation_times t
               ORDER BY t.start_at`
	rows, err := r.db.QueryContext(ctx, q, date.Format(model.DateLayout), themeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TimeAvailability{}
	for rows.Next() {
		var a model.TimeAvailability
		if err := rows.Scan(&a.ID, &a.StartAt, &a.AlreadyBooked); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes a time slot.  ErrTimeNotFound when nothing was deleted,
// ErrTimeInUse when reservations still reference it.
func (r *TimeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reservation_times WHERE id = ?", id)
	if err != nil {
		if isReferenced(err) {
			return ErrTimeInUse
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTimeNotFound
	}
	return nil
}
