package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/room-escape-reservation/internal/model"
)

// ThemeRepo reads and writes the `themes` table.
type ThemeRepo struct {
	db *sql.DB
}

func NewThemeRepo(db *sql.DB) *ThemeRepo { return &ThemeRepo{db: db} }

const themeColumns = "th.id, th.name, th.description, th.thumbnail, th.created_at"

// Create inserts t and fills in its ID.  A taken name yields ErrThemeExists.
func (r *ThemeRepo) Create(ctx context.Context, t *model.Theme) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO themes (name, description, thumbnail) VALUES (?, ?, ?)",
		t.Name, t.Description, t.Thumbnail)
	if err != nil {
		if isDuplicate(err) {
			return ErrThemeExists
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

// GetByID fetches one theme.
func (r *ThemeRepo) GetByID(ctx context.Context, id uint64) (model.Theme, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+themeColumns+" FROM themes th WHERE th.id = ?", id)
	t, err := scanTheme(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Theme{}, ErrThemeNotFound
	}
	return t, err
}

// List returns every theme ordered by id.
func (r *ThemeRepo) List(ctx context.Context) ([]model.Theme, error) {
	return r.query(ctx, "SELECT "+themeColumns+" FROM themes th ORDER BY th.id")
}

// ListPopular returns up to limit themes ranked by the number of RESERVED
// reservations dated within [from, to].  Ties are broken by id.
func (r *ThemeRepo) ListPopular(ctx context.Context, from, to time.Time, limit int) ([]model.Theme, error) {
	const q = `SELECT ` + themeColumns + `
               FROM themes th
               JOIN reservations r ON r.theme_id = th.id
               WHERE r.status = 'RESERVED' AND r.date BETWEEN ? AND ?
               GROUP BY th.id, th.name, th.description, th.thumbnail, th.created_at
               ORDER BY COUNT(r.id) DESC, th.id
               LIMIT ?`
	return r.query(ctx, q, from.Format(model.DateLayout), to.Format(model.DateLayout), limit)
}

// Delete removes a theme.  ErrThemeNotFound when nothing was deleted,
// ErrThemeInUse when reservations still reference it.
func (r *ThemeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM themes WHERE id = ?", id)
	if err != nil {
		if isReferenced(err) {
			return ErrThemeInUse
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrThemeNotFound
	}
	return nil
}

func (r *ThemeRepo) query(ctx context.Context, q string, args ...any) ([]model.Theme, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Theme{}
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTheme(s rowScanner) (model.Theme, error) {
	var t model.Theme
	err := s.Scan(&t.ID, &t.Name, &t.Description, &t.Thumbnail, &t.CreatedAt)
	return t, err
}
