package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/room-escape-reservation/internal/model"
)

// MemberRepo reads and writes the `members` table.
type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

const memberColumns = "id, name, email, password_hash, role, created_at"

// Create inserts m, which must carry an already hashed password, and fills
// in its ID and CreatedAt.  Emails are stored lower-cased.
func (r *MemberRepo) Create(ctx context.Context, m *model.Member) error {
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO members (name, email, password_hash, role) VALUES (?,?,?,?)",
		m.Name, m.Email, m.PasswordHash, string(m.Role))
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.DB.QueryRowContext(ctx, "SELECT created_at FROM members WHERE id=?", m.ID).Scan(&m.CreatedAt)
}

// GetByEmail fetches a member by normalized email.
func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (model.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM members WHERE email=? LIMIT 1", email)
	return scanMember(row)
}

// GetByID fetches a member by id.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (model.Member, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM members WHERE id=? LIMIT 1", id)
	return scanMember(row)
}

// List returns every member ordered by id.
func (r *MemberRepo) List(ctx context.Context) ([]model.Member, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+memberColumns+" FROM members ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(s rowScanner) (model.Member, error) {
	var (
		m    model.Member
		role string
	)
	if err := s.Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &role, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Member{}, ErrMemberNotFound
		}
		return model.Member{}, err
	}
	m.Role = model.ParseRole(role)
	return m, nil
}
