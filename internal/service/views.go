package service

import "github.com/iliyamo/room-escape-reservation/internal/model"

// ReservationView is the JSON shape of a reservation in list responses.
type ReservationView struct {
	ID         uint64       `json:"id"`
	MemberID   uint64       `json:"member_id"`
	MemberName string       `json:"member_name"`
	Date       string       `json:"date"`
	TimeID     uint64       `json:"time_id"`
	StartAt    string       `json:"start_at"`
	ThemeID    uint64       `json:"theme_id"`
	ThemeName  string       `json:"theme_name"`
	Status     model.Status `json:"status"`
}

// MyReservation is a member's own reservation with its queue position.
type MyReservation struct {
	ID         uint64       `json:"id"`
	ThemeID    uint64       `json:"theme_id"`
	Theme      string       `json:"theme"`
	Date       string       `json:"date"`
	TimeID     uint64       `json:"time_id"`
	Time       string       `json:"time"`
	Status     model.Status `json:"status"`
	Rank       int          `json:"rank"`
	Label      string       `json:"label"`
	PaymentKey *string      `json:"payment_key,omitempty"`
	Amount     *int64       `json:"amount,omitempty"`
}

// MemberView is a member without credentials.
type MemberView struct {
	ID    uint64     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func toMemberView(m model.Member) MemberView {
	return MemberView{ID: m.ID, Name: m.Name, Email: m.Email, Role: m.Role}
}

func toReservationViews(ds []model.ReservationDetail) []ReservationView {
	out := make([]ReservationView, 0, len(ds))
	for _, d := range ds {
		out = append(out, ReservationView{
			ID:         d.ID,
			MemberID:   d.MemberID,
			MemberName: d.MemberName,
			Date:       d.Date.Format(model.DateLayout),
			TimeID:     d.TimeID,
			StartAt:    d.StartAt,
			ThemeID:    d.ThemeID,
			ThemeName:  d.ThemeName,
			Status:     d.Status,
		})
	}
	return out
}
