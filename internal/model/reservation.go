package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of reservation dates.
const DateLayout = "2006-01-02"

// Status is the admission state of a reservation.  It is a closed set:
// every switch over Status handles both values.
type Status string

const (
	// StatusReserved is the single occupying entry of a slot.
	StatusReserved Status = "RESERVED"
	// StatusPending is a waiting-list entry for an occupied slot.
	StatusPending Status = "PENDING"
)

// ParseStatus converts a stored value into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusReserved:
		return StatusReserved, nil
	case StatusPending:
		return StatusPending, nil
	}
	return "", fmt.Errorf("unknown reservation status %q", s)
}

// Label is the text shown to a member next to a reservation at the given
// rank.
func (s Status) Label(rank int) string {
	switch s {
	case StatusReserved:
		return "Reserved"
	case StatusPending:
		return fmt.Sprintf("Waiting #%d", rank-1)
	}
	return string(s)
}

// SlotKey identifies a (date, time, theme) group.  Date is formatted with
// DateLayout so the key is comparable.
type SlotKey struct {
	Date    string
	TimeID  uint64
	ThemeID uint64
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s/time=%d/theme=%d", k.Date, k.TimeID, k.ThemeID)
}

// Reservation mirrors a row of the `reservations` table.  Related entities
// are referenced by id only.  IDs are assigned in insertion order and
// define the waiting-list order within a slot.
type Reservation struct {
	ID        uint64
	MemberID  uint64
	Date      time.Time
	TimeID    uint64
	ThemeID   uint64
	Status    Status
	CreatedAt time.Time
}

// Key returns the slot the reservation belongs to.
func (r Reservation) Key() SlotKey {
	return SlotKey{Date: r.Date.Format(DateLayout), TimeID: r.TimeID, ThemeID: r.ThemeID}
}

// ReservationDetail is a reservation joined with the names of the entities
// it references, used by list endpoints.
type ReservationDetail struct {
	Reservation
	MemberName string
	StartAt    string
	ThemeName  string
	PaymentKey *string
	Amount     *int64
}

// ReservationFilter narrows the reservation list.  Zero values disable a
// condition.
type ReservationFilter struct {
	ThemeID  uint64
	MemberID uint64
	DateFrom *time.Time
	DateTo   *time.Time
}
