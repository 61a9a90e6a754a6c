// Package booking implements the admission and waiting-list rules of the
// reservation engine.  It is pure: callers load a slot's entries inside
// their own transaction and hand them to these functions, which never
// touch storage.
package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/room-escape-reservation/internal/model"
)

// ParseDate parses a YYYY-MM-DD date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", model.ErrValidation, s)
	}
	return d, nil
}

// ValidateDate rejects dates that are not strictly after the calendar day
// of now.  Bookings for today or any past day fail with ErrValidation.
func ValidateDate(date, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if !day.After(today) {
		return fmt.Errorf("%w: reservation date %s must be after today", model.ErrValidation, day.Format(model.DateLayout))
	}
	return nil
}

// DecideStatus admits a new request as RESERVED when nothing occupies the
// slot and as PENDING otherwise.  The waiting list has no upper bound.
func DecideStatus(reservedCount int) model.Status {
	if reservedCount == 0 {
		return model.StatusReserved
	}
	return model.StatusPending
}

// CountReserved returns the number of RESERVED entries in group.
func CountReserved(group []model.Reservation) int {
	n := 0
	for _, r := range group {
		if r.Status == model.StatusReserved {
			n++
		}
	}
	return n
}

// HasMember reports whether memberID already holds an entry in group.
func HasMember(group []model.Reservation, memberID uint64) bool {
	for _, r := range group {
		if r.MemberID == memberID {
			return true
		}
	}
	return false
}

// NextInLine returns the earliest PENDING entry of group, ignoring the
// entry being deleted.  ok is false when nobody is waiting.
func NextInLine(group []model.Reservation, deletedID uint64) (next model.Reservation, ok bool) {
	for _, r := range group {
		if r.ID == deletedID || r.Status != model.StatusPending {
			continue
		}
		if !ok || r.ID < next.ID {
			next, ok = r, true
		}
	}
	return next, ok
}
