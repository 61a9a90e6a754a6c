// Package queue carries reservation lifecycle events over RabbitMQ.  The
// publisher side is called by the reservation service after a transaction
// commits; the consumer side appends one line per event to a log file.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/room-escape-reservation/internal/model"
)

// EventType names a reservation lifecycle transition.
type EventType string

const (
	EventCreated   EventType = "reservation.created"
	EventPromoted  EventType = "reservation.promoted"
	EventCancelled EventType = "reservation.cancelled"
)

// ReservationEvent is published after a reservation changes.  It carries
// enough of the row for consumers to log or notify without querying the
// primary database.
type ReservationEvent struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	ReservationID uint64    `json:"reservation_id"`
	MemberID      uint64    `json:"member_id"`
	Date          string    `json:"date"`
	TimeID        uint64    `json:"time_id"`
	ThemeID       uint64    `json:"theme_id"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewReservationEvent builds an event for r with a fresh id.
func NewReservationEvent(t EventType, r model.Reservation) ReservationEvent {
	return ReservationEvent{
		ID:            uuid.NewString(),
		Type:          t,
		ReservationID: r.ID,
		MemberID:      r.MemberID,
		Date:          r.Date.Format(model.DateLayout),
		TimeID:        r.TimeID,
		ThemeID:       r.ThemeID,
		Status:        string(r.Status),
		OccurredAt:    time.Now().UTC(),
	}
}
