package model

import "time"

// Payment records a successful authorization.  It is owned by exactly one
// reservation, created together with it and never modified afterwards.
type Payment struct {
	ID            uint64    // payments.id
	ReservationID uint64    // payments.reservation_id
	PaymentKey    string    // payments.payment_key
	OrderID       string    // payments.order_id
	Amount        int64     // payments.amount
	ApprovedAt    time.Time // payments.approved_at
}
