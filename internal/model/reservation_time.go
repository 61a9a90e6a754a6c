package model

// ReservationTime is a clock slot a theme can be booked at.  StartAt is
// stored as "HH:MM".
type ReservationTime struct {
	ID      uint64 `json:"id"`
	StartAt string `json:"start_at"`
}

// TimeAvailability pairs a slot with whether it is already occupied for a
// given date and theme.
type TimeAvailability struct {
	ReservationTime
	AlreadyBooked bool `json:"already_booked"`
}
