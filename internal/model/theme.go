package model

import "time"

// Theme is a bookable room-escape scenario.
type Theme struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	CreatedAt   time.Time `json:"-"`
}
