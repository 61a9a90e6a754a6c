package booking

import (
	"sort"

	"github.com/iliyamo/room-escape-reservation/internal/model"
)

// RankFor returns the 1-based queue position of r within group, the
// entries sharing r's slot.  The RESERVED entry is rank 1.  A PENDING entry
// is ranked after every RESERVED entry and every PENDING entry with a
// smaller id.  While the slot invariant holds this equals one plus the
// number of entries created before r.  When the slot has lost its RESERVED
// entry the earliest PENDING reports rank 1; RankFor never changes status.
func RankFor(r model.Reservation, group []model.Reservation) int {
	if r.Status == model.StatusReserved {
		return 1
	}
	rank := 1
	for _, o := range group {
		if o.ID == r.ID {
			continue
		}
		if o.Status == model.StatusReserved || o.ID < r.ID {
			rank++
		}
	}
	return rank
}

// Ranks computes the rank of every entry of a single slot.
func Ranks(group []model.Reservation) map[uint64]int {
	out := make(map[uint64]int, len(group))
	for _, r := range group {
		out[r.ID] = RankFor(r, group)
	}
	return out
}

// GroupBySlot splits reservations by slot, each group ordered by id.
func GroupBySlot(rs []model.Reservation) map[model.SlotKey][]model.Reservation {
	groups := make(map[model.SlotKey][]model.Reservation)
	for _, r := range rs {
		k := r.Key()
		groups[k] = append(groups[k], r)
	}
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool { return g[i].ID < g[j].ID })
	}
	return groups
}
