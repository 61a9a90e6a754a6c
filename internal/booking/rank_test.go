package booking

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-escape-reservation/internal/model"
)

// slot is an in-memory stand-in for one (date, time, theme) group that
// applies the same admission and promotion rules as the MySQL store.
type slot struct {
	seq     uint64
	entries []model.Reservation
}

func (s *slot) book(memberID uint64) model.Reservation {
	s.seq++
	r := model.Reservation{
		ID:       s.seq,
		MemberID: memberID,
		Date:     day("2034-05-08"),
		TimeID:   1,
		ThemeID:  1,
		Status:   DecideStatus(CountReserved(s.entries)),
	}
	s.entries = append(s.entries, r)
	return r
}

func (s *slot) remove(id uint64) {
	var deleted model.Reservation
	kept := s.entries[:0]
	for _, r := range s.entries {
		if r.ID == id {
			deleted = r
			continue
		}
		kept = append(kept, r)
	}
	s.entries = kept
	if deleted.Status != model.StatusReserved {
		return
	}
	if next, ok := NextInLine(s.entries, id); ok {
		for i := range s.entries {
			if s.entries[i].ID == next.ID {
				s.entries[i].Status = model.StatusReserved
			}
		}
	}
}

func (s *slot) find(id uint64) model.Reservation {
	for _, r := range s.entries {
		if r.ID == id {
			return r
		}
	}
	panic("missing reservation")
}

func assertContiguous(t *testing.T, group []model.Reservation) {
	t.Helper()
	ranks := Ranks(group)
	seen := make(map[int]bool, len(ranks))
	for _, rank := range ranks {
		assert.False(t, seen[rank], "duplicate rank %d", rank)
		seen[rank] = true
	}
	for i := 1; i <= len(group); i++ {
		assert.True(t, seen[i], "missing rank %d", i)
	}
	assert.LessOrEqual(t, CountReserved(group), 1)
}

func TestRank_BookTwiceThenDeleteFirst(t *testing.T) {
	s := &slot{}
	a := s.book(1)
	assert.Equal(t, model.StatusReserved, a.Status)
	assert.Equal(t, 1, RankFor(a, s.entries))

	b := s.book(2)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, 2, RankFor(b, s.entries))

	s.remove(a.ID)
	b = s.find(b.ID)
	assert.Equal(t, model.StatusReserved, b.Status)
	assert.Equal(t, 1, RankFor(b, s.entries))
}

func TestRank_PromotionShiftsEveryWaiterByOne(t *testing.T) {
	s := &slot{}
	reserved := s.book(1)
	for m := uint64(2); m <= 6; m++ {
		s.book(m)
	}
	before := Ranks(s.entries)

	s.remove(reserved.ID)

	after := Ranks(s.entries)
	promoted := s.find(2)
	assert.Equal(t, model.StatusReserved, promoted.Status)
	for id, rank := range after {
		assert.Equal(t, before[id]-1, rank, "reservation %d", id)
	}
	assertContiguous(t, s.entries)
}

func TestRank_DeletingWaiterKeepsReservedInPlace(t *testing.T) {
	s := &slot{}
	s.book(1)
	mid := s.book(2)
	last := s.book(3)

	s.remove(mid.ID)

	assert.Equal(t, model.StatusReserved, s.find(1).Status)
	assert.Equal(t, 2, RankFor(s.find(last.ID), s.entries))
	assertContiguous(t, s.entries)
}

func TestRank_MissingReservedEntry(t *testing.T) {
	group := []model.Reservation{
		{ID: 4, Status: model.StatusPending},
		{ID: 9, Status: model.StatusPending},
	}
	assert.Equal(t, 1, RankFor(group[0], group))
	assert.Equal(t, 2, RankFor(group[1], group))
	assert.Equal(t, model.StatusPending, group[0].Status)
}

func TestRank_RandomOperationsStayContiguous(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	s := &slot{}
	member := uint64(0)
	for i := 0; i < 500; i++ {
		if len(s.entries) == 0 || rnd.Intn(3) > 0 {
			member++
			s.book(member)
		} else {
			victim := s.entries[rnd.Intn(len(s.entries))]
			s.remove(victim.ID)
		}
		assertContiguous(t, s.entries)
		if len(s.entries) > 0 {
			require.Equal(t, 1, CountReserved(s.entries))
		}
	}
}

func TestGroupBySlot(t *testing.T) {
	rs := []model.Reservation{
		{ID: 3, Date: day("2034-05-08"), TimeID: 1, ThemeID: 1},
		{ID: 1, Date: day("2034-05-08"), TimeID: 1, ThemeID: 1},
		{ID: 2, Date: day("2034-05-09"), TimeID: 1, ThemeID: 1},
	}
	groups := GroupBySlot(rs)
	require.Len(t, groups, 2)
	g := groups[model.SlotKey{Date: "2034-05-08", TimeID: 1, ThemeID: 1}]
	require.Len(t, g, 2)
	assert.Equal(t, uint64(1), g[0].ID)
	assert.Equal(t, uint64(3), g[1].ID)
}
