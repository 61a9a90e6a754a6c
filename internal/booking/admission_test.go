package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-escape-reservation/internal/model"
)

var testNow = time.Date(2034, time.May, 7, 15, 30, 0, 0, time.UTC)

func day(s string) time.Time {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidateDate_RejectsTodayAndPast(t *testing.T) {
	for _, d := range []string{"2034-05-07", "2034-05-06", "2020-01-01"} {
		err := ValidateDate(day(d), testNow)
		require.Error(t, err, d)
		assert.ErrorIs(t, err, model.ErrValidation)
	}
}

func TestValidateDate_AcceptsFuture(t *testing.T) {
	assert.NoError(t, ValidateDate(day("2034-05-08"), testNow))
	assert.NoError(t, ValidateDate(day("2035-01-01"), testNow))
}

func TestValidateDate_LateEveningStillToday(t *testing.T) {
	now := time.Date(2034, time.May, 7, 23, 59, 59, 0, time.UTC)
	assert.ErrorIs(t, ValidateDate(day("2034-05-07"), now), model.ErrValidation)
	assert.NoError(t, ValidateDate(day("2034-05-08"), now))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2034-05-08 ")
	require.NoError(t, err)
	assert.Equal(t, day("2034-05-08"), d)

	_, err = ParseDate("08/05/2034")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestDecideStatus(t *testing.T) {
	assert.Equal(t, model.StatusReserved, DecideStatus(0))
	assert.Equal(t, model.StatusPending, DecideStatus(1))
	assert.Equal(t, model.StatusPending, DecideStatus(7))
}

func TestHasMember(t *testing.T) {
	group := []model.Reservation{
		{ID: 1, MemberID: 10, Status: model.StatusReserved},
		{ID: 2, MemberID: 11, Status: model.StatusPending},
	}
	assert.True(t, HasMember(group, 11))
	assert.False(t, HasMember(group, 12))
	assert.Equal(t, 1, CountReserved(group))
}

func TestNextInLine(t *testing.T) {
	group := []model.Reservation{
		{ID: 5, Status: model.StatusPending},
		{ID: 1, Status: model.StatusReserved},
		{ID: 3, Status: model.StatusPending},
	}
	next, ok := NextInLine(group, 1)
	require.True(t, ok)
	assert.Equal(t, uint64(3), next.ID)

	next, ok = NextInLine(group, 3)
	require.True(t, ok)
	assert.Equal(t, uint64(5), next.ID)

	_, ok = NextInLine(group[1:2], 1)
	assert.False(t, ok)
}
