package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse("06:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(6*60+30), c)

	_, err = Parse("24:00")
	assert.Error(t, err)

	_, err = Parse("9:15")
	assert.Error(t, err, "hours must be zero padded")

	_, err = Parse("nonsense")
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	assert.Equal(t, "06:30", MustParse("06:30").String())
	assert.Equal(t, "00:00", Clock(0).String())
	assert.Equal(t, "23:59", Clock(23*60+59).String())
}

func TestAt(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	date := time.Date(2024, 6, 12, 15, 4, 5, 0, loc)
	got := MustParse("07:45").At(date, loc)

	assert.Equal(t, time.Date(2024, 6, 12, 7, 45, 0, 0, loc), got)
}

func TestFromTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	at := time.Date(2024, 6, 12, 18, 20, 0, 0, loc)
	assert.Equal(t, MustParse("18:20"), FromTime(at))
}

func TestOverlaps(t *testing.T) {
	start, end := MustParse("08:00"), MustParse("10:00")

	// Touching ranges do not overlap under half-open semantics.
	assert.False(t, Overlaps(start, end, MustParse("10:00"), MustParse("11:00")))
	assert.False(t, Overlaps(start, end, MustParse("06:00"), MustParse("08:00")))

	assert.True(t, Overlaps(start, end, MustParse("09:00"), MustParse("11:00")))
	assert.True(t, Overlaps(start, end, MustParse("07:00"), MustParse("09:00")))
	assert.True(t, Overlaps(start, end, MustParse("08:30"), MustParse("09:30")))
	assert.True(t, Overlaps(start, end, MustParse("07:00"), MustParse("11:00")))
}
