package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string // "" means invalid
	}{
		{"empty", "", ""},
		{"NaT sentinel", "NaT", ""},
		{"Unknown sentinel", "Unknown", ""},
		{"midnight suffix", "2024-01-03 00:00:00", "2024-01-03"},
		{"plain date", "2024-02-05", "2024-02-05"},
		{"rfc3339 same utc day", "2024-02-05T23:30:00+05:00", "2024-02-05"},
		{"rfc3339 negative offset rolls to next utc day", "2024-01-01T23:00:00-05:00", "2024-01-02"},
		{"rfc3339 positive offset rolls to previous utc day", "2024-02-05T01:00:00+05:00", "2024-02-04"},
		{"datetime without zone", "2024-02-05T10:15:00", "2024-02-05"},
		{"non-midnight time", "2024-02-05 13:45:10", "2024-02-05"},
		{"slash form", "2024/02/05", "2024-02-05"},
		{"garbage", "not a date", ""},
		{"out of range day", "2024-02-30 00:00:00", ""},
		{"short prefix before suffix", "2024-1-5 00:00:00", ""},
		{"lowercase sentinel is just garbage", "nat", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			if tt.want == "" {
				assert.False(t, ok)
				assert.True(t, got.IsZero())
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.UTC, got.Location())
			assert.Zero(t, got.Hour())
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("2023-05-18 00:00:00"))
	assert.False(t, IsValid("NaT"))
}

func TestDaysBetween(t *testing.T) {
	a, _ := Normalize("2024-01-01 00:00:00")
	b, _ := Normalize("2024-01-03 00:00:00")
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))

	// DST transitions in local zones must not change the count.
	spring, _ := Normalize("2024-03-30")
	after, _ := Normalize("2024-04-01")
	assert.Equal(t, 2, DaysBetween(spring, after))

	// Leap day.
	feb28, _ := Normalize("2024-02-28")
	mar1, _ := Normalize("2024-03-01")
	assert.Equal(t, 2, DaysBetween(feb28, mar1))

	// Spans longer than time.Duration can hold.
	old, _ := Normalize("1700-01-01 00:00:00")
	recent, _ := Normalize("2024-01-01 00:00:00")
	assert.Equal(t, 118338, DaysBetween(old, recent))
	assert.Equal(t, -118338, DaysBetween(recent, old))
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	a := time.Date(2024, 1, 1, 23, 0, 0, 0, loc)
	b := time.Date(2024, 1, 2, 1, 0, 0, 0, loc)
	assert.Equal(t, 1, DaysBetween(a, b))
}

func TestDayLabel(t *testing.T) {
	assert.Equal(t, "0 days", DayLabel(0))
	assert.Equal(t, "1 day", DayLabel(1))
	assert.Equal(t, "2 days", DayLabel(2))
	assert.Equal(t, "-1 days", DayLabel(-1))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "01 Jan 2024", FormatDate("2024-01-01 00:00:00"))
	assert.Equal(t, "18 May 2023", FormatDate("2023-05-18"))
	assert.Equal(t, "", FormatDate("NaT"))
	assert.Equal(t, "", FormatDate(""))
}
