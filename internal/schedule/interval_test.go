package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInterval(t *testing.T, date, start, end string) Interval {
	t.Helper()
	iv, err := NewInterval(date, start, end)
	require.NoError(t, err)
	return iv
}

func TestNewInterval(t *testing.T) {
	t.Run("explicit end", func(t *testing.T) {
		iv := mustInterval(t, "01/06/2025", "10:00 AM", "12:00 PM")
		assert.Equal(t, time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC), iv.Start)
		assert.Equal(t, time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC), iv.End)
	})

	t.Run("missing end defaults to two hours", func(t *testing.T) {
		iv := mustInterval(t, "2025-06-01", "3:00 PM", "")
		assert.Equal(t, DefaultDuration, iv.Duration())
		assert.Equal(t, 17, iv.End.Hour())
	})

	t.Run("blank end defaults to two hours", func(t *testing.T) {
		iv := mustInterval(t, "2025-06-01", "3:00 PM", "   ")
		assert.Equal(t, DefaultDuration, iv.Duration())
	})

	t.Run("end before start rejected", func(t *testing.T) {
		_, err := NewInterval("01/06/2025", "2:00 PM", "1:00 PM")
		var pe *ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "end_time", pe.Field)
	})

	t.Run("end equal to start rejected", func(t *testing.T) {
		_, err := NewInterval("01/06/2025", "2:00 PM", "14:00")
		require.Error(t, err)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := NewInterval("June first", "2:00 PM", "")
		var pe *ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "date", pe.Field)
	})

	t.Run("bad end time", func(t *testing.T) {
		_, err := NewInterval("01/06/2025", "2:00 PM", "late")
		var pe *ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "end_time", pe.Field)
	})
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    [3]string
		b    [3]string
		want bool
	}{
		{
			name: "partial overlap",
			a:    [3]string{"2024-05-01", "14:00", "16:00"},
			b:    [3]string{"2024-05-01", "15:00", "17:00"},
			want: true,
		},
		{
			name: "touching endpoints do not conflict",
			a:    [3]string{"2024-05-01", "14:00", "16:00"},
			b:    [3]string{"2024-05-01", "16:00", "18:00"},
			want: false,
		},
		{
			name: "touching endpoints reversed",
			a:    [3]string{"2024-05-01", "16:00", "18:00"},
			b:    [3]string{"2024-05-01", "14:00", "16:00"},
			want: false,
		},
		{
			name: "different dates never conflict",
			a:    [3]string{"2024-05-01", "14:00", "16:00"},
			b:    [3]string{"2024-05-02", "14:00", "16:00"},
			want: false,
		},
		{
			name: "containment",
			a:    [3]string{"01/06/2025", "9:00 AM", "5:00 PM"},
			b:    [3]string{"01/06/2025", "12:00 PM", "1:00 PM"},
			want: true,
		},
		{
			name: "identical",
			a:    [3]string{"01/06/2025", "10:00 AM", "12:00 PM"},
			b:    [3]string{"2025-06-01", "10:00", "12:00"},
			want: true,
		},
		{
			name: "same date mixed formats disjoint",
			a:    [3]string{"01/06/25", "8:00 AM", "9:00 AM"},
			b:    [3]string{"2025-06-01", "09:30", "10:00"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustInterval(t, tt.a[0], tt.a[1], tt.a[2])
			b := mustInterval(t, tt.b[0], tt.b[1], tt.b[2])
			assert.Equal(t, tt.want, Overlaps(a, b))
			assert.Equal(t, tt.want, Overlaps(b, a), "overlap must be symmetric")
		})
	}
}

func TestOverlaps_NoFalseNegatives(t *testing.T) {
	day := Date{2024, time.May, 1}
	for aStart := 0; aStart < 23; aStart++ {
		for aLen := 1; aStart+aLen <= 23; aLen++ {
			for bStart := 0; bStart < 23; bStart++ {
				for bLen := 1; bStart+bLen <= 23; bLen++ {
					a := Interval{Start: day.At(Clock{Hour: aStart}), End: day.At(Clock{Hour: aStart + aLen})}
					b := Interval{Start: day.At(Clock{Hour: bStart}), End: day.At(Clock{Hour: bStart + bLen})}
					want := aStart < bStart+bLen && bStart < aStart+aLen
					if Overlaps(a, b) != want {
						t.Fatalf("Overlaps(%v, %v) = %v, want %v", a, b, !want, want)
					}
				}
			}
		}
	}
}
