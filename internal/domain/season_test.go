package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSeasonContains(t *testing.T) {
	season := Season{
		StartDate: date("2026-06-01T00:00:00Z"),
		EndDate:   date("2026-06-30T23:59:59Z"),
	}

	assert.True(t, season.Contains(date("2026-06-01T00:00:00Z")), "start boundary is inclusive")
	assert.True(t, season.Contains(date("2026-06-30T23:59:59Z")), "end boundary is inclusive")
	assert.True(t, season.Contains(date("2026-06-15T12:00:00Z")))
	assert.False(t, season.Contains(date("2026-05-31T23:59:59Z")))
	assert.False(t, season.Contains(date("2026-07-01T00:00:00Z")))
}

func TestSeasonOverlaps(t *testing.T) {
	june := Season{
		StartDate: date("2026-06-01T00:00:00Z"),
		EndDate:   date("2026-06-30T23:59:59Z"),
	}

	tests := []struct {
		name  string
		other Season
		want  bool
	}{
		{
			name: "partial overlap",
			other: Season{
				StartDate: date("2026-06-15T00:00:00Z"),
				EndDate:   date("2026-07-15T23:59:59Z"),
			},
			want: true,
		},
		{
			name: "fully contained",
			other: Season{
				StartDate: date("2026-06-10T00:00:00Z"),
				EndDate:   date("2026-06-20T23:59:59Z"),
			},
			want: true,
		},
		{
			name: "disjoint after",
			other: Season{
				StartDate: date("2026-07-01T00:00:00Z"),
				EndDate:   date("2026-07-31T23:59:59Z"),
			},
			want: false,
		},
		{
			name: "touching at the boundary",
			other: Season{
				StartDate: date("2026-06-30T23:59:59Z"),
				EndDate:   date("2026-07-31T23:59:59Z"),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, june.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(june), "overlap is symmetric")
		})
	}
}

func TestSeasonFinished(t *testing.T) {
	season := Season{
		StartDate: date("2026-06-01T00:00:00Z"),
		EndDate:   date("2026-06-30T23:59:59Z"),
	}

	assert.False(t, season.Finished(date("2026-06-15T00:00:00Z")))
	assert.True(t, season.Finished(date("2026-07-01T00:00:00Z")))
}
