package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePoints(t *testing.T) {
	tests := []struct {
		name             string
		basePoints       int
		globalMultiplier float64
		seasonMultiplier float64
		want             int
	}{
		{
			name:             "no multipliers",
			basePoints:       10,
			globalMultiplier: 1,
			seasonMultiplier: 1,
			want:             10,
		},
		{
			name:             "season doubles",
			basePoints:       10,
			globalMultiplier: 1,
			seasonMultiplier: 2,
			want:             20,
		},
		{
			name:             "half rounds up",
			basePoints:       5,
			globalMultiplier: 1,
			seasonMultiplier: 1.5, // 7.5
			want:             8,
		},
		{
			name:             "below half rounds down",
			basePoints:       3,
			globalMultiplier: 1,
			seasonMultiplier: 1.1, // 3.3
			want:             3,
		},
		{
			name:             "both multipliers compound",
			basePoints:       10,
			globalMultiplier: 1.5,
			seasonMultiplier: 1.5, // 22.5
			want:             23,
		},
		{
			name:             "zero season multiplier zeroes the event",
			basePoints:       40,
			globalMultiplier: 1,
			seasonMultiplier: 0,
			want:             0,
		},
		{
			name:             "negative half rounds toward positive",
			basePoints:       -5,
			globalMultiplier: 1,
			seasonMultiplier: 0.5, // -2.5
			want:             -2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectivePoints(tt.basePoints, tt.globalMultiplier, tt.seasonMultiplier)

			assert.Equal(t, tt.want, got)
		})
	}
}
