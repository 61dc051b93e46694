package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPointsForRating(t *testing.T) {
	conf := GamificationConfig{RatingPoints: []int{0, 5, 10, 20, 40}}

	tests := []struct {
		rating     int
		wantPoints int
		wantOK     bool
	}{
		{rating: 1, wantPoints: 0, wantOK: true},
		{rating: 3, wantPoints: 10, wantOK: true},
		{rating: 5, wantPoints: 40, wantOK: true},
		{rating: 0, wantOK: false},
		{rating: 6, wantOK: false},
		{rating: -1, wantOK: false},
	}

	for _, tt := range tests {
		points, ok := conf.PointsForRating(tt.rating)

		assert.Equal(t, tt.wantOK, ok, "rating %d", tt.rating)
		assert.Equal(t, tt.wantPoints, points, "rating %d", tt.rating)
	}
}

func TestGrantCooldown(t *testing.T) {
	grant := GrantConfig{CooldownMinutes: 5}

	assert.Equal(t, 5*time.Minute, grant.Cooldown())
}

func TestLocation(t *testing.T) {
	t.Run("valid timezone", func(t *testing.T) {
		conf := GamificationConfig{Timezone: "America/Sao_Paulo"}

		assert.Equal(t, "America/Sao_Paulo", conf.Location().String())
	})

	t.Run("invalid timezone falls back to UTC", func(t *testing.T) {
		conf := GamificationConfig{Timezone: "Not/AZone"}

		assert.Equal(t, time.UTC, conf.Location())
	})
}
