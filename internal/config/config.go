package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API          APIConfig          `mapstructure:"api"`
	Gin          GinConfig          `mapstructure:"gin"`
	Postgres     PostgresConfig     `mapstructure:"postgres"`
	Gamification GamificationConfig `mapstructure:"gamification"`

	mu sync.RWMutex
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
}

// GamificationConfig holds the engine tunables. It is hot-reloaded when
// config.yml changes, so always read it through GamificationSettings.
type GamificationConfig struct {
	GlobalMultiplier float64     `mapstructure:"global_multiplier"`
	RatingPoints     []int       `mapstructure:"rating_points"` // index 0 = rating 1
	Timezone         string      `mapstructure:"timezone"`
	Grant            GrantConfig `mapstructure:"grant"`
}

type GrantConfig struct {
	MinPointsPerGrant int `mapstructure:"min_points_per_grant"`
	MaxPointsPerGrant int `mapstructure:"max_points_per_grant"`
	DailyPointsLimit  int `mapstructure:"daily_points_limit"`
	DailyGrantLimit   int `mapstructure:"daily_grant_limit"`
	CooldownMinutes   int `mapstructure:"cooldown_minutes"`
}

func (g GamificationConfig) PointsForRating(rating int) (int, bool) {
	if rating < 1 || rating > len(g.RatingPoints) {
		return 0, false
	}
	return g.RatingPoints[rating-1], true
}

func (g GrantConfig) Cooldown() time.Duration {
	return time.Duration(g.CooldownMinutes) * time.Minute
}

func (g GamificationConfig) Location() *time.Location {
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Load(path string) (*AppConfig, error) {
	viper.SetConfigFile(path)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := viper.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	// The gamification tunables (multipliers, rating table, grant quotas)
	// follow edits to config.yml without a restart.
	viper.OnConfigChange(func(e fsnotify.Event) {
		var updated AppConfig
		if err := viper.Unmarshal(&updated); err != nil {
			zap.L().Warn("config reload failed", zap.String("file", e.Name), zap.Error(err))
			return
		}

		conf.mu.Lock()
		conf.Gamification = updated.Gamification
		conf.mu.Unlock()

		zap.L().Info("gamification settings reloaded", zap.String("file", e.Name))
	})
	viper.WatchConfig()

	return conf, nil
}

// GamificationSettings returns a consistent snapshot of the hot-reloadable
// engine settings.
func (c *AppConfig) GamificationSettings() GamificationConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Gamification
}
