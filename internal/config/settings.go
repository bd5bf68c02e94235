package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings are business knobs that can change without a restart.
type Settings struct {
	Dashboard DashboardSettings `mapstructure:"dashboard"`
	Inventory InventorySettings `mapstructure:"inventory"`
}

type DashboardSettings struct {
	RecentLimit   int           `mapstructure:"recentLimit"`
	DailyWindow   int           `mapstructure:"dailyWindowDays"`
	MonthlyWindow int           `mapstructure:"monthlyWindowMonths"`
	CacheTTL      time.Duration `mapstructure:"cacheTTL"`
}

type InventorySettings struct {
	AllowNegativeStock bool `mapstructure:"allowNegativeStock"`
}

func DefaultSettings() Settings {
	return Settings{
		Dashboard: DashboardSettings{
			RecentLimit:   5,
			DailyWindow:   30,
			MonthlyWindow: 6,
			CacheTTL:      30 * time.Second,
		},
		Inventory: InventorySettings{
			AllowNegativeStock: false,
		},
	}
}

type SettingsHolder struct {
	current atomic.Value // holds Settings
}

// StaticSettings returns a holder that never reloads. Used by tests and by
// processes that run without a settings file.
func StaticSettings(s Settings) *SettingsHolder {
	holder := &SettingsHolder{}
	holder.current.Store(s)
	return holder
}

func NewSettingsHolder(cfg Config, log *zap.Logger) (*SettingsHolder, error) {
	v := viper.New()

	if cfg.SettingsPath != "" {
		v.SetConfigFile(cfg.SettingsPath)
	} else {
		v.SetConfigName("settings")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/backoffice")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BACKOFFICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSettings()
	v.SetDefault("dashboard.recentLimit", defaults.Dashboard.RecentLimit)
	v.SetDefault("dashboard.dailyWindowDays", defaults.Dashboard.DailyWindow)
	v.SetDefault("dashboard.monthlyWindowMonths", defaults.Dashboard.MonthlyWindow)
	v.SetDefault("dashboard.cacheTTL", defaults.Dashboard.CacheTTL)
	v.SetDefault("inventory.allowNegativeStock", defaults.Inventory.AllowNegativeStock)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	holder := StaticSettings(settings)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Settings
		if err := v.Unmarshal(&updated); err != nil {
			log.Warn("settings reload failed", zap.Error(err))
			return
		}
		if err := validateSettings(updated); err != nil {
			log.Warn("invalid settings ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("settings reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *SettingsHolder) Get() Settings {
	if h == nil {
		return DefaultSettings()
	}
	value, ok := h.current.Load().(Settings)
	if !ok {
		return DefaultSettings()
	}
	return value
}

func validateSettings(s Settings) error {
	if s.Dashboard.RecentLimit <= 0 {
		return errors.New("dashboard.recentLimit must be positive")
	}
	if s.Dashboard.DailyWindow <= 0 {
		return errors.New("dashboard.dailyWindowDays must be positive")
	}
	if s.Dashboard.MonthlyWindow <= 0 {
		return errors.New("dashboard.monthlyWindowMonths must be positive")
	}
	if s.Dashboard.CacheTTL < 0 {
		return errors.New("dashboard.cacheTTL cannot be negative")
	}
	return nil
}
