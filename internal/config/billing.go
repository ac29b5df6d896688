package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig tunes the overdue policy applied by the billing summary.
type BillingConfig struct {
	// OverdueGraceDays is the fallback age of an unpaid cycle, in days,
	// after which it counts as overdue when the customer has no
	// configured payment due day.
	OverdueGraceDays int `mapstructure:"overdueGraceDays"`
	// AgingBuckets label outstanding balances by age for reporting.
	AgingBuckets []AgingBucket `mapstructure:"agingBuckets"`
}

type AgingBucket struct {
	Label   string `mapstructure:"label"`
	MinDays int    `mapstructure:"minDays"`
	MaxDays *int   `mapstructure:"maxDays"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		OverdueGraceDays: 30,
		AgingBuckets: []AgingBucket{
			{Label: "0-30", MinDays: 0, MaxDays: intPtr(30)},
			{Label: "31-60", MinDays: 31, MaxDays: intPtr(60)},
			{Label: "60+", MinDays: 61, MaxDays: nil},
		},
	}
}

func intPtr(v int) *int { return &v }

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/opsdesk/config") // Volume-mounted config
	v.AddConfigPath("/etc/opsdesk")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("OPSDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("billing.overdueGraceDays", defaults.OverdueGraceDays)
		v.SetDefault("billing.agingBuckets", defaults.AgingBuckets)
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if cfg.OverdueGraceDays == 0 {
		cfg.OverdueGraceDays = defaults.OverdueGraceDays
	}
	if len(cfg.AgingBuckets) == 0 {
		cfg.AgingBuckets = defaults.AgingBuckets
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder wraps a fixed config with no file watching.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	if cfg, ok := h.current.Load().(BillingConfig); ok {
		return cfg
	}
	return DefaultBillingConfig()
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.OverdueGraceDays < 0 {
		return errors.New("billing.overdueGraceDays cannot be negative")
	}
	if len(cfg.AgingBuckets) == 0 {
		return errors.New("billing.agingBuckets cannot be empty")
	}
	return nil
}
