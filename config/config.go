package config

import "time"

// Config contains all application settings
type Config struct {
	BindPort      int           `mapstructure:"PORT" yaml:"port"`
	BindHost      string        `mapstructure:"HOST" yaml:"host"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL" yaml:"database_url"`
	NATSServerURL string        `mapstructure:"NATS_URL" yaml:"nats_url"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL" yaml:"session_ttl"`
	StaleAfter    time.Duration `mapstructure:"STALE_AFTER" yaml:"stale_after"`
	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL" yaml:"sweep_interval"`

	// Version
	BuildVersion string `yaml:"-"`
	BuildHash    string `yaml:"-"`
	BuildTime    string `yaml:"-"`
}
