package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port        string `mapstructure:"port"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"server"`
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	JWT struct {
		AccessSecret     string `mapstructure:"access_secret"`
		RefreshSecret    string `mapstructure:"refresh_secret"`
		AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
		SessionTTLHours  int    `mapstructure:"session_ttl_hours"`
	} `mapstructure:"jwt"`
	LoginLimiter struct {
		MaxAttempts   int `mapstructure:"max_attempts"`
		WindowMinutes int `mapstructure:"window_minutes"`
	} `mapstructure:"login_limiter"`
	Janitor struct {
		SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes"`
	} `mapstructure:"janitor"`
}

// AccessTTL returns the lifetime of an access token.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessTTLMinutes) * time.Minute
}

// SessionTTL returns the absolute session ceiling measured from first login.
// Rotation never extends a session past this window.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.JWT.SessionTTLHours) * time.Hour
}

var AppConfig Config

func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
