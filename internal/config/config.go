package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	// Backend
	APIURL               string
	ClientTimeout        time.Duration
	SlowRequestThreshold time.Duration

	// Polling
	ListPollInterval   time.Duration
	DetailPollInterval time.Duration

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Local state
	PrefsFile string
}

// Defaults.
const (
	defaultAPIURL               = "http://localhost:8000/api"
	defaultClientTimeout        = 30 * time.Second
	defaultSlowRequestThreshold = 500 * time.Millisecond
	defaultListPollInterval     = 5 * time.Second
	defaultDetailPollInterval   = 3 * time.Second
	defaultLogFile              = "/tmp/ymf.log"
)

// Load layers defaults, an optional ymf.yaml and YMF_* environment
// variables, in increasing precedence.
func Load() Config {
	v := viper.New()
	v.SetConfigName("ymf")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "ymf"))
	}

	v.SetEnvPrefix("YMF")
	v.AutomaticEnv()

	v.SetDefault("api_url", defaultAPIURL)
	v.SetDefault("client_timeout", defaultClientTimeout.String())
	v.SetDefault("slow_request_threshold", defaultSlowRequestThreshold.String())
	v.SetDefault("list_poll_interval", defaultListPollInterval.String())
	v.SetDefault("detail_poll_interval", defaultDetailPollInterval.String())
	v.SetDefault("log_file", defaultLogFile)
	v.SetDefault("log_level", "INFO")
	v.SetDefault("prefs_file", "")

	// Config file is optional
	_ = v.ReadInConfig()

	return Config{
		APIURL:               strings.TrimRight(v.GetString("api_url"), "/"),
		ClientTimeout:        getDuration(v, "client_timeout", defaultClientTimeout),
		SlowRequestThreshold: getDuration(v, "slow_request_threshold", defaultSlowRequestThreshold),

		ListPollInterval:   getDuration(v, "list_poll_interval", defaultListPollInterval),
		DetailPollInterval: getDuration(v, "detail_poll_interval", defaultDetailPollInterval),

		LogFile:  v.GetString("log_file"),
		LogLevel: parseLogLevel(v.GetString("log_level")),

		PrefsFile: v.GetString("prefs_file"),
	}
}

// getDuration falls back to def for missing, invalid or non-positive values.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
