// Package config loads the service configuration file. Fields are
// pointers so a partial JSON file only overrides what it names; the
// Get* accessors supply the tuned defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/guidelight-data/navwatch/internal/nav"
	"github.com/guidelight-data/navwatch/internal/units"
)

// Config is the root service configuration. The detector fields mirror
// nav.Thresholds; the schema doubles as the payload for runtime
// threshold updates so the same JSON works in both places.
type Config struct {
	// Detector thresholds
	CrashNearM             *float64 `json:"crash_near_m,omitempty"`
	ConfMin                *float64 `json:"conf_min,omitempty"`
	MergeWindowS           *int64   `json:"merge_window_s,omitempty"`
	StuckMinS              *int64   `json:"stuck_min_s,omitempty"`
	StuckAlertS            *int64   `json:"stuck_alert_s,omitempty"`
	StuckVarianceM         *float64 `json:"stuck_variance_m,omitempty"`
	StuckGapS              *int64   `json:"stuck_gap_s,omitempty"`
	AccidentPatternWindowS *int64   `json:"accident_pattern_window_s,omitempty"`
	AccidentNoProceedS     *int64   `json:"accident_no_proceed_s,omitempty"`
	AccidentDepthM         *float64 `json:"accident_depth_m,omitempty"`
	AccidentConf           *float64 `json:"accident_conf,omitempty"`

	// Watchdog params
	WatchdogWindow    *int   `json:"watchdog_window,omitempty"`
	StuckDebounceS    *int64 `json:"stuck_debounce_s,omitempty"`
	AccidentDebounceS *int64 `json:"accident_debounce_s,omitempty"`

	// Indexer params
	IndexTTL        *string `json:"index_ttl,omitempty"`        // duration string like "15m"
	ReindexInterval *string `json:"reindex_interval,omitempty"` // duration string like "5m"

	// Service params
	ListenAddr *string `json:"listen_addr,omitempty"`
	DBPath     *string `json:"db_path,omitempty"`
	WebhookURL *string `json:"webhook_url,omitempty"`
	Timezone   *string `json:"timezone,omitempty"`
}

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. Fields omitted from the file
// keep their defaults, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *Config) Validate() error {
	if c.CrashNearM != nil && *c.CrashNearM <= 0 {
		return fmt.Errorf("crash_near_m must be positive, got %f", *c.CrashNearM)
	}
	if c.ConfMin != nil && (*c.ConfMin < 0 || *c.ConfMin > 1) {
		return fmt.Errorf("conf_min must be between 0 and 1, got %f", *c.ConfMin)
	}
	if c.AccidentConf != nil && (*c.AccidentConf < 0 || *c.AccidentConf > 1) {
		return fmt.Errorf("accident_conf must be between 0 and 1, got %f", *c.AccidentConf)
	}
	if c.StuckVarianceM != nil && *c.StuckVarianceM < 0 {
		return fmt.Errorf("stuck_variance_m must be non-negative, got %f", *c.StuckVarianceM)
	}
	if c.StuckMinS != nil && *c.StuckMinS <= 0 {
		return fmt.Errorf("stuck_min_s must be positive, got %d", *c.StuckMinS)
	}
	if c.WatchdogWindow != nil && *c.WatchdogWindow <= 0 {
		return fmt.Errorf("watchdog_window must be positive, got %d", *c.WatchdogWindow)
	}
	if c.IndexTTL != nil && *c.IndexTTL != "" {
		if _, err := time.ParseDuration(*c.IndexTTL); err != nil {
			return fmt.Errorf("invalid index_ttl '%s': %w", *c.IndexTTL, err)
		}
	}
	if c.ReindexInterval != nil && *c.ReindexInterval != "" {
		if _, err := time.ParseDuration(*c.ReindexInterval); err != nil {
			return fmt.Errorf("invalid reindex_interval '%s': %w", *c.ReindexInterval, err)
		}
	}
	if c.Timezone != nil && *c.Timezone != "" && !units.IsTimezoneValid(*c.Timezone) {
		return fmt.Errorf("unknown timezone %q", *c.Timezone)
	}
	return nil
}

// Thresholds resolves the detector tunables, overlaying the configured
// values on the defaults.
func (c *Config) Thresholds() nav.Thresholds {
	th := nav.DefaultThresholds()
	if c.CrashNearM != nil {
		th.CrashNearM = *c.CrashNearM
	}
	if c.ConfMin != nil {
		th.ConfMin = *c.ConfMin
	}
	if c.MergeWindowS != nil {
		th.MergeWindowS = *c.MergeWindowS
	}
	if c.StuckMinS != nil {
		th.StuckMinS = *c.StuckMinS
	}
	if c.StuckAlertS != nil {
		th.StuckAlertS = *c.StuckAlertS
	}
	if c.StuckVarianceM != nil {
		th.StuckVarianceM = *c.StuckVarianceM
	}
	if c.StuckGapS != nil {
		th.StuckGapS = *c.StuckGapS
	}
	if c.AccidentPatternWindowS != nil {
		th.AccidentPatternWindowS = *c.AccidentPatternWindowS
	}
	if c.AccidentNoProceedS != nil {
		th.AccidentNoProceedS = *c.AccidentNoProceedS
	}
	if c.AccidentDepthM != nil {
		th.AccidentDepthM = *c.AccidentDepthM
	}
	if c.AccidentConf != nil {
		th.AccidentConf = *c.AccidentConf
	}
	if c.WatchdogWindow != nil {
		th.WindowSize = *c.WatchdogWindow
	}
	if c.StuckDebounceS != nil {
		th.StuckDebounce = time.Duration(*c.StuckDebounceS) * time.Second
	}
	if c.AccidentDebounceS != nil {
		th.AccidentDebounce = time.Duration(*c.AccidentDebounceS) * time.Second
	}
	return th
}

// GetIndexTTL parses and returns the index TTL as a time.Duration.
func (c *Config) GetIndexTTL() time.Duration {
	if c.IndexTTL == nil || *c.IndexTTL == "" {
		return 15 * time.Minute // default
	}
	d, err := time.ParseDuration(*c.IndexTTL)
	if err != nil {
		return 15 * time.Minute // default on parse error
	}
	return d
}

// GetReindexInterval parses and returns the background reindex period.
func (c *Config) GetReindexInterval() time.Duration {
	if c.ReindexInterval == nil || *c.ReindexInterval == "" {
		return 5 * time.Minute // default
	}
	d, err := time.ParseDuration(*c.ReindexInterval)
	if err != nil {
		return 5 * time.Minute // default on parse error
	}
	return d
}

// GetListenAddr returns the HTTP listen address or the default.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":8080"
	}
	return *c.ListenAddr
}

// GetDBPath returns the SQLite database path or the default.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "navwatch.db"
	}
	return *c.DBPath
}

// GetWebhookURL returns the alert webhook URL; empty means alerts are
// logged only.
func (c *Config) GetWebhookURL() string {
	if c.WebhookURL == nil {
		return ""
	}
	return *c.WebhookURL
}

// GetTimezone returns the default answer timezone.
func (c *Config) GetTimezone() string {
	if c.Timezone == nil || *c.Timezone == "" {
		return "UTC"
	}
	return *c.Timezone
}
