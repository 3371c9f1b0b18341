package contract

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/tschart/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 4
	MinPointsCount   = 1
	MaxPointsCount   = 10000
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultResolutions are the time resolutions offered when the config file has none.
var DefaultResolutions = []ResolutionRawInput{
	{TimeResolution: "5s", PointsCount: 30, UpdateInterval: "5s"},
	{TimeResolution: "1m", PointsCount: 60, UpdateInterval: "10s"},
	{TimeResolution: "1h", PointsCount: 24, UpdateInterval: "30s"},
	{TimeResolution: "24h", PointsCount: 30, UpdateInterval: "30s"},
}

// ResolutionRawInput holds one time resolution definition from the YAML config file.
type ResolutionRawInput struct {
	TimeResolution string `mapstructure:"time_resolution"`
	PointsCount    int    `mapstructure:"points_count"`
	UpdateInterval string `mapstructure:"update_interval"`
}

// Config holds the runtime configuration for chart evaluation.
// This struct remains the "final, validated" config.
type Config struct {
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	DashboardBackend   schema.DatabaseBackend
	DashboardDBConnect string // Please use env var as this is plaintext

	// Resolutions are sorted by TimeResolution ascending
	Resolutions []schema.TimeResolutionSpec

	// TimeResolution is the selected resolution in seconds (0 = smallest available)
	TimeResolution int64

	// LastPointTimestamp pins the chart to a point in time (nil = newest)
	LastPointTimestamp *int64

	Live      bool
	NowOffset int64 // Seconds added to the local clock
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile         string `mapstructure:"output-file"`
	Precision          int    `mapstructure:"precision"`
	Output             string `mapstructure:"output"`
	Width              int    `mapstructure:"width"`
	Color              string `mapstructure:"color"`
	StoreBackend       string `mapstructure:"store-backend"`
	StoreDBConnect     string `mapstructure:"store-db-connect"`
	DashboardBackend   string `mapstructure:"dashboard-backend"`
	DashboardDBConnect string `mapstructure:"dashboard-db-connect"`

	// --- Fields from chartCmd.Flags() ---
	Resolution string `mapstructure:"resolution"`
	LastPoint  string `mapstructure:"last-point"`
	Live       bool   `mapstructure:"live"`
	NowOffset  int64  `mapstructure:"now-offset"`

	// --- Resolutions from config file ---
	Resolutions []ResolutionRawInput `mapstructure:"resolutions"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Resolutions != nil {
		clone.Resolutions = slices.Clone(c.Resolutions)
	}
	if c.LastPointTimestamp != nil {
		clone.LastPointTimestamp = schema.Int(*c.LastPointTimestamp)
	}
	return &clone
}

// SmallestResolution returns the smallest configured resolution.
func (c *Config) SmallestResolution() (schema.TimeResolutionSpec, bool) {
	if len(c.Resolutions) == 0 {
		return schema.TimeResolutionSpec{}, false
	}
	return c.Resolutions[0], true
}

// FindResolution returns the resolution spec matching the given seconds.
func (c *Config) FindResolution(seconds int64) (schema.TimeResolutionSpec, bool) {
	for _, r := range c.Resolutions {
		if r.TimeResolution == seconds {
			return r, true
		}
	}
	return schema.TimeResolutionSpec{}, false
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processResolutions(cfg, input); err != nil {
		return err
	}
	if err := processViewInputs(cfg, input, time.Now()); err != nil {
		return err
	}
	return nil
}

// RevalidateView applies a resolution and last point given after the initial config
// processing, as the MCP tools receive them per request. Empty values reset the view.
func RevalidateView(cfg *Config, resolution, lastPoint string) error {
	input := &ConfigRawInput{
		Resolution: resolution,
		LastPoint:  lastPoint,
		Live:       cfg.Live,
		NowOffset:  cfg.NowOffset,
	}
	return processViewInputs(cfg, input, time.Now())
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates store and dashboard backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Store Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// --- Dashboard Backend Validation ---
	cfg.DashboardBackend = schema.DatabaseBackend(strings.ToLower(input.DashboardBackend))
	if cfg.DashboardBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.DashboardBackend]; !ok {
		return fmt.Errorf("invalid dashboard backend '%s'. must be sqlite, mysql, postgresql, none", input.DashboardBackend)
	}
	cfg.DashboardDBConnect = input.DashboardDBConnect
	if err := ValidateDatabaseConnectionString(cfg.DashboardBackend, cfg.DashboardDBConnect); err != nil {
		return err
	}

	// SQLite files must differ, otherwise both stores fight over one connection
	if cfg.StoreBackend == schema.SQLiteBackend && cfg.DashboardBackend == schema.SQLiteBackend {
		storePath := cfg.StoreDBConnect
		if storePath == "" {
			storePath = GetStoreDBFilePath()
		}
		dashboardPath := cfg.DashboardDBConnect
		if dashboardPath == "" {
			dashboardPath = GetDashboardDBFilePath()
		}
		if storePath == dashboardPath {
			return fmt.Errorf("series and dashboard storage must use different SQLite database files. Both resolve to %q", storePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return validateBackendConfigs(cfg, input)
}

// processResolutions parses and sorts the configured time resolutions.
func processResolutions(cfg *Config, input *ConfigRawInput) error {
	raw := input.Resolutions
	if len(raw) == 0 {
		raw = DefaultResolutions
	}

	cfg.Resolutions = make([]schema.TimeResolutionSpec, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))
	for _, r := range raw {
		resolution, err := ParseResolution(r.TimeResolution)
		if err != nil {
			return fmt.Errorf("invalid resolutions entry: %w", err)
		}
		if _, ok := seen[resolution]; ok {
			return fmt.Errorf("duplicate resolution %s", r.TimeResolution)
		}
		seen[resolution] = struct{}{}

		if r.PointsCount < MinPointsCount || r.PointsCount > MaxPointsCount {
			return fmt.Errorf("points_count for resolution %s must be between %d and %d (received %d)", r.TimeResolution, MinPointsCount, MaxPointsCount, r.PointsCount)
		}

		updateInterval := resolution
		if r.UpdateInterval != "" {
			if updateInterval, err = ParseResolution(r.UpdateInterval); err != nil {
				return fmt.Errorf("invalid update_interval for resolution %s: %w", r.TimeResolution, err)
			}
		}

		cfg.Resolutions = append(cfg.Resolutions, schema.TimeResolutionSpec{
			TimeResolution: resolution,
			PointsCount:    r.PointsCount,
			UpdateInterval: updateInterval,
		})
	}
	slices.SortFunc(cfg.Resolutions, func(a, b schema.TimeResolutionSpec) int {
		return int(a.TimeResolution - b.TimeResolution)
	})
	return nil
}

// processViewInputs handles the initial chart view parameters.
func processViewInputs(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.Live = input.Live
	cfg.NowOffset = input.NowOffset

	cfg.TimeResolution = 0
	if input.Resolution != "" {
		resolution, err := ParseResolution(input.Resolution)
		if err != nil {
			return fmt.Errorf("invalid --resolution: %w", err)
		}
		if _, ok := cfg.FindResolution(resolution); !ok {
			return fmt.Errorf("resolution %s is not configured", input.Resolution)
		}
		cfg.TimeResolution = resolution
	}

	cfg.LastPointTimestamp = nil
	if input.LastPoint != "" {
		if cfg.Live {
			return fmt.Errorf("--last-point cannot be combined with --live")
		}
		ts, err := ParseTimestamp(input.LastPoint, now.Add(time.Duration(cfg.NowOffset)*time.Second))
		if err != nil {
			return err
		}
		cfg.LastPointTimestamp = &ts
	}
	return nil
}
