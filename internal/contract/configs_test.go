package contract

import (
	"testing"
	"time"

	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Precision:    2,
		Output:       "text",
		Color:        "yes",
		StoreBackend: "sqlite",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*ConfigRawInput)
		expectError bool
	}{
		{"valid minimal config", func(*ConfigRawInput) {}, false},
		{"invalid precision", func(in *ConfigRawInput) { in.Precision = 5 }, true},
		{"invalid output", func(in *ConfigRawInput) { in.Output = "xml" }, true},
		{"parquet without file", func(in *ConfigRawInput) { in.Output = "parquet" }, true},
		{"parquet with file", func(in *ConfigRawInput) { in.Output = "parquet"; in.OutputFile = "out.parquet" }, false},
		{"invalid color", func(in *ConfigRawInput) { in.Color = "sometimes" }, true},
		{"invalid backend", func(in *ConfigRawInput) { in.StoreBackend = "oracle" }, true},
		{"mysql without connection", func(in *ConfigRawInput) { in.StoreBackend = "mysql" }, true},
		{"mysql with connection", func(in *ConfigRawInput) {
			in.StoreBackend = "mysql"
			in.StoreDBConnect = "user:pass@tcp(localhost:3306)/tschart"
		}, false},
		{"same sqlite file for both stores", func(in *ConfigRawInput) {
			in.DashboardBackend = "sqlite"
			in.StoreDBConnect = "/tmp/same.db"
			in.DashboardDBConnect = "/tmp/same.db"
		}, true},
		{"unknown resolution", func(in *ConfigRawInput) { in.Resolution = "2m" }, true},
		{"known resolution", func(in *ConfigRawInput) { in.Resolution = "1 minute" }, false},
		{"last point with live", func(in *ConfigRawInput) { in.LastPoint = "1700000000"; in.Live = true }, true},
		{"bad last point", func(in *ConfigRawInput) { in.LastPoint = "tomorrow" }, true},
		{"bad resolutions entry", func(in *ConfigRawInput) {
			in.Resolutions = []ResolutionRawInput{{TimeResolution: "5s", PointsCount: 0}}
		}, true},
		{"duplicate resolutions", func(in *ConfigRawInput) {
			in.Resolutions = []ResolutionRawInput{{TimeResolution: "5s", PointsCount: 3}, {TimeResolution: "5 seconds", PointsCount: 3}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.modify(input)
			err := ProcessAndValidate(&Config{}, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateFillsConfig(t *testing.T) {
	input := validInput()
	input.Resolution = "1m"
	input.LastPoint = "1700000000"
	input.Resolutions = []ResolutionRawInput{
		{TimeResolution: "1h", PointsCount: 24},
		{TimeResolution: "1m", PointsCount: 60, UpdateInterval: "10s"},
	}

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, int64(60), cfg.TimeResolution)
	assert.Equal(t, int64(1700000000), *cfg.LastPointTimestamp)
	assert.Equal(t, []schema.TimeResolutionSpec{
		{TimeResolution: 60, PointsCount: 60, UpdateInterval: 10},
		{TimeResolution: 3600, PointsCount: 24, UpdateInterval: 3600},
	}, cfg.Resolutions)

	smallest, ok := cfg.SmallestResolution()
	require.True(t, ok)
	assert.Equal(t, int64(60), smallest.TimeResolution)
}

func TestProcessViewInputsRelative(t *testing.T) {
	cfg := &Config{}
	input := &ConfigRawInput{LastPoint: "1 hour ago", NowOffset: 60}
	require.NoError(t, processViewInputs(cfg, input, fixedNow))
	assert.Equal(t, fixedNow.Add(-time.Hour+time.Minute).Unix(), *cfg.LastPointTimestamp)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		Resolutions:        []schema.TimeResolutionSpec{{TimeResolution: 5, PointsCount: 3}},
		LastPointTimestamp: schema.Int(10),
	}
	clone := cfg.Clone()
	clone.Resolutions[0].PointsCount = 99
	*clone.LastPointTimestamp = 20

	assert.Equal(t, 3, cfg.Resolutions[0].PointsCount)
	assert.Equal(t, int64(10), *cfg.LastPointTimestamp)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@localhost/db"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=tschart"))
}

func TestRevalidateView(t *testing.T) {
	cfg := &Config{Resolutions: []schema.TimeResolutionSpec{{TimeResolution: 5, PointsCount: 3}, {TimeResolution: 60, PointsCount: 3}}}

	require.NoError(t, RevalidateView(cfg, "1m", "1000"))
	assert.Equal(t, int64(60), cfg.TimeResolution)
	assert.Equal(t, int64(1000), *cfg.LastPointTimestamp)

	require.NoError(t, RevalidateView(cfg, "", ""))
	assert.Equal(t, int64(0), cfg.TimeResolution)
	assert.Nil(t, cfg.LastPointTimestamp)

	assert.ErrorContains(t, RevalidateView(cfg, "2h", ""), "not configured")

	cfg.Live = true
	assert.Error(t, RevalidateView(cfg, "", "1000"))
}
