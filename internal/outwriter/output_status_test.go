package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteStoreStatusTable(t *testing.T) {
	report := StoreStatusReport{
		Series: &schema.StoreStatus{
			Backend:         "sqlite",
			Connected:       true,
			TotalSeries:     2,
			TotalMetrics:    3,
			TotalPoints:     10,
			OldestPointTime: time.Unix(100, 0),
			NewestPointTime: time.Unix(200, 0),
			TableSizes:      map[string]int64{"tschart_points": 10, "tschart_metrics": 3},
		},
		Dashboards: &schema.DashboardStoreStatus{
			Backend:         "sqlite",
			Connected:       true,
			TotalDashboards: 1,
			LastUpdateTime:  time.Unix(300, 0),
			TableSizeBytes:  4096,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeStoreStatusTable(&buf, report))
	out := buf.String()
	assert.Contains(t, out, "tschart_metrics rows")
	assert.Contains(t, out, "1970-01-01T00:01:40Z")
	assert.Contains(t, out, "4.0 KiB")
	assert.Contains(t, out, "dashboards")
}

func TestWriteStoreStatusJSON(t *testing.T) {
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: filepath.Join(t.TempDir(), "status.json")}
	report := StoreStatusReport{Series: &schema.StoreStatus{Backend: "none"}}
	require.NoError(t, WriteStoreStatus(report, cfg))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "series")
	assert.NotContains(t, decoded, "dashboards")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "2.0 MiB", formatBytes(2*1024*1024))
}

func TestWriteDashboardOutline(t *testing.T) {
	spec := &schema.DashboardSpec{RootSection: &schema.SectionSpec{
		ChartNavigation: schema.IndependentNavigation,
		Charts: []schema.ChartSpec{{
			Title:          schema.TitleSpec{Content: "CPU"},
			YAxes:          []schema.AxisSpec{{ID: "y"}},
			SeriesBuilders: []schema.BuilderSpec{{BuilderType: schema.StaticBuilderType}},
		}},
		Sections: []schema.SectionSpec{{
			Title:           schema.TitleSpec{Content: "Disks"},
			ChartNavigation: schema.SharedWithinSectionNavigation,
		}},
	}}

	var buf bytes.Buffer
	require.NoError(t, writeDashboardOutline(&buf, spec))
	assert.Equal(t, `- section "root" [independent]
  - chart "CPU": 1 axes, 1 series builders, 0 group builders
  - section "Disks" [sharedWithinSection]
`, buf.String())

	buf.Reset()
	require.NoError(t, writeDashboardOutline(&buf, &schema.DashboardSpec{}))
	assert.Equal(t, "(empty dashboard)\n", buf.String())
}

func TestWriteDashboardListCSV(t *testing.T) {
	var buf bytes.Buffer
	records := []schema.DashboardRecord{{Name: "ops", Spec: []byte("{}"), Version: 2, UpdatedAt: 60}}
	require.NoError(t, writeDashboardListCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"name", "version", "updated_at", "size_bytes"},
		{"ops", "2", "1970-01-01T00:01:00Z", "2"},
	}, rows)
}

func TestWriteDashboardListTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDashboardListTable(&buf, []schema.DashboardRecord{{Name: "ops", Version: 1}}))
	assert.Contains(t, buf.String(), "ops")
	assert.Contains(t, buf.String(), "1 dashboards stored")
}
