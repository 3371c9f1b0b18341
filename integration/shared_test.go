//go:build basic || database

// Package integration contains end to end tests for tschart.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Or, with Docker available: go test -tags database ./integration
package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedTschartPath holds the path to a shared tschart binary built once for all tests.
	sharedTschartPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

const batchesFixture = `[
  {"collectionRef": "web", "timeSeriesName": "requests.api", "metricName": "count_5s", "resolution": 5,
   "points": [{"timestamp": 1700000000, "value": 1}, {"timestamp": 1700000005, "value": 2}, {"timestamp": 1700000010, "value": 4}]},
  {"collectionRef": "web", "timeSeriesName": "requests.api", "metricName": "count_60s", "resolution": 60,
   "points": [{"timestamp": 1699999980, "value": 7}]},
  {"collectionRef": "web", "timeSeriesName": "requests.static", "metricName": "count_5s", "resolution": 5,
   "points": [{"timestamp": 1700000010, "value": 9}]}
]`

const chartFixture = `{
  "title": {"content": "Requests"},
  "yAxes": [{"id": "a1", "name": "Count"}],
  "seriesBuilders": [{
    "builderType": "static",
    "builderRecipe": {"seriesTemplate": {
      "id": "api",
      "name": "API",
      "yAxisId": "a1",
      "dataProvider": {"functionName": "loadSeries", "functionArguments": {
        "sourceType": "external",
        "sourceSpecProvider": {"functionName": "literal", "functionArguments": {"data": {
          "externalSourceName": "store",
          "externalSourceParameters": {"collectionRef": "web", "timeSeriesName": "requests.api", "metricNames": ["count_5s", "count_60s"]}
        }}}
      }}
    }}
  }]
}`

const dashboardFixture = `{"rootSection": {"title": {"content": "Web"}, "charts": [], "sections": []}}`

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getTschartBinary returns the path to the tschart binary, building it once if needed.
func getTschartBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "tschart-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		tschartPath := filepath.Join(tempDir, "tschart")
		buildCmd := exec.Command("go", "build", "-o", tschartPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if output, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build tschart binary: %v\n%s", err, output))
		}

		sharedTschartPath = tschartPath
	})

	return sharedTschartPath
}

// writeFixtures writes the batch, chart and dashboard fixtures into a temp dir.
func writeFixtures(t *testing.T) (batches, chart, dashboard string) {
	t.Helper()
	dir := t.TempDir()
	batches = filepath.Join(dir, "batches.json")
	chart = filepath.Join(dir, "chart.json")
	dashboard = filepath.Join(dir, "dashboard.json")
	require.NoError(t, os.WriteFile(batches, []byte(batchesFixture), 0o644))
	require.NoError(t, os.WriteFile(chart, []byte(chartFixture), 0o644))
	require.NoError(t, os.WriteFile(dashboard, []byte(dashboardFixture), 0o644))
	return batches, chart, dashboard
}

// runTschartCommand runs the binary with extra environment variables and returns stdout.
func runTschartCommand(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getTschartBinary(), args...)
	cmd.Dir = t.TempDir() // Keep config files of the working copy out of the way
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
		return stdout.String(), err
	}
	return stdout.String(), nil
}

// runCLIFlow ingests the fixtures, evaluates the chart and manages a dashboard
// against the backends configured in env.
func runCLIFlow(t *testing.T, env []string) {
	batches, chart, dashboard := writeFixtures(t)

	_, err := runTschartCommand(t, env, "store", "ingest", batches)
	require.NoError(t, err)

	out, err := runTschartCommand(t, env, "chart", chart, "--output", "json", "--last-point", "1700000010")
	require.NoError(t, err)
	require.Contains(t, out, `"id": "api"`)
	require.Contains(t, out, `"timestamp": 1700000010`)

	out, err = runTschartCommand(t, env, "chart", chart, "--resolution", "1m", "--output", "csv")
	require.NoError(t, err)
	require.Contains(t, out, "series_id,series_name,timestamp")

	_, err = runTschartCommand(t, env, "dashboard", "save", "web", dashboard)
	require.NoError(t, err)
	_, err = runTschartCommand(t, env, "dashboard", "save", "web", dashboard)
	require.NoError(t, err)

	out, err = runTschartCommand(t, env, "dashboard", "list", "--output", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"name": "web"`)
	require.Contains(t, out, `"version": 2`)

	out, err = runTschartCommand(t, env, "dashboard", "show", "web")
	require.NoError(t, err)
	require.Contains(t, out, `section "Web"`)

	out, err = runTschartCommand(t, env, "store", "status", "--output", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"total_points": 5`)

	_, err = runTschartCommand(t, env, "dashboard", "delete", "web")
	require.NoError(t, err)
	_, err = runTschartCommand(t, env, "dashboard", "show", "web")
	require.Error(t, err)
}
