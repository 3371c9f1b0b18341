// Package main provides a performance benchmarking tool for the tschart CLI.
// It generates synthetic series of growing sizes, ingests them into a fresh
// SQLite store and measures chart evaluation times per resolution, running each
// test multiple times, treating the first successful run as cold and averaging
// the rest as warm, generating CSV output for performance analysis.
//
// Prerequisites:
// - tschart binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated fixtures and SQLite files
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/tschart/schema"
)

// BenchmarkResult holds the result of a benchmark scenario (ingest time, cold run and average of warm runs).
type BenchmarkResult struct {
	Scenario   string
	Resolution string
	IngestTime string
	ColdTime   string
	WarmTime   string
}

// BenchmarkScenario describes one synthetic data set.
type BenchmarkScenario struct {
	Name   string
	Series int
	Points int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Runs        int
	Resolutions []string
	Scenarios   []BenchmarkScenario
}

// benchmarkChart loads every generated series through a dynamic builder.
const benchmarkChart = `{
  "title": {"content": "Benchmark"},
  "yAxes": [{"id": "a1"}],
  "seriesBuilders": [{
    "builderType": "dynamic",
    "builderRecipe": {
      "dynamicSeriesConfigsSource": {"sourceType": "external", "sourceSpec": {
        "externalSourceName": "store",
        "externalSourceParameters": {"collectionRef": "bench", "timeSeriesNameGenerator": "series.", "metricNames": ["raw_5s", "raw_60s"]}
      }},
      "seriesTemplate": {
        "idProvider": {"functionName": "getDynamicSeriesConfig", "functionArguments": {"propertyName": "id"}},
        "yAxisId": "a1",
        "dataProvider": {"functionName": "rate", "functionArguments": {"inputDataProvider": {
          "functionName": "loadSeries", "functionArguments": {
            "sourceType": "external",
            "sourceSpecProvider": {"functionName": "getDynamicSeriesConfig", "functionArguments": {"propertyName": "loadSeriesSourceSpec"}}
          }}}}
      }
    }
  }]
}`

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Runs:        4,
		Resolutions: []string{"5s", "1m"},
		Scenarios: []BenchmarkScenario{
			{Name: "small", Series: 5, Points: 1000},
			{Name: "medium", Series: 25, Points: 10000},
			{Name: "large", Series: 100, Points: 50000},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the tschart binary and the work dir exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("tschart"); err != nil {
		return fmt.Errorf("tschart binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work dir %s: %w", config.WorkDir, err)
	}
	return nil
}

// runBenchmarks executes every scenario across the configured resolutions
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d scenarios, %v timeout, %d runs\n",
		len(config.Scenarios), config.Timeout, config.Runs)

	chartPath := filepath.Join(config.WorkDir, "chart.json")
	if err := os.WriteFile(chartPath, []byte(benchmarkChart), 0o644); err != nil {
		fmt.Printf("Failed to write chart: %v\n", err)
		return nil
	}

	for _, scenario := range config.Scenarios {
		fmt.Printf("Benchmarking %s (%d series x %d points)\n", scenario.Name, scenario.Series, scenario.Points)

		env := []string{
			"TSCHART_STORE_BACKEND=sqlite",
			"TSCHART_STORE_DB_CONNECT=" + filepath.Join(config.WorkDir, scenario.Name+"_store.db"),
			"TSCHART_DASHBOARD_BACKEND=none",
		}
		if _, err := runTschart(config, env, "store", "clear"); err != nil {
			fmt.Printf("Warning: failed to clear store: %v\n", err)
		}

		batchesPath := filepath.Join(config.WorkDir, scenario.Name+"_batches.json")
		if err := writeBatches(batchesPath, scenario); err != nil {
			fmt.Printf("Failed to generate batches: %v\n", err)
			continue
		}

		ingestTime := "FAILED"
		if elapsed, err := runTschart(config, env, "store", "ingest", batchesPath); err == nil {
			ingestTime = fmt.Sprintf("%.3fs", elapsed)
		}

		for _, resolution := range config.Resolutions {
			result := runChartSuite(config, env, chartPath, scenario.Name, resolution)
			result.IngestTime = ingestTime
			results = append(results, result)
		}
	}

	return results
}

// runChartSuite evaluates the benchmark chart several times at one resolution
func runChartSuite(config BenchmarkConfig, env []string, chartPath, scenario, resolution string) BenchmarkResult {
	fmt.Printf("  chart at %s (%d runs)\n", resolution, config.Runs)

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		elapsed, err := runTschart(config, env, "chart", chartPath, "--resolution", resolution, "--output", "csv", "--output-file", os.DevNull)
		if err == nil {
			times = append(times, elapsed)
		}
	}

	result := BenchmarkResult{Scenario: scenario, Resolution: resolution, ColdTime: "TIMEOUT", WarmTime: "TIMEOUT"}
	if len(times) > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", times[0])
	}
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", result.ColdTime, result.WarmTime)
	return result
}

// runTschart executes a tschart command and returns the elapsed seconds
func runTschart(config BenchmarkConfig, env []string, args ...string) (float64, error) {
	start := time.Now()

	cmd := exec.Command("tschart", args...)
	cmd.Dir = config.WorkDir
	cmd.Env = append(os.Environ(), env...)

	done := make(chan error, 1)
	var output []byte
	go func() {
		var err error
		output, err = cmd.CombinedOutput()
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return 0, fmt.Errorf("%s: %w: %s", strings.Join(args, " "), err, output)
		}
		return time.Since(start).Seconds(), nil
	case <-time.After(config.Timeout):
		_ = cmd.Process.Kill()
		return 0, fmt.Errorf("%s: timed out", strings.Join(args, " "))
	}
}

// writeBatches generates one 5s and one 60s metric per series, shaped as increasing counters
func writeBatches(path string, scenario BenchmarkScenario) error {
	end := time.Now().Unix()
	end -= end % 60
	batches := make([]schema.SeriesBatch, 0, 2*scenario.Series)
	for s := range scenario.Series {
		name := fmt.Sprintf("series.%03d", s)
		for _, resolution := range []int64{5, 60} {
			b := schema.SeriesBatch{
				CollectionRef:  "bench",
				TimeSeriesName: name,
				MetricName:     fmt.Sprintf("raw_%ds", resolution),
				Resolution:     resolution,
				Points:         make([]schema.RawPoint, 0, scenario.Points),
			}
			counter := 0.0
			for i := range scenario.Points {
				counter += math.Abs(math.Sin(float64(i+s))) * float64(resolution)
				if i%97 == 0 {
					// leave gaps so replacement strategies have work to do
					b.Points = append(b.Points, schema.RawPoint{Timestamp: end - int64(scenario.Points-i)*resolution})
					continue
				}
				value := counter
				b.Points = append(b.Points, schema.RawPoint{Timestamp: end - int64(scenario.Points-i)*resolution, Value: &value})
			}
			batches = append(batches, b)
		}
	}

	data, err := json.Marshal(batches)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/tschart_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"scenario", "resolution", "ingest_time", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Scenario, result.Resolution, result.IngestTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-8s %-4s: Ingest: %s, Cold: %s, Warm: %s\n",
			result.Scenario, result.Resolution, result.IngestTime, result.ColdTime, result.WarmTime)
	}
}
