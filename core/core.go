// Package core has the chart evaluation logic: series functions, builders and
// the chart configuration driving them.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/outwriter"
	"github.com/huangsam/tschart/schema"
)

// ExecuteChart evaluates the chart definition stored at path and prints its state.
// It serves as the main entry point for the 'chart' command. In live mode the
// state is printed again every update interval until ctx is done.
func ExecuteChart(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, path string) error {
	start := time.Now()
	ow := outwriter.NewOutWriter()
	chart, err := LoadChartDefinition(path)
	if err != nil {
		return err
	}
	if cfg.Live {
		return WatchChart(ctx, cfg, mgr, chart, func(state *schema.ChartState, duration time.Duration) error {
			return ow.WriteChartState(state, cfg, duration)
		})
	}
	state, err := EvaluateChart(ctx, cfg, mgr, chart)
	if err != nil {
		return err
	}
	return ow.WriteChartState(state, cfg, time.Since(start))
}

// LoadChartDefinition reads a JSON chart definition from disk.
func LoadChartDefinition(path string) (schema.ChartSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.ChartSpec{}, fmt.Errorf("read chart definition: %w", err)
	}
	return ParseChartDefinition(data)
}

// ParseChartDefinition decodes a JSON chart definition.
func ParseChartDefinition(data []byte) (schema.ChartSpec, error) {
	var chart schema.ChartSpec
	if err := json.Unmarshal(data, &chart); err != nil {
		return schema.ChartSpec{}, fmt.Errorf("decode chart definition: %w", err)
	}
	return chart, nil
}

// EvaluateChart evaluates a chart once for the view described by cfg.
// The series store, when enabled, is available as the "store" data source.
func EvaluateChart(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, chart schema.ChartSpec) (*schema.ChartState, error) {
	c, err := newChartConfiguration(ctx, cfg, mgr, chart)
	if err != nil {
		return nil, err
	}
	defer c.Destroy()

	state, err := c.GetState(ctx)
	if err != nil {
		return nil, fmt.Errorf("evaluate chart: %w", err)
	}
	return state, nil
}

// RenderFunc receives every chart state evaluated by WatchChart.
type RenderFunc func(state *schema.ChartState, duration time.Duration) error

// WatchChart renders the chart once and then on every update interval of the
// selected resolution. It returns nil once ctx is cancelled.
func WatchChart(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, chart schema.ChartSpec, render RenderFunc) error {
	c, err := newChartConfiguration(ctx, cfg, mgr, chart)
	if err != nil {
		return err
	}
	defer c.Destroy()

	update := func() error {
		start := time.Now()
		state, err := c.GetState(ctx)
		if err != nil {
			return fmt.Errorf("evaluate chart: %w", err)
		}
		return render(state, time.Since(start))
	}
	if err := update(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	c.RegisterStateChangeHandler(func(*Configuration) {
		if err := update(); err != nil {
			cancel(err)
		}
	})

	err = c.Run(ctx)
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newChartConfiguration builds a configuration for cfg's view. The caller destroys it.
func newChartConfiguration(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, chart schema.ChartSpec) (*Configuration, error) {
	c := NewConfiguration(ConfigurationOptions{
		ChartDefinition:     chart,
		TimeResolutionSpecs: cfg.Resolutions,
		ExternalDataSources: DataSources(mgr),
		NowTimestampOffset:  cfg.NowOffset,
	})

	params := schema.ViewParameters{}
	if cfg.Live {
		params.Live = &cfg.Live
	}
	if cfg.TimeResolution > 0 {
		params.TimeResolution = &cfg.TimeResolution
	}
	c.SetViewParameters(params)

	if cfg.LastPointTimestamp != nil {
		// The pinned point is clamped against the newest point, so find it first.
		if err := c.Preflight(ctx); err != nil {
			c.Destroy()
			return nil, fmt.Errorf("evaluate chart: %w", err)
		}
		c.SetViewParameters(schema.ViewParameters{LastPointTimestamp: cfg.LastPointTimestamp})
	}
	return c, nil
}

// DataSources returns the external data sources backed by the stores of mgr.
func DataSources(mgr contract.StoreManager) map[string]contract.ExternalDataSource {
	sources := map[string]contract.ExternalDataSource{}
	if mgr == nil {
		return sources
	}
	if store := mgr.GetSeriesStore(); store != nil {
		sources[schema.StoreSourceName] = store
	}
	return sources
}
