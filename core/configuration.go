package core

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/huangsam/tschart/core/algo"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"golang.org/x/sync/errgroup"
)

// liveModeTimestampOffset moves "now" back in live mode so sources have time
// to deliver the newest measurements.
const liveModeTimestampOffset int64 = 10

// HandlerID identifies a registered state change handler.
type HandlerID int

// StateChangeHandler is called whenever the chart state may have changed.
type StateChangeHandler func(c *Configuration)

// ConfigurationOptions describe a chart and the environment it is evaluated in.
type ConfigurationOptions struct {
	ChartDefinition     schema.ChartSpec
	TimeResolutionSpecs []schema.TimeResolutionSpec
	ExternalDataSources map[string]contract.ExternalDataSource
	NowTimestampOffset  int64

	// Registry defaults to NewRegistry().
	Registry *Registry
	// Now defaults to time.Now.
	Now func() time.Time
}

// Configuration evaluates a chart definition into chart states and keeps
// track of the view (time resolution, window position, live mode).
type Configuration struct {
	chart       schema.ChartSpec
	resolutions []schema.TimeResolutionSpec
	sources     map[string]contract.ExternalDataSource
	nowOffset   int64
	registry    *Registry
	now         func() time.Time

	mu                   sync.Mutex
	live                 bool
	lastPointTimestamp   *int64
	timeResolution       int64
	pointsCount          int
	updateInterval       int64
	newestPointTimestamp *int64
	newestEdgeTimestamp  *int64
	handlers             map[HandlerID]StateChangeHandler
	nextHandlerID        HandlerID

	intervalChanged chan struct{}
	done            chan struct{}
	destroyOnce     sync.Once
}

// NewConfiguration creates a configuration viewing the smallest time resolution.
func NewConfiguration(opts ConfigurationOptions) *Configuration {
	resolutions := slices.Clone(opts.TimeResolutionSpecs)
	slices.SortStableFunc(resolutions, func(a, b schema.TimeResolutionSpec) int {
		return cmp.Compare(a.TimeResolution, b.TimeResolution)
	})

	c := &Configuration{
		chart:           opts.ChartDefinition,
		resolutions:     resolutions,
		sources:         opts.ExternalDataSources,
		nowOffset:       opts.NowTimestampOffset,
		registry:        opts.Registry,
		now:             opts.Now,
		handlers:        map[HandlerID]StateChangeHandler{},
		intervalChanged: make(chan struct{}, 1),
		done:            make(chan struct{}),
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.sources == nil {
		c.sources = map[string]contract.ExternalDataSource{}
	}
	if len(resolutions) > 0 {
		c.changeTimeResolution(resolutions[0].TimeResolution)
	}
	return c
}

// RegisterStateChangeHandler adds a handler and returns its id.
func (c *Configuration) RegisterStateChangeHandler(handler StateChangeHandler) HandlerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextHandlerID++
	c.handlers[c.nextHandlerID] = handler
	return c.nextHandlerID
}

// DeregisterStateChangeHandler removes a handler. Unknown ids are ignored.
func (c *Configuration) DeregisterStateChangeHandler(id HandlerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, id)
}

// SetViewParameters updates the view and notifies all handlers.
func (c *Configuration) SetViewParameters(params schema.ViewParameters) {
	c.mu.Lock()
	if params.Live != nil {
		c.live = *params.Live
		if c.live {
			c.newestPointTimestamp = nil
		}
	}
	if params.TimeResolution != nil {
		c.changeTimeResolution(*params.TimeResolution)
	}
	if params.LastPointTimestamp != nil || params.FollowNewest {
		given := params.LastPointTimestamp
		if params.FollowNewest {
			given = nil
		}
		c.lastPointTimestamp = c.clampLastPointTimestamp(given)
	}
	c.mu.Unlock()

	c.notifyStateChange()
}

// clampLastPointTimestamp maps a requested window end onto a valid one.
// In live mode a timestamp in the current slot means "follow now". Otherwise
// the window cannot go past the newest known point.
func (c *Configuration) clampLastPointTimestamp(given *int64) *int64 {
	if c.live {
		now := c.nowTimestamp()
		if given == nil || c.timeResolution <= 0 || *given >= now-now%c.timeResolution {
			return nil
		}
		return schema.Int(*given)
	}
	if c.newestPointTimestamp != nil {
		if given == nil {
			return schema.Int(*c.newestPointTimestamp)
		}
		return schema.Int(min(*c.newestPointTimestamp, *given))
	}
	if given == nil {
		return nil
	}
	return schema.Int(*given)
}

// GetViewParameters returns the current view.
func (c *Configuration) GetViewParameters() schema.ViewParametersState {
	c.mu.Lock()
	defer c.mu.Unlock()
	var last *int64
	if c.lastPointTimestamp != nil {
		last = schema.Int(*c.lastPointTimestamp)
	}
	return schema.ViewParametersState{
		Live:               c.live,
		LastPointTimestamp: last,
		TimeResolution:     c.timeResolution,
	}
}

// GetState evaluates the chart for the current view.
func (c *Configuration) GetState(ctx context.Context) (*schema.ChartState, error) {
	if err := c.Preflight(ctx); err != nil {
		return nil, err
	}

	sc := c.seriesContext(contextOverrides{})
	var (
		series []schema.Series
		groups []schema.SeriesGroup
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		series, err = c.getAllSeriesState(gctx, sc)
		return err
	})
	g.Go(func() (err error) {
		groups, err = c.registry.BuildAllSeriesGroups(gctx, sc, c.chart.SeriesGroupBuilders)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if series == nil {
		series = []schema.Series{}
	}
	if groups == nil {
		groups = []schema.SeriesGroup{}
	}

	c.mu.Lock()
	newest := c.newestPointTimestamp
	timeResolution, pointsCount := c.timeResolution, c.pointsCount
	c.mu.Unlock()

	if newest != nil {
		for _, s := range series {
			for i := len(s.Data) - 1; i >= 0 && s.Data[i].Timestamp >= *newest; i-- {
				s.Data[i].Newest = true
			}
		}
	}

	return schema.NewChartState(schema.ChartState{
		Title:                c.titleState(),
		YAxes:                c.yAxesState(),
		XAxis:                xAxisState(series),
		SeriesGroups:         groups,
		Series:               series,
		TimeResolution:       timeResolution,
		PointsCount:          pointsCount,
		NewestPointTimestamp: newest,
	}), nil
}

// Preflight looks up the newest point timestamp with one point per series in
// the smallest resolution. It does nothing in live mode or once the newest
// point is known.
func (c *Configuration) Preflight(ctx context.Context) error {
	c.mu.Lock()
	needsPreflight := !c.live && c.newestPointTimestamp == nil && len(c.resolutions) > 0
	c.mu.Unlock()
	if !needsPreflight {
		return nil
	}

	smallest := c.resolutions[0].TimeResolution
	preflight, err := c.getAllSeriesState(ctx, c.seriesContext(contextOverrides{
		hasLastPointTimestamp: true,
		timeResolution:        smallest,
		pointsCount:           1,
	}))
	if err != nil {
		return err
	}
	c.acquireNewestPointTimestamp(preflight, smallest)
	return nil
}

func (c *Configuration) getAllSeriesState(ctx context.Context, sc *SeriesContext) ([]schema.Series, error) {
	return c.registry.BuildAllSeries(ctx, sc, c.chart.SeriesBuilders)
}

// acquireNewestPointTimestamp finds the newest point across series and
// resolutions. Without any series data "now" is used.
func (c *Configuration) acquireNewestPointTimestamp(series []schema.Series, usedResolution int64) {
	var found, foundEdge *int64
	for _, s := range series {
		if len(s.Data) == 0 {
			continue
		}
		last := s.Data[len(s.Data)-1]
		if found == nil || last.Timestamp > *found {
			found = schema.Int(last.Timestamp)
		}
		if foundEdge == nil {
			foundEdge = last.LastMeasurementTimestamp
		} else if last.LastMeasurementTimestamp != nil && *last.LastMeasurementTimestamp > *foundEdge {
			foundEdge = last.LastMeasurementTimestamp
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if found == nil {
		now := c.nowTimestamp()
		c.newestPointTimestamp = schema.Int(now)
		c.newestEdgeTimestamp = schema.Int(now)
		return
	}
	edge := *found + usedResolution - 1
	if foundEdge != nil {
		edge = *foundEdge
	}
	newest := *found
	for _, spec := range c.resolutions {
		if spec.TimeResolution <= 0 {
			continue
		}
		newest = max(newest, edge-edge%spec.TimeResolution)
	}
	c.newestPointTimestamp = schema.Int(newest)
	c.newestEdgeTimestamp = schema.Int(edge)
}

type contextOverrides struct {
	hasLastPointTimestamp bool
	lastPointTimestamp    *int64
	timeResolution        int64
	pointsCount           int
}

// seriesContext builds the evaluation context for the current view.
func (c *Configuration) seriesContext(o contextOverrides) *SeriesContext {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowTimestamp()
	sc := &SeriesContext{
		TimeResolution:       c.timeResolution,
		PointsCount:          c.pointsCount,
		NowTimestamp:         now,
		NewestPointTimestamp: c.newestPointTimestamp,
		NewestEdgeTimestamp:  c.newestEdgeTimestamp,
		ExternalDataSources:  c.sources,
		Evaluator:            c.registry,
	}
	if c.live {
		sc.NewestPointTimestamp = schema.Int(now)
		sc.NewestEdgeTimestamp = schema.Int(now)
	}
	switch {
	case o.hasLastPointTimestamp:
		sc.LastPointTimestamp = o.lastPointTimestamp
	case c.lastPointTimestamp != nil:
		sc.LastPointTimestamp = schema.Int(*c.lastPointTimestamp)
	default:
		sc.LastPointTimestamp = sc.NewestPointTimestamp
	}
	if o.timeResolution > 0 {
		sc.TimeResolution = o.timeResolution
	}
	if o.pointsCount > 0 {
		sc.PointsCount = o.pointsCount
	}
	return sc
}

func (c *Configuration) titleState() schema.TitleSpec {
	title := schema.TitleSpec{}
	if c.chart.Title.Content != "" {
		title.Content = c.chart.Title.Content
		title.Tip = c.chart.Title.Tip
	}
	return title
}

func (c *Configuration) yAxesState() []schema.YAxisState {
	axes := make([]schema.YAxisState, len(c.chart.YAxes))
	for i, axis := range c.chart.YAxes {
		var minInterval *float64
		if axis.MinInterval != nil && *axis.MinInterval != 0 {
			minInterval = schema.Float(*axis.MinInterval)
		}
		axes[i] = schema.YAxisState{
			ID:          axis.ID,
			Name:        axis.Name,
			MinInterval: minInterval,
			UnitName:    axis.UnitName,
			UnitOptions: axis.UnitOptions,
		}
	}
	return axes
}

func xAxisState(series []schema.Series) schema.XAxisState {
	timestamps := []int64{}
	if len(series) > 0 {
		for _, p := range series[0].Data {
			timestamps = append(timestamps, p.Timestamp)
		}
	}
	return schema.XAxisState{Timestamps: timestamps}
}

// FormatTimestamp renders an x axis timestamp with a precision matching the
// current time resolution.
func (c *Configuration) FormatTimestamp(timestamp int64) string {
	c.mu.Lock()
	res := c.timeResolution
	c.mu.Unlock()
	return contract.FormatTimestamp(timestamp, res)
}

// Run notifies handlers every update interval while the view is live.
// It returns when ctx is done or the configuration is destroyed.
func (c *Configuration) Run(ctx context.Context) error {
	var ticker *time.Ticker
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()
	reset := func() {
		c.mu.Lock()
		interval := time.Duration(c.updateInterval) * time.Second
		c.mu.Unlock()
		if ticker != nil {
			ticker.Stop()
			ticker = nil
		}
		if interval > 0 {
			ticker = time.NewTicker(interval)
		}
	}
	reset()

	for {
		var tick <-chan time.Time
		if ticker != nil {
			tick = ticker.C
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case <-c.intervalChanged:
			reset()
		case <-tick:
			c.mu.Lock()
			live := c.live
			c.mu.Unlock()
			if live {
				c.notifyStateChange()
			}
		}
	}
}

// Destroy drops all handlers and stops Run.
func (c *Configuration) Destroy() {
	c.destroyOnce.Do(func() {
		c.mu.Lock()
		clear(c.handlers)
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *Configuration) notifyStateChange() {
	c.mu.Lock()
	ids := slices.Sorted(maps.Keys(c.handlers))
	handlers := make([]StateChangeHandler, len(ids))
	for i, id := range ids {
		handlers[i] = c.handlers[id]
	}
	c.mu.Unlock()

	for _, handler := range handlers {
		handler(c)
	}
}

// changeTimeResolution switches to a configured resolution. Unknown
// resolutions are ignored. Callers hold c.mu or own c exclusively.
func (c *Configuration) changeTimeResolution(timeResolution int64) {
	if c.timeResolution == timeResolution {
		return
	}
	idx := slices.IndexFunc(c.resolutions, func(spec schema.TimeResolutionSpec) bool {
		return spec.TimeResolution == timeResolution
	})
	if idx < 0 {
		return
	}
	spec := c.resolutions[idx]
	c.timeResolution = spec.TimeResolution
	c.pointsCount = spec.PointsCount
	c.updateInterval = spec.UpdateInterval
	select {
	case c.intervalChanged <- struct{}{}:
	default:
	}
}

// nowTimestamp returns the current unix time seen by the chart. Callers hold c.mu.
func (c *Configuration) nowTimestamp() int64 {
	offset := c.nowOffset
	if c.live {
		offset -= liveModeTimestampOffset
	}
	return c.now().Unix() + offset
}

func reconcileSeries(series []schema.Series) {
	seqs := make([][]schema.Point, len(series))
	for i := range series {
		seqs[i] = series[i].Data
	}
	seqs = algo.ReconcilePointsTiming(seqs)
	for i := range series {
		series[i].Data = seqs[i]
	}
}
