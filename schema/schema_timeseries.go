package schema

// FunctionResult is the tagged value produced by a series function.
// Points results carry a []Point in Data, basic results carry a scalar,
// an array of scalars or any other JSON value.
type FunctionResult struct {
	Type ResultType `json:"type"`
	Data any        `json:"data"`
}

// NewBasicResult wraps a basic value.
func NewBasicResult(data any) FunctionResult {
	return FunctionResult{Type: BasicResult, Data: data}
}

// NewPointsResult wraps a point sequence.
func NewPointsResult(points []Point) FunctionResult {
	if points == nil {
		points = []Point{}
	}
	return FunctionResult{Type: PointsResult, Data: points}
}

// IsPoints tells whether the result holds a point sequence.
func (r FunctionResult) IsPoints() bool {
	return r.Type == PointsResult
}

// Points returns the point sequence of a points result, nil otherwise.
func (r FunctionResult) Points() []Point {
	if r.Type != PointsResult {
		return nil
	}
	points, _ := r.Data.([]Point)
	return points
}

// RawFunction is the JSON description of a function call.
type RawFunction struct {
	FunctionName      string         `json:"functionName"`
	FunctionArguments map[string]any `json:"functionArguments"`
}

// AsRawFunction recognizes a raw function in a decoded JSON value.
// Any object with a string functionName is a function.
func AsRawFunction(v any) (*RawFunction, bool) {
	switch f := v.(type) {
	case *RawFunction:
		return f, f != nil
	case RawFunction:
		return &f, true
	case map[string]any:
		name, ok := f["functionName"].(string)
		if !ok {
			return nil, false
		}
		args, _ := f["functionArguments"].(map[string]any)
		return &RawFunction{FunctionName: name, FunctionArguments: args}, true
	default:
		return nil, false
	}
}

// Series is an evaluated chart series.
type Series struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	YAxisID string  `json:"yAxisId"`
	Color   *string `json:"color"`
	GroupID *string `json:"groupId"`
	Data    []Point `json:"data"`
}

// SeriesGroup is an evaluated chart series group.
type SeriesGroup struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Stacked   bool          `json:"stacked"`
	ShowSum   bool          `json:"showSum"`
	Subgroups []SeriesGroup `json:"subgroups"`
}

// TimeResolutionSpec describes one time resolution a chart can be viewed in.
type TimeResolutionSpec struct {
	TimeResolution int64 `json:"timeResolution" mapstructure:"time_resolution"`
	PointsCount    int   `json:"pointsCount" mapstructure:"points_count"`
	UpdateInterval int64 `json:"updateInterval" mapstructure:"update_interval"`
}

// FetchParams are passed to external data sources when loading series points.
type FetchParams struct {
	LastPointTimestamp *int64 `json:"lastPointTimestamp"`
	TimeResolution     int64  `json:"timeResolution"`
	PointsCount        int    `json:"pointsCount"`
}

// RawPoint is a point as delivered by an external data source.
type RawPoint struct {
	Timestamp                 int64    `json:"timestamp"`
	Value                     *float64 `json:"value"`
	FirstMeasurementTimestamp *int64   `json:"firstMeasurementTimestamp,omitempty"`
	LastMeasurementTimestamp  *int64   `json:"lastMeasurementTimestamp,omitempty"`
}

// SeriesBatch is a unit of ingestion into the series store.
type SeriesBatch struct {
	CollectionRef  string     `json:"collectionRef"`
	TimeSeriesName string     `json:"timeSeriesName"`
	MetricName     string     `json:"metricName"`
	Resolution     int64      `json:"resolution"`
	Points         []RawPoint `json:"points"`
}

// ViewParameters is a partial update of the chart view.
// Nil fields are left untouched. FollowNewest clears the pinned last point.
type ViewParameters struct {
	Live               *bool  `json:"live,omitempty"`
	TimeResolution     *int64 `json:"timeResolution,omitempty"`
	LastPointTimestamp *int64 `json:"lastPointTimestamp,omitempty"`
	FollowNewest       bool   `json:"followNewest,omitempty"`
}

// ViewParametersState is the current chart view.
type ViewParametersState struct {
	Live               bool   `json:"live"`
	LastPointTimestamp *int64 `json:"lastPointTimestamp"`
	TimeResolution     int64  `json:"timeResolution"`
}

// YAxisState is an evaluated y axis.
type YAxisState struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	MinInterval *float64         `json:"minInterval"`
	UnitName    string           `json:"unitName"`
	UnitOptions *UnitOptionsSpec `json:"unitOptions"`
}

// XAxisState is an evaluated x axis.
type XAxisState struct {
	Timestamps []int64 `json:"timestamps"`
}

// ChartState is a full chart snapshot handed to renderers.
type ChartState struct {
	Title                TitleSpec     `json:"title"`
	YAxes                []YAxisState  `json:"yAxes"`
	XAxis                XAxisState    `json:"xAxis"`
	SeriesGroups         []SeriesGroup `json:"seriesGroups"`
	Series               []Series      `json:"series"`
	TimeResolution       int64         `json:"timeResolution"`
	PointsCount          int           `json:"pointsCount"`
	NewestPointTimestamp *int64        `json:"newestPointTimestamp"`
	HasReachedOldest     bool          `json:"hasReachedOldest"`
	HasReachedNewest     bool          `json:"hasReachedNewest"`
	FirstPointTimestamp  *int64        `json:"firstPointTimestamp"`
	LastPointTimestamp   *int64        `json:"lastPointTimestamp"`
}

// NewChartState assembles a chart state and derives its boundary fields.
func NewChartState(state ChartState) *ChartState {
	state.HasReachedOldest = true
	state.HasReachedNewest = true
	for _, s := range state.Series {
		if len(s.Data) == 0 {
			continue
		}
		if !s.Data[0].Oldest {
			state.HasReachedOldest = false
		}
		if !s.Data[len(s.Data)-1].Newest {
			state.HasReachedNewest = false
		}
	}
	if len(state.Series) > 0 && len(state.Series[0].Data) > 0 {
		data := state.Series[0].Data
		state.FirstPointTimestamp = Int(data[0].Timestamp)
		state.LastPointTimestamp = Int(data[len(data)-1].Timestamp)
	}
	return &state
}

// StoredPoint is a point read back from the series store with its coordinates.
type StoredPoint struct {
	CollectionRef  string `json:"collectionRef"`
	TimeSeriesName string `json:"timeSeriesName"`
	MetricName     string `json:"metricName"`
	Resolution     int64  `json:"resolution"`
	RawPoint
}
