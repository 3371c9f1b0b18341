// Package schema has models shared by all parts of tschart.
package schema

// PointParams holds the optional attributes of a point.
type PointParams struct {
	PointDuration             int64
	FirstMeasurementTimestamp *int64
	LastMeasurementTimestamp  *int64
	Oldest                    bool
	Newest                    bool
	Fake                      bool
}

// Point is a single timestamp/value sample of a series.
// A nil Value means there is no data for this slot, which is distinct from zero.
type Point struct {
	Timestamp                 int64    `json:"timestamp"`
	Value                     *float64 `json:"value"`
	PointDuration             int64    `json:"pointDuration"`
	FirstMeasurementTimestamp *int64   `json:"firstMeasurementTimestamp"`
	LastMeasurementTimestamp  *int64   `json:"lastMeasurementTimestamp"`
	Oldest                    bool     `json:"oldest"`
	Newest                    bool     `json:"newest"`
	Fake                      bool     `json:"fake"`
}

// NewPoint creates a point, filling the default point duration.
func NewPoint(timestamp int64, value *float64, params PointParams) Point {
	duration := params.PointDuration
	if duration <= 0 {
		duration = DefaultPointDuration
	}
	return Point{
		Timestamp:                 timestamp,
		Value:                     cloneFloat(value),
		PointDuration:             duration,
		FirstMeasurementTimestamp: cloneInt(params.FirstMeasurementTimestamp),
		LastMeasurementTimestamp:  cloneInt(params.LastMeasurementTimestamp),
		Oldest:                    params.Oldest,
		Newest:                    params.Newest,
		Fake:                      params.Fake,
	}
}

// MeasurementDuration returns how many seconds of real measurements the point covers.
// Only boundary points (oldest/newest) can cover less than the full point duration.
func (p Point) MeasurementDuration() int64 {
	duration := p.PointDuration
	if duration <= 0 {
		duration = DefaultPointDuration
	}

	first := p.Timestamp
	if p.FirstMeasurementTimestamp != nil {
		first = *p.FirstMeasurementTimestamp
	}
	last := p.Timestamp + duration - 1
	if p.LastMeasurementTimestamp != nil {
		last = *p.LastMeasurementTimestamp
	}

	var result int64
	switch {
	case !p.Oldest && !p.Newest:
		result = duration
	case p.Fake:
		result = 1
	case p.Oldest && p.Newest:
		result = last - first + 1
	case p.Oldest:
		result = p.Timestamp + duration - first
	default:
		result = last - p.Timestamp + 1
	}
	return max(result, 1)
}

// Clone returns a deep copy of the point.
func (p Point) Clone() Point {
	clone := p
	clone.Value = cloneFloat(p.Value)
	clone.FirstMeasurementTimestamp = cloneInt(p.FirstMeasurementTimestamp)
	clone.LastMeasurementTimestamp = cloneInt(p.LastMeasurementTimestamp)
	return clone
}

// WithValue returns a copy of the point holding the given value.
func (p Point) WithValue(value *float64) Point {
	clone := p.Clone()
	clone.Value = cloneFloat(value)
	return clone
}

// ClonePoints deep copies a point sequence.
func ClonePoints(points []Point) []Point {
	if points == nil {
		return nil
	}
	result := make([]Point, len(points))
	for i, p := range points {
		result[i] = p.Clone()
	}
	return result
}

// PointValues returns the values of a point sequence.
func PointValues(points []Point) []*float64 {
	values := make([]*float64, len(points))
	for i, p := range points {
		values[i] = cloneFloat(p.Value)
	}
	return values
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int64) *int64 {
	return &v
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
