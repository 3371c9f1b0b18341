package algo

import "github.com/huangsam/tschart/schema"

// MergePointsArrays builds a single point sequence carrying the given values on
// the timeline of seqs[0]. Flags of points sharing an index are OR-ed and their
// measurement bounds widened. Sequences are expected to be reconciled first.
func MergePointsArrays(seqs [][]schema.Point, values []*float64) []schema.Point {
	if len(seqs) == 0 {
		return []schema.Point{}
	}

	merged := make([]schema.Point, len(seqs[0]))
	for i, base := range seqs[0] {
		var value *float64
		if i < len(values) {
			value = values[i]
		}
		p := schema.NewPoint(base.Timestamp, value, schema.PointParams{PointDuration: base.PointDuration})
		for _, seq := range seqs {
			if i >= len(seq) {
				continue
			}
			other := seq[i]
			p.Fake = p.Fake || other.Fake
			p.Oldest = p.Oldest || other.Oldest
			p.Newest = p.Newest || other.Newest
			p.FirstMeasurementTimestamp = minTimestamp(p.FirstMeasurementTimestamp, other.FirstMeasurementTimestamp)
			p.LastMeasurementTimestamp = maxTimestamp(p.LastMeasurementTimestamp, other.LastMeasurementTimestamp)
		}
		merged[i] = p
	}
	return merged
}

func minTimestamp(a, b *int64) *int64 {
	switch {
	case b == nil:
		return a
	case a == nil || *b < *a:
		return schema.Int(*b)
	default:
		return a
	}
}

func maxTimestamp(a, b *int64) *int64 {
	switch {
	case b == nil:
		return a
	case a == nil || *b > *a:
		return schema.Int(*b)
	default:
		return a
	}
}
