package algo

import "github.com/huangsam/tschart/schema"

// ReconcilePointsTiming aligns all point sequences to the time grid of the one
// reaching furthest into the future. Missing grid slots are filled with fake
// points. Each aligned sequence is written back into seqs and seqs is returned.
// When all sequences are empty nothing changes.
func ReconcilePointsTiming(seqs [][]schema.Point) [][]schema.Point {
	ref := -1
	for i, seq := range seqs {
		if len(seq) == 0 {
			continue
		}
		if ref < 0 || seq[len(seq)-1].Timestamp > seqs[ref][len(seqs[ref])-1].Timestamp {
			ref = i
		}
	}
	if ref < 0 {
		return seqs
	}

	grid := timestampsGrid(seqs[ref])
	refDuration := seqs[ref][len(seqs[ref])-1].PointDuration
	for i, seq := range seqs {
		if i == ref {
			continue
		}
		seqs[i] = alignToGrid(seq, grid, refDuration)
	}
	return seqs
}

// timestampsGrid returns the ascending timestamps the reference sequence spans.
func timestampsGrid(reference []schema.Point) []int64 {
	last := reference[len(reference)-1]
	step := last.PointDuration
	if len(reference) > 1 {
		step = last.Timestamp - reference[len(reference)-2].Timestamp
	}
	if step <= 0 {
		step = schema.DefaultPointDuration
	}

	grid := make([]int64, len(reference))
	for i := range grid {
		grid[i] = last.Timestamp - int64(len(grid)-1-i)*step
	}
	return grid
}

func alignToGrid(seq []schema.Point, grid []int64, refDuration int64) []schema.Point {
	aligned := make([]schema.Point, 0, len(grid))
	if len(seq) == 0 {
		for _, ts := range grid {
			aligned = append(aligned, schema.NewPoint(ts, nil, schema.PointParams{
				PointDuration: refDuration,
				Oldest:        true,
				Newest:        true,
				Fake:          true,
			}))
		}
		return aligned
	}

	byTimestamp := make(map[int64]schema.Point, len(seq))
	for _, p := range seq {
		byTimestamp[p.Timestamp] = p
	}
	first, last := seq[0], seq[len(seq)-1]

	for _, ts := range grid {
		if p, ok := byTimestamp[ts]; ok {
			aligned = append(aligned, p)
			continue
		}
		params := schema.PointParams{Fake: true}
		switch {
		case ts > last.Timestamp:
			params.PointDuration = last.PointDuration
			params.Newest = last.Newest
		case ts < first.Timestamp:
			params.PointDuration = first.PointDuration
			params.Oldest = first.Oldest
		default:
			params.PointDuration = nearestDuration(seq, ts)
		}
		aligned = append(aligned, schema.NewPoint(ts, nil, params))
	}
	return aligned
}

// nearestDuration returns the point duration of the last point before ts.
func nearestDuration(seq []schema.Point, ts int64) int64 {
	duration := seq[0].PointDuration
	for _, p := range seq {
		if p.Timestamp > ts {
			break
		}
		duration = p.PointDuration
	}
	return duration
}
