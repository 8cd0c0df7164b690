package timeline

import "math"

// ChunkBox is the on-track geometry of one chunk, as percents of the track
// width.
type ChunkBox struct {
	ID    string
	Left  float64
	Width float64
}

// Geometry is everything the view needs to draw the timeline: playhead
// offset and per-chunk boxes, all as percents of the track width.
type Geometry struct {
	Playhead float64
	Chunks   []ChunkBox
}

// Project derives timeline geometry from the current playback state. It is
// a pure function with no state of its own. A zero or unknown duration
// yields empty geometry rather than NaN offsets. Chunks that outlive a
// downward duration revision keep their data but their boxes are clamped
// to the track.
func Project(currentTime, duration float64, chunks []Chunk) Geometry {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return Geometry{}
	}

	g := Geometry{
		Playhead: clampPercent(currentTime / duration * 100),
		Chunks:   make([]ChunkBox, 0, len(chunks)),
	}

	for _, c := range chunks {
		left := clampPercent(c.Start / duration * 100)
		right := clampPercent(c.End / duration * 100)
		g.Chunks = append(g.Chunks, ChunkBox{ID: c.ID, Left: left, Width: right - left})
	}
	return g
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
