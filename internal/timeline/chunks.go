// Package timeline maps pixel-space interaction on the timeline widget to
// time-space and maintains the set of user-marked chunks under ordering
// and non-overlap constraints.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrChunkOverlap rejects a chunk intersecting an existing one.
	ErrChunkOverlap = errors.New("chunk overlaps an existing chunk")
	// ErrChunkTooShort rejects a chunk below the minimum length.
	ErrChunkTooShort = errors.New("chunk is shorter than the minimum length")
)

// Default chunk length policy, in seconds.
const (
	DefaultMinChunkLength = 2
	DefaultMaxChunkLength = 10
)

// Chunk is a user-marked time interval of the source video, in seconds.
// Intervals are half-open: [Start, End).
type Chunk struct {
	ID    string
	Start float64
	End   float64
}

// Length returns the chunk length in seconds.
func (c Chunk) Length() float64 { return c.End - c.Start }

// Model holds the chunk set. Chunks are unordered as a set but rendered in
// insertion order. Mutation happens only through explicit user actions
// (single writer); readers tolerate concurrent appends.
type Model struct {
	minLen float64
	maxLen float64

	mu     sync.RWMutex
	chunks []Chunk
}

// NewModel creates a chunk model with the given length policy. Non-positive
// bounds fall back to the defaults (2s minimum, 10s maximum).
func NewModel(minLen, maxLen float64) *Model {
	if minLen <= 0 {
		minLen = DefaultMinChunkLength
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxChunkLength
	}
	return &Model{minLen: minLen, maxLen: maxLen}
}

// Add marks a chunk starting at currentTime, extending by the maximum chunk
// length or up to duration, whichever ends first. The chunk is rejected with
// ErrChunkOverlap or ErrChunkTooShort without touching the set. Length
// constraints are enforced at creation only; existing chunks are never
// resized when the duration is later revised.
func (m *Model) Add(currentTime, duration float64) (Chunk, error) {
	start := currentTime
	end := math.Min(start+m.maxLen, duration)

	if end-start < m.minLen {
		return Chunk{}, fmt.Errorf("%w: %.2fs < %.2fs", ErrChunkTooShort, end-start, m.minLen)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.chunks {
		if start < c.End && c.Start < end {
			return Chunk{}, fmt.Errorf("%w: [%.2f, %.2f) intersects [%.2f, %.2f)",
				ErrChunkOverlap, start, end, c.Start, c.End)
		}
	}

	chunk := Chunk{ID: uuid.NewString(), Start: start, End: end}
	m.chunks = append(m.chunks, chunk)
	return chunk, nil
}

// Remove deletes the chunk with the given ID, reporting whether it existed.
func (m *Model) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.chunks {
		if c.ID == id {
			m.chunks = append(m.chunks[:i:i], m.chunks[i+1:]...)
			return true
		}
	}
	return false
}

// Chunks returns the chunk set in insertion order.
func (m *Model) Chunks() []Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Chunk(nil), m.chunks...)
}

// Len returns the number of marked chunks.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// PixelToTime maps a click position on the timeline track to a timestamp,
// clamped to [0, duration]. A zero duration or track width yields 0; there
// is no timeline to click yet.
func PixelToTime(clickX, widthPx, duration float64) float64 {
	if duration <= 0 || widthPx <= 0 {
		return 0
	}
	t := clickX / widthPx * duration
	if t < 0 {
		return 0
	}
	if t > duration {
		return duration
	}
	return t
}
