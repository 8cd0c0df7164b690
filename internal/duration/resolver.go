// Package duration reconciles the unreliable duration signals a media
// source emits into a single authoritative value. Live-recorded and
// streamed sources may report 0, NaN or +Inf until enough data is
// buffered, so the working value stays provisional and is refined as
// better signals arrive.
package duration

import (
	"math"
	"sync"

	"github.com/rs/zerolog"
)

// State identifies how settled the working duration is.
type State int

const (
	// Unknown means no usable duration signal has arrived yet
	Unknown State = iota
	// Provisional means a finite value is held but may still be revised
	Provisional
	// Resolved means the value is pinned and no further refinement applies
	Resolved
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Provisional:
		return "provisional"
	case Resolved:
		return "resolved"
	default:
		return "invalid"
	}
}

// Resolver is a small state machine over the working duration. It is safe
// for concurrent use; signal handlers on different goroutines may feed it.
//
// Invariant: once the value is finite and positive it never regresses to
// zero or a non-finite value, except through Reset on a source swap.
type Resolver struct {
	logger zerolog.Logger

	mu    sync.Mutex
	state State
	value float64
}

// NewResolver returns a resolver in the Unknown state.
func NewResolver(logger zerolog.Logger) *Resolver {
	return &Resolver{
		logger: logger.With().Str("component", "duration").Logger(),
		value:  math.NaN(),
	}
}

// Observe feeds a duration reported by a metadata-loaded or
// duration-changed signal. Non-finite and non-positive values are ignored.
// Returns true when the working duration changed, which is the caller's
// cue to regenerate thumbnails.
func (r *Resolver) Observe(d float64) bool {
	return r.adopt(d, "duration signal")
}

// ObserveSeekable feeds the end of the seekable range, the fallback used
// on playback-position updates while the source itself reports no finite
// duration. The result is a continuous approximation that improves as
// more of the stream is buffered.
func (r *Resolver) ObserveSeekable(end float64) bool {
	return r.adopt(end, "seekable range")
}

func (r *Resolver) adopt(d float64, origin string) bool {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Resolved {
		return false
	}
	if r.state == Provisional && d == r.value {
		return false
	}

	r.value = d
	r.state = Provisional
	r.logger.Debug().Float64("duration", d).Str("origin", origin).Msg("working duration updated")
	return true
}

// Duration returns the working duration and whether one is held.
func (r *Resolver) Duration() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.state != Unknown
}

// State returns the current resolver state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Finalize pins a provisional value. Called when playback or recording
// stops and no further refinement can arrive.
func (r *Resolver) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Provisional {
		r.state = Resolved
		r.logger.Debug().Float64("duration", r.value).Msg("duration resolved")
	}
}

// Reset returns the resolver to Unknown for a new media source.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = Unknown
	r.value = math.NaN()
}
