package timeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/keagan/clipbench/internal/duration"
	"github.com/keagan/clipbench/internal/media"
	"github.com/keagan/clipbench/internal/thumbs"
)

// ErrNoDuration rejects operations that need a working duration before the
// resolver has one. Not fatal; the operation becomes available once any
// duration signal lands.
var ErrNoDuration = errors.New("duration not yet known")

// SessionOptions configures a Session.
type SessionOptions struct {
	ThumbnailCount int // thumbnails per strip, default 15
	MinChunkLength float64
	MaxChunkLength float64
	Sampler        thumbs.Options
}

// Session owns the editing state for one media source: the working
// duration, the thumbnail strip and the set of marked chunks. All shared
// state is updated from the source's signal handlers; views consume it
// through the pure Project function.
type Session struct {
	logger   zerolog.Logger
	src      media.Source
	resolver *duration.Resolver
	sampler  *thumbs.Sampler
	model    *Model

	thumbCount int

	mu          sync.Mutex
	thumbnails  []thumbs.Thumbnail
	onRender    func(Geometry)
	unsubscribe []func()
}

// NewSession wires a session to src. Call Close when done to release the
// signal registrations.
func NewSession(logger zerolog.Logger, src media.Source, opts SessionOptions) *Session {
	count := opts.ThumbnailCount
	if count <= 0 {
		count = 15
	}

	s := &Session{
		logger:     logger.With().Str("component", "session").Logger(),
		src:        src,
		resolver:   duration.NewResolver(logger),
		sampler:    thumbs.NewSampler(logger, opts.Sampler),
		model:      NewModel(opts.MinChunkLength, opts.MaxChunkLength),
		thumbCount: count,
	}

	s.unsubscribe = append(s.unsubscribe,
		src.Subscribe(media.SignalLoadedMetadata, s.handleDurationSignal),
		src.Subscribe(media.SignalDurationChange, s.handleDurationSignal),
		src.Subscribe(media.SignalTimeUpdate, s.handleTimeUpdate),
	)
	return s
}

// handleDurationSignal feeds metadata-loaded and duration-changed values to
// the resolver. Any change discards the current thumbnail strip and
// regenerates it against the new duration.
func (s *Session) handleDurationSignal(e media.Event) {
	if s.resolver.Observe(e.Duration) {
		s.refreshThumbnails()
	}
	s.render()
}

// handleTimeUpdate runs the fallback path: while the source itself reports
// no finite duration, the end of the seekable range stands in for it. Only
// the first adoption triggers thumbnail generation; later refinements just
// move the working value, since the buffered span drifts continuously
// during recording and regenerating on every tick would thrash the source.
func (s *Session) handleTimeUpdate(e media.Event) {
	if math.IsNaN(e.Duration) || math.IsInf(e.Duration, 0) || e.Duration <= 0 {
		_, had := s.resolver.Duration()
		if s.resolver.ObserveSeekable(media.SeekableEnd(s.src)) && !had {
			s.refreshThumbnails()
		}
	}
	s.render()
}

// refreshThumbnails regenerates the strip against the current working
// duration. Passes are generation-guarded inside the sampler: a newer pass
// supersedes an in-flight one, and only the newest returns results, so
// stale strips can never overwrite fresh ones.
func (s *Session) refreshThumbnails() {
	dur, ok := s.resolver.Duration()
	if !ok {
		return
	}

	strip, err := s.sampler.Generate(context.Background(), s.src, dur, s.thumbCount)
	if err != nil {
		if errors.Is(err, thumbs.ErrSuperseded) {
			s.logger.Debug().Msg("thumbnail pass superseded")
		} else {
			s.logger.Warn().Err(err).Msg("thumbnail generation failed")
		}
		return
	}

	s.mu.Lock()
	s.thumbnails = strip
	s.mu.Unlock()
	s.render()
}

// AddChunkAtPlayhead marks a chunk at the current playback position, capped
// by the maximum length policy and the working duration.
func (s *Session) AddChunkAtPlayhead() (Chunk, error) {
	dur, ok := s.resolver.Duration()
	if !ok {
		return Chunk{}, fmt.Errorf("cannot mark chunk: %w", ErrNoDuration)
	}
	chunk, err := s.model.Add(s.src.CurrentTime(), dur)
	if err != nil {
		return Chunk{}, err
	}
	s.logger.Info().
		Str("id", chunk.ID).
		Float64("start", chunk.Start).
		Float64("end", chunk.End).
		Msg("chunk marked")
	s.render()
	return chunk, nil
}

// RemoveChunk deletes a marked chunk by ID.
func (s *Session) RemoveChunk(id string) bool {
	removed := s.model.Remove(id)
	if removed {
		s.logger.Info().Str("id", id).Msg("chunk removed")
		s.render()
	}
	return removed
}

// Chunks returns the marked chunks in insertion order.
func (s *Session) Chunks() []Chunk { return s.model.Chunks() }

// Thumbnails returns the current thumbnail strip.
func (s *Session) Thumbnails() []thumbs.Thumbnail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]thumbs.Thumbnail(nil), s.thumbnails...)
}

// Duration returns the working duration and whether one is held.
func (s *Session) Duration() (float64, bool) { return s.resolver.Duration() }

// Source returns the media source this session edits.
func (s *Session) Source() media.Source { return s.src }

// Geometry projects the current playback state into render geometry.
func (s *Session) Geometry() Geometry {
	dur, _ := s.resolver.Duration()
	return Project(s.src.CurrentTime(), dur, s.model.Chunks())
}

// Export hands the finalized chunk list and the source off to the
// downstream cutting stage.
func (s *Session) Export() ([]Chunk, media.Source) {
	return s.model.Chunks(), s.src
}

// SetRenderFunc registers the callback invoked with fresh geometry after
// every state change.
func (s *Session) SetRenderFunc(fn func(Geometry)) {
	s.mu.Lock()
	s.onRender = fn
	s.mu.Unlock()
	s.render()
}

func (s *Session) render() {
	s.mu.Lock()
	fn := s.onRender
	s.mu.Unlock()
	if fn != nil {
		fn(s.Geometry())
	}
}

// Close releases the signal registrations and pins the working duration;
// nothing can refine it once editing stops.
func (s *Session) Close() {
	for _, cancel := range s.unsubscribe {
		cancel()
	}
	s.unsubscribe = nil
	s.resolver.Finalize()
}
