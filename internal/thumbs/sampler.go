// Package thumbs captures the strip of preview frames shown under the
// timeline: evenly spaced snapshots across the working duration, each
// downscaled and JPEG-encoded.
package thumbs

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"github.com/keagan/clipbench/internal/media"
)

// ErrSuperseded reports that a newer generation pass replaced this one
// before it finished.
var ErrSuperseded = errors.New("thumbnail generation superseded")

// Thumbnail is one preview frame, JPEG-encoded, tagged with the timestamp
// it was sampled at.
type Thumbnail struct {
	Index     int
	Timestamp float64
	JPEG      []byte
}

// DataURI returns the thumbnail as an inline-displayable data URI.
func (t Thumbnail) DataURI() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(t.JPEG)
}

// Options configures a Sampler.
type Options struct {
	Width       int           // snapshot width, default 160
	Height      int           // snapshot height, default 90
	Quality     int           // JPEG quality 1-100, default 70
	SettleDelay time.Duration // wait after each seek before capture
	SeekTimeout time.Duration // per-seek budget, default media.DefaultSeekTimeout
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 160
	}
	if o.Height <= 0 {
		o.Height = 90
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = 70
	}
	if o.SeekTimeout <= 0 {
		o.SeekTimeout = media.DefaultSeekTimeout
	}
	return o
}

// Sampler walks a source sequentially and captures downscaled snapshots.
// A source serves only one position at a time, so samples are taken
// strictly in increasing timestamp order, never pipelined. Concurrent
// Generate calls supersede each other: the newest pass wins and earlier
// in-flight passes abort with ErrSuperseded.
type Sampler struct {
	logger zerolog.Logger
	opts   Options

	gen atomic.Uint64
	mu  sync.Mutex // at most one pass drives the source position
}

// NewSampler creates a sampler with the given snapshot options.
func NewSampler(logger zerolog.Logger, opts Options) *Sampler {
	return &Sampler{
		logger: logger.With().Str("component", "thumbs").Logger(),
		opts:   opts.withDefaults(),
	}
}

// Generate captures count evenly spaced snapshots across duration, sampled
// at t_i = i * duration / count. It returns only after every sample was
// taken or individually failed; failed samples are logged and skipped, so
// the result may be shorter than count. The source position is restored to
// its value at entry unless a newer pass has taken over the source.
//
// Precondition: duration is finite and positive (gated by the duration
// resolver). count == 0 yields an empty strip without error.
func (s *Sampler) Generate(ctx context.Context, src media.Source, duration float64, count int) ([]Thumbnail, error) {
	if count < 0 {
		return nil, fmt.Errorf("thumbnail count cannot be negative: %d", count)
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return nil, fmt.Errorf("duration not resolved: %v", duration)
	}
	if count == 0 {
		return []Thumbnail{}, nil
	}

	gen := s.gen.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen.Load() != gen {
		return nil, ErrSuperseded
	}

	origin := src.CurrentTime()
	defer func() {
		// A newer pass owns the position now; leave it alone.
		if s.gen.Load() != gen {
			return
		}
		restoreCtx, cancel := context.WithTimeout(context.Background(), s.opts.SeekTimeout)
		defer cancel()
		if err := media.SeekTo(restoreCtx, src, origin, s.opts.SeekTimeout); err != nil {
			s.logger.Warn().Err(err).Float64("position", origin).Msg("failed to restore playback position")
		}
	}()

	s.logger.Info().
		Int("count", count).
		Float64("duration", duration).
		Msg("generating thumbnail strip")

	step := duration / float64(count)
	out := make([]Thumbnail, 0, count)

	for i := 0; i < count; i++ {
		if s.gen.Load() != gen {
			return nil, ErrSuperseded
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ts := float64(i) * step

		if err := media.SeekTo(ctx, src, ts, s.opts.SeekTimeout); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			s.logger.Warn().Err(err).Int("index", i).Float64("timestamp", ts).Msg("sample skipped")
			continue
		}

		if err := s.settle(ctx); err != nil {
			return nil, err
		}

		img, err := src.Frame()
		if err != nil {
			s.logger.Warn().Err(err).Int("index", i).Float64("timestamp", ts).Msg("capture failed, sample skipped")
			continue
		}

		data, err := s.encode(img)
		if err != nil {
			s.logger.Warn().Err(err).Int("index", i).Float64("timestamp", ts).Msg("encode failed, sample skipped")
			continue
		}

		out = append(out, Thumbnail{Index: i, Timestamp: ts, JPEG: data})
	}

	s.logger.Info().Int("captured", len(out)).Int("requested", count).Msg("thumbnail strip complete")
	return out, nil
}

// settle waits out the render-pipeline lag between seek completion and the
// decoded frame actually reflecting the new position.
func (s *Sampler) settle(ctx context.Context) error {
	if s.opts.SettleDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.opts.SettleDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// encode downscales img to the snapshot size and JPEG-encodes it.
func (s *Sampler) encode(img image.Image) ([]byte, error) {
	scaled := resize.Resize(uint(s.opts.Width), uint(s.opts.Height), img, resize.Bilinear)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: s.opts.Quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}
	return buf.Bytes(), nil
}
