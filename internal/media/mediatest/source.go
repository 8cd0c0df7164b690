// Package mediatest provides a scripted in-memory media.Source for driving
// the editor core in tests without ffmpeg or real video files.
package mediatest

import (
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/keagan/clipbench/internal/media"
)

// Source is a controllable media.Source. Duration signals, seekable ranges
// and seek outcomes are all scripted by the test.
type Source struct {
	hub media.Hub

	mu          sync.Mutex
	currentTime float64
	duration    float64
	seekableEnd float64
	ready       media.ReadyState
	seekLatency time.Duration
	failAt      map[float64]bool
	frameErr    error
	seeks       []float64
}

// New returns a source that reports no duration and exposes no frames yet.
func New() *Source {
	return &Source{
		duration: math.NaN(),
		failAt:   make(map[float64]bool),
	}
}

// SetDuration scripts a metadata/duration-changed signal reporting d. The
// first call also fires SignalLoadedMetadata. Pass NaN, 0 or +Inf to model
// a source that has not settled on a duration.
func (s *Source) SetDuration(d float64) {
	s.mu.Lock()
	first := s.ready == media.Unstarted
	s.duration = d
	if s.ready == media.Unstarted {
		s.ready = media.MetadataLoaded
	}
	cur := s.currentTime
	s.mu.Unlock()

	if first {
		s.hub.Emit(media.Event{Signal: media.SignalLoadedMetadata, Time: cur, Duration: d})
	}
	s.hub.Emit(media.Event{Signal: media.SignalDurationChange, Time: cur, Duration: d})
}

// SetSeekableEnd scripts the end of the buffered span.
func (s *Source) SetSeekableEnd(end float64) {
	s.mu.Lock()
	s.seekableEnd = end
	s.mu.Unlock()
}

// EmitTimeUpdate fires a playback-position update signal.
func (s *Source) EmitTimeUpdate() {
	s.mu.Lock()
	cur, dur := s.currentTime, s.duration
	s.mu.Unlock()
	s.hub.Emit(media.Event{Signal: media.SignalTimeUpdate, Time: cur, Duration: dur})
}

// SetSeekLatency delays seek completion by d.
func (s *Source) SetSeekLatency(d time.Duration) {
	s.mu.Lock()
	s.seekLatency = d
	s.mu.Unlock()
}

// FailSeeksAt makes seeks to the given timestamps never complete, so the
// waiter runs into its timeout.
func (s *Source) FailSeeksAt(timestamps ...float64) {
	s.mu.Lock()
	for _, t := range timestamps {
		s.failAt[t] = true
	}
	s.mu.Unlock()
}

// SetFrameError makes Frame return err until cleared with nil.
func (s *Source) SetFrameError(err error) {
	s.mu.Lock()
	s.frameErr = err
	s.mu.Unlock()
}

// SeekTargets returns every seek target requested so far, in order.
func (s *Source) SeekTargets() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.seeks...)
}

// Subscribe implements media.Source.
func (s *Source) Subscribe(sig media.Signal, fn func(media.Event)) (cancel func()) {
	return s.hub.Subscribe(sig, fn)
}

// CurrentTime implements media.Source.
func (s *Source) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTime
}

// Duration implements media.Source.
func (s *Source) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// ReadyState implements media.Source.
func (s *Source) ReadyState() media.ReadyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Seekable implements media.Source.
func (s *Source) Seekable() []media.TimeRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seekableEnd <= 0 {
		return nil
	}
	return []media.TimeRange{{Start: 0, End: s.seekableEnd}}
}

// SetCurrentTime implements media.Source. Seeks complete synchronously
// unless a latency is scripted; scripted failures swallow the completion
// signal entirely.
func (s *Source) SetCurrentTime(t float64) {
	s.mu.Lock()
	s.seeks = append(s.seeks, t)
	fail := s.failAt[t]
	latency := s.seekLatency
	s.mu.Unlock()

	if fail {
		return
	}

	complete := func() {
		s.mu.Lock()
		s.currentTime = t
		s.ready = media.FrameReady
		dur := s.duration
		s.mu.Unlock()
		s.hub.Emit(media.Event{Signal: media.SignalSeeked, Time: t, Duration: dur})
		s.hub.Emit(media.Event{Signal: media.SignalTimeUpdate, Time: t, Duration: dur})
	}

	if latency > 0 {
		go func() {
			time.Sleep(latency)
			complete()
		}()
		return
	}
	complete()
}

// Frame implements media.Source. The frame is a procedurally shaded image
// whose color depends on the current position, so captures at different
// timestamps are distinguishable.
func (s *Source) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frameErr != nil {
		return nil, s.frameErr
	}
	if s.ready != media.FrameReady {
		return nil, media.ErrNoFrame
	}

	shade := uint8(int(s.currentTime*16) % 256)
	img := image.NewRGBA(image.Rect(0, 0, 320, 180))
	c := color.RGBA{R: shade, G: 128, B: 255 - shade, A: 255}
	for y := 0; y < 180; y++ {
		for x := 0; x < 320; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}
