package media

import "image"

// ReadyState describes how much of a source is available for capture.
type ReadyState int

const (
	// Unstarted means nothing about the source is known yet
	Unstarted ReadyState = iota
	// MetadataLoaded means dimensions and (possibly) duration are known
	MetadataLoaded
	// FrameReady means a decoded frame is displayable at the current position
	FrameReady
)

func (s ReadyState) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case MetadataLoaded:
		return "metadata_loaded"
	case FrameReady:
		return "frame_ready"
	default:
		return "unknown"
	}
}

// TimeRange is a span of the source available for random access, in seconds.
type TimeRange struct {
	Start float64
	End   float64
}

// Signal identifies a source lifecycle event.
type Signal int

const (
	// SignalLoadedMetadata fires once when metadata becomes available
	SignalLoadedMetadata Signal = iota
	// SignalDurationChange fires when the reported duration changes
	SignalDurationChange
	// SignalTimeUpdate fires when the playback position or buffered span moves
	SignalTimeUpdate
	// SignalSeeked fires when the frame at a requested position is decoded
	SignalSeeked
)

// Event carries the source state observed at the moment a signal fired.
type Event struct {
	Signal   Signal
	Time     float64 // playback position, seconds
	Duration float64 // reported duration, seconds; may be 0, NaN or +Inf
}

// Source is the capability interface the editor core needs from a video
// source. The core only reads and seeks; decoding and lifetime belong to
// the implementation (file, recording, upload).
type Source interface {
	// CurrentTime returns the current playback position in seconds.
	CurrentTime() float64

	// SetCurrentTime requests an asynchronous seek. Completion is
	// delivered as a SignalSeeked event; use SeekTo to wait for it.
	SetCurrentTime(t float64)

	// Duration returns the duration the source itself reports. Streamed
	// and in-progress recordings may report 0, NaN or +Inf here.
	Duration() float64

	// ReadyState reports how much of the source is usable.
	ReadyState() ReadyState

	// Seekable returns the ranges currently available for random access.
	Seekable() []TimeRange

	// Frame returns the decoded frame at the current position. Fails
	// until the source reaches FrameReady.
	Frame() (image.Image, error)

	// Subscribe registers a handler for a signal. The returned function
	// removes the registration.
	Subscribe(sig Signal, fn func(Event)) (cancel func())
}

// SeekableEnd returns the end of the last seekable range, or 0 when the
// source exposes none.
func SeekableEnd(src Source) float64 {
	ranges := src.Seekable()
	if len(ranges) == 0 {
		return 0
	}
	return ranges[len(ranges)-1].End
}
