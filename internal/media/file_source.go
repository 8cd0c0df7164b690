package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/clipbench/pkg/util"
)

// ErrNoFrame reports that no decoded frame is available at the current
// position yet.
var ErrNoFrame = errors.New("no decoded frame at current position")

// frameExtractTimeout bounds a single frame decode so a stuck ffmpeg
// process cannot pin the seek mutex forever.
const frameExtractTimeout = 10 * time.Second

// Options configures a FileSource.
type Options struct {
	FFmpegPath string // defaults to "ffmpeg" resolved on PATH
	ProbePath  string // defaults to "ffprobe" resolved on PATH
}

// FileSource is an ffmpeg-backed Source for an on-disk video file. It also
// serves in-progress recordings: Refresh re-probes the file and widens the
// seekable range as more of the stream lands on disk.
type FileSource struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	path        string

	hub Hub

	seekMu sync.Mutex // serializes frame extraction; one seek at a time

	mu          sync.Mutex
	currentTime float64
	duration    float64 // NaN until the container reports one
	seekableEnd float64
	ready       ReadyState
	frame       image.Image
}

// Open resolves the ffmpeg binaries and validates path. No probe happens
// here: subscribe handlers first, then call Refresh so the metadata signals
// reach them.
func Open(logger zerolog.Logger, path string, opts Options) (*FileSource, error) {
	ffmpegPath := opts.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	ffprobePath := opts.ProbePath
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	resolved, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	ffmpegPath = resolved

	resolved, err = exec.LookPath(ffprobePath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	ffprobePath = resolved

	if !util.FileExists(path) {
		return nil, fmt.Errorf("no such file: %s", path)
	}

	f := &FileSource{
		logger:      logger.With().Str("component", "media").Str("file", path).Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		path:        path,
		duration:    math.NaN(),
	}
	return f, nil
}

// Path returns the backing file path.
func (f *FileSource) Path() string { return f.path }

// Info probes the file and returns a metadata snapshot.
func (f *FileSource) Info(ctx context.Context) (*Info, error) {
	return probeFile(ctx, f.ffprobePath, f.path)
}

// Refresh re-probes the backing file and emits the resulting signals:
// SignalLoadedMetadata on the first successful probe, SignalDurationChange
// when the reported duration moved, and SignalTimeUpdate always. For a file
// still being recorded the probed duration doubles as the seekable end.
func (f *FileSource) Refresh(ctx context.Context) error {
	info, err := probeFile(ctx, f.ffprobePath, f.path)
	if err != nil {
		return err
	}

	f.mu.Lock()
	first := f.ready == Unstarted
	prev := f.duration
	if info.Duration > 0 {
		f.duration = info.Duration
		f.seekableEnd = info.Duration
	}
	if f.ready == Unstarted {
		f.ready = MetadataLoaded
	}
	cur := f.currentTime
	dur := f.duration
	f.mu.Unlock()

	if first {
		f.logger.Debug().
			Float64("duration", dur).
			Int("width", info.Width).
			Int("height", info.Height).
			Msg("metadata loaded")
		f.hub.Emit(Event{Signal: SignalLoadedMetadata, Time: cur, Duration: dur})
	}
	if dur != prev && !(math.IsNaN(dur) && math.IsNaN(prev)) {
		f.hub.Emit(Event{Signal: SignalDurationChange, Time: cur, Duration: dur})
	}
	f.hub.Emit(Event{Signal: SignalTimeUpdate, Time: cur, Duration: dur})
	return nil
}

// CurrentTime returns the current playback position in seconds.
func (f *FileSource) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentTime
}

// Duration returns the container-reported duration; NaN until known.
func (f *FileSource) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

// ReadyState reports how much of the source is usable.
func (f *FileSource) ReadyState() ReadyState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

// Seekable returns the span currently available for random access.
func (f *FileSource) Seekable() []TimeRange {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seekableEnd <= 0 {
		return nil
	}
	return []TimeRange{{Start: 0, End: f.seekableEnd}}
}

// Frame returns the most recently decoded frame.
func (f *FileSource) Frame() (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready != FrameReady || f.frame == nil {
		return nil, ErrNoFrame
	}
	return f.frame, nil
}

// Subscribe registers a signal handler.
func (f *FileSource) Subscribe(sig Signal, fn func(Event)) func() {
	return f.hub.Subscribe(sig, fn)
}

// SetCurrentTime requests an asynchronous seek. The frame at t is decoded
// in the background; SignalSeeked fires once it is displayable. A failed
// decode emits nothing, leaving the waiter to its timeout.
func (f *FileSource) SetCurrentTime(t float64) {
	if t < 0 {
		t = 0
	}
	f.mu.Lock()
	if end := f.seekableEnd; end > 0 && t > end {
		t = end
	}
	f.mu.Unlock()

	go func() {
		f.seekMu.Lock()

		ctx, cancel := context.WithTimeout(context.Background(), frameExtractTimeout)
		img, err := f.grabFrame(ctx, t)
		cancel()
		if err != nil {
			f.seekMu.Unlock()
			f.logger.Warn().Err(err).Float64("target", t).Msg("frame decode failed")
			return
		}

		f.mu.Lock()
		f.currentTime = t
		f.frame = img
		f.ready = FrameReady
		dur := f.duration
		f.mu.Unlock()

		// Emit outside seekMu: handlers may start follow-up seeks.
		f.seekMu.Unlock()
		f.hub.Emit(Event{Signal: SignalSeeked, Time: t, Duration: dur})
		f.hub.Emit(Event{Signal: SignalTimeUpdate, Time: t, Duration: dur})
	}()
}

// grabFrame decodes the single frame at t.
func (f *FileSource) grabFrame(ctx context.Context, t float64) (image.Image, error) {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", util.FormatSeconds(t),
		"-i", f.path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-q:v", "3",
		"-",
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame extraction failed: %w: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("no frame at %.3fs", t)
	}

	img, err := jpeg.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extracted frame: %w", err)
	}
	return img, nil
}
