package media

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

func testDataPath(filename string) string {
	return filepath.Join("..", "..", "testdata", filename)
}

func TestOpenMissingFile(t *testing.T) {
	skipIfNoFFmpeg(t)

	if _, err := Open(zerolog.Nop(), testDataPath("does_not_exist.mp4"), Options{}); err == nil {
		t.Fatal("Open accepted a missing file")
	}
}

func TestFileSourceProbeAndSeek(t *testing.T) {
	skipIfNoFFmpeg(t)

	path := testDataPath("test.mp4")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("test video not found at %s", path)
	}

	src, err := Open(zerolog.New(os.Stderr), path, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if src.ReadyState() != Unstarted {
		t.Errorf("ready state = %v before probe, expected unstarted", src.ReadyState())
	}

	var metadataEvents, durationEvents int
	src.Subscribe(SignalLoadedMetadata, func(Event) { metadataEvents++ })
	src.Subscribe(SignalDurationChange, func(Event) { durationEvents++ })

	ctx := context.Background()
	if err := src.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if src.ReadyState() != MetadataLoaded {
		t.Errorf("ready state = %v after probe, expected metadata_loaded", src.ReadyState())
	}
	dur := src.Duration()
	if !(dur > 0) {
		t.Fatalf("duration = %v after probe", dur)
	}
	if metadataEvents != 1 || durationEvents != 1 {
		t.Errorf("saw %d metadata / %d duration events, expected 1 / 1", metadataEvents, durationEvents)
	}
	if end := SeekableEnd(src); end != dur {
		t.Errorf("seekable end = %v, expected %v", end, dur)
	}

	// A second refresh of an unchanged file reports no duration change.
	if err := src.Refresh(ctx); err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}
	if durationEvents != 1 {
		t.Errorf("unchanged file emitted %d duration events", durationEvents)
	}

	target := dur / 2
	if err := SeekTo(ctx, src, target, 10*time.Second); err != nil {
		t.Fatalf("SeekTo failed: %v", err)
	}
	if src.ReadyState() != FrameReady {
		t.Errorf("ready state = %v after seek, expected frame_ready", src.ReadyState())
	}
	img, err := src.Frame()
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if img.Bounds().Empty() {
		t.Error("decoded frame is empty")
	}
}

func TestFileSourceFrameBeforeSeek(t *testing.T) {
	skipIfNoFFmpeg(t)

	path := testDataPath("test.mp4")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("test video not found")
	}

	src, err := Open(zerolog.Nop(), path, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := src.Frame(); err == nil {
		t.Error("Frame succeeded before any seek")
	}
}
