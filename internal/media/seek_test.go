package media_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keagan/clipbench/internal/media"
	"github.com/keagan/clipbench/internal/media/mediatest"
)

func TestSeekToCompletes(t *testing.T) {
	src := mediatest.New()
	src.SetDuration(30)

	err := media.SeekTo(context.Background(), src, 12.5, time.Second)
	if err != nil {
		t.Fatalf("SeekTo failed: %v", err)
	}
	if got := src.CurrentTime(); got != 12.5 {
		t.Errorf("position = %v, expected 12.5", got)
	}
	if src.ReadyState() != media.FrameReady {
		t.Errorf("ready state = %v, expected frame_ready", src.ReadyState())
	}
}

func TestSeekToWaitsForSlowSeek(t *testing.T) {
	src := mediatest.New()
	src.SetDuration(30)
	src.SetSeekLatency(20 * time.Millisecond)

	start := time.Now()
	if err := media.SeekTo(context.Background(), src, 5, time.Second); err != nil {
		t.Fatalf("SeekTo failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("returned after %v, before the frame was ready", elapsed)
	}
}

func TestSeekToTimesOut(t *testing.T) {
	src := mediatest.New()
	src.SetDuration(30)
	src.FailSeeksAt(5)

	err := media.SeekTo(context.Background(), src, 5, 30*time.Millisecond)
	if !errors.Is(err, media.ErrSeekTimeout) {
		t.Fatalf("expected ErrSeekTimeout, got %v", err)
	}
}

func TestSeekToHonorsContext(t *testing.T) {
	src := mediatest.New()
	src.SetDuration(30)
	src.FailSeeksAt(5)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := media.SeekTo(ctx, src, 5, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSeekableEnd(t *testing.T) {
	src := mediatest.New()
	if got := media.SeekableEnd(src); got != 0 {
		t.Errorf("empty source: seekable end = %v, expected 0", got)
	}

	src.SetSeekableEnd(42.3)
	if got := media.SeekableEnd(src); got != 42.3 {
		t.Errorf("seekable end = %v, expected 42.3", got)
	}
}
