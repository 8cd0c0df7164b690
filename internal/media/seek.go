package media

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrSeekTimeout reports that a seek exceeded its time budget.
var ErrSeekTimeout = errors.New("seek timed out")

// DefaultSeekTimeout bounds a single seek when the caller passes no timeout.
const DefaultSeekTimeout = 5 * time.Second

// SeekTo positions src at target and suspends the caller until the frame at
// that position is decoded, the timeout elapses, or ctx is cancelled. On
// timeout the pending listener is released and ErrSeekTimeout is returned;
// retrying is left to the caller.
//
// The source position moves as an observable side effect. Callers that need
// the original position must save and restore it themselves.
func SeekTo(ctx context.Context, src Source, target float64, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultSeekTimeout
	}

	done := make(chan struct{})
	var once sync.Once
	cancel := src.Subscribe(SignalSeeked, func(Event) {
		once.Do(func() { close(done) })
	})
	defer cancel()

	src.SetCurrentTime(target)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w seeking to %.3fs after %s", ErrSeekTimeout, target, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
