package duration

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func newResolver() *Resolver {
	return NewResolver(zerolog.Nop())
}

func TestResolverStartsUnknown(t *testing.T) {
	r := newResolver()

	if r.State() != Unknown {
		t.Errorf("state = %v, expected unknown", r.State())
	}
	if _, ok := r.Duration(); ok {
		t.Error("fresh resolver claims to hold a duration")
	}
}

func TestResolverIgnoresUnusableValues(t *testing.T) {
	r := newResolver()

	for _, d := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if r.Observe(d) {
			t.Errorf("Observe(%v) reported a change", d)
		}
	}
	if r.State() != Unknown {
		t.Errorf("state = %v after junk signals, expected unknown", r.State())
	}
}

func TestResolverAdoptsFirstFiniteValue(t *testing.T) {
	r := newResolver()

	if !r.Observe(30) {
		t.Fatal("Observe(30) reported no change")
	}
	if r.State() != Provisional {
		t.Errorf("state = %v, expected provisional", r.State())
	}
	d, ok := r.Duration()
	if !ok || d != 30 {
		t.Errorf("Duration() = %v, %v; expected 30, true", d, ok)
	}
}

func TestResolverRefinesProvisionalValue(t *testing.T) {
	r := newResolver()
	r.Observe(30)

	if !r.Observe(32.5) {
		t.Fatal("refinement reported no change")
	}
	if d, _ := r.Duration(); d != 32.5 {
		t.Errorf("duration = %v, expected 32.5", d)
	}

	// Same value again is not a change; no thumbnail churn.
	if r.Observe(32.5) {
		t.Error("repeat of current value reported a change")
	}
}

func TestResolverNeverRegresses(t *testing.T) {
	r := newResolver()
	r.Observe(30)

	for _, d := range []float64{0, math.NaN(), math.Inf(1), -1} {
		if r.Observe(d) {
			t.Errorf("Observe(%v) reported a change", d)
		}
	}
	if d, _ := r.Duration(); d != 30 {
		t.Errorf("duration regressed to %v", d)
	}
}

func TestResolverSeekableFallback(t *testing.T) {
	r := newResolver()

	// Duration reported as non-finite, then the seekable range end becomes
	// 42.3 during playback: the resolver adopts 42.3.
	r.Observe(math.Inf(1))
	if !r.ObserveSeekable(42.3) {
		t.Fatal("ObserveSeekable(42.3) reported no change")
	}
	d, ok := r.Duration()
	if !ok || d != 42.3 {
		t.Errorf("Duration() = %v, %v; expected 42.3, true", d, ok)
	}
	if r.State() != Provisional {
		t.Errorf("state = %v, expected provisional (fallback never fully resolves)", r.State())
	}

	// The approximation keeps improving as more is buffered.
	if !r.ObserveSeekable(55.1) {
		t.Error("later seekable refinement reported no change")
	}
}

func TestResolverFinalizePinsValue(t *testing.T) {
	r := newResolver()
	r.Observe(30)
	r.Finalize()

	if r.State() != Resolved {
		t.Errorf("state = %v, expected resolved", r.State())
	}
	if r.Observe(99) {
		t.Error("resolved value accepted a refinement")
	}
	if d, _ := r.Duration(); d != 30 {
		t.Errorf("duration = %v after finalize, expected 30", d)
	}
}

func TestResolverFinalizeOnUnknownIsNoop(t *testing.T) {
	r := newResolver()
	r.Finalize()
	if r.State() != Unknown {
		t.Errorf("state = %v, expected unknown", r.State())
	}
}

func TestResolverReset(t *testing.T) {
	r := newResolver()
	r.Observe(30)
	r.Finalize()
	r.Reset()

	if r.State() != Unknown {
		t.Errorf("state = %v after reset, expected unknown", r.State())
	}
	if !r.Observe(12) {
		t.Error("resolver did not accept a value after reset")
	}
}
