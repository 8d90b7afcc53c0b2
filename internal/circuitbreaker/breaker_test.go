package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBackend = errors.New("backend down")

func failing() error    { return errBackend }
func succeeding() error { return nil }

func TestBreaker_StaysClosedOnSuccess(t *testing.T) {
	b := New(3, time.Minute)
	for i := 0; i < 10; i++ {
		if err := b.Do(succeeding); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}
	if got := b.State(); got != "closed" {
		t.Errorf("state = %s, want closed", got)
	}
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := New(3, time.Minute)
	for i := 0; i < 3; i++ {
		if err := b.Do(failing); !errors.Is(err, errBackend) {
			t.Fatalf("call %d: %v, want backend error", i+1, err)
		}
	}
	if got := b.State(); got != "open" {
		t.Fatalf("state = %s, want open", got)
	}
	if err := b.Do(succeeding); !errors.Is(err, ErrOpen) {
		t.Errorf("err = %v, want ErrOpen while circuit is open", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New(3, time.Minute)
	b.Do(failing)
	b.Do(failing)
	b.Do(succeeding)
	b.Do(failing)
	b.Do(failing)
	if got := b.State(); got != "closed" {
		t.Errorf("state = %s, want closed (success reset the count)", got)
	}
}

func TestBreaker_ProbesAfterCoolOff(t *testing.T) {
	b := New(1, 30*time.Second)
	base := time.Now()
	b.now = func() time.Time { return base }

	if err := b.Do(failing); !errors.Is(err, errBackend) {
		t.Fatalf("err = %v", err)
	}
	if err := b.Do(succeeding); !errors.Is(err, ErrOpen) {
		t.Fatalf("err = %v, want ErrOpen before cool-off", err)
	}

	b.now = func() time.Time { return base.Add(31 * time.Second) }
	if err := b.Do(succeeding); err != nil {
		t.Fatalf("probe call: %v", err)
	}
	if got := b.State(); got != "closed" {
		t.Errorf("state = %s, want closed after successful probe", got)
	}
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	b := New(1, 30*time.Second)
	base := time.Now()
	b.now = func() time.Time { return base }
	b.Do(failing)

	b.now = func() time.Time { return base.Add(31 * time.Second) }
	if err := b.Do(failing); !errors.Is(err, errBackend) {
		t.Fatalf("probe err = %v, want backend error", err)
	}
	if err := b.Do(succeeding); !errors.Is(err, ErrOpen) {
		t.Errorf("err = %v, want ErrOpen after failed probe", err)
	}
}

func TestBreaker_Defaults(t *testing.T) {
	b := New(0, 0)
	if b.threshold != 5 {
		t.Errorf("threshold = %d, want 5", b.threshold)
	}
	if b.coolOff != 30*time.Second {
		t.Errorf("coolOff = %s, want 30s", b.coolOff)
	}
}
