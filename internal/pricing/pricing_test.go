package pricing

import (
	"math"
	"testing"
)

func TestEstimate_KnownModel(t *testing.T) {
	usd, ok := Estimate("gpt-4o-mini", 1_000_000, 1_000_000)
	if !ok {
		t.Fatal("gpt-4o-mini not in catalog")
	}
	if math.Abs(usd-0.75) > 1e-9 {
		t.Errorf("cost = %g, want 0.75", usd)
	}
}

func TestEstimate_ZeroUsage(t *testing.T) {
	usd, ok := Estimate("gpt-4o", 0, 0)
	if !ok {
		t.Fatal("gpt-4o not in catalog")
	}
	if usd != 0 {
		t.Errorf("cost = %g, want 0", usd)
	}
}

func TestEstimate_UnknownModel(t *testing.T) {
	usd, ok := Estimate("some-future-model", 1000, 1000)
	if ok {
		t.Error("unknown model reported as found")
	}
	if usd != 0 {
		t.Errorf("cost = %g, want 0 for unknown model", usd)
	}
}

func TestKnown(t *testing.T) {
	if !Known("anthropic.claude-3-haiku-20240307-v1:0") {
		t.Error("bedrock haiku missing from catalog")
	}
	if Known("not-a-model") {
		t.Error("unknown model reported as known")
	}
}
