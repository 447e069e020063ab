package rng

import (
	"math"
	"testing"
)

func TestDeterminism(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 1000; i++ {
		if got, want := a.Uniform(), b.Uniform(); got != want {
			t.Fatalf("draw %d: uniform diverged: %v vs %v", i, got, want)
		}
		if got, want := a.Gamma(2, 0.5), b.Gamma(2, 0.5); got != want {
			t.Fatalf("draw %d: gamma diverged: %v vs %v", i, got, want)
		}
		if got, want := a.Bernoulli(0.3), b.Bernoulli(0.3); got != want {
			t.Fatalf("draw %d: bernoulli diverged: %v vs %v", i, got, want)
		}
		if got, want := a.Exponential(2.0), b.Exponential(2.0); got != want {
			t.Fatalf("draw %d: exponential diverged: %v vs %v", i, got, want)
		}
	}
}

func TestSeedsDiffer(t *testing.T) {
	a := New(1)
	b := New(2)

	same := true
	for i := 0; i < 10; i++ {
		if a.Uniform() != b.Uniform() {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical sequences")
	}
}

func TestFuzzBounds(t *testing.T) {
	tests := []struct {
		name     string
		baseline float64
		pct      float64
	}{
		{"ten percent", 10.0, 0.1},
		{"half", 4.0, 0.5},
		{"full", 1.0, 1.0},
		{"small baseline", 0.05, 0.2},
	}

	s := New(7)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo := tt.baseline - tt.pct*tt.baseline
			hi := tt.baseline + tt.pct*tt.baseline
			for i := 0; i < 500; i++ {
				v := s.Fuzz(tt.baseline, tt.pct)
				if v < lo || v > hi {
					t.Fatalf("Fuzz(%v, %v) = %v, outside [%v, %v]", tt.baseline, tt.pct, v, lo, hi)
				}
			}
		})
	}
}

func TestFuzzZeroPct(t *testing.T) {
	s := New(7)
	if got := s.Fuzz(3.5, 0); got != 3.5 {
		t.Errorf("Fuzz(3.5, 0) = %v, want 3.5 exactly", got)
	}
	if got := s.Fuzz(0, 0.2); got != 0 {
		t.Errorf("Fuzz(0, 0.2) = %v, want 0 exactly", got)
	}
}

func TestBernoulliExtremes(t *testing.T) {
	s := New(7)
	for i := 0; i < 100; i++ {
		if s.Bernoulli(0) {
			t.Fatal("Bernoulli(0) returned true")
		}
		if !s.Bernoulli(1) {
			t.Fatal("Bernoulli(1) returned false")
		}
	}
}

func TestGammaPositive(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		if v := s.Gamma(2.0, 0.5); v <= 0 || math.IsNaN(v) {
			t.Fatalf("Gamma draw %d: got %v", i, v)
		}
	}
}

func TestExponentialMean(t *testing.T) {
	s := New(7)
	const mean = 4.0
	sum := 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		v := s.Exponential(mean)
		if v < 0 {
			t.Fatalf("negative exponential draw: %v", v)
		}
		sum += v
	}
	got := sum / n
	if math.Abs(got-mean) > 0.2 {
		t.Errorf("sample mean = %v, want ~%v", got, mean)
	}
}

func TestIntnRange(t *testing.T) {
	s := New(7)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := s.Intn(5)
		if v < 0 || v >= 5 {
			t.Fatalf("Intn(5) = %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Errorf("Intn(5) over 1000 draws hit %d distinct values, want 5", len(seen))
	}
}
