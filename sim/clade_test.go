package sim

import (
	"math"
	"testing"

	"github.com/mbg-sim/zoox/config"
	"github.com/mbg-sim/zoox/rng"
)

func testCladeConfig(name string, proportion float64) config.CladeConfig {
	return config.CladeConfig{
		Name:             name,
		Proportion:       proportion,
		ArrivalAffinity:  0.8,
		DivisionAffinity: 0.9,
		PPR:              1.2,
		MCR:              0.5,
		PhotoReduction:   3.0,
		Residence:        config.PhaseConfig{Days: 40, Fuzz: 0.25},
		G0:               config.PhaseConfig{Days: 6, Fuzz: 0.2},
		G1SG2M:           config.PhaseConfig{Days: 2, Fuzz: 0.2},
		G0EscapeProb:     0.3,
		G1SG2MEscapeProb: 0.15,
		Surplus:          config.SurplusConfig{Shape: 2, Scale: 0.5, Max: 3},
		Mutation: config.MutationConfig{
			Prob:            0.02,
			DeleteriousProb: 0.75,
			Deleterious:     config.GammaConfig{Shape: 2, Scale: 10},
			Beneficial:      config.GammaConfig{Shape: 1.5, Scale: 2},
		},
	}
}

func TestRegistryCumulative(t *testing.T) {
	reg := NewRegistry([]config.CladeConfig{
		testCladeConfig("a", 0.3),
		testCladeConfig("b", 0.3),
		testCladeConfig("c", 0.4),
	})

	if got := reg.Cumulative(0); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("cumulative(0) = %v, want 0.3", got)
	}
	if got := reg.Cumulative(1); math.Abs(got-0.6) > 1e-12 {
		t.Errorf("cumulative(1) = %v, want 0.6", got)
	}
	// The last entry is forced to exactly 1.0 despite float rounding.
	if got := reg.Cumulative(2); got != 1.0 {
		t.Errorf("cumulative(2) = %v, want exactly 1.0", got)
	}
}

func TestPickCladeRespectsProportions(t *testing.T) {
	reg := NewRegistry([]config.CladeConfig{
		testCladeConfig("a", 0.2),
		testCladeConfig("b", 0.8),
	})
	r := rng.New(11)

	counts := [2]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[reg.PickClade(r)]++
	}
	frac := float64(counts[0]) / n
	if math.Abs(frac-0.2) > 0.02 {
		t.Errorf("clade 0 picked %v of the time, want ~0.2", frac)
	}
}

func TestInitialSurplusCapped(t *testing.T) {
	reg := NewRegistry([]config.CladeConfig{testCladeConfig("a", 1.0)})
	c := reg.Get(0)
	r := rng.New(11)

	for i := 0; i < 2000; i++ {
		s := c.InitialSurplus(r)
		if s < 0 || s > c.SurplusMax {
			t.Fatalf("initial surplus %v outside [0, %v]", s, c.SurplusMax)
		}
	}
}

func TestMutateDisabled(t *testing.T) {
	cc := testCladeConfig("a", 1.0)
	cc.Mutation.Prob = 0
	reg := NewRegistry([]config.CladeConfig{cc})
	r := rng.New(11)

	ppr, mutated := reg.Get(0).Mutate(r, 1.2)
	if mutated || ppr != 1.2 {
		t.Errorf("Mutate with prob 0 = (%v, %v), want (1.2, false)", ppr, mutated)
	}
}

func TestMutateDeleteriousBounds(t *testing.T) {
	cc := testCladeConfig("a", 1.0)
	cc.Mutation.Prob = 1
	cc.Mutation.DeleteriousProb = 1
	reg := NewRegistry([]config.CladeConfig{cc})
	r := rng.New(11)
	c := reg.Get(0)

	for i := 0; i < 2000; i++ {
		ppr, mutated := c.Mutate(r, 1.2)
		if !mutated {
			t.Fatal("Mutate with prob 1 reported no mutation")
		}
		// Deleterious magnitudes below 100% always leave a positive rate.
		if ppr < 0 || ppr >= 1.2 {
			t.Fatalf("deleterious mutation produced %v from 1.2", ppr)
		}
	}
}

func TestMutateBeneficialBounds(t *testing.T) {
	cc := testCladeConfig("a", 1.0)
	cc.Mutation.Prob = 1
	cc.Mutation.DeleteriousProb = 0
	reg := NewRegistry([]config.CladeConfig{cc})
	r := rng.New(11)
	c := reg.Get(0)

	for i := 0; i < 2000; i++ {
		ppr, _ := c.Mutate(r, 1.0)
		// Beneficial magnitudes are capped at 10%.
		if ppr <= 1.0 || ppr > 1.10000001 {
			t.Fatalf("beneficial mutation produced %v from 1.0", ppr)
		}
	}
}

func TestDepthProduction(t *testing.T) {
	reg := NewRegistry([]config.CladeConfig{testCladeConfig("a", 1.0)})
	c := reg.Get(0) // reduction divisor 3 at the deepest level

	tests := []struct {
		name      string
		level     int
		numLevels int
		want      float64
	}{
		{"surface", 0, 5, 1.2},
		{"deepest", 4, 5, 0.4},
		{"midpoint", 2, 5, 0.8}, // rate halfway between 1.2 and 0.4
		{"quarter depth", 1, 5, 1.0},
		{"three-quarter depth", 3, 5, 0.6},
		{"single level", 0, 1, 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.DepthProduction(1.2, tt.level, tt.numLevels)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("DepthProduction(level=%d) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestInstanceRatesWithinFuzz(t *testing.T) {
	cc := testCladeConfig("a", 1.0)
	cc.PPRFuzz = 0.1
	cc.MCRFuzz = 0.5
	reg := NewRegistry([]config.CladeConfig{cc})
	r := rng.New(11)
	c := reg.Get(0)

	for i := 0; i < 500; i++ {
		ppr, mcr := c.InstanceRates(r)
		if ppr < 1.2*0.9 || ppr > 1.2*1.1 {
			t.Fatalf("instance ppr %v outside fuzz bounds", ppr)
		}
		if mcr < 0.25 || mcr > 0.75 {
			t.Fatalf("instance mcr %v outside fuzz bounds", mcr)
		}
	}
}
