package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDefaultParams_Valid(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params should validate, got %v", err)
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Params)
		wantErr error
		field   string
	}{
		{"unknown model", func(p *Params) { p.ModelType = "filter" }, ErrUnknownModelType, "filter"},
		{"empty model", func(p *Params) { p.ModelType = "" }, ErrUnknownModelType, ""},
		{"zero agents", func(p *Params) { p.NumAgents = 0 }, ErrInvalidParams, "num_agents"},
		{"p_intra high", func(p *Params) { p.ConnectionProbabilityIntra = 1.5 }, ErrInvalidParams, "connection_probability_intra"},
		{"p_inter negative", func(p *Params) { p.ConnectionProbabilityInter = -0.1 }, ErrInvalidParams, "connection_probability_inter"},
		{"zero step", func(p *Params) { p.BeliefUpdateStepSize = 0 }, ErrInvalidParams, "belief_update_step_size"},
		{"step above one", func(p *Params) { p.BeliefUpdateStepSize = 1.2 }, ErrInvalidParams, "belief_update_step_size"},
		{"interaction NaN", func(p *Params) { p.InteractionChance = math.NaN() }, ErrInvalidParams, "interaction_chance"},
		{"threshold high", func(p *Params) { p.TrustThreshold = 2 }, ErrInvalidParams, "trust_threshold"},
		{"outsider trust", func(p *Params) { p.DefaultOutsiderTrust = -1 }, ErrInvalidParams, "default_outsider_trust"},
		{"high trust", func(p *Params) { p.InitialHighTrust = 1.1 }, ErrInvalidParams, "initial_high_trust"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.field != "" && !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should name %q", err, tt.field)
			}
		})
	}
}

func TestParams_ValidateBoundaries(t *testing.T) {
	p := DefaultParams()
	p.ConnectionProbabilityIntra = 1
	p.ConnectionProbabilityInter = 0
	p.BeliefUpdateStepSize = 1
	p.InteractionChance = 0
	p.TrustThreshold = 0
	if err := p.Validate(); err != nil {
		t.Fatalf("closed-interval boundaries should validate, got %v", err)
	}
}

func TestResolveDistribution(t *testing.T) {
	tests := []struct {
		in       BeliefDistribution
		want     BeliefDistribution
		wantWarn bool
	}{
		{DistributionRandom, DistributionRandom, false},
		{DistributionUniform, DistributionRandom, false},
		{DistributionBimodal, DistributionBimodal, false},
		{"normal", DistributionRandom, true},
		{"", DistributionRandom, true},
	}
	for _, tt := range tests {
		got, warn := ResolveDistribution(tt.in)
		if got != tt.want {
			t.Errorf("ResolveDistribution(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if (warn != "") != tt.wantWarn {
			t.Errorf("ResolveDistribution(%q) warning = %q, wantWarn %v", tt.in, warn, tt.wantWarn)
		}
	}
}

func TestResolveTrustSetup(t *testing.T) {
	if got, warn := ResolveTrustSetup(TrustBeliefBased); got != TrustBeliefBased || warn != "" {
		t.Errorf("belief_based should pass through, got %q %q", got, warn)
	}
	got, warn := ResolveTrustSetup("random_trust")
	if got != TrustUniformHigh {
		t.Errorf("unknown setup should fall back to uniform_high, got %q", got)
	}
	if !strings.Contains(warn, "random_trust") {
		t.Errorf("warning should name the bad value, got %q", warn)
	}
}
