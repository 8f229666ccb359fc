package domain

import (
	"fmt"
	"math"
	"strings"
)

type ModelType string

const (
	ModelBubble  ModelType = "bubble"
	ModelChamber ModelType = "chamber"
)

func ValidModelType(m string) bool {
	switch ModelType(m) {
	case ModelBubble, ModelChamber:
		return true
	}
	return false
}

type BeliefDistribution string

const (
	DistributionRandom  BeliefDistribution = "random"
	DistributionBimodal BeliefDistribution = "bimodal"
	// DistributionUniform is accepted as an alias of random.
	DistributionUniform BeliefDistribution = "uniform"
)

type TrustSetup string

const (
	TrustUniformHigh TrustSetup = "uniform_high"
	TrustBeliefBased TrustSetup = "belief_based"
)

const (
	DefaultHighTrust = 0.9
	// BeliefSimilarityThreshold is the maximum initial-belief distance at
	// which belief_based setup grants high trust.
	BeliefSimilarityThreshold = 0.3
)

// Params is the full configuration of one simulation run.
type Params struct {
	ModelType                  ModelType          `json:"model_type" yaml:"model_type"`
	NumAgents                  int                `json:"num_agents" yaml:"num_agents"`
	ConnectionProbabilityIntra float64            `json:"connection_probability_intra" yaml:"connection_probability_intra"`
	ConnectionProbabilityInter float64            `json:"connection_probability_inter" yaml:"connection_probability_inter"`
	InitialBeliefDistribution  BeliefDistribution `json:"initial_belief_distribution" yaml:"initial_belief_distribution"`
	BeliefUpdateStepSize       float64            `json:"belief_update_step_size" yaml:"belief_update_step_size"`
	InteractionChance          float64            `json:"interaction_chance" yaml:"interaction_chance"`

	// Chamber only.
	TrustThreshold       float64    `json:"trust_threshold" yaml:"trust_threshold"`
	DefaultOutsiderTrust float64    `json:"default_outsider_trust" yaml:"default_outsider_trust"`
	InitialHighTrust     float64    `json:"initial_high_trust" yaml:"initial_high_trust"`
	InitialTrustSetup    TrustSetup `json:"initial_trust_setup" yaml:"initial_trust_setup"`

	// Seed fixes the random source. Nil draws a fresh seed.
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

func DefaultParams() Params {
	return Params{
		ModelType:                  ModelBubble,
		NumAgents:                  50,
		ConnectionProbabilityIntra: 0.3,
		ConnectionProbabilityInter: 0.05,
		InitialBeliefDistribution:  DistributionBimodal,
		BeliefUpdateStepSize:       0.05,
		InteractionChance:          0.5,
		TrustThreshold:             0.5,
		DefaultOutsiderTrust:       0.1,
		InitialHighTrust:           DefaultHighTrust,
		InitialTrustSetup:          TrustBeliefBased,
	}
}

// Validate rejects an unknown model type and any out-of-range number.
// Unknown distribution and trust-setup names are not errors; see
// ResolveDistribution and ResolveTrustSetup.
func (p Params) Validate() error {
	if !ValidModelType(string(p.ModelType)) {
		return fmt.Errorf("%w: %q", ErrUnknownModelType, p.ModelType)
	}

	var problems []string
	if p.NumAgents <= 0 {
		problems = append(problems, fmt.Sprintf("num_agents must be > 0, got %d", p.NumAgents))
	}
	checkUnit := func(name string, v float64) {
		if math.IsNaN(v) || v < 0 || v > 1 {
			problems = append(problems, fmt.Sprintf("%s must be within [0, 1], got %v", name, v))
		}
	}
	checkUnit("connection_probability_intra", p.ConnectionProbabilityIntra)
	checkUnit("connection_probability_inter", p.ConnectionProbabilityInter)
	checkUnit("interaction_chance", p.InteractionChance)
	checkUnit("trust_threshold", p.TrustThreshold)
	checkUnit("default_outsider_trust", p.DefaultOutsiderTrust)
	checkUnit("initial_high_trust", p.InitialHighTrust)
	if math.IsNaN(p.BeliefUpdateStepSize) || p.BeliefUpdateStepSize <= 0 || p.BeliefUpdateStepSize > 1 {
		problems = append(problems, fmt.Sprintf("belief_update_step_size must be within (0, 1], got %v", p.BeliefUpdateStepSize))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(problems, "; "))
	}
	return nil
}

// ResolveDistribution maps a distribution name to a supported one. The
// returned warning is empty unless a substitution happened.
func ResolveDistribution(d BeliefDistribution) (BeliefDistribution, string) {
	switch d {
	case DistributionRandom, DistributionUniform:
		return DistributionRandom, ""
	case DistributionBimodal:
		return DistributionBimodal, ""
	}
	return DistributionRandom, fmt.Sprintf("unknown initial_belief_distribution %q, using %q", d, DistributionRandom)
}

// ResolveTrustSetup maps a trust-setup name to a supported one. The
// returned warning is empty unless a substitution happened.
func ResolveTrustSetup(s TrustSetup) (TrustSetup, string) {
	switch s {
	case TrustUniformHigh, TrustBeliefBased:
		return s, ""
	}
	return TrustUniformHigh, fmt.Sprintf("unknown initial_trust_setup %q, using %q", s, TrustUniformHigh)
}
