// Seed script for writing demo params files for echosim.
// Run with: go run ./scripts/seed.go [dir]
// Then: echosim run --params <dir>/chamber_belief_based.yaml
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Harshitk-cp/echosim/internal/config"
	"github.com/Harshitk-cp/echosim/internal/domain"
)

func main() {
	dir := "params"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatalf("Failed to create %s: %v", dir, err)
	}

	seed := uint64(42)
	presets := map[string]func(p *domain.Params){
		"bubble": func(p *domain.Params) {
			p.ModelType = domain.ModelBubble
		},
		"chamber_uniform_high": func(p *domain.Params) {
			p.ModelType = domain.ModelChamber
			p.InitialTrustSetup = domain.TrustUniformHigh
		},
		"chamber_belief_based": func(p *domain.Params) {
			p.ModelType = domain.ModelChamber
			p.InitialTrustSetup = domain.TrustBeliefBased
		},
		"bubble_isolated": func(p *domain.Params) {
			p.ModelType = domain.ModelBubble
			p.ConnectionProbabilityInter = 0
		},
		"chamber_random_beliefs": func(p *domain.Params) {
			p.ModelType = domain.ModelChamber
			p.InitialBeliefDistribution = domain.DistributionRandom
		},
	}

	for name, apply := range presets {
		p := domain.DefaultParams()
		p.Seed = &seed
		apply(&p)
		if err := p.Validate(); err != nil {
			log.Fatalf("Preset %s is invalid: %v", name, err)
		}

		data, err := config.EncodeParams(p)
		if err != nil {
			log.Fatalf("Failed to encode %s: %v", name, err)
		}
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}
}
