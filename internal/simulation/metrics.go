package simulation

import (
	"github.com/Harshitk-cp/echosim/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// Summarize reduces agents to overall and per-group belief statistics.
// Groups come from the agents' fixed labels, not their current beliefs.
// Standard deviations are population (not sample) deviations.
func Summarize(agents []*domain.Agent, timeStep int) domain.Metrics {
	all := make([]float64, 0, len(agents))
	byGroup := map[domain.Group][]float64{}
	for _, a := range agents {
		all = append(all, a.Belief())
		byGroup[a.Group()] = append(byGroup[a.Group()], a.Belief())
	}

	m := domain.Metrics{
		TimeStep:   timeStep,
		AgentCount: len(agents),
		GroupA:     groupStats(byGroup[domain.GroupA]),
		GroupB:     groupStats(byGroup[domain.GroupB]),
	}
	if len(all) > 0 {
		overall := groupStats(all)
		m.AvgBelief = overall.Avg
		m.StdDevBelief = &overall.StdDev
	}
	return m
}

func groupStats(beliefs []float64) domain.GroupStats {
	gs := domain.GroupStats{Count: len(beliefs)}
	switch len(beliefs) {
	case 0:
	case 1:
		avg := beliefs[0]
		gs.Avg = &avg
	default:
		mean, std := stat.PopMeanStdDev(beliefs, nil)
		gs.Avg = &mean
		gs.StdDev = std
	}
	return gs
}
