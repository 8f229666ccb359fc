package domain

// GroupStats summarises one cohort. Avg is nil for an empty cohort so that
// "no members" is never read as a belief of 0. StdDev is 0 for cohorts with
// fewer than two members.
type GroupStats struct {
	Count  int      `json:"count" yaml:"count"`
	Avg    *float64 `json:"avg" yaml:"avg"`
	StdDev float64  `json:"std_dev" yaml:"std_dev"`
}

// Metrics is a point-in-time summary of a population's beliefs.
type Metrics struct {
	TimeStep     int        `json:"time_step" yaml:"time_step"`
	AgentCount   int        `json:"agent_count" yaml:"agent_count"`
	AvgBelief    *float64   `json:"avg_belief" yaml:"avg_belief"`
	StdDevBelief *float64   `json:"std_dev_belief" yaml:"std_dev_belief"`
	GroupA       GroupStats `json:"group_a" yaml:"group_a"`
	GroupB       GroupStats `json:"group_b" yaml:"group_b"`
}

// Group returns the stats for g.
func (m Metrics) Group(g Group) GroupStats {
	if g == GroupA {
		return m.GroupA
	}
	return m.GroupB
}

// Polarization is the absolute gap between the cohort averages. The second
// return value is false when either cohort is empty.
func (m Metrics) Polarization() (float64, bool) {
	if m.GroupA.Avg == nil || m.GroupB.Avg == nil {
		return 0, false
	}
	d := *m.GroupA.Avg - *m.GroupB.Avg
	if d < 0 {
		d = -d
	}
	return d, true
}
