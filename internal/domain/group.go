package domain

// Group is a cohort label assigned from an agent's initial belief. It is a
// historical tag used for reporting, not a live classification.
type Group string

const (
	GroupA Group = "A"
	GroupB Group = "B"
)

// GroupThreshold splits initial beliefs into cohorts: below it is A,
// at or above it is B.
const GroupThreshold = 0.5

func GroupFor(belief float64) Group {
	if belief < GroupThreshold {
		return GroupA
	}
	return GroupB
}

func AllGroups() []Group {
	return []Group{GroupA, GroupB}
}

func ValidGroup(g string) bool {
	switch Group(g) {
	case GroupA, GroupB:
		return true
	}
	return false
}

// Symbol is the marker shape dashboards use to tell the cohorts apart.
func (g Group) Symbol() string {
	if g == GroupA {
		return "circle"
	}
	return "square"
}
