package domain

import "testing"

func TestMetrics_Polarization(t *testing.T) {
	a, b := 0.2, 0.9
	m := Metrics{
		GroupA: GroupStats{Count: 2, Avg: &a},
		GroupB: GroupStats{Count: 3, Avg: &b},
	}
	got, ok := m.Polarization()
	if !ok {
		t.Fatal("expected polarization with both groups present")
	}
	if got < 0.69999 || got > 0.70001 {
		t.Errorf("Polarization() = %v, want 0.7", got)
	}

	m.GroupB = GroupStats{}
	if _, ok := m.Polarization(); ok {
		t.Error("polarization should be absent when a group is empty")
	}
}

func TestMetrics_Group(t *testing.T) {
	m := Metrics{GroupA: GroupStats{Count: 4}, GroupB: GroupStats{Count: 6}}
	if m.Group(GroupA).Count != 4 || m.Group(GroupB).Count != 6 {
		t.Errorf("Group() returned wrong stats: %+v", m)
	}
}
