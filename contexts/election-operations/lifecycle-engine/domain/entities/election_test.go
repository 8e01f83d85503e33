package entities

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    ElectionStatus
		to      ElectionStatus
		allowed bool
	}{
		{StatusDraft, StatusScheduled, true},
		{StatusDraft, StatusOpen, true},
		{StatusScheduled, StatusOpen, true},
		{StatusOpen, StatusClosed, true},
		{StatusScheduled, StatusDraft, false},
		{StatusOpen, StatusScheduled, false},
		{StatusClosed, StatusOpen, false},
		{StatusClosed, StatusDraft, false},
		{StatusDraft, StatusClosed, false},
		{StatusArchived, StatusOpen, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestStatusRegressed(t *testing.T) {
	if !StatusClosed.Regressed(StatusOpen) {
		t.Error("closed to open should count as regression")
	}
	if StatusDraft.Regressed(StatusOpen) {
		t.Error("draft to open is forward, not regression")
	}
}

func TestRacesMutable(t *testing.T) {
	for _, status := range []ElectionStatus{StatusDraft, StatusScheduled} {
		if !(Election{Status: status}).RacesMutable() {
			t.Errorf("races should be mutable in %s", status)
		}
	}
	for _, status := range []ElectionStatus{StatusOpen, StatusClosed, StatusArchived} {
		if (Election{Status: status}).RacesMutable() {
			t.Errorf("races should be frozen in %s", status)
		}
	}
}
