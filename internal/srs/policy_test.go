package srs

import (
	"testing"
	"time"
)

func TestIntervalNonDecreasing(t *testing.T) {
	for _, policy := range []Policy{EbbinghausA, EbbinghausB} {
		for n := 0; n < policy.Steps()+3; n++ {
			cur := policy.Interval(n)
			next := policy.Interval(n + 1)
			if next < cur {
				t.Errorf("%s: interval decreased from %v to %v at count %d", policy.Name, cur, next, n)
			}
		}
	}
}

func TestIntervalClampsToLastEntry(t *testing.T) {
	last := 60 * 24 * time.Hour
	for _, count := range []int{6, 7, 100} {
		if got := EbbinghausA.Interval(count); got != last {
			t.Errorf("EbbinghausA.Interval(%d) = %v, want %v", count, got, last)
		}
		if got := EbbinghausB.Interval(count); got != last {
			t.Errorf("EbbinghausB.Interval(%d) = %v, want %v", count, got, last)
		}
	}
}

func TestPoliciesDiverge(t *testing.T) {
	// The two tables differ only in their first two steps; the divergence is
	// load-bearing for existing schedules.
	if EbbinghausA.Interval(0) != 1*24*time.Hour {
		t.Errorf("EbbinghausA first step = %v, want 1 day", EbbinghausA.Interval(0))
	}
	if EbbinghausB.Interval(0) != 2*24*time.Hour {
		t.Errorf("EbbinghausB first step = %v, want 2 days", EbbinghausB.Interval(0))
	}
	if EbbinghausA.Steps() != EbbinghausB.Steps() {
		t.Errorf("policies must graduate at the same step count: %d vs %d", EbbinghausA.Steps(), EbbinghausB.Steps())
	}
}

func TestNegativeCountTreatedAsZero(t *testing.T) {
	if got := EbbinghausA.Interval(-1); got != EbbinghausA.Interval(0) {
		t.Errorf("Interval(-1) = %v, want first entry", got)
	}
}
