// Package srs holds the spaced-repetition interval policies used when
// scheduling word reviews.
package srs

import "time"

// Policy is a named table of review intervals, indexed by how many times a
// word has already been reviewed. Indexes past the end of the table clamp to
// the last entry.
type Policy struct {
	Name string
	days []int
}

// The two Ebbinghaus-style tables are intentionally kept separate: the review
// submission endpoints and the review-plan completion flow have always used
// slightly different first steps, and unifying them would silently reschedule
// existing users. See DESIGN.md before touching either table.
var (
	// EbbinghausA backs the review submit/complete endpoints.
	EbbinghausA = Policy{Name: "ebbinghaus-a", days: []int{1, 2, 4, 7, 15, 30, 60}}

	// EbbinghausB backs review-plan completion.
	EbbinghausB = Policy{Name: "ebbinghaus-b", days: []int{2, 3, 4, 7, 15, 30, 60}}
)

// Interval returns the delay before the next review for a record that has
// been reviewed reviewCount times so far.
func (p Policy) Interval(reviewCount int) time.Duration {
	if reviewCount < 0 {
		reviewCount = 0
	}
	if reviewCount >= len(p.days) {
		reviewCount = len(p.days) - 1
	}
	return time.Duration(p.days[reviewCount]) * 24 * time.Hour
}

// Steps reports the number of entries in the table. A record whose review
// count reaches this value graduates to mastered.
func (p Policy) Steps() int {
	return len(p.days)
}

// RelearnInterval is the delay applied after a forgotten outcome: try again
// tomorrow regardless of how far along the record was.
const RelearnInterval = 24 * time.Hour
