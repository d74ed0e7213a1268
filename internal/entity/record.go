package entity

import (
	"time"

	"github.com/lexloop/lexloop/internal/srs"
)

// RecordStatus tracks where a word sits in a user's learning lifecycle.
type RecordStatus string

const (
	StatusLearning  RecordStatus = "learning"
	StatusReviewing RecordStatus = "reviewing"
	StatusMastered  RecordStatus = "mastered"
)

// ValidRecordStatus reports whether s is one of the three lifecycle states.
func ValidRecordStatus(s RecordStatus) bool {
	switch s {
	case StatusLearning, StatusReviewing, StatusMastered:
		return true
	}
	return false
}

// ReviewOutcome is the user's self-reported result of a single review.
type ReviewOutcome string

const (
	OutcomeRemembered ReviewOutcome = "remembered"
	OutcomeForgotten  ReviewOutcome = "forgotten"
)

// ParseReviewOutcome also accepts the legacy correct/incorrect aliases still
// sent by older clients.
func ParseReviewOutcome(s string) (ReviewOutcome, error) {
	switch s {
	case "remembered", "correct":
		return OutcomeRemembered, nil
	case "forgotten", "incorrect":
		return OutcomeForgotten, nil
	}
	return "", ErrInvalidOutcome
}

// LearningRecord is the per-(user, book, word) progress row. One exists per
// triple; it is created on the first study interaction and mutated by every
// review, test and assessment outcome that touches the word.
type LearningRecord struct {
	ID             int64
	UserID         int64
	BookID         int64
	WordID         int64
	Status         RecordStatus
	ReviewCount    int
	MasteryLevel   float64
	StudyTime      float64 // accumulated seconds
	SessionStart   *time.Time
	LastReviewTime *time.Time
	NextReviewTime *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewLearningRecord builds a record in the given status, defaulting to
// learning.
func NewLearningRecord(userID, bookID, wordID int64, status RecordStatus, now time.Time) (*LearningRecord, error) {
	if status == "" {
		status = StatusLearning
	}
	if !ValidRecordStatus(status) {
		return nil, ErrInvalidRecordStatus
	}
	return &LearningRecord{
		UserID:    userID,
		BookID:    bookID,
		WordID:    wordID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyReview records one review outcome against the given interval policy.
//
// A remembered outcome schedules the next review at now plus the policy
// interval for the pre-increment review count, promotes the record to
// mastered once the incremented count reaches the policy's step count, and
// bumps mastery by 0.2 capped at 1.0. An existing later next_review_time is
// kept: a successful review never pulls a review earlier.
//
// A forgotten outcome reschedules for tomorrow and leaves status and mastery
// untouched.
func (r *LearningRecord) ApplyReview(outcome ReviewOutcome, policy srs.Policy, now time.Time) error {
	switch outcome {
	case OutcomeRemembered, OutcomeForgotten:
	default:
		return ErrInvalidOutcome
	}

	countBefore := r.ReviewCount
	r.ReviewCount++
	last := now
	r.LastReviewTime = &last

	if outcome == OutcomeForgotten {
		next := now.Add(srs.RelearnInterval)
		r.NextReviewTime = &next
		r.UpdatedAt = now
		return nil
	}

	next := now.Add(policy.Interval(countBefore))
	if r.NextReviewTime != nil && r.NextReviewTime.After(next) {
		next = *r.NextReviewTime
	}
	r.NextReviewTime = &next

	if r.ReviewCount >= policy.Steps() {
		r.Status = StatusMastered
	}
	r.MasteryLevel = min(1.0, r.MasteryLevel+0.2)
	r.UpdatedAt = now
	return nil
}

// Demote drops a previously mastered record back to learning and makes it
// immediately due. Used when the word is answered incorrectly in a test or
// assessment.
func (r *LearningRecord) Demote(now time.Time) {
	r.Status = StatusLearning
	r.NextReviewTime = &now
	r.UpdatedAt = now
}

// StartSession marks the beginning of a study session.
func (r *LearningRecord) StartSession(now time.Time) {
	r.SessionStart = &now
	r.UpdatedAt = now
}

// EndSession closes an open study session, folding its duration into the
// accumulated study time. A missing session start is a no-op.
func (r *LearningRecord) EndSession(now time.Time) {
	if r.SessionStart == nil {
		return
	}
	if d := now.Sub(*r.SessionStart).Seconds(); d > 0 {
		r.StudyTime += d
	}
	r.SessionStart = nil
	r.UpdatedAt = now
}

// ApplyConfidence maps a 1-5 self rating onto the lifecycle status.
func (r *LearningRecord) ApplyConfidence(level int, now time.Time) error {
	if level < 1 || level > 5 {
		return ErrInvalidArgument
	}
	switch {
	case level >= 4:
		r.Status = StatusMastered
	case level >= 2:
		r.Status = StatusReviewing
	default:
		r.Status = StatusLearning
	}
	r.UpdatedAt = now
	return nil
}

// RecordStatistics is the aggregate view over a user's learning records.
type RecordStatistics struct {
	Total          int
	Learning       int
	Reviewing      int
	Mastered       int
	AverageMastery float64
}
