package entity

import "time"

// AssessmentStatus is the lifecycle of a placement assessment.
type AssessmentStatus string

const (
	AssessmentInProgress AssessmentStatus = "in_progress"
	AssessmentCompleted  AssessmentStatus = "completed"
)

// Assessment is a multiple-choice placement run over a sample of a book's
// words. Answers are collected one by one and the score is fixed on
// completion.
type Assessment struct {
	ID          int64
	UserID      int64
	BookID      int64
	Status      AssessmentStatus
	Score       float64
	Questions   []AssessmentQuestion
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssessmentQuestion asks for the definition of a single word. Options hold
// the correct definition plus up to three distractors, pre-shuffled.
type AssessmentQuestion struct {
	ID           int64
	AssessmentID int64
	WordID       int64
	WordText     string
	Options      []string
	Correct      string
	UserAnswer   *string
	IsCorrect    *bool
	CreatedAt    time.Time
}

// SubmitAnswer records the user's choice for one question. Answers compare by
// exact string equality and may be revised until the assessment completes.
func (a *Assessment) SubmitAnswer(questionID int64, answer string, now time.Time) (bool, error) {
	if a.Status == AssessmentCompleted {
		return false, ErrAssessmentCompleted
	}
	for i := range a.Questions {
		q := &a.Questions[i]
		if q.ID != questionID {
			continue
		}
		correct := answer == q.Correct
		q.UserAnswer = &answer
		q.IsCorrect = &correct
		a.UpdatedAt = now
		return correct, nil
	}
	return false, ErrQuestionMismatch
}

// Complete freezes the assessment and computes the percentage score.
// Unanswered questions count as wrong. It returns the word IDs answered
// incorrectly so the caller can adjust learning records.
func (a *Assessment) Complete(now time.Time) ([]int64, error) {
	if a.Status == AssessmentCompleted {
		return nil, ErrAssessmentCompleted
	}
	if len(a.Questions) == 0 {
		return nil, ErrAssessmentEmpty
	}

	var correct int
	var wrong []int64
	for _, q := range a.Questions {
		if q.IsCorrect != nil && *q.IsCorrect {
			correct++
		} else {
			wrong = append(wrong, q.WordID)
		}
	}

	a.Score = float64(correct) / float64(len(a.Questions)) * 100
	a.Status = AssessmentCompleted
	a.CompletedAt = &now
	a.UpdatedAt = now
	return wrong, nil
}
