package entity

import "errors"

// Base error kinds. Adapters translate these into transport status codes, so
// every domain error must wrap exactly one of them.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
	ErrEmptyBook        = errors.New("book contains no words")
)

// Named domain errors.
var (
	ErrUserNotFound        = wrap("user not found", ErrNotFound)
	ErrUserExists          = wrap("user already exists", ErrConflict)
	ErrBadCredentials      = wrap("invalid username or password", ErrInvalidArgument)
	ErrBookNotFound        = wrap("vocabulary book not found", ErrNotFound)
	ErrBookNotOwned        = wrap("vocabulary book belongs to another user", ErrPermissionDenied)
	ErrWordNotFound        = wrap("word not found", ErrNotFound)
	ErrWordNotInBook       = wrap("word is not part of this book", ErrNotFound)
	ErrRecordNotFound      = wrap("learning record not found", ErrNotFound)
	ErrRecordNotOwned      = wrap("learning record belongs to another user", ErrPermissionDenied)
	ErrInvalidRecordStatus = wrap("invalid learning record status", ErrInvalidArgument)
	ErrInvalidOutcome      = wrap("invalid review outcome", ErrInvalidArgument)
	ErrPlanNotFound        = wrap("review plan not found", ErrNotFound)
	ErrGoalExists          = wrap("an active goal already exists for this book", ErrConflict)
	ErrGoalNotFound        = wrap("learning goal not found", ErrNotFound)
	ErrLearningPlanExists  = wrap("a learning plan already exists for this book", ErrConflict)
	ErrLearningPlanMissing = wrap("learning plan not found", ErrNotFound)
	ErrTargetDatePast      = wrap("target date must be in the future", ErrInvalidArgument)

	ErrAssessmentNotFound  = wrap("assessment not found", ErrNotFound)
	ErrAssessmentNotOwned  = wrap("assessment belongs to another user", ErrPermissionDenied)
	ErrAssessmentCompleted = wrap("assessment already completed", ErrConflict)
	ErrAssessmentEmpty     = wrap("assessment has no questions", ErrInvalidArgument)
	ErrQuestionNotFound    = wrap("question not found", ErrNotFound)
	ErrQuestionMismatch    = wrap("question does not belong to this assessment", ErrInvalidArgument)

	ErrTestNotFound       = wrap("test not found", ErrNotFound)
	ErrTestRecordNotFound = wrap("test record not found", ErrNotFound)
	ErrTestNotOwned       = wrap("test belongs to another user", ErrPermissionDenied)
	ErrTestStarted        = wrap("test already started", ErrConflict)
	ErrInvalidTestType    = wrap("invalid test type", ErrInvalidArgument)
	ErrMalformedAnswers   = wrap("answers payload must be a list of question/answer pairs", ErrInvalidArgument)
	ErrNotEnoughWords     = wrap("book does not contain enough words", ErrInvalidArgument)
	ErrTestQuestionOrphan = wrap("question does not belong to this test", ErrNotFound)
)

type wrapped struct {
	msg  string
	kind error
}

func (e *wrapped) Error() string { return e.msg }
func (e *wrapped) Unwrap() error { return e.kind }

func wrap(msg string, kind error) error {
	return &wrapped{msg: msg, kind: kind}
}
