package entity

import "time"

// TestType selects how questions are presented.
type TestType string

const (
	TestMultipleChoice TestType = "multiple_choice"
	TestTrueFalse      TestType = "true_false"
	TestFillBlank      TestType = "fill_blank"
)

// ValidTestType reports whether t is a supported test type.
func ValidTestType(t TestType) bool {
	switch t {
	case TestMultipleChoice, TestTrueFalse, TestFillBlank:
		return true
	}
	return false
}

// Test is a timed quiz over a book's words. The start timestamp is stamped
// once on first start; each graded submission produces a TestRecord.
type Test struct {
	ID             int64
	UserID         int64
	BookID         int64
	Name           string
	Type           TestType
	Duration       int // seconds, 0 means unlimited
	TotalQuestions int
	PassScore      float64
	StartTime      *time.Time
	Questions      []TestQuestion
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks the fields required for a new test.
func (t *Test) Validate() error {
	if t.Name == "" {
		return ErrInvalidArgument
	}
	if !ValidTestType(t.Type) {
		return ErrInvalidTestType
	}
	if t.PassScore < 0 || t.PassScore > 100 {
		return ErrInvalidArgument
	}
	if t.Duration < 0 || t.TotalQuestions < 0 {
		return ErrInvalidArgument
	}
	return nil
}

// Start stamps the test's start time. Starting twice is a conflict.
func (t *Test) Start(now time.Time) error {
	if t.StartTime != nil {
		return ErrTestStarted
	}
	t.StartTime = &now
	t.UpdatedAt = now
	return nil
}

// TestQuestion is one prompt within a test. Choice questions carry shuffled
// options; fill-blank questions present the definition and expect the word.
type TestQuestion struct {
	ID        int64
	TestID    int64
	WordID    int64
	Type      TestType
	Prompt    string
	Options   []string
	Correct   string
	CreatedAt time.Time
}

// TestAnswer pairs a question with the user's submitted answer.
type TestAnswer struct {
	QuestionID int64
	Answer     string
}

// TestAnswerResult is one graded answer stored with its attempt record.
type TestAnswerResult struct {
	ID         int64
	RecordID   int64
	QuestionID int64
	Answer     string
	IsCorrect  bool
}

// TestRecord is one graded attempt at a test.
type TestRecord struct {
	ID           int64
	TestID       int64
	UserID       int64
	Score        float64
	CorrectCount int
	TotalCount   int
	IsPassed     bool
	TimeSpent    int // seconds
	Answers      []TestAnswerResult
	CompletedAt  time.Time
	CreatedAt    time.Time
}

// Grade scores a full answer sheet against the test. Every answer must
// reference a question of this test or the whole submission is rejected
// before any grading happens. It returns the record and the word IDs
// answered incorrectly; unanswered questions count as wrong.
func (t *Test) Grade(userID int64, answers []TestAnswer, now time.Time) (*TestRecord, []int64, error) {
	byID := make(map[int64]*TestQuestion, len(t.Questions))
	for i := range t.Questions {
		byID[t.Questions[i].ID] = &t.Questions[i]
	}
	for _, a := range answers {
		if _, ok := byID[a.QuestionID]; !ok {
			return nil, nil, ErrTestQuestionOrphan
		}
	}

	answered := make(map[int64]string, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = a.Answer
	}

	var correct int
	var wrong []int64
	results := make([]TestAnswerResult, 0, len(t.Questions))
	for _, q := range t.Questions {
		ans, ok := answered[q.ID]
		isCorrect := ok && ans == q.Correct
		if isCorrect {
			correct++
		} else {
			wrong = append(wrong, q.WordID)
		}
		if ok {
			results = append(results, TestAnswerResult{
				QuestionID: q.ID,
				Answer:     ans,
				IsCorrect:  isCorrect,
			})
		}
	}

	total := len(t.Questions)
	var score float64
	if total > 0 {
		score = float64(correct) / float64(total) * 100
	}
	var spent int
	if t.StartTime != nil {
		spent = int(now.Sub(*t.StartTime).Seconds())
	}
	rec := &TestRecord{
		TestID:       t.ID,
		UserID:       userID,
		Score:        score,
		CorrectCount: correct,
		TotalCount:   total,
		IsPassed:     score >= t.PassScore,
		TimeSpent:    spent,
		Answers:      results,
		CompletedAt:  now,
		CreatedAt:    now,
	}
	return rec, wrong, nil
}
