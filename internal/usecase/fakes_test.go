package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

// In-memory repository fakes shared by the usecase tests.

type fakeUserRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[int64]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := *u
	copy.ID = r.seq
	r.items[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[u.ID]; !ok {
		return nil, entity.ErrUserNotFound
	}
	copy := *u
	r.items[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	out := *item
	return &out, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.Username == username {
			out := *item
			return &out, nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.Email == email {
			out := *item
			return &out, nil
		}
	}
	return nil, entity.ErrUserNotFound
}

type fakeWordRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.Word
}

func newFakeWordRepo() *fakeWordRepo {
	return &fakeWordRepo{items: make(map[int64]*entity.Word)}
}

func (r *fakeWordRepo) Create(ctx context.Context, w *entity.Word) (*entity.Word, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := *w
	copy.ID = r.seq
	r.items[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *fakeWordRepo) Update(ctx context.Context, w *entity.Word) (*entity.Word, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[w.ID]; !ok {
		return nil, entity.ErrWordNotFound
	}
	copy := *w
	r.items[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *fakeWordRepo) GetByID(ctx context.Context, id int64) (*entity.Word, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrWordNotFound
	}
	out := *item
	return &out, nil
}

func (r *fakeWordRepo) GetByIDs(ctx context.Context, ids []int64) ([]entity.Word, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Word
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeWordRepo) FindByText(ctx context.Context, text string) (*entity.Word, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.Text == text {
			out := *item
			return &out, nil
		}
	}
	return nil, entity.ErrWordNotFound
}

func (r *fakeWordRepo) List(ctx context.Context, query *repository.ListWordQuery) ([]entity.Word, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keyword := strings.ToLower(query.Filter)
	var filtered []entity.Word
	for _, item := range r.items {
		if keyword != "" && !strings.Contains(strings.ToLower(item.Text), keyword) {
			continue
		}
		filtered = append(filtered, *item)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return paginate(filtered, query.Pagination), int64(len(filtered)), nil
}

func (r *fakeWordRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return entity.ErrWordNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeBookRepo struct {
	mu        sync.RWMutex
	seq       int64
	items     map[int64]*entity.VocabularyBook
	relations map[int64][]entity.WordRelation // keyed by book id, sorted by position
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{
		items:     make(map[int64]*entity.VocabularyBook),
		relations: make(map[int64][]entity.WordRelation),
	}
}

func (r *fakeBookRepo) Create(ctx context.Context, b *entity.VocabularyBook) (*entity.VocabularyBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := *b
	copy.ID = r.seq
	r.items[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *fakeBookRepo) Update(ctx context.Context, b *entity.VocabularyBook) (*entity.VocabularyBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[b.ID]; !ok {
		return nil, entity.ErrBookNotFound
	}
	copy := *b
	r.items[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *fakeBookRepo) GetByID(ctx context.Context, id int64) (*entity.VocabularyBook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrBookNotFound
	}
	out := *item
	return &out, nil
}

func (r *fakeBookRepo) List(ctx context.Context, query *repository.ListBookQuery) ([]entity.VocabularyBook, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var filtered []entity.VocabularyBook
	for _, item := range r.items {
		if item.UserID != query.UserID {
			continue
		}
		if query.Level != "" && item.Level != query.Level {
			continue
		}
		filtered = append(filtered, *item)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return paginate(filtered, query.Pagination), int64(len(filtered)), nil
}

func (r *fakeBookRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return entity.ErrBookNotFound
	}
	delete(r.items, id)
	delete(r.relations, id)
	return nil
}

func (r *fakeBookRepo) AddWords(ctx context.Context, bookID int64, wordIDs []int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := make(map[int64]bool)
	maxPos := 0
	for _, rel := range r.relations[bookID] {
		existing[rel.WordID] = true
		if rel.Position > maxPos {
			maxPos = rel.Position
		}
	}
	added := 0
	for _, wordID := range wordIDs {
		if existing[wordID] {
			continue
		}
		maxPos++
		r.relations[bookID] = append(r.relations[bookID], entity.WordRelation{
			WordID:   wordID,
			BookID:   bookID,
			Position: maxPos,
		})
		added++
	}
	if book, ok := r.items[bookID]; ok {
		book.TotalWords = len(r.relations[bookID])
	}
	return added, nil
}

func (r *fakeBookRepo) RemoveWord(ctx context.Context, bookID, wordID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rels := r.relations[bookID]
	for i, rel := range rels {
		if rel.WordID == wordID {
			r.relations[bookID] = append(rels[:i], rels[i+1:]...)
			for j := range r.relations[bookID] {
				r.relations[bookID][j].Position = j + 1
			}
			if book, ok := r.items[bookID]; ok {
				book.TotalWords = len(r.relations[bookID])
			}
			return nil
		}
	}
	return entity.ErrWordNotInBook
}

func (r *fakeBookRepo) ReorderWord(ctx context.Context, bookID, wordID int64, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rels := r.relations[bookID]
	idx := -1
	for i, rel := range rels {
		if rel.WordID == wordID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return entity.ErrWordNotInBook
	}
	moved := rels[idx]
	rels = append(rels[:idx], rels[idx+1:]...)
	if position > len(rels)+1 {
		position = len(rels) + 1
	}
	rels = append(rels[:position-1], append([]entity.WordRelation{moved}, rels[position-1:]...)...)
	for i := range rels {
		rels[i].Position = i + 1
	}
	r.relations[bookID] = rels
	return nil
}

func (r *fakeBookRepo) ListWords(ctx context.Context, bookID int64, page repository.Pagination) ([]entity.Word, int64, error) {
	// Tests that need word payloads go through ListWordIDs + the word fake.
	return nil, int64(len(r.relations[bookID])), nil
}

func (r *fakeBookRepo) ListWordIDs(ctx context.Context, bookID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rels := append([]entity.WordRelation(nil), r.relations[bookID]...)
	sort.Slice(rels, func(i, j int) bool { return rels[i].Position < rels[j].Position })
	ids := make([]int64, 0, len(rels))
	for _, rel := range rels {
		ids = append(ids, rel.WordID)
	}
	return ids, nil
}

func (r *fakeBookRepo) HasWord(ctx context.Context, bookID, wordID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rel := range r.relations[bookID] {
		if rel.WordID == wordID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookRepo) CountWords(ctx context.Context, bookID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.relations[bookID]), nil
}

type fakeRecordRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.LearningRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{items: make(map[int64]*entity.LearningRecord)}
}

func cloneRecord(r *entity.LearningRecord) *entity.LearningRecord {
	copy := *r
	copy.SessionStart = clonePtr(r.SessionStart)
	copy.LastReviewTime = clonePtr(r.LastReviewTime)
	copy.NextReviewTime = clonePtr(r.NextReviewTime)
	return &copy
}

func clonePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (r *fakeRecordRepo) Create(ctx context.Context, rec *entity.LearningRecord) (*entity.LearningRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.UserID == rec.UserID && item.BookID == rec.BookID && item.WordID == rec.WordID {
			return nil, entity.ErrConflict
		}
	}
	r.seq++
	copy := cloneRecord(rec)
	copy.ID = r.seq
	r.items[copy.ID] = copy
	return cloneRecord(copy), nil
}

func (r *fakeRecordRepo) Update(ctx context.Context, rec *entity.LearningRecord) (*entity.LearningRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[rec.ID]; !ok {
		return nil, entity.ErrRecordNotFound
	}
	copy := cloneRecord(rec)
	r.items[copy.ID] = copy
	return cloneRecord(copy), nil
}

func (r *fakeRecordRepo) GetByID(ctx context.Context, id int64) (*entity.LearningRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrRecordNotFound
	}
	return cloneRecord(item), nil
}

func (r *fakeRecordRepo) Find(ctx context.Context, userID, bookID, wordID int64) (*entity.LearningRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.UserID == userID && item.BookID == bookID && item.WordID == wordID {
			return cloneRecord(item), nil
		}
	}
	return nil, entity.ErrRecordNotFound
}

func (r *fakeRecordRepo) List(ctx context.Context, query *repository.ListRecordQuery) ([]entity.LearningRecord, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var filtered []entity.LearningRecord
	for _, item := range r.items {
		if item.UserID != query.UserID {
			continue
		}
		if query.BookID != 0 && item.BookID != query.BookID {
			continue
		}
		if query.Status != "" && item.Status != query.Status {
			continue
		}
		filtered = append(filtered, *cloneRecord(item))
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return filtered, int64(len(filtered)), nil
}

func (r *fakeRecordRepo) ListDue(ctx context.Context, userID int64, due time.Time, limit int) ([]entity.LearningRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.LearningRecord
	for _, item := range r.items {
		if item.UserID != userID || item.Status != entity.StatusLearning {
			continue
		}
		if item.NextReviewTime == nil || item.NextReviewTime.After(due) {
			continue
		}
		out = append(out, *cloneRecord(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextReviewTime.Before(*out[j].NextReviewTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRecordRepo) LearnedWordIDs(ctx context.Context, userID, bookID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []int64
	for _, item := range r.items {
		if item.UserID == userID && item.BookID == bookID {
			ids = append(ids, item.WordID)
		}
	}
	return ids, nil
}

func (r *fakeRecordRepo) CountByStatus(ctx context.Context, userID, bookID int64) (map[entity.RecordStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[entity.RecordStatus]int)
	for _, item := range r.items {
		if item.UserID == userID && (bookID == 0 || item.BookID == bookID) {
			counts[item.Status]++
		}
	}
	return counts, nil
}

func (r *fakeRecordRepo) Statistics(ctx context.Context, userID int64) (*entity.RecordStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &entity.RecordStatistics{}
	var mastery float64
	for _, item := range r.items {
		if item.UserID != userID {
			continue
		}
		stats.Total++
		mastery += item.MasteryLevel
		switch item.Status {
		case entity.StatusLearning:
			stats.Learning++
		case entity.StatusReviewing:
			stats.Reviewing++
		case entity.StatusMastered:
			stats.Mastered++
		}
	}
	if stats.Total > 0 {
		stats.AverageMastery = mastery / float64(stats.Total)
	}
	return stats, nil
}

func (r *fakeRecordRepo) StudyDays(ctx context.Context, userID int64, loc *time.Location) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]time.Time)
	for _, item := range r.items {
		if item.UserID != userID {
			continue
		}
		day := item.CreatedAt.In(loc)
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		seen[day.Format("2006-01-02")] = day
	}
	var days []time.Time
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days, nil
}

func (r *fakeRecordRepo) CountCreated(ctx context.Context, userID, bookID int64, from, to time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, item := range r.items {
		if item.UserID != userID || (bookID != 0 && item.BookID != bookID) {
			continue
		}
		if !item.CreatedAt.Before(from) && item.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (r *fakeRecordRepo) SumStudyTime(ctx context.Context, userID, bookID int64) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total float64
	for _, item := range r.items {
		if item.UserID == userID && (bookID == 0 || item.BookID == bookID) {
			total += item.StudyTime
		}
	}
	return total, nil
}

type fakePlanRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.ReviewPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{items: make(map[int64]*entity.ReviewPlan)}
}

func (r *fakePlanRepo) CreateBatch(ctx context.Context, plans []entity.ReviewPlan) ([]entity.ReviewPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.ReviewPlan, 0, len(plans))
	for _, p := range plans {
		r.seq++
		copy := p
		copy.ID = r.seq
		r.items[copy.ID] = &copy
		out = append(out, copy)
	}
	return out, nil
}

func (r *fakePlanRepo) Update(ctx context.Context, p *entity.ReviewPlan) (*entity.ReviewPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return nil, entity.ErrPlanNotFound
	}
	copy := *p
	r.items[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id int64) (*entity.ReviewPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrPlanNotFound
	}
	out := *item
	return &out, nil
}

func (r *fakePlanRepo) List(ctx context.Context, query *repository.ListPlanQuery) ([]entity.ReviewPlan, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var filtered []entity.ReviewPlan
	for _, item := range r.items {
		if item.UserID != query.UserID {
			continue
		}
		if query.Status != "" && item.Status != query.Status {
			continue
		}
		if query.Date != nil && item.ScheduledTime.Format("2006-01-02") != query.Date.Format("2006-01-02") {
			continue
		}
		filtered = append(filtered, *item)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ScheduledTime.Before(filtered[j].ScheduledTime) })
	return paginate(filtered, query.Pagination), int64(len(filtered)), nil
}

func (r *fakePlanRepo) ExistsPending(ctx context.Context, userID, wordID int64, day time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.UserID == userID && item.WordID == wordID && item.Status == entity.PlanPending {
			return true, nil
		}
	}
	return false, nil
}

type fakeGoalRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.LearningGoal
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{items: make(map[int64]*entity.LearningGoal)}
}

func (r *fakeGoalRepo) Create(ctx context.Context, g *entity.LearningGoal) (*entity.LearningGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := *g
	copy.ID = r.seq
	r.items[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *fakeGoalRepo) Update(ctx context.Context, g *entity.LearningGoal) (*entity.LearningGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[g.ID]; !ok {
		return nil, entity.ErrGoalNotFound
	}
	copy := *g
	r.items[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *fakeGoalRepo) FindActive(ctx context.Context, userID, bookID int64) (*entity.LearningGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.UserID == userID && item.BookID == bookID && item.Status == entity.GoalActive {
			out := *item
			return &out, nil
		}
	}
	return nil, entity.ErrGoalNotFound
}

func (r *fakeGoalRepo) ListActive(ctx context.Context, userID int64) ([]entity.LearningGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.LearningGoal
	for _, item := range r.items {
		if item.UserID == userID && item.Status == entity.GoalActive {
			out = append(out, *item)
		}
	}
	return out, nil
}

type fakeLearningPlanRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.LearningPlan
}

func newFakeLearningPlanRepo() *fakeLearningPlanRepo {
	return &fakeLearningPlanRepo{items: make(map[int64]*entity.LearningPlan)}
}

func (r *fakeLearningPlanRepo) Create(ctx context.Context, p *entity.LearningPlan) (*entity.LearningPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := *p
	copy.ID = r.seq
	r.items[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *fakeLearningPlanRepo) Update(ctx context.Context, p *entity.LearningPlan) (*entity.LearningPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return nil, entity.ErrLearningPlanMissing
	}
	copy := *p
	r.items[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *fakeLearningPlanRepo) FindActive(ctx context.Context, userID, bookID int64) (*entity.LearningPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.UserID == userID && item.BookID == bookID && item.Status == entity.GoalActive {
			out := *item
			return &out, nil
		}
	}
	return nil, entity.ErrLearningPlanMissing
}

type fakeAssessmentRepo struct {
	mu    sync.RWMutex
	seq   int64
	qseq  int64
	items map[int64]*entity.Assessment
}

func newFakeAssessmentRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{items: make(map[int64]*entity.Assessment)}
}

func cloneAssessment(a *entity.Assessment) *entity.Assessment {
	copy := *a
	copy.CompletedAt = clonePtr(a.CompletedAt)
	copy.Questions = make([]entity.AssessmentQuestion, len(a.Questions))
	for i, q := range a.Questions {
		qc := q
		qc.Options = append([]string(nil), q.Options...)
		if q.UserAnswer != nil {
			v := *q.UserAnswer
			qc.UserAnswer = &v
		}
		if q.IsCorrect != nil {
			v := *q.IsCorrect
			qc.IsCorrect = &v
		}
		copy.Questions[i] = qc
	}
	return &copy
}

func (r *fakeAssessmentRepo) Create(ctx context.Context, a *entity.Assessment) (*entity.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := cloneAssessment(a)
	copy.ID = r.seq
	for i := range copy.Questions {
		r.qseq++
		copy.Questions[i].ID = r.qseq
		copy.Questions[i].AssessmentID = copy.ID
	}
	r.items[copy.ID] = copy
	return cloneAssessment(copy), nil
}

func (r *fakeAssessmentRepo) Update(ctx context.Context, a *entity.Assessment) (*entity.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.ID]; !ok {
		return nil, entity.ErrAssessmentNotFound
	}
	copy := cloneAssessment(a)
	r.items[copy.ID] = copy
	return cloneAssessment(copy), nil
}

func (r *fakeAssessmentRepo) GetByID(ctx context.Context, id int64) (*entity.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrAssessmentNotFound
	}
	return cloneAssessment(item), nil
}

func (r *fakeAssessmentRepo) ListCompleted(ctx context.Context, userID int64, page repository.Pagination) ([]entity.Assessment, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Assessment
	for _, item := range r.items {
		if item.UserID == userID && item.Status == entity.AssessmentCompleted {
			out = append(out, *cloneAssessment(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(*out[j].CompletedAt)
	})
	return paginate(out, page), int64(len(out)), nil
}

type fakeTestRepo struct {
	mu      sync.RWMutex
	seq     int64
	qseq    int64
	rseq    int64
	items   map[int64]*entity.Test
	records map[int64]*entity.TestRecord
}

func newFakeTestRepo() *fakeTestRepo {
	return &fakeTestRepo{
		items:   make(map[int64]*entity.Test),
		records: make(map[int64]*entity.TestRecord),
	}
}

func cloneTest(t *entity.Test) *entity.Test {
	copy := *t
	copy.StartTime = clonePtr(t.StartTime)
	copy.Questions = make([]entity.TestQuestion, len(t.Questions))
	for i, q := range t.Questions {
		qc := q
		qc.Options = append([]string(nil), q.Options...)
		copy.Questions[i] = qc
	}
	return &copy
}

func (r *fakeTestRepo) Create(ctx context.Context, t *entity.Test) (*entity.Test, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := cloneTest(t)
	copy.ID = r.seq
	for i := range copy.Questions {
		r.qseq++
		copy.Questions[i].ID = r.qseq
		copy.Questions[i].TestID = copy.ID
	}
	r.items[copy.ID] = copy
	return cloneTest(copy), nil
}

func (r *fakeTestRepo) Update(ctx context.Context, t *entity.Test) (*entity.Test, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID]; !ok {
		return nil, entity.ErrTestNotFound
	}
	copy := cloneTest(t)
	r.items[copy.ID] = copy
	return cloneTest(copy), nil
}

func (r *fakeTestRepo) GetByID(ctx context.Context, id int64) (*entity.Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrTestNotFound
	}
	return cloneTest(item), nil
}

func (r *fakeTestRepo) List(ctx context.Context, query *repository.ListTestQuery) ([]entity.Test, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Test
	for _, item := range r.items {
		if item.UserID != query.UserID {
			continue
		}
		if query.BookID != 0 && item.BookID != query.BookID {
			continue
		}
		out = append(out, *cloneTest(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, query.Pagination), int64(len(out)), nil
}

func (r *fakeTestRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return entity.ErrTestNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeTestRepo) AddQuestion(ctx context.Context, q *entity.TestQuestion) (*entity.TestQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	test, ok := r.items[q.TestID]
	if !ok {
		return nil, entity.ErrTestNotFound
	}
	r.qseq++
	copy := *q
	copy.ID = r.qseq
	test.Questions = append(test.Questions, copy)
	out := copy
	return &out, nil
}

func (r *fakeTestRepo) UpdateQuestion(ctx context.Context, q *entity.TestQuestion) (*entity.TestQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	test, ok := r.items[q.TestID]
	if !ok {
		return nil, entity.ErrTestNotFound
	}
	for i := range test.Questions {
		if test.Questions[i].ID == q.ID {
			test.Questions[i] = *q
			out := *q
			return &out, nil
		}
	}
	return nil, entity.ErrQuestionNotFound
}

func (r *fakeTestRepo) DeleteQuestion(ctx context.Context, testID, questionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	test, ok := r.items[testID]
	if !ok {
		return entity.ErrTestNotFound
	}
	for i := range test.Questions {
		if test.Questions[i].ID == questionID {
			test.Questions = append(test.Questions[:i], test.Questions[i+1:]...)
			return nil
		}
	}
	return entity.ErrQuestionNotFound
}

func (r *fakeTestRepo) CreateRecord(ctx context.Context, rec *entity.TestRecord) (*entity.TestRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rseq++
	copy := *rec
	copy.ID = r.rseq
	copy.Answers = append([]entity.TestAnswerResult(nil), rec.Answers...)
	for i := range copy.Answers {
		copy.Answers[i].RecordID = copy.ID
	}
	r.records[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *fakeTestRepo) ListRecords(ctx context.Context, userID, testID int64, page repository.Pagination) ([]entity.TestRecord, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.TestRecord
	for _, item := range r.records {
		if item.UserID != userID {
			continue
		}
		if testID != 0 && item.TestID != testID {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, page), int64(len(out)), nil
}

func (r *fakeTestRepo) RecordAggregate(ctx context.Context, userID int64) (*repository.TestRecordAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agg := &repository.TestRecordAggregate{}
	for _, item := range r.records {
		if item.UserID != userID {
			continue
		}
		agg.Attempts++
		if item.IsPassed {
			agg.Passed++
		}
		agg.Correct += item.CorrectCount
		agg.Answered += item.TotalCount
		agg.ScoreTotal += item.Score
	}
	return agg, nil
}

func paginate[T any](items []T, page repository.Pagination) []T {
	page.Normalize()
	start := page.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + page.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
