package services

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
)

var errNotImplemented = errors.New("not implemented in mock")

// mockStore is the shared in-memory state behind mockRepository.
type mockStore struct {
	sessions         map[string]*models.ExamSession
	questions        map[string]*models.Question
	categories       map[string]*models.Category
	attempts         map[string]*models.Attempt
	attemptQuestions []*models.AttemptQuestion
	answers          []*models.Answer
	users            map[string]*models.User

	// completeRows, when set, overrides the row count returned by
	// AttemptRepository.Complete to simulate a lost completion race.
	completeRows *int64

	// activeMisses makes the next n GetActive lookups report not-found,
	// simulating a concurrent Start racing past the resume check.
	activeMisses int
}

func newMockStore() *mockStore {
	return &mockStore{
		sessions:   make(map[string]*models.ExamSession),
		questions:  make(map[string]*models.Question),
		categories: make(map[string]*models.Category),
		attempts:   make(map[string]*models.Attempt),
		users:      make(map[string]*models.User),
	}
}

// mockRepository implements repositories.Repository over mockStore. The tx
// handle is ignored; WithTransaction runs fn directly.
type mockRepository struct {
	store *mockStore
}

func newMockRepository() *mockRepository {
	return &mockRepository{store: newMockStore()}
}

func (m *mockRepository) Question() repositories.QuestionRepository {
	return &mockQuestionRepo{m.store}
}
func (m *mockRepository) Category() repositories.CategoryRepository {
	return &mockCategoryRepo{m.store}
}
func (m *mockRepository) Session() repositories.SessionRepository {
	return &mockSessionRepo{m.store}
}
func (m *mockRepository) Attempt() repositories.AttemptRepository {
	return &mockAttemptRepo{m.store}
}
func (m *mockRepository) AttemptQuestion() repositories.AttemptQuestionRepository {
	return &mockAttemptQuestionRepo{m.store}
}
func (m *mockRepository) Answer() repositories.AnswerRepository {
	return &mockAnswerRepo{m.store}
}
func (m *mockRepository) Dashboard() repositories.DashboardRepository {
	return &mockDashboardRepo{m.store}
}
func (m *mockRepository) User() repositories.UserRepository {
	return &mockUserRepo{m.store}
}

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// ===== QUESTIONS =====

type mockQuestionRepo struct{ s *mockStore }

func (r *mockQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	r.s.questions[question.ID] = question
	return nil
}

func (r *mockQuestionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	for _, q := range questions {
		if err := r.Create(ctx, tx, q); err != nil {
			return err
		}
	}
	return nil
}

func (r *mockQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error) {
	q, ok := r.s.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (r *mockQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Question, error) {
	var out []*models.Question
	for _, id := range ids {
		if q, ok := r.s.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *mockQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	r.s.questions[question.ID] = question
	return nil
}

func (r *mockQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	delete(r.s.questions, id)
	return nil
}

func (r *mockQuestionRepo) Deactivate(ctx context.Context, tx *gorm.DB, id string) error {
	if q, ok := r.s.questions[id]; ok {
		q.IsActive = false
	}
	return nil
}

func (r *mockQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	var out []*models.Question
	for _, q := range r.s.questions {
		out = append(out, q)
	}
	return out, int64(len(out)), nil
}

func (r *mockQuestionRepo) GetActiveForDraw(ctx context.Context, tx *gorm.DB, filters repositories.DrawFilters) ([]*models.Question, error) {
	var out []*models.Question
	for _, q := range r.s.questions {
		if q.IsActive {
			out = append(out, q)
		}
	}
	// Stable order so seeded draws are reproducible across runs.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockQuestionRepo) CountActiveByDifficulty(ctx context.Context, tx *gorm.DB, categories []string) (map[models.Difficulty]int64, error) {
	counts := make(map[models.Difficulty]int64)
	for _, q := range r.s.questions {
		if q.IsActive {
			counts[q.Difficulty]++
		}
	}
	return counts, nil
}

func (r *mockQuestionRepo) CountActive(ctx context.Context, tx *gorm.DB, filters repositories.DrawFilters) (int64, error) {
	var count int64
	for _, q := range r.s.questions {
		if q.IsActive {
			count++
		}
	}
	return count, nil
}

func (r *mockQuestionRepo) IsReferenced(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	for _, aq := range r.s.attemptQuestions {
		if aq.QuestionID == id {
			return true, nil
		}
	}
	return false, nil
}

// ===== CATEGORIES =====

type mockCategoryRepo struct{ s *mockStore }

func (r *mockCategoryRepo) Create(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	r.s.categories[category.ID] = category
	return nil
}

func (r *mockCategoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Category, error) {
	c, ok := r.s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *mockCategoryRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Category, error) {
	for _, c := range r.s.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockCategoryRepo) Update(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	r.s.categories[category.ID] = category
	return nil
}

func (r *mockCategoryRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	delete(r.s.categories, id)
	return nil
}

func (r *mockCategoryRepo) List(ctx context.Context, tx *gorm.DB, includeInactive bool) ([]*models.Category, error) {
	var out []*models.Category
	for _, c := range r.s.categories {
		if includeInactive || c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *mockCategoryRepo) HasQuestions(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	for _, q := range r.s.questions {
		if q.CategoryID != nil && *q.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

// ===== SESSIONS =====

type mockSessionRepo struct{ s *mockStore }

func (r *mockSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	r.s.sessions[session.ID] = session
	return nil
}

func (r *mockSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ExamSession, error) {
	s, ok := r.s.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *mockSessionRepo) Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	r.s.sessions[session.ID] = session
	return nil
}

func (r *mockSessionRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	delete(r.s.sessions, id)
	return nil
}

func (r *mockSessionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	var out []*models.ExamSession
	for _, s := range r.s.sessions {
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (r *mockSessionRepo) ListVisible(ctx context.Context, tx *gorm.DB) ([]*models.ExamSession, error) {
	var out []*models.ExamSession
	for _, s := range r.s.sessions {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *mockSessionRepo) CountAttempts(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error) {
	var count int64
	for _, a := range r.s.attempts {
		if a.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

// ===== ATTEMPTS =====

type mockAttemptRepo struct{ s *mockStore }

func (r *mockAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	// The partial unique index allows one in-progress row per pair.
	for _, a := range r.s.attempts {
		if a.CandidateID == attempt.CandidateID && a.SessionID == attempt.SessionID && a.CompletedAt == nil {
			return gorm.ErrDuplicatedKey
		}
	}
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	r.s.attempts[attempt.ID] = attempt
	return nil
}

func (r *mockAttemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Attempt, error) {
	a, ok := r.s.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *mockAttemptRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Attempt, error) {
	a, ok := r.s.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	detailed := *a
	detailed.Session = r.s.sessions[a.SessionID]
	detailed.Questions = nil
	detailed.Answers = nil
	for _, aq := range r.s.attemptQuestions {
		if aq.AttemptID == id {
			frozen := *aq
			frozen.Question = r.s.questions[aq.QuestionID]
			detailed.Questions = append(detailed.Questions, frozen)
		}
	}
	sort.Slice(detailed.Questions, func(i, j int) bool {
		return detailed.Questions[i].OrderIndex < detailed.Questions[j].OrderIndex
	})
	for _, answer := range r.s.answers {
		if answer.AttemptID == id {
			detailed.Answers = append(detailed.Answers, *answer)
		}
	}
	return &detailed, nil
}

func (r *mockAttemptRepo) Update(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	r.s.attempts[attempt.ID] = attempt
	return nil
}

func (r *mockAttemptRepo) GetActive(ctx context.Context, tx *gorm.DB, candidateID, sessionID string) (*models.Attempt, error) {
	if r.s.activeMisses > 0 {
		r.s.activeMisses--
		return nil, gorm.ErrRecordNotFound
	}
	for _, a := range r.s.attempts {
		if a.CandidateID == candidateID && a.SessionID == sessionID && a.Status == models.AttemptInProgress {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockAttemptRepo) GetCompleted(ctx context.Context, tx *gorm.DB, candidateID, sessionID string) (*models.Attempt, error) {
	for _, a := range r.s.attempts {
		if a.CandidateID == candidateID && a.SessionID == sessionID && a.Status == models.AttemptCompleted {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockAttemptRepo) GetCompletedBySessions(ctx context.Context, tx *gorm.DB, candidateID string, sessionIDs []string) (map[string]*models.Attempt, error) {
	out := make(map[string]*models.Attempt)
	for _, sessionID := range sessionIDs {
		if a, err := r.GetCompleted(ctx, tx, candidateID, sessionID); err == nil {
			out[sessionID] = a
		}
	}
	return out, nil
}

func (r *mockAttemptRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	var out []*models.Attempt
	for _, a := range r.s.attempts {
		if filters.CandidateID != nil && a.CandidateID != *filters.CandidateID {
			continue
		}
		if filters.SessionID != nil && a.SessionID != *filters.SessionID {
			continue
		}
		if filters.Status != nil && a.Status != *filters.Status {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (r *mockAttemptRepo) Complete(ctx context.Context, tx *gorm.DB, id string, result repositories.AttemptCompletion) (int64, error) {
	if r.s.completeRows != nil {
		return *r.s.completeRows, nil
	}

	a, ok := r.s.attempts[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	if a.CompletedAt != nil {
		return 0, nil
	}

	completedAt := result.CompletedAt
	a.Status = models.AttemptCompleted
	a.CompletedAt = &completedAt
	a.Score = &result.Score
	a.CorrectAnswers = &result.CorrectAnswers
	a.Passed = &result.Passed
	a.TimeSpent = &result.TimeSpent
	a.TabSwitches = result.TabSwitches
	return 1, nil
}

// ===== ATTEMPT QUESTIONS =====

type mockAttemptQuestionRepo struct{ s *mockStore }

func (r *mockAttemptQuestionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.AttemptQuestion) error {
	for _, aq := range questions {
		if aq.ID == "" {
			aq.ID = uuid.NewString()
		}
		r.s.attemptQuestions = append(r.s.attemptQuestions, aq)
	}
	return nil
}

func (r *mockAttemptQuestionRepo) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID string) ([]*models.AttemptQuestion, error) {
	var out []*models.AttemptQuestion
	for _, aq := range r.s.attemptQuestions {
		if aq.AttemptID == attemptID {
			frozen := *aq
			frozen.Question = r.s.questions[aq.QuestionID]
			out = append(out, &frozen)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *mockAttemptQuestionRepo) Exists(ctx context.Context, tx *gorm.DB, attemptID, questionID string) (bool, error) {
	for _, aq := range r.s.attemptQuestions {
		if aq.AttemptID == attemptID && aq.QuestionID == questionID {
			return true, nil
		}
	}
	return false, nil
}

// ===== ANSWERS =====

type mockAnswerRepo struct{ s *mockStore }

func (r *mockAnswerRepo) Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	for _, existing := range r.s.answers {
		if existing.AttemptID == answer.AttemptID && existing.QuestionID == answer.QuestionID {
			existing.AnswerGiven = answer.AnswerGiven
			existing.AnsweredAt = answer.AnsweredAt
			return nil
		}
	}
	if answer.ID == "" {
		answer.ID = uuid.NewString()
	}
	r.s.answers = append(r.s.answers, answer)
	return nil
}

func (r *mockAnswerRepo) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID string) ([]*models.Answer, error) {
	var out []*models.Answer
	for _, answer := range r.s.answers {
		if answer.AttemptID == attemptID {
			out = append(out, answer)
		}
	}
	return out, nil
}

func (r *mockAnswerRepo) GetByAttemptAndQuestion(ctx context.Context, tx *gorm.DB, attemptID, questionID string) (*models.Answer, error) {
	for _, answer := range r.s.answers {
		if answer.AttemptID == attemptID && answer.QuestionID == questionID {
			return answer, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockAnswerRepo) MarkGraded(ctx context.Context, tx *gorm.DB, attemptID string, correctness map[string]bool) error {
	for _, answer := range r.s.answers {
		if answer.AttemptID != attemptID {
			continue
		}
		if correct, ok := correctness[answer.QuestionID]; ok {
			c := correct
			answer.IsCorrect = &c
		}
	}
	return nil
}

// ===== USERS =====

type mockUserRepo struct{ s *mockStore }

func (r *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.s.users[user.ID] = user
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *mockUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) Upsert(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return r.Create(ctx, tx, user)
}

// ===== DASHBOARD =====

type mockDashboardRepo struct{ s *mockStore }

func (r *mockDashboardRepo) GetAdminStats(ctx context.Context, tx *gorm.DB) (*repositories.AdminStats, error) {
	return nil, errNotImplemented
}

func (r *mockDashboardRepo) GetCandidateStats(ctx context.Context, tx *gorm.DB, candidateID string) (*repositories.CandidateStats, error) {
	return nil, errNotImplemented
}

func (r *mockDashboardRepo) GetExportRows(ctx context.Context, tx *gorm.DB, sessionID *string) ([]repositories.ExportRow, error) {
	return nil, errNotImplemented
}
