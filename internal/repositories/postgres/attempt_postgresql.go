package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ai-olympiad/qcm-service/internal/cache"
	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAttemptPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Attempt, error) {
	db := a.getDB(tx)
	var attempt models.Attempt
	if err := db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Attempt, error) {
	db := a.getDB(tx)
	var attempt models.Attempt
	if err := db.WithContext(ctx).
		Preload("Session").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Questions.Question").
		Preload("Answers").
		Where("id = ?", id).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) Update(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Save(attempt).Error; err != nil {
		return fmt.Errorf("failed to update attempt: %w", err)
	}

	cache.SafeDelete(ctx, a.cacheManager.Fast, fmt.Sprintf("attempt:id:%s", attempt.ID))
	return nil
}

func (a *AttemptPostgreSQL) GetActive(ctx context.Context, tx *gorm.DB, candidateID, sessionID string) (*models.Attempt, error) {
	db := a.getDB(tx)
	var attempt models.Attempt
	if err := db.WithContext(ctx).
		Where("candidate_id = ? AND session_id = ? AND status = ?", candidateID, sessionID, models.AttemptInProgress).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetCompleted(ctx context.Context, tx *gorm.DB, candidateID, sessionID string) (*models.Attempt, error) {
	db := a.getDB(tx)
	var attempt models.Attempt
	if err := db.WithContext(ctx).
		Where("candidate_id = ? AND session_id = ? AND status = ?", candidateID, sessionID, models.AttemptCompleted).
		Order("completed_at DESC").
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetCompletedBySessions(ctx context.Context, tx *gorm.DB, candidateID string, sessionIDs []string) (map[string]*models.Attempt, error) {
	if len(sessionIDs) == 0 {
		return map[string]*models.Attempt{}, nil
	}

	db := a.getDB(tx)
	var attempts []*models.Attempt
	if err := db.WithContext(ctx).
		Where("candidate_id = ? AND session_id IN ? AND status = ?", candidateID, sessionIDs, models.AttemptCompleted).
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to get completed attempts: %w", err)
	}

	bySession := make(map[string]*models.Attempt, len(attempts))
	for _, attempt := range attempts {
		bySession[attempt.SessionID] = attempt
	}
	return bySession, nil
}

func (a *AttemptPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	db := a.getDB(tx)
	var attempts []*models.Attempt
	var total int64

	query := db.WithContext(ctx).Model(&models.Attempt{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Session").Preload("Candidate").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

// Complete performs the guarded completion update. The completed_at IS NULL
// predicate makes concurrent completions race-safe: exactly one request
// observes RowsAffected == 1.
func (a *AttemptPostgreSQL) Complete(ctx context.Context, tx *gorm.DB, id string, result repositories.AttemptCompletion) (int64, error) {
	db := a.getDB(tx)
	res := db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]interface{}{
			"status":          models.AttemptCompleted,
			"completed_at":    result.CompletedAt,
			"score":           result.Score,
			"correct_answers": result.CorrectAnswers,
			"passed":          result.Passed,
			"time_spent":      result.TimeSpent,
			"tab_switches":    result.TabSwitches,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to complete attempt: %w", res.Error)
	}

	cache.SafeDelete(ctx, a.cacheManager.Fast, fmt.Sprintf("attempt:id:%s", id))
	return res.RowsAffected, nil
}

func (a *AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.SessionID != nil {
		query = query.Where("session_id = ?", *filters.SessionID)
	}
	if filters.CandidateID != nil {
		query = query.Where("candidate_id = ?", *filters.CandidateID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// ===== ATTEMPT QUESTION REPOSITORY =====

type AttemptQuestionPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptQuestionPostgreSQL(db *gorm.DB) repositories.AttemptQuestionRepository {
	return &AttemptQuestionPostgreSQL{db: db}
}

func (aq *AttemptQuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.AttemptQuestion) error {
	if len(questions) == 0 {
		return nil
	}

	db := aq.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return fmt.Errorf("failed to freeze attempt questions: %w", err)
	}
	return nil
}

func (aq *AttemptQuestionPostgreSQL) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID string) ([]*models.AttemptQuestion, error) {
	db := aq.getDB(tx)
	var questions []*models.AttemptQuestion
	if err := db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("order_index ASC").
		Preload("Question").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get attempt questions: %w", err)
	}
	return questions, nil
}

func (aq *AttemptQuestionPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, attemptID, questionID string) (bool, error) {
	db := aq.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.AttemptQuestion{}).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check attempt question: %w", err)
	}
	return count > 0, nil
}

func (aq *AttemptQuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return aq.db
}

// ===== ANSWER REPOSITORY =====

type AnswerPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAnswerPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AnswerRepository {
	return &AnswerPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// Upsert relies on the (attempt_id, question_id) unique index so concurrent
// re-submissions of the same question collapse into one row.
func (ar *AnswerPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	db := ar.getDB(tx)
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"answer_given": answer.AnswerGiven,
				"answered_at":  answer.AnsweredAt,
				"updated_at":   time.Now(),
			}),
		}).
		Create(answer).Error; err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}

	cache.SafeDelete(ctx, ar.cacheManager.Fast, fmt.Sprintf("attempt:%s:answers", answer.AttemptID))
	return nil
}

func (ar *AnswerPostgreSQL) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID string) ([]*models.Answer, error) {
	db := ar.getDB(tx)
	var answers []*models.Answer
	if err := db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to get answers by attempt: %w", err)
	}
	return answers, nil
}

func (ar *AnswerPostgreSQL) GetByAttemptAndQuestion(ctx context.Context, tx *gorm.DB, attemptID, questionID string) (*models.Answer, error) {
	db := ar.getDB(tx)
	var answer models.Answer
	if err := db.WithContext(ctx).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&answer).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (ar *AnswerPostgreSQL) MarkGraded(ctx context.Context, tx *gorm.DB, attemptID string, correctness map[string]bool) error {
	if len(correctness) == 0 {
		return nil
	}

	db := ar.getDB(tx)
	for questionID, isCorrect := range correctness {
		if err := db.WithContext(ctx).
			Model(&models.Answer{}).
			Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
			Update("is_correct", isCorrect).Error; err != nil {
			return fmt.Errorf("failed to mark answer graded for question %s: %w", questionID, err)
		}
	}

	cache.SafeDelete(ctx, ar.cacheManager.Fast, fmt.Sprintf("attempt:%s:answers", attemptID))
	return nil
}

func (ar *AnswerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ar.db
}
