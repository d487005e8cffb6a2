package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ai-olympiad/qcm-service/internal/cache"
	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.ID)
	return nil
}

func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	db := q.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return fmt.Errorf("failed to create questions batch: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, "list:*")
	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, "supply:*")
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error) {
	db := q.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).
		Preload("CategoryRef").
		Where("id = ?", id).
		First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db := q.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by ids: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.ID)
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Question{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, id)
	return nil
}

func (q *QuestionPostgreSQL) Deactivate(ctx context.Context, tx *gorm.DB, id string) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", id).
		Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, id)
	return nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := q.getDB(tx)
	var questions []*models.Question
	var total int64

	query := db.WithContext(ctx).Model(&models.Question{})
	query = q.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("CategoryRef").Find(&questions).Error; err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

func (q *QuestionPostgreSQL) GetActiveForDraw(ctx context.Context, tx *gorm.DB, filters repositories.DrawFilters) ([]*models.Question, error) {
	db := q.getDB(tx)
	query := db.WithContext(ctx).Where("is_active = true")
	query = q.applyDrawFilters(query, filters)

	var questions []*models.Question
	if err := query.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to load bank for draw: %w", err)
	}

	return questions, nil
}

func (q *QuestionPostgreSQL) CountActiveByDifficulty(ctx context.Context, tx *gorm.DB, categories []string) (map[models.Difficulty]int64, error) {
	db := q.getDB(tx)
	var rows []struct {
		Difficulty models.Difficulty
		Count      int64
	}

	query := db.WithContext(ctx).
		Model(&models.Question{}).
		Select("difficulty, COUNT(*) as count").
		Where("is_active = true")
	if len(categories) > 0 {
		query = query.Where("category_id IN ?", categories)
	}

	if err := query.Group("difficulty").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count questions by difficulty: %w", err)
	}

	counts := make(map[models.Difficulty]int64, len(rows))
	for _, row := range rows {
		counts[row.Difficulty] = row.Count
	}
	return counts, nil
}

func (q *QuestionPostgreSQL) CountActive(ctx context.Context, tx *gorm.DB, filters repositories.DrawFilters) (int64, error) {
	db := q.getDB(tx)
	var count int64

	query := db.WithContext(ctx).Model(&models.Question{}).Where("is_active = true")
	query = q.applyDrawFilters(query, filters)

	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active questions: %w", err)
	}
	return count, nil
}

func (q *QuestionPostgreSQL) IsReferenced(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	db := q.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.AttemptQuestion{}).
		Where("question_id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check question references: %w", err)
	}
	return count > 0, nil
}

func (q *QuestionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Search != nil && *filters.Search != "" {
		query = query.Where("text ILIKE ?", "%"+*filters.Search+"%")
	}
	return query
}

func (q *QuestionPostgreSQL) applyDrawFilters(query *gorm.DB, filters repositories.DrawFilters) *gorm.DB {
	if len(filters.Categories) > 0 {
		query = query.Where("category_id IN ?", filters.Categories)
	}
	if len(filters.Difficulties) > 0 {
		query = query.Where("difficulty IN ?", filters.Difficulties)
	}
	return query
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}
