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

type CategoryPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCategoryPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CategoryRepository {
	return &CategoryPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *CategoryPostgreSQL) Create(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, c.cacheManager.Question, "categories:*")
	return nil
}

func (c *CategoryPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Category, error) {
	db := c.getDB(tx)
	var category models.Category
	if err := db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *CategoryPostgreSQL) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Category, error) {
	db := c.getDB(tx)
	var category models.Category
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *CategoryPostgreSQL) Update(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Save(category).Error; err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, c.cacheManager.Question, "categories:*")
	return nil
}

func (c *CategoryPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, c.cacheManager.Question, "categories:*")
	return nil
}

func (c *CategoryPostgreSQL) List(ctx context.Context, tx *gorm.DB, includeInactive bool) ([]*models.Category, error) {
	db := c.getDB(tx)
	var categories []*models.Category

	query := db.WithContext(ctx).Model(&models.Category{})
	if !includeInactive {
		query = query.Where("is_active = true")
	}

	if err := query.Order("display_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	// Populate question counts in one grouped query.
	var rows []struct {
		CategoryID string
		Count      int64
	}
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Select("category_id, COUNT(*) as count").
		Where("category_id IS NOT NULL AND is_active = true").
		Group("category_id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count questions per category: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	for _, category := range categories {
		category.QuestionCount = int(counts[category.ID])
	}

	return categories, nil
}

func (c *CategoryPostgreSQL) HasQuestions(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	db := c.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("category_id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count category questions: %w", err)
	}
	return count > 0, nil
}

func (c *CategoryPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}
