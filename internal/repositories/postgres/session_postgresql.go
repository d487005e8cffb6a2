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

type SessionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewSessionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SessionRepository {
	return &SessionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	cache.InvalidateSessionCache(ctx, s.cacheManager, session.ID)
	return nil
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ExamSession, error) {
	db := s.getDB(tx)
	cacheKey := fmt.Sprintf("id:%s", id)
	var session models.ExamSession

	err := s.cacheManager.Session.CacheOrExecute(ctx, cacheKey, &session, cache.SessionCacheConfig.TTL, func() (interface{}, error) {
		var dbSession models.ExamSession
		if err := db.WithContext(ctx).Where("id = ?", id).First(&dbSession).Error; err != nil {
			return nil, err
		}
		return &dbSession, nil
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (s *SessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	cache.InvalidateSessionCache(ctx, s.cacheManager, session.ID)
	return nil
}

func (s *SessionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.ExamSession{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	cache.InvalidateSessionCache(ctx, s.cacheManager, id)
	return nil
}

func (s *SessionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	db := s.getDB(tx)
	var sessions []*models.ExamSession
	var total int64

	query := db.WithContext(ctx).Model(&models.ExamSession{})
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Search != nil && *filters.Search != "" {
		query = query.Where("title ILIKE ?", "%"+*filters.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (s *SessionPostgreSQL) ListVisible(ctx context.Context, tx *gorm.DB) ([]*models.ExamSession, error) {
	db := s.getDB(tx)
	var sessions []*models.ExamSession
	if err := db.WithContext(ctx).
		Where("is_active = true").
		Order("start_date ASC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list visible sessions: %w", err)
	}
	return sessions, nil
}

func (s *SessionPostgreSQL) CountAttempts(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error) {
	db := s.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count session attempts: %w", err)
	}
	return count, nil
}

func (s *SessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
