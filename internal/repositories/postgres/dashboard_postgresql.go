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

type DashboardPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDashboardPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.DashboardRepository {
	return &DashboardPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (d *DashboardPostgreSQL) GetAdminStats(ctx context.Context, tx *gorm.DB) (*repositories.AdminStats, error) {
	db := d.getDB(tx)

	var stats repositories.AdminStats
	err := d.cacheManager.Stats.CacheOrExecute(ctx, "admin", &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return d.computeAdminStats(ctx, db)
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (d *DashboardPostgreSQL) computeAdminStats(ctx context.Context, db *gorm.DB) (*repositories.AdminStats, error) {
	stats := &repositories.AdminStats{
		QuestionsByDifficulty: make(map[models.Difficulty]int64),
		QuestionsByCategory:   make(map[string]int64),
	}

	if err := db.WithContext(ctx).Model(&models.Question{}).Count(&stats.TotalQuestions).Error; err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Question{}).Where("is_active = true").Count(&stats.ActiveQuestions).Error; err != nil {
		return nil, fmt.Errorf("failed to count active questions: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.ExamSession{}).Count(&stats.TotalSessions).Error; err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.ExamSession{}).Where("is_active = true").Count(&stats.ActiveSessions).Error; err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Attempt{}).Count(&stats.TotalAttempts).Error; err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Attempt{}).
		Where("status = ?", models.AttemptCompleted).
		Count(&stats.CompletedAttempts).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed attempts: %w", err)
	}

	// Average score and pass rate over completed attempts.
	var agg struct {
		AvgScore    float64
		PassedCount int64
	}
	if err := db.WithContext(ctx).Model(&models.Attempt{}).
		Where("status = ?", models.AttemptCompleted).
		Select("COALESCE(AVG(score), 0) as avg_score, COALESCE(SUM(CASE WHEN passed = true THEN 1 ELSE 0 END), 0) as passed_count").
		Scan(&agg).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate attempt scores: %w", err)
	}
	stats.AverageScore = agg.AvgScore
	if stats.CompletedAttempts > 0 {
		stats.PassRate = float64(agg.PassedCount) / float64(stats.CompletedAttempts)
	}

	// Question breakdowns.
	var difficultyRows []struct {
		Difficulty models.Difficulty
		Count      int64
	}
	if err := db.WithContext(ctx).Model(&models.Question{}).
		Select("difficulty, COUNT(*) as count").
		Where("is_active = true").
		Group("difficulty").
		Find(&difficultyRows).Error; err != nil {
		return nil, fmt.Errorf("failed to group questions by difficulty: %w", err)
	}
	for _, row := range difficultyRows {
		stats.QuestionsByDifficulty[row.Difficulty] = row.Count
	}

	var categoryRows []struct {
		Name  string
		Count int64
	}
	if err := db.WithContext(ctx).
		Table("qcm_questions q").
		Joins("LEFT JOIN qcm_categories c ON c.id = q.category_id").
		Select("COALESCE(c.name, COALESCE(q.category, 'uncategorized')) as name, COUNT(*) as count").
		Where("q.is_active = true").
		Group("name").
		Find(&categoryRows).Error; err != nil {
		return nil, fmt.Errorf("failed to group questions by category: %w", err)
	}
	for _, row := range categoryRows {
		stats.QuestionsByCategory[row.Name] = row.Count
	}

	// Per-session attempt stats.
	if err := db.WithContext(ctx).
		Table("qcm_attempts a").
		Joins("JOIN qcm_sessions s ON s.id = a.session_id").
		Select(`s.id as session_id, s.title as session_title,
			COUNT(*) as attempts,
			COALESCE(AVG(a.score) FILTER (WHERE a.status = 'completed'), 0) as average_score,
			COALESCE(AVG(CASE WHEN a.passed THEN 1.0 ELSE 0.0 END) FILTER (WHERE a.status = 'completed'), 0) as pass_rate`).
		Group("s.id, s.title").
		Order("attempts DESC").
		Find(&stats.AttemptsBySession).Error; err != nil {
		return nil, fmt.Errorf("failed to group attempts by session: %w", err)
	}

	// Top performers by best score.
	if err := db.WithContext(ctx).
		Table("qcm_attempts a").
		Joins("JOIN users u ON u.id = a.candidate_id").
		Select(`a.candidate_id, u.full_name as candidate_name,
			MAX(a.score) as best_score, AVG(a.score) as average_score, COUNT(*) as attempts`).
		Where("a.status = ?", models.AttemptCompleted).
		Group("a.candidate_id, u.full_name").
		Order("best_score DESC").
		Limit(10).
		Find(&stats.TopPerformers).Error; err != nil {
		return nil, fmt.Errorf("failed to load top performers: %w", err)
	}

	// Most recent completions.
	if err := db.WithContext(ctx).
		Table("qcm_attempts a").
		Joins("JOIN users u ON u.id = a.candidate_id").
		Joins("JOIN qcm_sessions s ON s.id = a.session_id").
		Select(`a.id as attempt_id, u.full_name as candidate_name, s.title as session_title,
			a.score, a.passed, a.completed_at`).
		Where("a.status = ?", models.AttemptCompleted).
		Order("a.completed_at DESC").
		Limit(20).
		Find(&stats.RecentAttempts).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent attempts: %w", err)
	}

	return stats, nil
}

func (d *DashboardPostgreSQL) GetCandidateStats(ctx context.Context, tx *gorm.DB, candidateID string) (*repositories.CandidateStats, error) {
	db := d.getDB(tx)
	var stats repositories.CandidateStats

	if err := db.WithContext(ctx).Model(&models.Attempt{}).
		Where("candidate_id = ? AND status = ?", candidateID, models.AttemptCompleted).
		Count(&stats.TotalAttempts).Error; err != nil {
		return nil, fmt.Errorf("failed to count candidate attempts: %w", err)
	}

	if err := db.WithContext(ctx).Model(&models.Attempt{}).
		Where("candidate_id = ? AND status = ? AND passed = true", candidateID, models.AttemptCompleted).
		Count(&stats.PassedAttempts).Error; err != nil {
		return nil, fmt.Errorf("failed to count passed attempts: %w", err)
	}

	var agg struct {
		AvgScore  float64
		BestScore int64
		TimeSpent int64
	}
	if err := db.WithContext(ctx).Model(&models.Attempt{}).
		Where("candidate_id = ? AND status = ?", candidateID, models.AttemptCompleted).
		Select("COALESCE(AVG(score), 0) as avg_score, COALESCE(MAX(score), 0) as best_score, COALESCE(SUM(time_spent), 0) as time_spent").
		Scan(&agg).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate candidate stats: %w", err)
	}

	stats.AverageScore = agg.AvgScore
	stats.BestScore = agg.BestScore
	stats.TotalTimeSpent = agg.TimeSpent

	return &stats, nil
}

func (d *DashboardPostgreSQL) GetExportRows(ctx context.Context, tx *gorm.DB, sessionID *string) ([]repositories.ExportRow, error) {
	db := d.getDB(tx)

	query := db.WithContext(ctx).
		Table("qcm_attempts a").
		Joins("JOIN users u ON u.id = a.candidate_id").
		Joins("JOIN qcm_sessions s ON s.id = a.session_id").
		Select(`u.full_name as candidate_name, u.email as candidate_email, s.title as session_title,
			a.score, a.correct_answers, a.total_questions, a.passed,
			a.time_spent, a.tab_switches, a.completed_at`).
		Where("a.status = ?", models.AttemptCompleted).
		Order("a.completed_at DESC")
	if sessionID != nil {
		query = query.Where("a.session_id = ?", *sessionID)
	}

	var rows []repositories.ExportRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load export rows: %w", err)
	}

	return rows, nil
}

func (d *DashboardPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}
