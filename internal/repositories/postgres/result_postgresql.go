package postgres

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r ResultPostgreSQL) Create(ctx context.Context, result *models.QuizResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r ResultPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizResult, error) {
	var result models.QuizResult
	if err := r.db.WithContext(ctx).First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r ResultPostgreSQL) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.QuizResult, int64, error) {
	var results []*models.QuizResult
	var total int64

	// apply filter first
	query := r.db.WithContext(ctx).Model(&models.QuizResult{})
	query = applyResultFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = applyResultPaginationAndSort(query, filters)

	if err := query.Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

func (r ResultPostgreSQL) GetStats(ctx context.Context) (*repositories.ResultStats, error) {
	var row struct {
		Total   int
		Average float64
		Passed  int
	}
	err := r.db.WithContext(ctx).Model(&models.QuizResult{}).
		Select("COUNT(*) AS total, COALESCE(AVG(percentage), 0) AS average, COUNT(*) FILTER (WHERE percentage >= ?) AS passed",
			models.PassingPercentage).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &repositories.ResultStats{
		TotalQuizzes:      row.Total,
		AveragePercentage: row.Average,
	}
	if row.Total > 0 {
		stats.PassRate = float64(row.Passed) / float64(row.Total) * 100
	}
	return stats, nil
}

func applyResultFilters(query *gorm.DB, filters repositories.ResultFilters) *gorm.DB {
	if filters.SessionID != "" {
		query = query.Where("session_id = ?", filters.SessionID)
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}
	return query
}

func applyResultPaginationAndSort(query *gorm.DB, filters repositories.ResultFilters) *gorm.DB {
	sortBy := "completed_at"
	switch filters.SortBy {
	case "completed_at", "percentage", "total_score":
		sortBy = filters.SortBy
	}
	sortOrder := "desc"
	if filters.SortOrder == "asc" {
		sortOrder = "asc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query = query.Limit(limit)
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
