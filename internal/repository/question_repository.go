//go:generate mockery --name QuestionRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"go_quiz_db/internal/model"

	"gorm.io/gorm"
)

// QuestionRepository は questions テーブルの読み取り専用クエリです
type QuestionRepository interface {
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	CountByCategory(ctx context.Context, db *gorm.DB) ([]model.CategoryCount, error)
	FindRandom(ctx context.Context, db *gorm.DB, limit int) ([]model.Question, error)
	FindByCategory(ctx context.Context, db *gorm.DB, category string, limit int) ([]model.Question, error)
	FindRandomInCategories(ctx context.Context, db *gorm.DB, categories []string, limit int) ([]model.Question, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]model.Question, error)
}

type gormQuestionRepository struct {
	logger *slog.Logger
}

func NewGormQuestionRepository(logger *slog.Logger) QuestionRepository {
	return &gormQuestionRepository{logger: logger}
}

func (r *gormQuestionRepository) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.Question{}).Count(&count)
	if result.Error != nil {
		r.logger.Error("Error counting questions in DB", "error", result.Error)
		return 0, fmt.Errorf("gormQuestionRepository.Count: %w", result.Error)
	}
	return count, nil
}

func (r *gormQuestionRepository) CountByCategory(ctx context.Context, db *gorm.DB) ([]model.CategoryCount, error) {
	counts := []model.CategoryCount{}
	result := db.WithContext(ctx).Model(&model.Question{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category ASC").
		Scan(&counts)
	if result.Error != nil {
		r.logger.Error("Error counting questions by category in DB", "error", result.Error)
		return nil, fmt.Errorf("gormQuestionRepository.CountByCategory: %w", result.Error)
	}
	return counts, nil
}

// FindRandom はランダムな順で最大 limit 件を返します。テーブルの件数が少なければその分だけ返します。
func (r *gormQuestionRepository) FindRandom(ctx context.Context, db *gorm.DB, limit int) ([]model.Question, error) {
	questions := []model.Question{}
	result := db.WithContext(ctx).Order("RANDOM()").Limit(limit).Find(&questions)
	if result.Error != nil {
		r.logger.Error("Error finding random questions in DB", "error", result.Error, "limit", limit)
		return nil, fmt.Errorf("gormQuestionRepository.FindRandom: %w", result.Error)
	}
	return questions, nil
}

func (r *gormQuestionRepository) FindByCategory(ctx context.Context, db *gorm.DB, category string, limit int) ([]model.Question, error) {
	questions := []model.Question{}
	result := db.WithContext(ctx).Where("category = ?", category).Limit(limit).Find(&questions)
	if result.Error != nil {
		r.logger.Error("Error finding questions by category in DB",
			"error", result.Error,
			"category", category,
		)
		return nil, fmt.Errorf("gormQuestionRepository.FindByCategory: %w", result.Error)
	}
	return questions, nil
}

func (r *gormQuestionRepository) FindRandomInCategories(ctx context.Context, db *gorm.DB, categories []string, limit int) ([]model.Question, error) {
	questions := []model.Question{}
	if len(categories) == 0 {
		return questions, nil
	}
	result := db.WithContext(ctx).
		Where("category IN ?", categories).
		Order("RANDOM()").
		Limit(limit).
		Find(&questions)
	if result.Error != nil {
		r.logger.Error("Error finding random questions in categories in DB",
			"error", result.Error,
			"categories", categories,
		)
		return nil, fmt.Errorf("gormQuestionRepository.FindRandomInCategories: %w", result.Error)
	}
	return questions, nil
}

func (r *gormQuestionRepository) FindAll(ctx context.Context, db *gorm.DB) ([]model.Question, error) {
	questions := []model.Question{}
	result := db.WithContext(ctx).Order("category ASC, french_word ASC").Find(&questions)
	if result.Error != nil {
		r.logger.Error("Error finding all questions in DB", "error", result.Error)
		return nil, fmt.Errorf("gormQuestionRepository.FindAll: %w", result.Error)
	}
	return questions, nil
}
