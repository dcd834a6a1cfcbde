package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"store-feedback/internal/models"
	"store-feedback/internal/review"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Ensure compliance
var _ review.Repository = (*SQLiteAdapter)(nil)

// SQLiteAdapter stores accepted reviews using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// ReviewModel is the GORM model for reviews.
type ReviewModel struct {
	ID          string `gorm:"primaryKey"`
	StoreID     string `gorm:"index"`
	StoreName   string
	Rating      int
	Title       string
	Feedback    string
	Name        string
	Phone       string
	Email       string
	Source      string
	SubmittedAt time.Time
	ReceivedAt  time.Time `gorm:"index"`
}

// ReviewFilter narrows ListReviews. Zero values mean no restriction.
type ReviewFilter struct {
	StoreID string
	Since   time.Time
	Limit   int
}

// StoreCount is one row of CountByStore.
type StoreCount struct {
	StoreID string  `json:"storeId"`
	Count   int64   `json:"count"`
	Average float64 `json:"averageRating"`
}

// NewSQLiteAdapter opens the database and migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&ReviewModel{}); err != nil {
		return nil, err
	}
	return &SQLiteAdapter{db: db}, nil
}

func (a *SQLiteAdapter) SaveReview(ctx context.Context, r models.AcceptedReview) error {
	model := toModel(r)
	return a.db.WithContext(ctx).Create(&model).Error
}

// ListReviews returns reviews newest first.
func (a *SQLiteAdapter) ListReviews(ctx context.Context, f ReviewFilter) ([]models.AcceptedReview, error) {
	q := a.db.WithContext(ctx).Model(&ReviewModel{})
	if f.StoreID != "" {
		q = q.Where("store_id = ?", f.StoreID)
	}
	if !f.Since.IsZero() {
		q = q.Where("received_at >= ?", f.Since.UTC())
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []ReviewModel
	if err := q.Order("received_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.AcceptedReview, len(rows))
	for i, m := range rows {
		out[i] = fromModel(m)
	}
	return out, nil
}

func (a *SQLiteAdapter) CountByStore(ctx context.Context) ([]StoreCount, error) {
	var counts []StoreCount
	err := a.db.WithContext(ctx).Model(&ReviewModel{}).
		Select("store_id, count(*) as count, avg(rating) as average").
		Group("store_id").
		Order("store_id").
		Scan(&counts).Error
	return counts, err
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toModel(r models.AcceptedReview) ReviewModel {
	return ReviewModel{
		ID:          r.ID,
		StoreID:     r.StoreID,
		StoreName:   r.StoreName,
		Rating:      r.Rating,
		Title:       r.Title,
		Feedback:    r.Feedback,
		Name:        r.Name,
		Phone:       r.Phone,
		Email:       r.Email,
		Source:      string(r.Source),
		SubmittedAt: r.SubmittedAt.UTC(),
		ReceivedAt:  r.ReceivedAt.UTC(),
	}
}

func fromModel(m ReviewModel) models.AcceptedReview {
	return models.AcceptedReview{
		ID:          m.ID,
		StoreID:     m.StoreID,
		StoreName:   m.StoreName,
		Rating:      m.Rating,
		Title:       m.Title,
		Feedback:    m.Feedback,
		Name:        m.Name,
		Phone:       m.Phone,
		Email:       m.Email,
		Source:      models.LocationSource(m.Source),
		SubmittedAt: m.SubmittedAt.UTC(),
		ReceivedAt:  m.ReceivedAt.UTC(),
	}
}
