package repository

import (
	"context"

	"gorm.io/gorm"

	"carmarket/internal/domain"
)

type ExhibitionRepository struct {
	db *gorm.DB
}

func NewExhibitionRepository(db *gorm.DB) *ExhibitionRepository {
	return &ExhibitionRepository{db: db}
}

func (r *ExhibitionRepository) GetByID(ctx context.Context, id int64) (*domain.Exhibition, error) {
	var e domain.Exhibition
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}
