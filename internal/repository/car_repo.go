package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"carmarket/internal/domain"
)

type CarRepository struct {
	db *gorm.DB
}

func NewCarRepository(db *gorm.DB) *CarRepository {
	return &CarRepository{db: db}
}

func (r *CarRepository) Create(ctx context.Context, c *domain.Car) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CarRepository) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	var c domain.Car
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CarRepository) ListByExhibition(ctx context.Context, exhibitionID int64) ([]domain.Car, error) {
	var cars []domain.Car
	err := r.db.WithContext(ctx).
		Where("exhibition_id = ?", exhibitionID).
		Order("id").
		Find(&cars).Error
	return cars, err
}

// ListAvailable returns cars a renter can request: no active rental window
// and not flagged for repair.
func (r *CarRepository) ListAvailable(ctx context.Context, now time.Time) ([]domain.Car, error) {
	var cars []domain.Car
	err := r.db.WithContext(ctx).
		Where("needs_repair = ?", false).
		Where("rent_end_time IS NULL OR rent_end_time <= ?", now).
		Order("id").
		Find(&cars).Error
	return cars, err
}

func (r *CarRepository) Save(ctx context.Context, c *domain.Car) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete removes the car. Dependent rent requests keep their history through
// the nullable car reference.
func (r *CarRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.RentRequest{}).Where("car_id = ?", id).Update("car_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Car{}, id).Error
	})
}
