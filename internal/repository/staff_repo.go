package repository

import (
	"context"

	"gorm.io/gorm"

	"carmarket/internal/domain"
)

type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	var s domain.Staff
	if err := r.db.WithContext(ctx).Preload("User").First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByUserID resolves the staff record behind a user account. Returns
// gorm.ErrRecordNotFound for plain renters.
func (r *StaffRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Staff, error) {
	var s domain.Staff
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StaffRepository) ListByExhibition(ctx context.Context, exhibitionID int64) ([]domain.Staff, error) {
	var staff []domain.Staff
	err := r.db.WithContext(ctx).
		Where("exhibition_id = ?", exhibitionID).
		Preload("User").
		Order("id").
		Find(&staff).Error
	return staff, err
}

func (r *StaffRepository) Save(ctx context.Context, s *domain.Staff) error {
	return r.db.WithContext(ctx).Save(s).Error
}
