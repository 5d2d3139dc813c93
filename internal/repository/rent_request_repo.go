package repository

import (
	"context"

	"gorm.io/gorm"

	"carmarket/internal/domain"
)

type RentRequestRepository struct {
	db *gorm.DB
}

func NewRentRequestRepository(db *gorm.DB) *RentRequestRepository {
	return &RentRequestRepository{db: db}
}

func (r *RentRequestRepository) Create(ctx context.Context, req *domain.RentRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RentRequestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]domain.RentRequest, error) {
	var reqs []domain.RentRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Preload("Car").
		Order("rent_start_time desc").
		Find(&reqs).Error
	return reqs, err
}

// ListPendingByExhibition returns unresolved requests targeting any car owned
// by the exhibition. This is what the answering view presents to staff.
func (r *RentRequestRepository) ListPendingByExhibition(ctx context.Context, exhibitionID int64) ([]domain.RentRequest, error) {
	var reqs []domain.RentRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN cars ON cars.id = rent_requests.car_id").
		Where("cars.exhibition_id = ? AND rent_requests.has_result = ?", exhibitionID, false).
		Preload("Car").
		Order("rent_requests.created_at").
		Find(&reqs).Error
	return reqs, err
}
