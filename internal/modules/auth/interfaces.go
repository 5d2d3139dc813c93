package auth

import (
	"context"

	"carmarket/internal/domain"
)

type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type StaffRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Staff, error)
}
