package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"carmarket/internal/domain"
	"carmarket/internal/repository"
)

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}

type Service struct {
	db    *gorm.DB
	users UserRepositoryInterface
	staff StaffRepositoryInterface
	jwt   jwtService
}

type LoginResult struct {
	User  *domain.User
	Token string
}

func NewService(
	db *gorm.DB,
	users UserRepositoryInterface,
	staff StaffRepositoryInterface,
	jwt jwtService,
) *Service {
	return &Service{
		db:    db,
		users: users,
		staff: staff,
		jwt:   jwt,
	}
}

// Signup creates the user account. Exhibition signups additionally create the
// exhibition itself and a senior staff record linking the two, so the first
// account of an exhibition can manage everything.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := domain.RoleRenter
	if req.UserType == "exhibition" {
		role = domain.RoleExhibition
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}

	if role == domain.RoleRenter {
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, ErrUsernameAlreadyTaken
			}
			return nil, err
		}
		return user, nil
	}

	// An exhibition signup is three rows; they land or fail together.
	name := strings.TrimSpace(req.ExhibitionName)
	if name == "" {
		name = username
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrUsernameAlreadyTaken
			}
			return err
		}

		ex := &domain.Exhibition{Name: name}
		if err := tx.Create(ex).Error; err != nil {
			return err
		}

		st := &domain.Staff{
			UserID:       user.ID,
			ExhibitionID: ex.ID,
			IsSenior:     true,
		}
		return tx.Create(st).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: token}, nil
}

// Profile returns the user together with its staff record, if any.
func (s *Service) Profile(ctx context.Context, userID int64) (*domain.User, *domain.Staff, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if !user.IsStaff() {
		return user, nil, nil
	}

	st, err := s.staff.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, nil, nil
		}
		return nil, nil, err
	}
	return user, st, nil
}
