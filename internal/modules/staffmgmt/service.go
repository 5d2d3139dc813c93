package staffmgmt

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"carmarket/internal/domain"
	"carmarket/internal/repository"
)

type Service struct {
	db    *gorm.DB
	users *repository.UserRepository
	staff *repository.StaffRepository
}

func NewService(db *gorm.DB, users *repository.UserRepository, staff *repository.StaffRepository) *Service {
	return &Service{db: db, users: users, staff: staff}
}

// CreateStaff adds a staff account to the actor's own exhibition. Only senior
// staff, or staff holding the staff-management capability, may do this.
func (s *Service) CreateStaff(ctx context.Context, actor *domain.User, req CreateStaffRequest) (*domain.Staff, error) {
	actorStaff, err := s.guardManager(ctx, actor)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrValidation
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var created *domain.Staff
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := &domain.User{
			Username:     username,
			PasswordHash: string(hash),
			Role:         domain.RoleExhibition,
		}
		if err := tx.Create(user).Error; err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrUsernameTaken
			}
			return err
		}

		st := &domain.Staff{
			UserID:       user.ID,
			ExhibitionID: actorStaff.ExhibitionID,
			IsSenior:     req.IsSenior,
		}
		if err := tx.Create(st).Error; err != nil {
			return err
		}
		st.User = user
		created = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) ListStaff(ctx context.Context, actor *domain.User) ([]domain.Staff, error) {
	actorStaff, err := s.staffFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.staff.ListByExhibition(ctx, actorStaff.ExhibitionID)
}

func (s *Service) GetStaff(ctx context.Context, actor *domain.User, staffID int64) (*domain.Staff, error) {
	actorStaff, err := s.staffFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	st, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if st.ExhibitionID != actorStaff.ExhibitionID {
		return nil, ErrNotFound
	}
	return st, nil
}

// UpdateCapabilities grants or revokes capabilities. Senior staff only.
func (s *Service) UpdateCapabilities(ctx context.Context, actor *domain.User, staffID int64, req CapabilitiesRequest) (*domain.Staff, error) {
	actorStaff, err := s.staffFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !actorStaff.IsSenior {
		return nil, ErrForbidden
	}

	st, err := s.GetStaff(ctx, actor, staffID)
	if err != nil {
		return nil, err
	}

	if req.CanAccessCredit != nil {
		st.Grant(domain.CapCreditAccess, *req.CanAccessCredit)
	}
	if req.CanAnswerRequests != nil {
		st.Grant(domain.CapAnswerRequests, *req.CanAnswerRequests)
	}
	if req.CanManageCars != nil {
		st.Grant(domain.CapManageCars, *req.CanManageCars)
	}
	if req.CanManageStaff != nil {
		st.Grant(domain.CapManageStaff, *req.CanManageStaff)
	}

	if err := s.staff.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) staffFor(ctx context.Context, actor *domain.User) (*domain.Staff, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	st, err := s.staff.GetByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return st, nil
}

func (s *Service) guardManager(ctx context.Context, actor *domain.User) (*domain.Staff, error) {
	st, err := s.staffFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !st.Has(domain.CapManageStaff) {
		return nil, ErrForbidden
	}
	return st, nil
}
