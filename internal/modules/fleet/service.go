package fleet

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carmarket/internal/domain"
	"carmarket/internal/modules/ledger"
	"carmarket/internal/repository"
)

// RepairCompensation is the fixed amount the exhibition owes the renter when
// the renter acknowledges a car that was flagged as needing repair.
const RepairCompensation = 100

type Service struct {
	db          *gorm.DB
	cars        *repository.CarRepository
	exhibitions *repository.ExhibitionRepository
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:          db,
		cars:        repository.NewCarRepository(db),
		exhibitions: repository.NewExhibitionRepository(db),
	}
}

// ListForActor returns the cars an actor may see: staff see their
// exhibition's whole fleet, renters see free cars that do not need repair.
func (s *Service) ListForActor(ctx context.Context, user *domain.User) ([]domain.Car, error) {
	if user.IsStaff() {
		st, err := s.staffFor(ctx, user)
		if err != nil {
			return nil, err
		}
		return s.cars.ListByExhibition(ctx, st.ExhibitionID)
	}
	return s.cars.ListAvailable(ctx, time.Now())
}

func (s *Service) GetCar(ctx context.Context, id int64) (*domain.Car, error) {
	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return car, nil
}

// AddCar lists a new car under the staff member's exhibition.
func (s *Service) AddCar(ctx context.Context, user *domain.User, in AddCarInput) (*domain.Car, error) {
	st, err := s.guardManager(ctx, user)
	if err != nil {
		return nil, err
	}

	car := &domain.Car{
		ExhibitionID: st.ExhibitionID,
		CarType:      in.CarType,
		Plate:        in.Plate,
		PricePerHour: in.PricePerHour,
	}
	if err := s.cars.Create(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

// UpdatePrice changes the hourly rate. Rented cars cannot be repriced.
func (s *Service) UpdatePrice(ctx context.Context, user *domain.User, carID int64, in UpdateCarInput) (*domain.Car, error) {
	car, err := s.guardOwnedFreeCar(ctx, user, carID)
	if err != nil {
		return nil, err
	}

	car.PricePerHour = in.PricePerHour
	if err := s.cars.Save(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

// DeleteCar removes a free car. Request history survives through the nullable
// car reference.
func (s *Service) DeleteCar(ctx context.Context, user *domain.User, carID int64) error {
	car, err := s.guardOwnedFreeCar(ctx, user, carID)
	if err != nil {
		return err
	}

	return s.cars.Delete(ctx, car.ID)
}

// ReportRepair handles the needs-repair flag for both actor kinds.
//
// Staff of the owning exhibition persist the submitted value literally, with
// no credit effect. The current renter's submission always clears the flag,
// whatever value was submitted; if the flag was set beforehand, the exhibition
// compensates the renter with RepairCompensation in the same transaction.
func (s *Service) ReportRepair(ctx context.Context, user *domain.User, carID int64, needsRepair bool) (*domain.Car, error) {
	if user.IsStaff() {
		st, err := s.staffFor(ctx, user)
		if err != nil {
			return nil, err
		}
		if !st.Has(domain.CapManageCars) {
			return nil, ErrForbidden
		}

		car, err := s.GetCar(ctx, carID)
		if err != nil {
			return nil, err
		}
		if car.ExhibitionID != st.ExhibitionID {
			return nil, ErrForbidden
		}

		if err := s.db.WithContext(ctx).Model(&domain.Car{}).Where("id = ?", car.ID).Update("needs_repair", needsRepair).Error; err != nil {
			return nil, err
		}
		car.NeedsRepair = needsRepair
		return car, nil
	}

	var out *domain.Car
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var car domain.Car
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&car, carID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if car.RenterID == nil || *car.RenterID != user.ID {
			return ErrForbidden
		}

		wasFlagged := car.NeedsRepair

		if err := tx.Model(&domain.Car{}).Where("id = ?", car.ID).Update("needs_repair", false).Error; err != nil {
			return err
		}
		car.NeedsRepair = false

		if wasFlagged {
			from := ledger.Account{Type: ledger.AccountExhibition, ID: car.ExhibitionID}
			to := ledger.Account{Type: ledger.AccountUser, ID: user.ID}
			if err := ledger.Transfer(tx, from, to, RepairCompensation, ledger.EntryRepair, nil, &car.ID); err != nil {
				return err
			}
		}

		out = &car
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AssignRenter is the administrative override seam: a plain assignment with no
// settlement. Normal renter assignment happens only through acceptance.
func (s *Service) AssignRenter(ctx context.Context, user *domain.User, carID int64, renterID *int64) (*domain.Car, error) {
	car, err := s.guardOwnedCar(ctx, user, carID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&domain.Car{}).Where("id = ?", car.ID).Update("renter_id", renterID).Error; err != nil {
		return nil, err
	}
	car.RenterID = renterID
	return car, nil
}

// TransferOwner moves the car to another exhibition.
func (s *Service) TransferOwner(ctx context.Context, user *domain.User, carID int64, exhibitionID int64) (*domain.Car, error) {
	car, err := s.guardOwnedCar(ctx, user, carID)
	if err != nil {
		return nil, err
	}

	if _, err := s.exhibitions.GetByID(ctx, exhibitionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrValidation
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&domain.Car{}).Where("id = ?", car.ID).Update("exhibition_id", exhibitionID).Error; err != nil {
		return nil, err
	}
	car.ExhibitionID = exhibitionID
	return car, nil
}

func (s *Service) staffFor(ctx context.Context, user *domain.User) (*domain.Staff, error) {
	var st domain.Staff
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return &st, nil
}

func (s *Service) guardManager(ctx context.Context, user *domain.User) (*domain.Staff, error) {
	if !user.IsStaff() {
		return nil, ErrForbidden
	}
	st, err := s.staffFor(ctx, user)
	if err != nil {
		return nil, err
	}
	if !st.Has(domain.CapManageCars) {
		return nil, ErrForbidden
	}
	return st, nil
}

func (s *Service) guardOwnedCar(ctx context.Context, user *domain.User, carID int64) (*domain.Car, error) {
	st, err := s.guardManager(ctx, user)
	if err != nil {
		return nil, err
	}

	car, err := s.GetCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.ExhibitionID != st.ExhibitionID {
		return nil, ErrForbidden
	}
	return car, nil
}

func (s *Service) guardOwnedFreeCar(ctx context.Context, user *domain.User, carID int64) (*domain.Car, error) {
	car, err := s.guardOwnedCar(ctx, user, carID)
	if err != nil {
		return nil, err
	}
	if car.IsRented(time.Now()) {
		return nil, ErrCarRented
	}
	return car, nil
}
