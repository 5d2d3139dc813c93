package rental

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carmarket/internal/domain"
	"carmarket/internal/modules/ledger"
	"carmarket/internal/repository"
)

// EventSink receives lifecycle events for the staff notification feed.
// Delivery is best effort and never affects the outcome of an operation.
type EventSink interface {
	RequestCreated(exhibitionID int64, req *domain.RentRequest)
	RequestResolved(exhibitionID int64, req *domain.RentRequest)
}

type Service struct {
	db       *gorm.DB
	requests *repository.RentRequestRepository
	events   EventSink
}

func NewService(db *gorm.DB, events EventSink) *Service {
	return &Service{
		db:       db,
		requests: repository.NewRentRequestRepository(db),
		events:   events,
	}
}

// CreateRequest files a pending request. It has no side effect on the car or
// any balance.
func (s *Service) CreateRequest(ctx context.Context, requester *domain.User, carID int64, in CreateRequestInput) (*domain.RentRequest, error) {
	if requester.IsStaff() {
		return nil, ErrForbidden
	}
	if !in.RentEndTime.After(in.RentStartTime) {
		return nil, ErrValidation
	}
	if in.RentStartTime.Before(time.Now()) {
		return nil, ErrValidation
	}

	var car domain.Car
	if err := s.db.WithContext(ctx).First(&car, carID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}

	req := &domain.RentRequest{
		CarID:         &car.ID,
		RequesterID:   requester.ID,
		RentStartTime: in.RentStartTime,
		RentEndTime:   in.RentEndTime,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.RequestCreated(car.ExhibitionID, req)
	}
	return req, nil
}

// Accept resolves a pending request in the requester's favor. All effects are
// applied in one transaction: the request becomes terminal with its price, the
// car's rental window is overwritten, and the settlement moves the price from
// the requester to the owning exhibition. If the car is currently rented, or
// its window overlaps the requested one, the request is rejected instead and
// ErrCarUnavailable is returned alongside the rejected request. A currently
// rented car rejects even a later, non-overlapping window: a car holds one
// rental window at a time, and accepting would overwrite the active one.
func (s *Service) Accept(ctx context.Context, responder *domain.User, requestID int64) (*domain.RentRequest, error) {
	var out *domain.RentRequest
	var outErr error

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, car, st, err := s.lockForResolution(ctx, tx, responder, requestID)
		if err != nil {
			return err
		}

		if car.IsRented(time.Now()) || car.Overlaps(req.RentStartTime, req.RentEndTime) {
			// Policy: fall back to rejection rather than accepting into an
			// occupied window. The rejection still commits.
			if err := resolve(tx, req, st, car.PricePerHour, false); err != nil {
				return err
			}
			out, outErr = req, ErrCarUnavailable
			return nil
		}

		if err := resolve(tx, req, st, car.PricePerHour, true); err != nil {
			return err
		}

		updates := map[string]any{
			"rent_start_time": req.RentStartTime,
			"rent_end_time":   req.RentEndTime,
			"renter_id":       req.RequesterID,
		}
		if err := tx.Model(&domain.Car{}).Where("id = ?", car.ID).Updates(updates).Error; err != nil {
			return err
		}

		from := ledger.Account{Type: ledger.AccountUser, ID: req.RequesterID}
		to := ledger.Account{Type: ledger.AccountExhibition, ID: car.ExhibitionID}
		if err := ledger.Transfer(tx, from, to, req.Price, ledger.EntryRental, &req.ID, &car.ID); err != nil {
			return err
		}

		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil && out != nil && out.CarID != nil {
		if car, err := s.carByID(ctx, *out.CarID); err == nil {
			s.events.RequestResolved(car.ExhibitionID, out)
		}
	}
	return out, outErr
}

// Reject resolves a pending request against the requester. The price is still
// recorded on the request, but no money moves and the car is untouched.
func (s *Service) Reject(ctx context.Context, responder *domain.User, requestID int64) (*domain.RentRequest, error) {
	var out *domain.RentRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, car, st, err := s.lockForResolution(ctx, tx, responder, requestID)
		if err != nil {
			return err
		}
		if err := resolve(tx, req, st, car.PricePerHour, false); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil && out != nil && out.CarID != nil {
		if car, err := s.carByID(ctx, *out.CarID); err == nil {
			s.events.RequestResolved(car.ExhibitionID, out)
		}
	}
	return out, nil
}

// AnswerBatch applies a map of request id -> "yes"/"no". Entries that are
// malformed, unknown, or fail their own resolution are skipped; each valid
// entry is resolved independently.
func (s *Service) AnswerBatch(ctx context.Context, responder *domain.User, answers BatchAnswers) []AnswerOutcome {
	outcomes := make([]AnswerOutcome, 0, len(answers))

	for rawID, answer := range answers {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			continue
		}

		var resolveErr error
		switch answer {
		case "yes":
			_, resolveErr = s.Accept(ctx, responder, id)
		case "no":
			_, resolveErr = s.Reject(ctx, responder, id)
		default:
			continue
		}

		outcome := AnswerOutcome{RequestID: id, Answer: answer, Applied: resolveErr == nil}
		if resolveErr != nil {
			outcome.Reason = resolveErr.Error()
			if errors.Is(resolveErr, ErrCarUnavailable) {
				// The fallback rejection did commit.
				outcome.Applied = true
			}
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// ListForRequester returns the renter's own requests, latest window first.
func (s *Service) ListForRequester(ctx context.Context, requesterID int64) ([]domain.RentRequest, error) {
	return s.requests.ListByRequester(ctx, requesterID)
}

// ListPendingForExhibition returns the unresolved requests staff can answer.
func (s *Service) ListPendingForExhibition(ctx context.Context, exhibitionID int64) ([]domain.RentRequest, error) {
	return s.requests.ListPendingByExhibition(ctx, exhibitionID)
}

// lockForResolution loads and locks the request and its car, and verifies the
// responder is answering for the owning exhibition with the right capability.
func (s *Service) lockForResolution(ctx context.Context, tx *gorm.DB, responder *domain.User, requestID int64) (*domain.RentRequest, *domain.Car, *domain.Staff, error) {
	st, err := s.guardResponder(ctx, responder)
	if err != nil {
		return nil, nil, nil, err
	}

	var req domain.RentRequest
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, err
	}
	if req.HasResult {
		return nil, nil, nil, ErrAlreadyResolved
	}
	if req.CarID == nil {
		return nil, nil, nil, ErrCarNotFound
	}

	var car domain.Car
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&car, *req.CarID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrCarNotFound
		}
		return nil, nil, nil, err
	}

	if car.ExhibitionID != st.ExhibitionID {
		return nil, nil, nil, ErrForbidden
	}
	return &req, &car, st, nil
}

// guardResponder is the explicit authorization check for answering requests.
func (s *Service) guardResponder(ctx context.Context, responder *domain.User) (*domain.Staff, error) {
	if !responder.IsStaff() {
		return nil, ErrForbidden
	}
	var st domain.Staff
	if err := s.db.WithContext(ctx).Where("user_id = ?", responder.ID).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if !st.Has(domain.CapAnswerRequests) {
		return nil, ErrForbidden
	}
	return &st, nil
}

// resolve moves the request to its terminal state and records the price.
func resolve(tx *gorm.DB, req *domain.RentRequest, st *domain.Staff, pricePerHour int64, accepted bool) error {
	req.ComputePrice(pricePerHour)
	req.HasResult = true
	req.IsAccepted = accepted
	req.ResponderID = &st.ID

	updates := map[string]any{
		"has_result":   true,
		"is_accepted":  accepted,
		"price":        req.Price,
		"responder_id": st.ID,
	}
	return tx.Model(&domain.RentRequest{}).Where("id = ?", req.ID).Updates(updates).Error
}

func (s *Service) carByID(ctx context.Context, id int64) (*domain.Car, error) {
	var car domain.Car
	if err := s.db.WithContext(ctx).First(&car, id).Error; err != nil {
		return nil, err
	}
	return &car, nil
}
