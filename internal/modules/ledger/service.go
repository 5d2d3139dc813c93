package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carmarket/internal/domain"
)

var ErrAccountNotFound = errors.New("credit account not found")

// Service is the single authoritative mutation point for credit. Deltas for
// staff actors are always routed to their exhibition's balance; personal
// credit belongs to renters only. Balances may go negative, overdraft
// protection is out of scope.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Account identifies the balance an actor settles against.
type Account struct {
	Type string
	ID   int64
}

// ResolveAccount maps a user to its credit account: staff to the exhibition,
// renters to themselves.
func (s *Service) ResolveAccount(ctx context.Context, user *domain.User) (Account, error) {
	if !user.IsStaff() {
		return Account{Type: AccountUser, ID: user.ID}, nil
	}
	var st domain.Staff
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return Account{Type: AccountExhibition, ID: st.ExhibitionID}, nil
}

// Balance returns the actor's effective balance.
func (s *Service) Balance(ctx context.Context, user *domain.User) (Account, int64, error) {
	acct, err := s.ResolveAccount(ctx, user)
	if err != nil {
		return Account{}, 0, err
	}

	var balance int64
	switch acct.Type {
	case AccountExhibition:
		var ex domain.Exhibition
		if err := s.db.WithContext(ctx).First(&ex, acct.ID).Error; err != nil {
			return Account{}, 0, err
		}
		balance = ex.Credit
	default:
		var u domain.User
		if err := s.db.WithContext(ctx).First(&u, acct.ID).Error; err != nil {
			return Account{}, 0, err
		}
		balance = u.Credit
	}
	return acct, balance, nil
}

// ChangeCredit applies a delta to the actor's account in its own transaction.
func (s *Service) ChangeCredit(ctx context.Context, user *domain.User, delta int64) (Account, int64, error) {
	acct, err := s.ResolveAccount(ctx, user)
	if err != nil {
		return Account{}, 0, err
	}

	var balance int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		balance, txErr = ApplyDelta(tx, acct, delta, EntryAdjust, nil, nil)
		return txErr
	})
	if err != nil {
		return Account{}, 0, err
	}
	return acct, balance, nil
}

// Entries lists the actor's journal, newest first.
func (s *Service) Entries(ctx context.Context, user *domain.User) ([]CreditEntry, error) {
	acct, err := s.ResolveAccount(ctx, user)
	if err != nil {
		return nil, err
	}

	var entries []CreditEntry
	err = s.db.WithContext(ctx).
		Where("account_type = ? AND account_id = ?", acct.Type, acct.ID).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}

// ApplyDelta mutates one balance inside a caller-owned transaction, locking
// the row first, and journals the change. Settlements (rental acceptance,
// repair compensation) call this so that all of their legs commit or roll
// back together.
func ApplyDelta(tx *gorm.DB, acct Account, delta int64, kind string, requestID, carID *int64) (int64, error) {
	var balance int64

	switch acct.Type {
	case AccountExhibition:
		var ex domain.Exhibition
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ex, acct.ID).Error; err != nil {
			return 0, err
		}
		ex.Credit += delta
		if err := tx.Model(&domain.Exhibition{}).Where("id = ?", ex.ID).Update("credit", ex.Credit).Error; err != nil {
			return 0, err
		}
		balance = ex.Credit

	case AccountUser:
		var u domain.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, acct.ID).Error; err != nil {
			return 0, err
		}
		u.Credit += delta
		if err := tx.Model(&domain.User{}).Where("id = ?", u.ID).Update("credit", u.Credit).Error; err != nil {
			return 0, err
		}
		balance = u.Credit

	default:
		return 0, ErrAccountNotFound
	}

	entry := CreditEntry{
		AccountType: acct.Type,
		AccountID:   acct.ID,
		Amount:      delta,
		Kind:        kind,
		RequestID:   requestID,
		CarID:       carID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, err
	}
	return balance, nil
}

// Transfer moves amount from one account to another inside a caller-owned
// transaction, journaling both legs.
func Transfer(tx *gorm.DB, from, to Account, amount int64, kind string, requestID, carID *int64) error {
	if _, err := ApplyDelta(tx, from, -amount, kind, requestID, carID); err != nil {
		return err
	}
	_, err := ApplyDelta(tx, to, amount, kind, requestID, carID)
	return err
}
