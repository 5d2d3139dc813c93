package ledger

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EntryAdjust = "ADJUST"
	EntryRental = "RENTAL"
	EntryRepair = "REPAIR"
)

const (
	AccountUser       = "user"
	AccountExhibition = "exhibition"
)

// CreditEntry records one balance mutation. Every credit change in the system
// leaves exactly one entry per touched account.
type CreditEntry struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	AccountType string    `json:"account_type" gorm:"type:varchar(16);not null;index:idx_credit_account"`
	AccountID   int64     `json:"account_id" gorm:"not null;index:idx_credit_account"`
	Amount      int64     `json:"amount" gorm:"not null"`
	Kind        string    `json:"kind" gorm:"type:varchar(16);not null;index;check:kind IN ('ADJUST','RENTAL','REPAIR')"`
	RequestID   *int64    `json:"request_id,omitempty"`
	CarID       *int64    `json:"car_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (CreditEntry) TableName() string { return "credit_entries" }

func (e *CreditEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
