package domain

import "time"

// Capability is a named permission grantable to a staff member.
type Capability string

const (
	CapCreditAccess   Capability = "credit_access"
	CapAnswerRequests Capability = "answer_requests"
	CapManageCars     Capability = "manage_cars"
	CapManageStaff    Capability = "manage_staff"
)

// Staff links a user account to the exhibition it works for.
type Staff struct {
	ID           int64 `json:"id" gorm:"primaryKey"`
	UserID       int64 `json:"user_id" gorm:"uniqueIndex;not null"`
	ExhibitionID int64 `json:"exhibition_id" gorm:"index;not null"`
	IsSenior     bool  `json:"is_senior" gorm:"not null;default:false"`

	CanAccessCredit   bool `json:"can_access_credit" gorm:"not null;default:false"`
	CanAnswerRequests bool `json:"can_answer_requests" gorm:"not null;default:false"`
	CanManageCars     bool `json:"can_manage_cars" gorm:"not null;default:false"`
	CanManageStaff    bool `json:"can_manage_staff" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User       *User       `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Exhibition *Exhibition `json:"exhibition,omitempty" gorm:"foreignKey:ExhibitionID;constraint:OnDelete:CASCADE"`
}

func (Staff) TableName() string { return "staff" }

// Has reports whether the staff member holds the capability. Senior staff
// hold every capability implicitly.
func (s *Staff) Has(cap Capability) bool {
	if s.IsSenior {
		return true
	}
	switch cap {
	case CapCreditAccess:
		return s.CanAccessCredit
	case CapAnswerRequests:
		return s.CanAnswerRequests
	case CapManageCars:
		return s.CanManageCars
	case CapManageStaff:
		return s.CanManageStaff
	}
	return false
}

// Grant sets a single capability flag.
func (s *Staff) Grant(cap Capability, allowed bool) {
	switch cap {
	case CapCreditAccess:
		s.CanAccessCredit = allowed
	case CapAnswerRequests:
		s.CanAnswerRequests = allowed
	case CapManageCars:
		s.CanManageCars = allowed
	case CapManageStaff:
		s.CanManageStaff = allowed
	}
}
