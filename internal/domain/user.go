package domain

import "time"

type UserRole string

const (
	RoleRenter     UserRole = "renter"
	RoleExhibition UserRole = "exhibition"
)

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"type:varchar(16);not null;default:'renter'"`
	Credit       int64     `json:"credit" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// IsStaff reports whether the user belongs to the exhibition side of the
// marketplace. Personal credit is a renter-only concept; staff credit is
// routed to the exhibition balance by the ledger service.
func (u *User) IsStaff() bool {
	return u.Role == RoleExhibition
}
