package domain

import "time"

// Exhibition owns a fleet of cars and carries the balance all of its staff
// settle against.
type Exhibition struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Credit    int64     `json:"credit" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Exhibition) TableName() string { return "exhibitions" }
