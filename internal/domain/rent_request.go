package domain

import "time"

// RentRequest is a renter's offer to rent a car for a time window. It is
// pending until staff accept or reject it; both outcomes are terminal.
type RentRequest struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	CarID         *int64    `json:"car_id,omitempty" gorm:"index"`
	RequesterID   int64     `json:"requester_id" gorm:"index;not null"`
	ResponderID   *int64    `json:"responder_id,omitempty"`
	RentStartTime time.Time `json:"rent_start_time" gorm:"not null"`
	RentEndTime   time.Time `json:"rent_end_time" gorm:"not null"`
	HasResult     bool      `json:"has_result" gorm:"not null;default:false"`
	IsAccepted    bool      `json:"is_accepted" gorm:"not null;default:false"`
	Price         int64     `json:"price" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`

	Car       *Car   `json:"car,omitempty" gorm:"foreignKey:CarID;constraint:OnDelete:SET NULL"`
	Requester *User  `json:"requester,omitempty" gorm:"foreignKey:RequesterID;constraint:OnDelete:CASCADE"`
	Responder *Staff `json:"responder,omitempty" gorm:"foreignKey:ResponderID;constraint:OnDelete:SET NULL"`
}

func (RentRequest) TableName() string { return "rent_requests" }

func (r *RentRequest) IsPending() bool { return !r.HasResult }

// BilledHours converts a rental duration to billable hours. Any started hour
// is billed in full.
func BilledHours(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	hours := int64(d / time.Hour)
	if d%time.Hour > 0 {
		hours++
	}
	return hours
}

// ComputePrice fills in the request price from the car's hourly rate. A price
// that is already set is kept as is, so the computation happens exactly once.
func (r *RentRequest) ComputePrice(pricePerHour int64) int64 {
	if r.Price != 0 {
		return r.Price
	}
	r.Price = BilledHours(r.RentEndTime.Sub(r.RentStartTime)) * pricePerHour
	return r.Price
}
