package domain

import "time"

type Car struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	ExhibitionID  int64      `json:"exhibition_id" gorm:"index;not null"`
	RenterID      *int64     `json:"renter_id,omitempty"`
	CarType       string     `json:"car_type" gorm:"type:varchar(50)"`
	Plate         string     `json:"plate" gorm:"type:varchar(8)"`
	PricePerHour  int64      `json:"price_per_hour" gorm:"not null;default:0"`
	RentStartTime *time.Time `json:"rent_start_time,omitempty"`
	RentEndTime   *time.Time `json:"rent_end_time,omitempty"`
	NeedsRepair   bool       `json:"needs_repair" gorm:"not null;default:false"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Exhibition *Exhibition `json:"exhibition,omitempty" gorm:"foreignKey:ExhibitionID;constraint:OnDelete:CASCADE"`
	Renter     *User       `json:"renter,omitempty" gorm:"foreignKey:RenterID;constraint:OnDelete:SET NULL"`
}

func (Car) TableName() string { return "cars" }

// IsRented reports whether the car has an active rental window. A window
// ending exactly at now counts as free.
func (c *Car) IsRented(now time.Time) bool {
	return c.RentEndTime != nil && c.RentEndTime.After(now)
}

// Overlaps reports whether [start, end) intersects the car's current window.
func (c *Car) Overlaps(start, end time.Time) bool {
	if c.RentStartTime == nil || c.RentEndTime == nil {
		return false
	}
	return start.Before(*c.RentEndTime) && c.RentStartTime.Before(end)
}
