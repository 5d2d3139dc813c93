package fleet

type AddCarInput struct {
	CarType      string `json:"car_type" binding:"required"`
	Plate        string `json:"plate" binding:"required,max=8"`
	PricePerHour int64  `json:"price_per_hour" binding:"required,gt=0"`
}

type UpdateCarInput struct {
	PricePerHour int64 `json:"price_per_hour" binding:"required,gt=0"`
}

type ReportRepairInput struct {
	NeedsRepair *bool `json:"needs_repair" binding:"required"`
}

type AssignRenterInput struct {
	RenterID *int64 `json:"renter_id"`
}

type TransferOwnerInput struct {
	ExhibitionID int64 `json:"exhibition_id" binding:"required"`
}
