package auth

type SignupRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=64"`
	Password       string `json:"password" binding:"required,min=4"`
	UserType       string `json:"user_type" binding:"required,oneof=renter exhibition"`
	ExhibitionName string `json:"exhibition_name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
