package staffmgmt

type CreateStaffRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=4"`
	IsSenior bool   `json:"is_senior"`
}

type CapabilitiesRequest struct {
	CanAccessCredit   *bool `json:"can_access_credit"`
	CanAnswerRequests *bool `json:"can_answer_requests"`
	CanManageCars     *bool `json:"can_manage_cars"`
	CanManageStaff    *bool `json:"can_manage_staff"`
}
