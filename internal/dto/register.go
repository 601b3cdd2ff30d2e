package dto

type RegisterRequest struct {
	Username   string   `json:"username" validate:"required,min=3,max=100"`
	Email      string   `json:"email" validate:"required,email,max=255"`
	Password   string   `json:"password" validate:"required"`
	Roles      []string `json:"roles,omitempty" validate:"omitempty,dive,required,max=50"`
	EmployeeID *string  `json:"employeeId,omitempty" validate:"omitempty,uuid"`
}
