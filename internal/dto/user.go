package dto

import (
	"time"

	"hrms/internal/domain"
)

type EmployeeSummary struct {
	ID           string `json:"id"`
	EmployeeCode string `json:"employeeId,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
}

// UserView is the public projection of a credential record.
type UserView struct {
	ID                 string           `json:"id"`
	Username           string           `json:"username"`
	Email              string           `json:"email"`
	Roles              []string         `json:"roles"`
	IsActive           bool             `json:"isActive"`
	TwoFactorEnabled   bool             `json:"twoFactorEnabled"`
	LastLoginAt        *time.Time       `json:"lastLoginAt,omitempty"`
	PasswordExpiryDate *time.Time       `json:"passwordExpiryDate,omitempty"`
	Employee           *EmployeeSummary `json:"employee"`
}

type UpdateProfileRequest struct {
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
}

func NewUserView(u *domain.User) *UserView {
	v := &UserView{
		ID:                 u.ID.String(),
		Username:           u.Username,
		Email:              u.Email,
		Roles:              append([]string{}, u.Roles...),
		IsActive:           u.IsActive,
		TwoFactorEnabled:   u.TwoFactorEnabled,
		LastLoginAt:        u.LastLoginAt,
		PasswordExpiryDate: u.PasswordExpiryDate,
	}
	if u.Employee != nil {
		v.Employee = NewEmployeeSummary(u.Employee)
	}
	return v
}

func NewEmployeeSummary(e *domain.Employee) *EmployeeSummary {
	return &EmployeeSummary{
		ID:           e.ID.String(),
		EmployeeCode: e.EmployeeCode,
		Name:         e.FullName(),
		Email:        e.OfficialEmail,
		PhoneNumber:  e.PhoneNumber,
	}
}
