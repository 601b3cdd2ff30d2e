package domain

import "time"

// Employee is the slice of the HR employee record this module reads. The table is
// owned by the employee module; only PhoneNumber is ever written from here.
type Employee struct {
	ID            EmployeeID `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeCode  string     `gorm:"column:employee_id;type:varchar(50);uniqueIndex" json:"employeeId"`
	FirstName     string     `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName      string     `gorm:"type:varchar(100);not null" json:"lastName"`
	OfficialEmail string     `gorm:"type:varchar(255)" json:"officialEmail"`
	PhoneNumber   string     `gorm:"type:varchar(20)" json:"phoneNumber"`
	DepartmentID  *string    `gorm:"type:uuid" json:"departmentId,omitempty"`
	DesignationID *string    `gorm:"type:uuid" json:"designationId,omitempty"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`
}

func (Employee) TableName() string { return "employees" }

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
