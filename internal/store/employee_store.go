package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrms/internal/domain"
)

// EmployeeStore covers the narrow employee surface used by the profile endpoints.
type EmployeeStore struct{ db *gorm.DB }

func (s *Store) Employees() *EmployeeStore { return &EmployeeStore{db: s.DB} }

func (e *EmployeeStore) Create(ctx context.Context, emp *domain.Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	return translate(e.db.WithContext(ctx).Create(emp).Error)
}

func (e *EmployeeStore) FindByID(ctx context.Context, id domain.EmployeeID) (*domain.Employee, error) {
	var emp domain.Employee
	if err := e.db.WithContext(ctx).First(&emp, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &emp, nil
}

func (e *EmployeeStore) UpdatePhoneNumber(ctx context.Context, id domain.EmployeeID, phone string) error {
	res := e.db.WithContext(ctx).Model(&domain.Employee{}).
		Where("id = ?", id).
		Update("phone_number", phone)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
