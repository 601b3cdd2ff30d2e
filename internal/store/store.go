package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hrms/internal/domain"
)

var (
	ErrRecordNotFound = errors.New("store: record not found")
	ErrDuplicate      = errors.New("store: duplicate key")
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

// Migrate creates the tables this module owns. The employees table is created too
// when missing so the users foreign key can be declared.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.DB.WithContext(ctx).AutoMigrate(&domain.Employee{}, &domain.User{}, &domain.AuditLog{}); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	default:
		return err
	}
}
