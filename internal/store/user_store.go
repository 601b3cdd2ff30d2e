package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hrms/internal/domain"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	return translate(u.db.WithContext(ctx).Omit(clause.Associations).Create(usr).Error)
}

// Save writes every column of usr by primary key. Associations are never touched.
func (u *UserStore) Save(ctx context.Context, usr *domain.User) error {
	return translate(u.db.WithContext(ctx).Omit(clause.Associations).Save(usr).Error)
}

func (u *UserStore) FindByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return u.first(ctx, "id = ?", id)
}

func (u *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return u.first(ctx, "username = ?", username)
}

func (u *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return u.first(ctx, "email = ?", email)
}

// FindByResetToken looks a user up by the hashed reset token, ignoring expired tokens.
func (u *UserStore) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	return u.first(ctx, "reset_password_token = ? AND reset_password_expiry > ?", tokenHash, now)
}

// ExistsByUsernameOrEmail reports whether another user already holds username or email.
func (u *UserStore) ExistsByUsernameOrEmail(ctx context.Context, username, email string, exclude domain.UserID) (bool, error) {
	var n int64
	q := u.db.WithContext(ctx).Model(&domain.User{}).Where("(username = ? OR email = ?)", username, email)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (u *UserStore) first(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).Preload("Employee").Where(query, args...).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
