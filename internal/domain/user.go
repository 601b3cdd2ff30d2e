package domain

import "time"

// User is the credential record of one login principal. Secret-bearing fields never
// serialize; handlers expose users through dto.UserView.
type User struct {
	ID                  UserID      `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	EmployeeID          *EmployeeID `gorm:"type:uuid;uniqueIndex:ux_users_employee" db:"employee_id" json:"employeeId,omitempty"`
	Employee            *Employee   `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Username            string      `gorm:"type:varchar(100);not null;uniqueIndex:ux_users_username" db:"username" json:"username"`
	Email               string      `gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email" db:"email" json:"email"`
	PasswordHash        string      `gorm:"type:text;not null" db:"password_hash" json:"-"`
	Roles               Roles       `gorm:"type:jsonb;not null" db:"roles" json:"roles"`
	IsActive            bool        `gorm:"not null;default:true;index" db:"is_active" json:"isActive"`
	IsLocked            bool        `gorm:"not null;default:false" db:"is_locked" json:"isLocked"`
	FailedLoginAttempts int         `gorm:"not null;default:0" db:"failed_login_attempts" json:"failedLoginAttempts"`
	LockedUntil         *time.Time  `db:"locked_until" json:"lockedUntil,omitempty"`
	PasswordChangedAt   time.Time   `gorm:"not null" db:"password_changed_at" json:"passwordChangedAt"`
	PasswordExpiryDate  *time.Time  `db:"password_expiry_date" json:"passwordExpiryDate,omitempty"`
	LastLoginAt         *time.Time  `db:"last_login_at" json:"lastLoginAt,omitempty"`
	TwoFactorEnabled    bool        `gorm:"not null;default:false" db:"two_factor_enabled" json:"twoFactorEnabled"`
	TwoFactorSecret     *string     `gorm:"type:text" db:"two_factor_secret" json:"-"`
	MfaOtp              *string     `gorm:"type:varchar(6)" db:"mfa_otp" json:"-"`
	MfaOtpExpiry        *time.Time  `db:"mfa_otp_expiry" json:"-"`
	ResetPasswordToken  *string     `gorm:"type:varchar(100);index" db:"reset_password_token" json:"-"`
	ResetPasswordExpiry *time.Time  `db:"reset_password_expiry" json:"-"`
	CreatedAt           time.Time   `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time   `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Roles.HasAny(AdminRoles...) }

// ClearLock drops the lock and the failed-attempt counter.
func (u *User) ClearLock() {
	u.IsLocked = false
	u.LockedUntil = nil
	u.FailedLoginAttempts = 0
}

func (u *User) ClearMfaOtp() {
	u.MfaOtp = nil
	u.MfaOtpExpiry = nil
}

func (u *User) ClearResetToken() {
	u.ResetPasswordToken = nil
	u.ResetPasswordExpiry = nil
}
