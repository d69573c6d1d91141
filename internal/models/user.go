package models

import "time"

// AccountStatus tracks whether a user finished email verification.
type AccountStatus string

const (
	AccountPending  AccountStatus = "Pending"
	AccountVerified AccountStatus = "Verified"
)

// User is a buyer or seller account. The same email may exist once per role.
type User struct {
	ID                 uint          `json:"id" gorm:"primaryKey"`
	Name               string        `json:"name" gorm:"type:varchar(200)"`
	Email              string        `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email_role"`
	PasswordHash       string        `json:"-" gorm:"type:varchar(255);not null"`
	Role               Role          `json:"role" gorm:"type:varchar(20);not null;uniqueIndex:idx_users_email_role"`
	EmailVerified      bool          `json:"emailVerified" gorm:"not null;default:false"`
	VerificationToken  *string       `json:"-" gorm:"type:varchar(128);index"`
	VerificationExpiry *time.Time    `json:"-"`
	AccountStatus      AccountStatus `json:"accountStatus" gorm:"type:varchar(20);not null;default:Pending"`
	PayPalMerchantID   *string       `json:"payPalMerchantId,omitempty" gorm:"type:varchar(128)"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// IsVerified reports whether the user may log in.
func (u *User) IsVerified() bool {
	return u.EmailVerified && u.AccountStatus == AccountVerified
}

// MerchantID returns the configured payment-processor merchant id, or "".
func (u *User) MerchantID() string {
	if u == nil || u.PayPalMerchantID == nil {
		return ""
	}
	return *u.PayPalMerchantID
}
