package domain

import (
	"time"
)

// Role is the closed set of principal roles
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Principal is the identity resolved by the auth gate for one request
type Principal struct {
	UserID int64
	Role   Role
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// User a storefront account; admins are users with RoleAdmin
type User struct {
	ID              int64      `json:"id,string" gorm:"primaryKey"`
	FirstName       string     `json:"first_name" gorm:"size:50"`
	LastName        string     `json:"last_name" gorm:"size:50"`
	Email           string     `json:"email" gorm:"size:255;uniqueIndex"`
	Password        string     `json:"-" gorm:"size:255"`
	Phone           string     `json:"phone" gorm:"size:32"`
	Role            Role       `json:"role" gorm:"size:16;index"`
	IsActive        bool       `json:"is_active"`
	IsVerified      bool       `json:"is_verified"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLogin       *time.Time `json:"last_login"`
	CreatedAt       time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "sys_user"
}

// SysOprLog operator log, one row per admin catalog mutation
type SysOprLog struct {
	ID        int64     `json:"id,string" gorm:"primaryKey"`
	OprID     int64     `json:"opr_id,string" gorm:"index"`
	OprIp     string    `json:"opr_ip"`
	OptAction string    `json:"opt_action" gorm:"size:64"`
	OptDesc   string    `json:"opt_desc" gorm:"type:text"`
	OptTime   time.Time `json:"opt_time" gorm:"index"`
}

// TableName Specify table name
func (SysOprLog) TableName() string {
	return "sys_opr_log"
}
