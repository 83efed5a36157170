package models

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// ParseRole accepts exactly "admin" or "customer".
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleCustomer:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	return string(r)
}

type Account struct {
	Username     string    `gorm:"primaryKey;type:varchar(100)" json:"username"`
	PasswordHash string    `gorm:"type:varchar(100);not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Account) TableName() string {
	return "accounts"
}
