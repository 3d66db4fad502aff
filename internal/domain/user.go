package domain

import (
	"time"
)

type User struct {
	ID              string `gorm:"primaryKey;type:uuid" json:"id"`
	OrganizationID  string `gorm:"type:uuid;not null;index" json:"organization_id"`
	Email           string `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Name            string `gorm:"type:text;not null" json:"name"`
	DailyTokenLimit int64  `gorm:"not null;default:0" json:"daily_token_limit"`
	UsageCounters   `gorm:"embedded"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Organization    *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
