package domain

import "time"

// DefaultCredits is the balance a user record starts with.
const DefaultCredits = 3

// User is the per-Telegram-user record. Credits only move through the
// repo's conditional decrement.
type User struct {
	UserID               int64     `gorm:"primaryKey;autoIncrement:false;column:user_id" json:"user_id"`
	Credits              int       `gorm:"not null;column:credits" json:"credits"`
	CompanyDescription   *string   `gorm:"type:text;column:company_description" json:"company_description,omitempty"`
	ResponseLanguageCode *string   `gorm:"column:response_language_code" json:"response_language_code,omitempty"`
	CreatedAt            time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "bot_user" }

// ProcessedUpdate marks a Telegram update_id as handled.
type ProcessedUpdate struct {
	UpdateID  int64     `gorm:"primaryKey;autoIncrement:false;column:update_id" json:"update_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (ProcessedUpdate) TableName() string { return "processed_update" }
