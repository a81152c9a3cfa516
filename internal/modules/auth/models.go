package auth

import "time"

type APIToken struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	LookupKey string    `gorm:"type:char(16);not null;index:ix_api_tokens_lookup_key"`
	TokenHash string    `gorm:"type:varchar(128);not null"`
	Label     string    `gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `gorm:"type:datetime;not null"`
}

func (APIToken) TableName() string { return "api_tokens" }
