package models

import "time"

// LinkedAccount binds a chat user to their Last.fm username. One row per
// Telegram user; relinking overwrites the username in place.
type LinkedAccount struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TelegramID int64     `gorm:"not null;uniqueIndex" json:"telegram_id"`
	LastfmUser string    `gorm:"size:100;not null" json:"lastfm_user"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
