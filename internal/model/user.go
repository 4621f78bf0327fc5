package model

import "time"

// User — зарегистрированный пользователь, владелец книг.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Login    string `gorm:"not null;uniqueIndex" json:"login"`
	Password string `gorm:"not null" json:"-"` // bcrypt-хеш

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}
