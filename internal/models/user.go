package models

import (
	"time"
)

// User kullanıcı modelini temsil eder
type User struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"` // JSON'da gösterilmez
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Streamer yayıncı modelini temsil eder; owner bir User'dır
type Streamer struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	IsLive    bool      `json:"is_live" db:"is_live"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateUserRequest kullanıcı oluşturma isteği
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest giriş isteği
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse giriş yanıtı
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
