package entity

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Никогда не отправляем пароль
	CreatedAt    time.Time `json:"createdAt"`
}

// Регистрация и логин используют одинаковый payload
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MaxPasswordLength - предел bcrypt в байтах
const MaxPasswordLength = 72

func (c *Credentials) Normalize() error {
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidUserData)
	}
	if len(c.Password) > MaxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidUserData, MaxPasswordLength)
	}
	return nil
}

type RegisterRequest = Credentials

type LoginRequest = Credentials

type RegisterResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type LoginResponse struct {
	Success bool         `json:"success"`
	User    LoginUserDTO `json:"user"`
}

type LoginUserDTO struct {
	Username string `json:"username"`
}
