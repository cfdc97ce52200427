package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleGlobalAdmin  Role = "Global Admin"
	RoleAirlineAdmin Role = "Airline Admin"
	RolePassenger    Role = "Passenger"
)

type UserStatus string

const (
	UserActive   UserStatus = "Active"
	UserInactive UserStatus = "Inactive"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phone_number"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	Avatar       *string    `json:"avatar"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u User) IsGlobalAdmin() bool {
	return u.Role == RoleGlobalAdmin
}

const MinPasswordLength = 6

type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r RegisterRequest) Validate() error {
	fields := [][2]string{
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"username", r.Username},
		{"phone_number", r.PhoneNumber},
	}
	for _, f := range fields {
		if err := required(f[0], f[1]); err != nil {
			return err
		}
	}
	if err := ValidateEmail("email", r.Email); err != nil {
		return err
	}
	if len(r.Password) < MinPasswordLength {
		return NewValidationError("password", "must be at least %d characters", MinPasswordLength)
	}
	if r.Password != r.ConfirmPassword {
		return NewValidationError("confirm_password", "passwords do not match")
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}
