package user

import "time"

// User types. Mentors advise for free; tutors bill per hour in tokens.
const (
	TypeStudent = "student"
	TypeMentor  = "mentor"
	TypeTutor   = "tutor"
	TypeAdmin   = "admin"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	UserType     string    `db:"user_type" json:"user_type"`
	HourlyRate   int64     `db:"hourly_rate" json:"hourly_rate"`
	Subject      string    `db:"subject" json:"subject"`
	Bio          string    `db:"bio" json:"bio"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	UserType   string `json:"user_type" binding:"required,oneof=student mentor tutor"`
	HourlyRate int64  `json:"hourly_rate" binding:"gte=0"`
	Subject    string `json:"subject"`
	Bio        string `json:"bio"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Profile is a user plus their token balance.
type Profile struct {
	User
	TokenBalance int64 `json:"token_balance"`
}
