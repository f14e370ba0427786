package model

import "time"

// User represents a registered interview candidate.
type User struct {
	ID           int     `json:"id"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	PasswordHash string  `json:"-"`
	// Aggregate performance stats, recomputed as results are persisted.
	Credits             int       `json:"credits"`
	InterviewsCompleted int       `json:"interviews_completed"`
	Accuracy            float64   `json:"accuracy"`
	Streak              int       `json:"streak"`
	CreatedAt           time.Time `json:"created_at"`
}

// SignupRequest is the payload for creating an account.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	FullName string `json:"full_name" binding:"required,min=1,max=100"`
}

// LoginRequest is the payload for signing in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
