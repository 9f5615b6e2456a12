package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type createUserRequest struct {
	Name     string `json:"name"     validate:"required,min=3,max=63,personname"`
	Email    string `json:"email"    validate:"required,min=10,max=127,email"`
	Password string `json:"password" validate:"required,min=8,specialchar"`
}

// createUserResponse acknowledges an admitted signup. The user is queued for
// durable commit; it becomes readable after the next queue flush.
type createUserResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,min=10,max=127,email"`
	Password string `json:"password" validate:"required,min=8,specialchar"`
}

type loginResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresIn  int64  `json:"access_expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

type userDetailResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
