package transport

import (
	"time"

	"github.com/google/uuid"
)

type SignUpRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	BusinessName string `json:"businessName" validate:"required,max=200"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type BusinessResponse struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Slug                string    `json:"slug"`
	Email               string    `json:"email"`
	Role                string    `json:"role,omitempty"`
	OnboardingStep      int       `json:"onboardingStep"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
}

type SignUpResponse struct {
	User     UserResponse     `json:"user"`
	Business BusinessResponse `json:"business"`
}

type SignInResponse struct {
	AccessToken string            `json:"accessToken"`
	User        UserResponse      `json:"user"`
	Business    *BusinessResponse `json:"business"`
}

type SessionResponse struct {
	User     UserResponse      `json:"user"`
	Business *BusinessResponse `json:"business"`
}

type ValidateResetTokenResponse struct {
	Email string `json:"email"`
	Valid bool   `json:"valid"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
