package transport

import (
	"time"

	"github.com/google/uuid"
)

type UpdateBusinessRequest struct {
	Name          *string        `json:"name" validate:"omitempty,max=200"`
	Email         *string        `json:"email" validate:"omitempty,email,max=254"`
	ServiceTypes  []string       `json:"service_types" validate:"omitempty,max=50,dive,max=100"`
	Qualification map[string]any `json:"qualification" validate:"omitempty,max=50"`
}

type BusinessResponse struct {
	ID                  uuid.UUID      `json:"id"`
	Name                string         `json:"name"`
	Slug                string         `json:"slug"`
	Email               string         `json:"email"`
	ServiceTypes        []string       `json:"serviceTypes"`
	OnboardingStep      int            `json:"onboardingStep"`
	OnboardingCompleted bool           `json:"onboardingCompleted"`
	Settings            map[string]any `json:"settings"`
	LogoURL             string         `json:"logoUrl,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
}

type MemberResponse struct {
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsDefault bool      `json:"isDefault"`
	JoinedAt  time.Time `json:"joinedAt"`
}

type TeamResponse struct {
	Members []MemberResponse `json:"members"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
