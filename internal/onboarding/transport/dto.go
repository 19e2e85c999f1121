package transport

type BusinessData struct {
	ServiceTypes  []string `json:"serviceTypes" validate:"omitempty,max=50,dive,max=100"`
	BusinessEmail *string  `json:"businessEmail" validate:"omitempty,email,max=254"`
	Location      *string  `json:"location" validate:"omitempty,max=200"`
	ServiceArea   *string  `json:"serviceArea" validate:"omitempty,max=200"`
}

type UpdateOnboardingRequest struct {
	Step         *int          `json:"step" validate:"required,min=0"`
	Completed    *bool         `json:"completed"`
	BusinessData *BusinessData `json:"businessData"`
}

type OnboardingResponse struct {
	Step      int            `json:"step"`
	Completed bool           `json:"completed"`
	Settings  map[string]any `json:"settings"`
}

type UpdateOnboardingResponse struct {
	Success bool               `json:"success"`
	Data    OnboardingResponse `json:"data"`
}
