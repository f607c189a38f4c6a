package payload

type RegisterRequest struct {
	Email        string `json:"email"        validate:"required,email"`
	Password     string `json:"password"     validate:"required"`
	RandomString string `json:"randomString"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required"`
}

type MessageResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
