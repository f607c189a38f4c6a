package handler

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/account-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/validator"
)

const maxRequestBodyBytes = 1 << 20

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// AuthHTTPHandler serves the registration and password reset endpoints.
type AuthHTTPHandler struct {
	logger               *zerolog.Logger
	authUsecase          usecase.AuthUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	validator            *validator.Validator
	authServiceCfg       *config.AuthServiceConfig
}

func NewAuthHTTPHandler(
	logger *zerolog.Logger,
	authUsecase usecase.AuthUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	validator *validator.Validator,
	authServiceCfg *config.AuthServiceConfig,
) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		logger:               logger,
		authUsecase:          authUsecase,
		passwordResetUsecase: passwordResetUsecase,
		validator:            validator,
		authServiceCfg:       authServiceCfg,
	}
}

// RegisterRoutes mounts the handler's endpoints under /api.
func (h *AuthHTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Get("/reset-password/{token}", h.ShowResetPasswordForm)
		r.Post("/reset-password/{token}", h.ResetPassword)
	})
}

// log prefers the request-scoped logger installed by the access log middleware.
func (h *AuthHTTPHandler) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return h.logger
}

func (h *AuthHTTPHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *AuthHTTPHandler) validate(w http.ResponseWriter, req any) bool {
	err := h.validator.Struct(req)
	if err == nil {
		return true
	}

	var validationErr *validator.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, payload.MessageResponse{
			Message: "invalid request",
			Errors:  validationErr.Fields,
		})
		return false
	}

	writeMessage(w, http.StatusBadRequest, "invalid request")
	return false
}

func (h *AuthHTTPHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.log(r).Error().Err(err).Str("template", name).Msg("failed to render page")
		http.Error(w, "something went wrong", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, payload.MessageResponse{Message: message})
}
