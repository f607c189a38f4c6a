package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/account-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/ratelimiter"
	"github.com/vasapolrittideah/account-api/shared/validator"
)

const successRedirectSeconds = 10

type resetFormPage struct {
	Action string
}

type resetSuccessPage struct {
	HomeURL         string
	RedirectSeconds int
}

// ForgotPassword issues a reset token and emails the reset link. The response is written
// only after the mail relay has answered.
func (h *AuthHTTPHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if !h.decodeJSON(w, r, &req) || !h.validate(w, req) {
		return
	}

	err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			writeMessage(w, http.StatusBadRequest, "User Not Found")
		case errors.Is(err, ratelimiter.ErrRateLimitExceeded):
			writeMessage(w, http.StatusTooManyRequests, "Too many password reset requests, try again later")
		case errors.Is(err, usecase.ErrMailDelivery):
			h.log(r).Error().Err(err).Msg("failed to send password reset email")
			writeMessage(w, http.StatusInternalServerError, "Error sending mail")
		default:
			h.log(r).Error().Err(err).Msg("failed to request password reset")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Email sent. check your inbox")
}

// ShowResetPasswordForm renders the new password form when the token is valid.
func (h *AuthHTTPHandler) ShowResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	err := h.passwordResetUsecase.ValidatePasswordResetToken(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrTokenNotFound):
			writeMessage(w, http.StatusNotFound, "Invalid Link")
		case errors.Is(err, usecase.ErrTokenExpired):
			h.renderPage(w, r, http.StatusBadRequest, "reset_expired.html", nil)
		default:
			h.log(r).Error().Err(err).Msg("failed to validate password reset token")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.renderPage(w, r, http.StatusOK, "reset_form.html", resetFormPage{
		Action: "/api/reset-password/" + url.PathEscape(token),
	})
}

// ResetPassword stores the new password submitted from the reset form.
func (h *AuthHTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	req, err := decodeResetPasswordRequest(w, r)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	err = h.passwordResetUsecase.ResetPassword(r.Context(), token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrTokenNotFound):
			http.Error(w, "Invalid link", http.StatusNotFound)
		case errors.Is(err, usecase.ErrTokenExpired):
			h.renderPage(w, r, http.StatusBadRequest, "reset_expired.html", nil)
		default:
			h.log(r).Error().Err(err).Msg("failed to reset password")
			http.Error(w, "Failed to reset password", http.StatusBadRequest)
		}
		return
	}

	w.Header().Set("Refresh", fmt.Sprintf("%d;url=%s", successRedirectSeconds, h.authServiceCfg.AppHomeURL))
	h.renderPage(w, r, http.StatusOK, "reset_success.html", resetSuccessPage{
		HomeURL:         h.authServiceCfg.AppHomeURL,
		RedirectSeconds: successRedirectSeconds,
	})
}

// decodeResetPasswordRequest accepts the HTML form encoding as well as JSON.
func decodeResetPasswordRequest(w http.ResponseWriter, r *http.Request) (payload.ResetPasswordRequest, error) {
	var req payload.ResetPasswordRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.NewPassword = r.PostForm.Get("newPassword")

	return req, nil
}
