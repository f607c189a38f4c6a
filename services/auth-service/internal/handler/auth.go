package handler

import (
	"errors"
	"net/http"

	"github.com/vasapolrittideah/account-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/usecase"
)

// Register creates a new account.
//
// Responses: 200 on success, 400 for an invalid body or an existing email, 500 on storage failure.
func (h *AuthHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if !h.decodeJSON(w, r, &req) || !h.validate(w, req) {
		return
	}

	err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:        req.Email,
		Password:     req.Password,
		DisplayToken: req.RandomString,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserAlreadyExists):
			writeMessage(w, http.StatusBadRequest, "User already exists")
		default:
			h.log(r).Error().Err(err).Msg("failed to register user")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeMessage(w, http.StatusOK, "User registered successfully")
}
