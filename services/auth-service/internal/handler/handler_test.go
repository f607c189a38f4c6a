package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/account-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/ratelimiter"
	"github.com/vasapolrittideah/account-api/shared/validator"
)

type stubAuthUsecase struct {
	err    error
	params *usecase.RegisterParams
}

func (s *stubAuthUsecase) Register(_ context.Context, params usecase.RegisterParams) error {
	s.params = &params
	return s.err
}

type stubPasswordResetUsecase struct {
	requestErr  error
	validateErr error
	resetErr    error

	email       string
	token       string
	newPassword string
}

func (s *stubPasswordResetUsecase) RequestPasswordReset(_ context.Context, email string) error {
	s.email = email
	return s.requestErr
}

func (s *stubPasswordResetUsecase) ValidatePasswordResetToken(_ context.Context, token string) error {
	s.token = token
	return s.validateErr
}

func (s *stubPasswordResetUsecase) ResetPassword(_ context.Context, token, newPassword string) error {
	s.token = token
	s.newPassword = newPassword
	return s.resetErr
}

func newTestHandlerConfig() *config.AuthServiceConfig {
	return &config.AuthServiceConfig{
		AppHomeURL:          "http://localhost:5173/",
		AppPasswordResetURL: "http://localhost:5000/api/reset-password",
		CORSAllowedOrigins:  []string{"*"},
		Token: config.TokenConfig{
			PasswordResetTokenExpiresIn: time.Minute,
			PasswordResetTokenLength:    32,
			CheckExpiryOnReset:          true,
		},
	}
}

func newTestRouter(t *testing.T, auth usecase.AuthUsecase, reset usecase.PasswordResetUsecase) http.Handler {
	t.Helper()

	v, err := validator.New()
	require.NoError(t, err)

	logger := zerolog.Nop()
	cfg := newTestHandlerConfig()
	h := NewAuthHTTPHandler(&logger, auth, reset, v, cfg)

	return NewRouter(&logger, cfg.CORSAllowedOrigins, h)
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doForm(t *testing.T, router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) payload.MessageResponse {
	t.Helper()

	var resp payload.MessageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestRegister(t *testing.T) {
	cases := []struct {
		name           string
		body           string
		usecaseErr     error
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "success",
			body:           `{"email":"a@x.com","password":"p1","randomString":"abc"}`,
			expectedStatus: http.StatusOK,
			expectedMsg:    "User registered successfully",
		},
		{
			name:           "already exists",
			body:           `{"email":"a@x.com","password":"p1"}`,
			usecaseErr:     usecase.ErrUserAlreadyExists,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "User already exists",
		},
		{
			name:           "storage error",
			body:           `{"email":"a@x.com","password":"p1"}`,
			usecaseErr:     fmt.Errorf("%w: %w", usecase.ErrStorage, errors.New("timeout")),
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "Internal server error",
		},
		{
			name:           "bad json",
			body:           `{"email":`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request body",
		},
		{
			name:           "missing password",
			body:           `{"email":"a@x.com"}`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &stubAuthUsecase{err: tc.usecaseErr}
			router := newTestRouter(t, auth, &stubPasswordResetUsecase{})

			rec := doJSON(t, router, http.MethodPost, "/api/register", tc.body)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, tc.expectedMsg, decodeMessage(t, rec).Message)
		})
	}
}

func TestRegisterPassesDisplayToken(t *testing.T) {
	auth := &stubAuthUsecase{}
	router := newTestRouter(t, auth, &stubPasswordResetUsecase{})

	rec := doJSON(t, router, http.MethodPost, "/api/register", `{"email":"a@x.com","password":"p1","randomString":"abc"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, auth.params)
	assert.Equal(t, usecase.RegisterParams{Email: "a@x.com", Password: "p1", DisplayToken: "abc"}, *auth.params)
}

func TestRegisterReportsValidationFields(t *testing.T) {
	router := newTestRouter(t, &stubAuthUsecase{}, &stubPasswordResetUsecase{})

	rec := doJSON(t, router, http.MethodPost, "/api/register", `{"email":"nope"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeMessage(t, rec)
	assert.Contains(t, resp.Errors, "email")
	assert.Contains(t, resp.Errors, "password")
}

func TestForgotPassword(t *testing.T) {
	cases := []struct {
		name           string
		usecaseErr     error
		expectedStatus int
		expectedMsg    string
	}{
		{"success", nil, http.StatusOK, "Email sent. check your inbox"},
		{"not found", usecase.ErrUserNotFound, http.StatusBadRequest, "User Not Found"},
		{"rate limited", ratelimiter.ErrRateLimitExceeded, http.StatusTooManyRequests, "Too many password reset requests, try again later"},
		{"mail error", fmt.Errorf("%w: %w", usecase.ErrMailDelivery, errors.New("554")), http.StatusInternalServerError, "Error sending mail"},
		{"storage error", fmt.Errorf("%w: %w", usecase.ErrStorage, errors.New("down")), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reset := &stubPasswordResetUsecase{requestErr: tc.usecaseErr}
			router := newTestRouter(t, &stubAuthUsecase{}, reset)

			rec := doJSON(t, router, http.MethodPost, "/api/forgot-password", `{"email":"a@x.com"}`)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, tc.expectedMsg, decodeMessage(t, rec).Message)
			assert.Equal(t, "a@x.com", reset.email)
		})
	}
}

func TestShowResetPasswordForm(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		reset := &stubPasswordResetUsecase{}
		router := newTestRouter(t, &stubAuthUsecase{}, reset)

		rec := doJSON(t, router, http.MethodGet, "/api/reset-password/abc123", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "abc123", reset.token)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), `action="/api/reset-password/abc123"`)
		assert.Contains(t, rec.Body.String(), `name="newPassword"`)
	})

	t.Run("unknown token", func(t *testing.T) {
		router := newTestRouter(t, &stubAuthUsecase{}, &stubPasswordResetUsecase{validateErr: usecase.ErrTokenNotFound})

		rec := doJSON(t, router, http.MethodGet, "/api/reset-password/abc123", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Invalid Link", decodeMessage(t, rec).Message)
	})

	t.Run("expired token", func(t *testing.T) {
		router := newTestRouter(t, &stubAuthUsecase{}, &stubPasswordResetUsecase{validateErr: usecase.ErrTokenExpired})

		rec := doJSON(t, router, http.MethodGet, "/api/reset-password/abc123", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Time limit exceeded. Request a new link")
	})
}

func TestResetPassword(t *testing.T) {
	t.Run("form encoded", func(t *testing.T) {
		reset := &stubPasswordResetUsecase{}
		router := newTestRouter(t, &stubAuthUsecase{}, reset)

		rec := doForm(t, router, "/api/reset-password/abc123", url.Values{"newPassword": {"p2"}})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "abc123", reset.token)
		assert.Equal(t, "p2", reset.newPassword)
		assert.Contains(t, rec.Body.String(), "Password Reset Successful")
		assert.Contains(t, rec.Body.String(), `href="http://localhost:5173/"`)
		assert.Equal(t, "10;url=http://localhost:5173/", rec.Header().Get("Refresh"))
	})

	t.Run("json", func(t *testing.T) {
		reset := &stubPasswordResetUsecase{}
		router := newTestRouter(t, &stubAuthUsecase{}, reset)

		rec := doJSON(t, router, http.MethodPost, "/api/reset-password/abc123", `{"newPassword":"p2"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "p2", reset.newPassword)
	})

	t.Run("missing password", func(t *testing.T) {
		reset := &stubPasswordResetUsecase{}
		router := newTestRouter(t, &stubAuthUsecase{}, reset)

		rec := doForm(t, router, "/api/reset-password/abc123", url.Values{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "newPassword is a required field")
		assert.Empty(t, reset.token)
	})

	cases := []struct {
		name           string
		usecaseErr     error
		expectedStatus int
		expectedBody   string
	}{
		{"unknown token", usecase.ErrTokenNotFound, http.StatusNotFound, "Invalid link"},
		{"expired token", usecase.ErrTokenExpired, http.StatusBadRequest, "Time limit exceeded"},
		{"storage error", fmt.Errorf("%w: %w", usecase.ErrStorage, errors.New("down")), http.StatusBadRequest, "Failed to reset password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(t, &stubAuthUsecase{}, &stubPasswordResetUsecase{resetErr: tc.usecaseErr})

			rec := doForm(t, router, "/api/reset-password/abc123", url.Values{"newPassword": {"p2"}})

			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.expectedBody)
		})
	}
}

func TestRouterSetsRequestIDAndCORS(t *testing.T) {
	router := newTestRouter(t, &stubAuthUsecase{}, &stubPasswordResetUsecase{})

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"email":"a@x.com","password":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("ok", func(t *testing.T) {
		h := NewHealthHTTPHandler(&logger, PingerFunc(func(context.Context) error { return nil }))
		router := NewRouter(&logger, []string{"*"}, h)

		rec := doJSON(t, router, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("unavailable", func(t *testing.T) {
		h := NewHealthHTTPHandler(&logger, PingerFunc(func(context.Context) error { return errors.New("no primary") }))
		router := NewRouter(&logger, []string{"*"}, h)

		rec := doJSON(t, router, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
	})
}
