package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/shoplinehq/shopline-backend/internal/auth"
	"github.com/shoplinehq/shopline-backend/internal/users"
	pkgauth "github.com/shoplinehq/shopline-backend/pkg/auth"
	"github.com/shoplinehq/shopline-backend/pkg/auth/session"
	"github.com/shoplinehq/shopline-backend/pkg/config"
	"github.com/shoplinehq/shopline-backend/pkg/enums"
	pkgerrors "github.com/shoplinehq/shopline-backend/pkg/errors"
)

type stubAuthService struct {
	login *authsvc.LoginResponse
	user  *users.UserDTO
	err   error

	revoked []string
}

func (s *stubAuthService) Login(_ context.Context, _ authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return s.login, s.err
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return s.err
}

func (s *stubAuthService) Me(_ context.Context, _ uuid.UUID) (*users.UserDTO, error) {
	return s.user, s.err
}

func (s *stubAuthService) ChangePassword(_ context.Context, _ uuid.UUID, _ authsvc.ChangePasswordRequest) error {
	return s.err
}

type stubRegisterService struct {
	user *users.UserDTO
	err  error
}

func (s *stubRegisterService) Signup(_ context.Context, _ authsvc.SignupRequest) (*users.UserDTO, error) {
	return s.user, s.err
}

func jsonBody(payload string) io.Reader {
	return strings.NewReader(payload)
}

func TestAuthSignupCreated(t *testing.T) {
	svc := &stubRegisterService{user: &users.UserDTO{ID: uuid.New(), Email: "buyer@example.com"}}
	handler := AuthSignup(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", jsonBody(`{"email":"buyer@example.com","username":"buyer","password":"super-secret"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
}

func TestAuthSignupConflict(t *testing.T) {
	svc := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	handler := AuthSignup(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", jsonBody(`{"email":"buyer@example.com","username":"buyer","password":"super-secret"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(`{"email":"buyer@example.com","password":"wrong-password"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 30}
	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(cfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	svc := &stubAuthService{}
	handler := AuthLogout(svc, cfg, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(svc.revoked) != 1 || svc.revoked[0] != accessID {
		t.Fatalf("expected session %s revoked, got %v", accessID, svc.revoked)
	}
}

func TestAuthLogoutAcceptsExpiredToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 1}
	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(cfg, time.Now().Add(-time.Hour), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	svc := &stubAuthService{}
	handler := AuthLogout(svc, cfg, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for expired token got %d", rec.Code)
	}
	if len(svc.revoked) != 1 {
		t.Fatalf("expected revoke to run, got %v", svc.revoked)
	}
}

func TestAuthMeReturnsProfile(t *testing.T) {
	userID := uuid.New()
	svc := &stubAuthService{user: &users.UserDTO{ID: userID, Username: "buyer"}}
	handler := AuthMe(svc, nil)

	req := authedRequest(http.MethodGet, "/api/v1/auth/me", "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Username != "buyer" {
		t.Fatalf("expected username buyer got %s", envelope.Data.Username)
	}
}
