package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stackbase/identity-api/internal/core/domain"
	"github.com/stackbase/identity-api/internal/core/ports"
)

type stubAuthService struct {
	signupFn func(ctx context.Context, input ports.SignupInput) (*domain.User, error)
	loginFn  func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Signup(ctx context.Context, input ports.SignupInput) (*domain.User, error) {
	return s.signupFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, input ports.SignupInput) (*domain.User, error) {
			if input.Email != "alice@example.com" || input.Password != "secret123" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.User{
				ID:    "u-1",
				Email: input.Email,
				Roles: domain.DefaultRoles(),
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/signup",
		`{"email":"alice@example.com","password":"secret123","first_name":"Alice"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["email"] != "alice@example.com" || user["id"] != "u-1" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Signup_RejectsWeakPayloads(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, input ports.SignupInput) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	cases := []struct {
		name string
		body string
	}{
		{"not json", "not-json"},
		{"missing email", `{"password":"secret123"}`},
		{"bad email", `{"email":"nope","password":"secret123"}`},
		{"short password", `{"email":"a@b.com","password":"short"}`},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := postJSON(e, "/auth/signup", tt.body)
			_ = h.Signup(c)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestAuthHandler_Signup_UserExists(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, input ports.SignupInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, _ := postJSON(e, "/auth/signup", `{"email":"bob@example.com","password":"secret123"}`)
	// Domain errors bubble to the central error handler for status mapping.
	if err := h.Signup(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists to propagate, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			if email != "alice@example.com" || password != "secret123" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", &domain.User{ID: "u-1", Email: email, Roles: domain.DefaultRoles()}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/login", `{"email":"alice@example.com","password":"secret123"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
}

func TestAuthHandler_Login_MalformedEmailIsUnauthorized(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			t.Fatalf("service must not be called")
			return "", nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/login", `{"email":"not-an-email","password":"x"}`)
	_ = h.Login(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_NotFoundNeverLeaks(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrUserNotFound
		},
	}
	h := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/login", `{"email":"ghost@example.com","password":"pw"}`)
	if err := h.Login(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("account existence must not leak, expected 401, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "not found") {
		t.Fatalf("response body leaks account existence: %s", rec.Body.String())
	}
}
