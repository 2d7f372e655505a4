package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stackbase/identity-api/internal/core/domain"
)

type memoryUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) clone(u *domain.User) *domain.User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return r.clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return r.clone(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := r.clone(user)
	created.ID = fmt.Sprintf("u-%d", r.nextID)
	r.users[created.ID] = r.clone(created)
	return r.clone(created), nil
}

func (r *memoryUserRepo) Update(_ context.Context, id string, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return nil, domain.ErrUserNotFound
	}
	updated := r.clone(user)
	updated.ID = id
	r.users[id] = r.clone(updated)
	return r.clone(updated), nil
}

func (r *memoryUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func doJSON(t *testing.T, e http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_EndToEnd(t *testing.T) {
	repo := newMemoryUserRepo()
	e := NewRouter(Deps{
		Users:      repo,
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		Log:        zerolog.Nop(),
	})

	var token string

	t.Run("signup", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/auth/signup", "",
			`{"email":"a@b.com","password":"secret123","first_name":"Alice"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if strings.Contains(rec.Body.String(), "secret123") {
			t.Fatalf("response must not contain the plaintext password")
		}
		if strings.Contains(rec.Body.String(), "password_hash") {
			t.Fatalf("response must not contain the password hash")
		}
	})

	t.Run("duplicate signup conflicts", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/auth/signup", "",
			`{"email":"a@b.com","password":"secret123"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("login", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/auth/login", "",
			`{"email":"a@b.com","password":"secret123"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if resp.Token == "" {
			t.Fatalf("expected a token")
		}
		token = resp.Token
	})

	t.Run("login with wrong password is unauthorized", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/auth/login", "",
			`{"email":"a@b.com","password":"wrong-password"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("default role passes role-guarded route", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/users/me", token, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Email string   `json:"email"`
			Roles []string `json:"roles"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if resp.Email != "a@b.com" || len(resp.Roles) != 1 || resp.Roles[0] != domain.RoleUser {
			t.Fatalf("unexpected profile: %+v", resp)
		}
	})

	t.Run("no token is unauthenticated", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/users/me", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("user role cannot reach admin route", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/admin/users/u-1", token, "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("mismatched tenant is forbidden, not unauthenticated", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/tenants/t2/me", token, "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("profile update keeps login working", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPut, "/users/me", token,
			`{"first_name":"Alicia"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		rec = doJSON(t, e, http.MethodPost, "/auth/login", "",
			`{"email":"a@b.com","password":"secret123"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("password must survive a profile update, got %d", rec.Code)
		}
	})

	t.Run("password change rotates credentials", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPut, "/users/me/password", token,
			`{"current_password":"secret123","new_password":"evenmoresecret"}`)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}
		rec = doJSON(t, e, http.MethodPost, "/auth/login", "",
			`{"email":"a@b.com","password":"secret123"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("old password must stop working, got %d", rec.Code)
		}
		rec = doJSON(t, e, http.MethodPost, "/auth/login", "",
			`{"email":"a@b.com","password":"evenmoresecret"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("new password must work, got %d", rec.Code)
		}
	})
}

func TestRouter_TenantMatchAllowsOwnTenant(t *testing.T) {
	repo := newMemoryUserRepo()
	e := NewRouter(Deps{
		Users:      repo,
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		Log:        zerolog.Nop(),
	})

	rec := doJSON(t, e, http.MethodPost, "/auth/signup", "",
		`{"email":"t@b.com","password":"secret123","tenant_id":"t1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodPost, "/auth/login", "",
		`{"email":"t@b.com","password":"secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d", rec.Code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	rec = doJSON(t, e, http.MethodGet, "/tenants/t1/me", resp.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for own tenant, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, "/tenants/t1/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}
