package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stackbase/identity-api/internal/core/domain"
	"github.com/stackbase/identity-api/internal/core/hash"
	"github.com/stackbase/identity-api/internal/core/ports"
)

func strPtr(s string) *string { return &s }

func seedUser(t *testing.T, repo *stubUserRepo, email, password string) *domain.User {
	t.Helper()
	hasher := hash.NewHasher(bcrypt.MinCost)
	digest, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := repo.Create(context.Background(), &domain.User{
		Email:        email,
		PasswordHash: digest,
		Roles:        domain.DefaultRoles(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func newUserService(repo *stubUserRepo, mail MailDispatcher) *UserService {
	return NewUserService(repo, hash.NewHasher(bcrypt.MinCost), mail, zerolog.Nop())
}

func TestUserService_UpdateProfile_DoesNotTouchHash(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(t, repo, "a@b.com", "secret123")
	svc := newUserService(repo, nil)

	updated, err := svc.UpdateProfile(context.Background(), seeded.ID, ports.UpdateProfileInput{
		FirstName: strPtr("Alice"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.FirstName != "Alice" {
		t.Fatalf("first name not updated: %+v", updated)
	}
	if updated.PasswordHash != seeded.PasswordHash {
		t.Fatalf("profile update must not rehash or clear the password hash")
	}
	if updated.Email != "a@b.com" {
		t.Fatalf("untouched fields must be preserved, got email %q", updated.Email)
	}
}

func TestUserService_UpdateProfile_PartialFields(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(t, repo, "a@b.com", "secret123")
	svc := newUserService(repo, nil)

	updated, err := svc.UpdateProfile(context.Background(), seeded.ID, ports.UpdateProfileInput{
		Email:    strPtr("new@b.com"),
		LastName: strPtr("Adams"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.Email != "new@b.com" || updated.LastName != "Adams" {
		t.Fatalf("requested fields not applied: %+v", updated)
	}
	if updated.FirstName != "" {
		t.Fatalf("unset fields must stay untouched")
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(t, repo, "a@b.com", "oldpass1")
	mail := &stubDispatcher{}
	svc := newUserService(repo, mail)

	if err := svc.ChangePassword(context.Background(), seeded.ID, "oldpass1", "newpass1"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}

	stored, err := repo.FindByID(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if stored.PasswordHash == seeded.PasswordHash {
		t.Fatalf("expected a new hash after password change")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpass1")); err != nil {
		t.Fatalf("new password does not verify: %v", err)
	}
	if len(mail.messages) != 1 || mail.messages[0].Template != "password_changed" {
		t.Fatalf("expected a password-changed mail, got %+v", mail.messages)
	}
}

func TestUserService_ChangePassword_WrongCurrent(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(t, repo, "a@b.com", "oldpass1")
	svc := newUserService(repo, nil)

	err := svc.ChangePassword(context.Background(), seeded.ID, "not-the-password", "newpass1")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), seeded.ID)
	if stored.PasswordHash != seeded.PasswordHash {
		t.Fatalf("hash must not change on a rejected password change")
	}
}

func TestUserService_AdminUpdate(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(t, repo, "a@b.com", "secret123")
	svc := newUserService(repo, nil)

	active := true
	updated, err := svc.AdminUpdate(context.Background(), seeded.ID, ports.AdminUpdateInput{
		Roles:    []string{domain.RoleManager, domain.RoleUser},
		IsActive: &active,
		TenantID: strPtr("t1"),
	})
	if err != nil {
		t.Fatalf("AdminUpdate returned error: %v", err)
	}
	if !updated.HasAnyRole(domain.RoleManager) || !updated.IsActive || updated.TenantID != "t1" {
		t.Fatalf("admin fields not applied: %+v", updated)
	}
}

func TestUserService_AdminUpdate_RejectsUnknownRole(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(t, repo, "a@b.com", "secret123")
	svc := newUserService(repo, nil)

	if _, err := svc.AdminUpdate(context.Background(), seeded.ID, ports.AdminUpdateInput{
		Roles: []string{"superuser"},
	}); err == nil {
		t.Fatalf("expected an error for an unknown role")
	}
}

func TestUserService_SetActiveAndDelete(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(t, repo, "a@b.com", "secret123")
	svc := newUserService(repo, nil)

	updated, err := svc.SetActive(context.Background(), seeded.ID, true)
	if err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}
	if !updated.IsActive {
		t.Fatalf("expected the account to be active")
	}

	if err := svc.Delete(context.Background(), seeded.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(context.Background(), seeded.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
}
