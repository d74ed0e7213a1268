package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lexloop/lexloop/internal/entity"
)

func newUserFixture(t *testing.T, now time.Time) (*userUsecase, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	uc := NewUserUsecase(repo).(*userUsecase)
	uc.clock = func() time.Time { return now }
	return uc, repo
}

func TestRegisterHashesPasswordAndRejectsDuplicates(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, _ := newUserFixture(t, now)

	user, err := uc.Register(context.Background(), "alice", "alice@example.com", "sekret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.PasswordHash == "sekret1" || user.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("sekret1")) != nil {
		t.Fatalf("stored hash does not verify")
	}

	if _, err := uc.Register(context.Background(), "alice", "other@example.com", "sekret1"); !errors.Is(err, entity.ErrConflict) {
		t.Fatalf("expected duplicate username conflict, got %v", err)
	}
	if _, err := uc.Register(context.Background(), "bob", "alice@example.com", "sekret1"); !errors.Is(err, entity.ErrConflict) {
		t.Fatalf("expected duplicate email conflict, got %v", err)
	}
	if _, err := uc.Register(context.Background(), "carol", "", "short"); !errors.Is(err, entity.ErrInvalidArgument) {
		t.Fatalf("expected short password rejection, got %v", err)
	}
}

func TestLoginStampsLastLogin(t *testing.T) {
	registered := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, _ := newUserFixture(t, registered)

	if _, err := uc.Register(context.Background(), "alice", "", "sekret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	loginAt := registered.Add(2 * time.Hour)
	uc.clock = func() time.Time { return loginAt }
	user, err := uc.Login(context.Background(), "alice", "sekret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.LastLogin == nil || !user.LastLogin.Equal(loginAt) {
		t.Fatalf("expected last login %v, got %v", loginAt, user.LastLogin)
	}

	if _, err := uc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, entity.ErrInvalidArgument) {
		t.Fatalf("expected bad credentials, got %v", err)
	}
	if _, err := uc.Login(context.Background(), "nobody", "sekret1"); !errors.Is(err, entity.ErrInvalidArgument) {
		t.Fatalf("unknown user must look like bad credentials, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, _ := newUserFixture(t, now)

	user, err := uc.Register(context.Background(), "alice", "", "sekret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := uc.ChangePassword(context.Background(), user.ID, "wrong", "newpass1"); !errors.Is(err, entity.ErrInvalidArgument) {
		t.Fatalf("expected old password check, got %v", err)
	}
	if err := uc.ChangePassword(context.Background(), user.ID, "sekret1", "newpass1"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := uc.Login(context.Background(), "alice", "newpass1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, _ := newUserFixture(t, now)

	user, err := uc.Register(context.Background(), "alice", "alice@example.com", "sekret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := uc.UpdateProfile(context.Background(), user.ID, "", "13800138000", "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone != "13800138000" {
		t.Fatalf("phone not updated: %q", updated.Phone)
	}
	if updated.Email != "alice@example.com" {
		t.Fatalf("untouched email must survive, got %q", updated.Email)
	}
}
