package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sportlink/sportlink-backend/models"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	input := RegisterInput{
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "Ivan@Example.COM",
		Password:  "correct-horse",
	}
	user, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ivan@example.com" {
		t.Errorf("email not normalized: %s", user.Email)
	}
	if user.Role != models.RolePlayer {
		t.Errorf("default role = %s, want player", user.Role)
	}
	if user.PasswordHash == input.Password {
		t.Error("password stored in plain text")
	}

	// Вход по нормализованному email и исходному паролю.
	logged, err := svc.Login(context.Background(), LoginInput{Email: "ivan@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("login returned user %d, want %d", logged.ID, user.ID)
	}
	if logged.PasswordHash != "" {
		t.Error("login must not expose the password hash")
	}

	if _, err := svc.Login(context.Background(), LoginInput{Email: "ivan@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	if _, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "short"}); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	first := RegisterInput{FirstName: "A", Email: "dup@example.com", Password: "longenough"}
	if _, err := svc.Register(context.Background(), first); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), first); !errors.Is(err, ErrUserEmailConflict) {
		t.Fatalf("expected ErrUserEmailConflict, got %v", err)
	}

	organizer := RegisterInput{FirstName: "O", Email: "org@example.com", Password: "longenough", Role: "organizer"}
	user, err := svc.Register(context.Background(), organizer)
	if err != nil {
		t.Fatalf("register organizer: %v", err)
	}
	if user.Role != models.RoleOrganizer {
		t.Errorf("role = %s, want organizer", user.Role)
	}

	// Админом через регистрацию стать нельзя.
	admin := RegisterInput{FirstName: "X", Email: "x@example.com", Password: "longenough", Role: "admin"}
	user, err = svc.Register(context.Background(), admin)
	if err != nil {
		t.Fatalf("register with admin role: %v", err)
	}
	if user.Role != models.RolePlayer {
		t.Errorf("requested admin role must fall back to player, got %s", user.Role)
	}
}
