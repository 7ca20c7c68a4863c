package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/requestdata"
)

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	return NewAuthService(db, log, repos.NewUserRepo(db, log), "test-secret", time.Hour)
}

func TestRegisterLoginRoundtrip(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, token, err := svc.RegisterUser(ctx, "Someone@Example.com", "hunter2hunter2", "Acme")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "someone@example.com" {
		t.Fatalf("email normalization: got %q", user.Email)
	}
	if user.Password == "hunter2hunter2" {
		t.Fatal("password must be stored hashed")
	}
	if token == "" {
		t.Fatal("registration must issue a token")
	}

	logged, token, err := svc.LoginUser(ctx, "someone@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("login user mismatch: %s vs %s", logged.ID, user.ID)
	}

	authedCtx, err := svc.SetContextFromToken(ctx, token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatalf("request data: got %+v", rd)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.RegisterUser(ctx, "dup@example.com", "hunter2hunter2", ""); err != nil {
		t.Fatalf("first RegisterUser: %v", err)
	}
	if _, _, err := svc.RegisterUser(ctx, "dup@example.com", "hunter2hunter2", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken got %v", err)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.RegisterUser(ctx, "who@example.com", "hunter2hunter2", ""); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, _, err := svc.LoginUser(ctx, "who@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}
	if _, _, err := svc.LoginUser(ctx, "nobody@example.com", "hunter2hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: want ErrInvalidCredentials got %v", err)
	}
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t)
	if _, err := svc.SetContextFromToken(context.Background(), "not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
