package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/interfaces"
	"github.com/portfi/portfi-portal/internal/models"
)

func newTestIdentityStore(t *testing.T) *IdentityStore {
	t.Helper()
	db, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	return NewIdentityStore(db, common.NewSilentLogger())
}

func TestIdentityStore_CreateAndVerify(t *testing.T) {
	s := newTestIdentityStore(t)
	ctx := context.Background()

	id, err := s.CreateCredential(ctx, "Asha@Example.com ", "Secret1!")
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}
	if id.ID == "" || id.Email != "asha@example.com" {
		t.Errorf("unexpected identity %+v", id)
	}

	got, err := s.VerifyCredential(ctx, "asha@example.com", "Secret1!")
	if err != nil {
		t.Fatalf("VerifyCredential failed: %v", err)
	}
	if got.ID != id.ID {
		t.Errorf("expected id %s, got %s", id.ID, got.ID)
	}
}

func TestIdentityStore_DuplicateEmail(t *testing.T) {
	s := newTestIdentityStore(t)
	ctx := context.Background()

	if _, err := s.CreateCredential(ctx, "a@b.co", "Secret1!"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateCredential(ctx, "A@B.CO", "Other1!x"); !errors.Is(err, interfaces.ErrEmailInUse) {
		t.Errorf("expected ErrEmailInUse, got %v", err)
	}
}

func TestIdentityStore_WrongPassword(t *testing.T) {
	s := newTestIdentityStore(t)
	ctx := context.Background()
	s.CreateCredential(ctx, "a@b.co", "Secret1!")

	if _, err := s.VerifyCredential(ctx, "a@b.co", "wrong-password"); !errors.Is(err, interfaces.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.VerifyCredential(ctx, "missing@b.co", "Secret1!"); !errors.Is(err, interfaces.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestIdentityStore_WeakPassword(t *testing.T) {
	s := newTestIdentityStore(t)
	if _, err := s.CreateCredential(context.Background(), "a@b.co", "123"); !errors.Is(err, interfaces.ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestIdentityStore_Profiles(t *testing.T) {
	s := newTestIdentityStore(t)
	ctx := context.Background()

	p, err := s.GetProfile(ctx, "nobody")
	if err != nil || p != nil {
		t.Fatalf("expected (nil, nil) for missing profile, got %+v, %v", p, err)
	}

	want := models.UserProfile{Name: "Asha", Email: "a@b.co", DOB: "1990-05-04", CreatedAt: "2026-01-01T00:00:00.000Z"}
	if err := s.PutProfile(ctx, "u1", want); err != nil {
		t.Fatalf("PutProfile failed: %v", err)
	}
	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if *got != want {
		t.Errorf("expected %+v, got %+v", want, *got)
	}
}
