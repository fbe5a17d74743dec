package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okonek/traintrack/internal/domain"
	"github.com/okonek/traintrack/internal/repository/sqlite"
)

func TestKeyValueRepository_SetGetDelete(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewKeyValueRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "kv@example.com")

	if err := repo.Set(ctx, user.ID, "countdown", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := repo.Get(ctx, user.ID, "countdown")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "v1" {
		t.Fatalf("expected v1, got %q", got)
	}

	// Set on an existing key overwrites.
	if err := repo.Set(ctx, user.ID, "countdown", "v2"); err != nil {
		t.Fatalf("second Set: %v", err)
	}
	got, err = repo.Get(ctx, user.ID, "countdown")
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	if got != "v2" {
		t.Fatalf("expected v2, got %q", got)
	}

	if err := repo.Delete(ctx, user.ID, "countdown"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, user.ID, "countdown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing key is not an error.
	if err := repo.Delete(ctx, user.ID, "countdown"); err != nil {
		t.Fatalf("Delete missing key: %v", err)
	}
}

func TestKeyValueRepository_PerUserNamespace(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewKeyValueRepository(db)
	ctx := context.Background()

	ada := createTestUser(t, db, "ada@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	if err := repo.Set(ctx, ada.ID, "countdown", "ada-value"); err != nil {
		t.Fatalf("Set ada: %v", err)
	}
	if err := repo.Set(ctx, bob.ID, "countdown", "bob-value"); err != nil {
		t.Fatalf("Set bob: %v", err)
	}

	got, err := repo.Get(ctx, ada.ID, "countdown")
	if err != nil {
		t.Fatalf("Get ada: %v", err)
	}
	if got != "ada-value" {
		t.Fatalf("expected ada-value, got %q", got)
	}

	if err := repo.Delete(ctx, ada.ID, "countdown"); err != nil {
		t.Fatalf("Delete ada: %v", err)
	}
	if _, err := repo.Get(ctx, bob.ID, "countdown"); err != nil {
		t.Fatalf("bob's key was affected: %v", err)
	}
}
