package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/snipstudio/snipstudio/apperror"
)

func TestGetSetting_Absent(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetSetting(context.Background(), "last_used_theme")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetSetting() error = %v, want ErrNotFound", err)
	}
}

func TestSetSetting_Upsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SetSetting(ctx, "last_used_theme", "dracula"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}

	value, err := db.GetSetting(ctx, "last_used_theme")
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if value != "dracula" {
		t.Errorf("value = %q, want %q", value, "dracula")
	}

	// Second set replaces, it does not duplicate or fail.
	if err := db.SetSetting(ctx, "last_used_theme", "night_owl"); err != nil {
		t.Fatalf("SetSetting() replace error = %v", err)
	}
	value, err = db.GetSetting(ctx, "last_used_theme")
	if err != nil {
		t.Fatalf("GetSetting() after replace error = %v", err)
	}
	if value != "night_owl" {
		t.Errorf("value after replace = %q, want %q", value, "night_owl")
	}
}

func TestDeleteSetting(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SetSetting(ctx, "last_used_snippet", "abc"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if err := db.DeleteSetting(ctx, "last_used_snippet"); err != nil {
		t.Fatalf("DeleteSetting() error = %v", err)
	}
	if _, err := db.GetSetting(ctx, "last_used_snippet"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetSetting() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting an absent key is a no-op.
	if err := db.DeleteSetting(ctx, "last_used_snippet"); err != nil {
		t.Errorf("DeleteSetting() of absent key error = %v, want nil", err)
	}
}
