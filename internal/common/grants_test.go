package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func writeGrantsFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "grants.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write grants file: %v", err)
	}
	return path
}

func TestLoadGrantPolicy(t *testing.T) {
	path := writeGrantsFile(t, "signup_grant: \"100\"\ngrant_note: \"welcome credits\"\n")

	amount, note, err := LoadGrantPolicy(path)
	if err != nil {
		t.Fatalf("LoadGrantPolicy failed: %v", err)
	}
	if !amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected grant amount 100, got %s", amount.String())
	}
	if note != "welcome credits" {
		t.Errorf("Expected note %q, got %q", "welcome credits", note)
	}
}

func TestLoadGrantPolicy_MissingAmount(t *testing.T) {
	path := writeGrantsFile(t, "grant_note: \"welcome credits\"\n")

	amount, _, err := LoadGrantPolicy(path)
	if err != nil {
		t.Fatalf("LoadGrantPolicy failed: %v", err)
	}
	if !amount.Equal(decimal.Zero) {
		t.Errorf("Expected zero grant when unset, got %s", amount.String())
	}
}

func TestLoadGrantPolicy_NegativeAmount(t *testing.T) {
	path := writeGrantsFile(t, "signup_grant: \"-10\"\n")

	if _, _, err := LoadGrantPolicy(path); err == nil {
		t.Fatal("Expected error for negative grant amount")
	}
}

func TestLoadGrantPolicy_MissingFile(t *testing.T) {
	if _, _, err := LoadGrantPolicy(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for missing grants file")
	}
}
