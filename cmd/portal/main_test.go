package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"hash-password", "--cost", "4", "s3cret"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
		t.Fatalf("hash does not match: %v", err)
	}
}

func TestHashPasswordReadsStdin(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("from-stdin\n"))
	cmd.SetArgs([]string{"hash-password", "--cost", "4"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out.String())), []byte("from-stdin")); err != nil {
		t.Fatalf("hash does not match: %v", err)
	}
}

func TestUsersCommandListsUsersFile(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	path := filepath.Join(t.TempDir(), "users.yaml")
	content := "users:\n  - email: ops@example.com\n    name: Ops Lead\n    role: admin\n    password_hash: " + string(hash) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PORTAL_USERS_FILE", path)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"users"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "ops@example.com") || !strings.Contains(out.String(), "admin") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestServeRejectsUnknownStore(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"serve", "--store", "sqlite"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown store") {
		t.Fatalf("expected unknown store error, got %v", err)
	}
}
