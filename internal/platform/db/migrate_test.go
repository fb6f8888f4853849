package db

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func readInitMigration(t *testing.T) string {
	t.Helper()
	dir, err := resolveDir("migrations")
	if err != nil {
		t.Fatalf("failed to locate migrations: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "0001_init.sql"))
	if err != nil {
		t.Fatalf("failed to read init migration: %v", err)
	}
	return string(raw)
}

func TestResolveDirWalksUp(t *testing.T) {
	dir, err := resolveDir("migrations")
	if err != nil {
		t.Fatalf("resolveDir: %v", err)
	}
	if filepath.Base(dir) != "migrations" {
		t.Fatalf("unexpected dir %q", dir)
	}
}

func TestResolveDirRejectsMissing(t *testing.T) {
	if _, err := resolveDir("no-such-directory-anywhere"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

// Encrypted columns hold raw AES-GCM output, which is not valid UTF-8.
// They must be bytea or inserts fail once an encryption key is configured.
func TestEncryptedColumnsAreBytea(t *testing.T) {
	schema := readInitMigration(t)
	for _, column := range []string{"mfa_secret_enc", "bank_account_enc", "national_id_enc"} {
		re := regexp.MustCompile(column + `\s+BYTEA`)
		if !re.MatchString(schema) {
			t.Fatalf("column %s must be BYTEA", column)
		}
	}
}

// Snapshots start without a position; zero would read as a real rank.
func TestRankPositionColumnIsNullable(t *testing.T) {
	schema := readInitMigration(t)
	re := regexp.MustCompile(`rank_position\s+INT\s*,`)
	if !re.MatchString(schema) {
		t.Fatalf("rank_position must be a nullable INT")
	}
	if regexp.MustCompile(`rank_position\s+INT\s+NOT\s+NULL`).MatchString(schema) {
		t.Fatal("rank_position must not be NOT NULL")
	}
}
