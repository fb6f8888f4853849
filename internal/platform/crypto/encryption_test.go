package crypto

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

const testKey = "0000000000000000000000000000000000000000000000000000000000000000"

// Ciphertexts are raw bytes and almost never valid UTF-8, so the schema
// stores them in bytea columns. This pins that assumption.
func TestCiphertextIsBinary(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new error: %v", err)
	}
	binary := 0
	for i := 0; i < 50; i++ {
		cipher, err := svc.EncryptString("1234567890 bank account")
		if err != nil {
			t.Fatalf("encrypt error: %v", err)
		}
		if !utf8.Valid(cipher) {
			binary++
		}
	}
	if binary == 0 {
		t.Fatal("expected at least one non-UTF-8 ciphertext across 50 encryptions")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new error: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("expected service to be configured")
	}

	cipher, err := svc.EncryptString("1234-5678-90")
	if err != nil {
		t.Fatalf("encrypt error: %v", err)
	}
	if bytes.Contains(cipher, []byte("1234-5678-90")) {
		t.Fatal("ciphertext leaks plaintext")
	}

	plain, err := svc.DecryptString(cipher)
	if err != nil {
		t.Fatalf("decrypt error: %v", err)
	}
	if plain != "1234-5678-90" {
		t.Fatalf("round trip mismatch: %q", plain)
	}
}

func TestEncryptProducesFreshNonce(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new error: %v", err)
	}

	a, _ := svc.EncryptString("same value")
	b, _ := svc.EncryptString("same value")
	if bytes.Equal(a, b) {
		t.Fatal("expected distinct ciphertexts for identical plaintexts")
	}
}

func TestUnconfiguredServicePassesThrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("new error: %v", err)
	}
	if svc.Configured() {
		t.Fatal("expected unconfigured service")
	}

	out, err := svc.EncryptString("plain")
	if err != nil {
		t.Fatalf("encrypt error: %v", err)
	}
	if string(out) != "plain" {
		t.Fatalf("expected pass-through, got %q", out)
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	if _, err := New("too-short"); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestDecryptRejectsTruncatedCiphertext(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new error: %v", err)
	}
	if _, err := svc.Decrypt([]byte(strings.Repeat("x", 4))); err == nil {
		t.Fatal("expected error for truncated ciphertext")
	}
}
