package middleware

import "testing"

func TestRequestHashIsDeterministic(t *testing.T) {
	a := RequestHash([]byte(`{"itemId":"i1","quantity":1}`))
	b := RequestHash([]byte(`{"itemId":"i1","quantity":1}`))
	if a != b {
		t.Fatal("expected identical hashes for identical payloads")
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha256, got %q", a)
	}
}

func TestRequestHashDistinguishesPayloads(t *testing.T) {
	a := RequestHash([]byte(`{"itemId":"i1","quantity":1}`))
	b := RequestHash([]byte(`{"itemId":"i1","quantity":2}`))
	if a == b {
		t.Fatal("expected different hashes for different payloads")
	}
}
