package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if !CheckPassword("correct horse battery", hash) {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword("wrong password", hash) {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	b, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}
