package auth

import (
	"strings"
	"testing"
)

// All tests use the minimum cost — the logic under test doesn't change
// with the work factor, only the latency does.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest()
}

func TestHashAndVerify(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "" {
		t.Fatal("Hash() returned empty hash")
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() with correct password: %v", err)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := ps.Verify(hash, "secret2"); err == nil {
		t.Error("Verify() accepted the wrong password")
	}
}

// A malformed stored hash must come back as an ordinary verification
// failure, never a panic — the login path treats it like any bad
// credential.
func TestVerify_MalformedHash(t *testing.T) {
	ps := newTestPasswordService()

	if err := ps.Verify("not-a-bcrypt-hash", "anything"); err == nil {
		t.Error("Verify() accepted a malformed hash")
	}
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	h1, err := ps.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// Random salt per hash — identical outputs would mean no salt.
	if h1 == h2 {
		t.Error("two hashes of the same password are identical")
	}

	// But both must verify.
	if err := ps.Verify(h1, "samepassword"); err != nil {
		t.Errorf("Verify(h1) error = %v", err)
	}
	if err := ps.Verify(h2, "samepassword"); err != nil {
		t.Errorf("Verify(h2) error = %v", err)
	}
}

func TestHash_TooLong(t *testing.T) {
	ps := newTestPasswordService()

	_, err := ps.Hash(strings.Repeat("x", 73))
	if err == nil {
		t.Error("Hash() accepted a 73-byte password (bcrypt truncates at 72)")
	}
}

func TestNewPasswordService_CostFallback(t *testing.T) {
	// Zero (unset config) and negative costs fall back to the default
	// rather than producing weak hashes.
	ps := NewPasswordService(0)
	if ps.cost != DefaultCost {
		t.Errorf("cost = %d, want DefaultCost %d", ps.cost, DefaultCost)
	}

	ps = NewPasswordService(10)
	if ps.cost != 10 {
		t.Errorf("cost = %d, want 10", ps.cost)
	}
}
