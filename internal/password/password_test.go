package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret1")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !Verify("secret1", hash) {
		t.Fatal("expected matching password to verify")
	}
	if Verify("wrong", hash) {
		t.Fatal("expected mismatched password to fail")
	}
	if Verify("secret1", "not-a-hash") {
		t.Fatal("expected malformed hash to fail")
	}
}
