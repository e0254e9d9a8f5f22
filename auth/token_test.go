package auth

import "testing"

func TestGenerateAndValidateTokens(t *testing.T) {
	const secret = "jwt-test-secret"
	const userID = "2f0b7f60-7f8f-4f6e-9d8e-0a1b2c3d4e5f"

	access, refresh, err := GenerateTokens(secret, userID)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	if access == "" || refresh == "" || access == refresh {
		t.Fatal("expected distinct non-empty access and refresh tokens")
	}

	got, err := ValidateToken(secret, access)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got != userID {
		t.Errorf("subject = %q, want %q", got, userID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	access, _, err := GenerateTokens("secret-a", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateToken("secret-b", access); err == nil {
		t.Fatal("token validated with the wrong secret")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("wrong password accepted")
	}
}
