package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestRoundTrip(t *testing.T) {
	before := time.Now().Unix()
	tok, err := Encode(testSecret, "file-123", 300, "my-bucket")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	payload, err := Decode(testSecret, tok)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.ID != "file-123" {
		t.Errorf("id = %q, want file-123", payload.ID)
	}
	if payload.Bucket != "my-bucket" {
		t.Errorf("bucket = %q, want my-bucket", payload.Bucket)
	}
	if payload.Exp < before+299 || payload.Exp > time.Now().Unix()+301 {
		t.Errorf("exp = %d, out of expected window around now+300", payload.Exp)
	}
}

func TestWireFormat(t *testing.T) {
	tok, err := Encode(testSecret, "abc", 60, "b")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		t.Fatalf("token has %d segments, want 2", len(parts))
	}
	for i, p := range parts {
		if strings.ContainsAny(p, "+/=") {
			t.Errorf("segment %d is not padding-free url-safe base64: %q", i, p)
		}
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("decode payload segment: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	for _, k := range []string{"id", "exp", "bucket"} {
		if _, ok := m[k]; !ok {
			t.Errorf("payload missing %q field", k)
		}
	}
}

func TestTamperDetection(t *testing.T) {
	tok, err := Encode(testSecret, "file-123", 300, "my-bucket")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Flip one character in each segment in turn.
	for i := 0; i < len(tok); i++ {
		if tok[i] == '.' {
			continue
		}
		flipped := []byte(tok)
		if flipped[i] == 'A' {
			flipped[i] = 'B'
		} else {
			flipped[i] = 'A'
		}
		if string(flipped) == tok {
			continue
		}
		if _, err := Decode(testSecret, string(flipped)); err == nil {
			t.Fatalf("tampered token at byte %d decoded successfully", i)
		}
	}
}

func TestWrongSecret(t *testing.T) {
	tok, _ := Encode(testSecret, "file-123", 300, "my-bucket")
	if _, err := Decode("other-secret", tok); !errors.Is(err, ErrBadSignature) {
		t.Errorf("err = %v, want ErrBadSignature", err)
	}
}

func TestExpired(t *testing.T) {
	tok, _ := Encode(testSecret, "file-123", -10, "my-bucket")
	_, err := Decode(testSecret, tok)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("err = %v, want ErrExpired", err)
	}
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ErrExpired does not match ErrInvalidToken")
	}
}

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
	}{
		{"no id", Payload{Exp: time.Now().Unix() + 300, Bucket: "b"}},
		{"no bucket", Payload{ID: "x", Exp: time.Now().Unix() + 300}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, _ := json.Marshal(tt.payload)
			seg := base64.RawURLEncoding.EncodeToString(raw)
			tok := seg + "." + sign(testSecret, seg)
			if _, err := Decode(testSecret, tok); !errors.Is(err, ErrMissingField) {
				t.Errorf("err = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestMissingExp(t *testing.T) {
	raw, _ := json.Marshal(Payload{ID: "x", Bucket: "b"})
	seg := base64.RawURLEncoding.EncodeToString(raw)
	tok := seg + "." + sign(testSecret, seg)
	if _, err := Decode(testSecret, tok); !errors.Is(err, ErrExpired) {
		t.Errorf("err = %v, want ErrExpired for missing exp", err)
	}
}

func TestMalformed(t *testing.T) {
	for _, tok := range []string{"", "one-segment", "a.b.c", "..", "a..b"} {
		if _, err := Decode(testSecret, tok); err == nil {
			t.Errorf("Decode(%q) succeeded, want error", tok)
		} else if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Decode(%q) = %v, want ErrInvalidToken family", tok, err)
		}
	}
}

func TestBadPayloadJSON(t *testing.T) {
	seg := base64.RawURLEncoding.EncodeToString([]byte("not json"))
	tok := seg + "." + sign(testSecret, seg)
	if _, err := Decode(testSecret, tok); !errors.Is(err, ErrBadPayload) {
		t.Errorf("err = %v, want ErrBadPayload", err)
	}
}
