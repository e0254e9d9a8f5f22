// Package token implements the signed, expiring download token.
//
// Wire format, preserved for interoperability with external issuers:
//
//	base64url(json({id,exp,bucket})) + "." + base64url(hmac_sha256(secret, payloadSegment))
//
// Both segments use URL-safe base64 without padding. The HMAC is computed
// over the encoded payload segment, not the raw JSON.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidToken is the umbrella error every decode failure wraps, so
// callers can treat any of them as a denial with a single errors.Is check.
var ErrInvalidToken = errors.New("invalid download token")

// Distinguishable decode failures. All match ErrInvalidToken via errors.Is.
var (
	ErrMalformed    = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrBadSignature = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrBadPayload   = fmt.Errorf("%w: bad payload", ErrInvalidToken)
	ErrExpired      = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrMissingField = fmt.Errorf("%w: missing field", ErrInvalidToken)
)

// Payload is the decoded content of a download token.
type Payload struct {
	ID     string `json:"id"`
	Exp    int64  `json:"exp"`
	Bucket string `json:"bucket"`
}

// Encode builds a signed token for the given file id and bucket, expiring
// expiresInSeconds from now.
func Encode(secret, fileID string, expiresInSeconds int64, bucket string) (string, error) {
	payload := Payload{
		ID:     fileID,
		Exp:    time.Now().Unix() + expiresInSeconds,
		Bucket: bucket,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("token: marshal payload: %w", err)
	}

	payloadSeg := base64.RawURLEncoding.EncodeToString(raw)
	return payloadSeg + "." + sign(secret, payloadSeg), nil
}

// Decode verifies the signature and expiry of token and returns its payload.
// Failures are one of ErrMalformed, ErrBadSignature, ErrBadPayload,
// ErrExpired or ErrMissingField.
func Decode(secret, tok string) (*Payload, error) {
	if tok == "" {
		return nil, ErrMalformed
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return nil, ErrMalformed
	}
	payloadSeg, sigSeg := parts[0], parts[1]

	// hmac.Equal is constant-time, but compare the decoded MACs so an
	// attacker cannot learn anything from base64 quirks either. Reject on
	// length mismatch before comparing.
	expected, err := base64.RawURLEncoding.DecodeString(sign(secret, payloadSeg))
	if err != nil {
		return nil, ErrBadSignature
	}
	supplied, err := base64.RawURLEncoding.DecodeString(sigSeg)
	if err != nil {
		return nil, ErrBadSignature
	}
	if len(expected) != len(supplied) || !hmac.Equal(expected, supplied) {
		return nil, ErrBadSignature
	}

	raw, err := base64.RawURLEncoding.DecodeString(payloadSeg)
	if err != nil {
		return nil, ErrBadPayload
	}
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrBadPayload
	}

	if payload.Exp == 0 || time.Now().Unix() > payload.Exp {
		return nil, ErrExpired
	}
	if payload.ID == "" {
		return nil, fmt.Errorf("%w: id", ErrMissingField)
	}
	if payload.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket", ErrMissingField)
	}

	return &payload, nil
}

func sign(secret, payloadSeg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payloadSeg))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
