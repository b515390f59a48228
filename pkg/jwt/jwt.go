package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// JWT header constants required by RFC 7519.
const (
	HeaderType      = "JWT"
	HeaderAlgorithm = "HS256"
)

// Header represents the JWT header as defined in RFC 7515.
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Service signs and verifies session tokens using HMAC-SHA256. The
// signing key is process-wide configuration injected at startup; it is
// kept in memory only and never rotated at runtime.
type Service struct {
	signingKey []byte
}

// New creates a session token service with the provided signing key.
// The key should be at least 32 bytes for adequate security with HMAC-SHA256.
func New(signingKey []byte) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	return &Service{signingKey: signingKey}, nil
}

// NewFromString creates a session token service from a string signing key.
func NewFromString(signingKey string) (*Service, error) {
	return New([]byte(signingKey))
}

// Generate signs the given session claims and returns a compact token string.
func (s *Service) Generate(claims SessionClaims) (string, error) {
	if claims.Subject == "" {
		return "", ErrMissingClaims
	}

	headerJSON, err := json.Marshal(Header{Type: HeaderType, Algorithm: HeaderAlgorithm})
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}

	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + s.sign(payload), nil
}

// Parse verifies a token's signature, algorithm, and temporal claims,
// returning the decoded session claims on success.
func (s *Service) Parse(tokenString string) (SessionClaims, error) {
	var claims SessionClaims

	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return claims, ErrInvalidToken
	}

	// Verify signature first, using constant-time comparison to prevent
	// timing attacks.
	payload := parts[0] + "." + parts[1]
	expected := s.sign(payload)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return claims, ErrInvalidSignature
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return claims, ErrInvalidToken
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return claims, ErrInvalidToken
	}

	// Reject tokens using unexpected algorithms to prevent algorithm
	// confusion attacks.
	if header.Algorithm != HeaderAlgorithm {
		return claims, ErrUnexpectedSigningMethod
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return claims, ErrInvalidToken
	}
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return claims, ErrInvalidToken
	}

	if err := claims.Valid(); err != nil {
		return claims, err
	}

	return claims, nil
}

// sign creates an HMAC-SHA256 signature for the given payload,
// base64url-encoded per RFC 7515.
func (s *Service) sign(payload string) string {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
