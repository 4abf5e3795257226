// Package auth validates bearer tokens issued by the external auth service
// and exposes the resulting principal to request handlers. Token issuance
// and key rotation belong to that service, not here.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gryroach/ugc-service/internal/model"
)

// ErrInvalidToken is returned for tokens that fail signature verification
// or carry malformed claims.
var ErrInvalidToken = errors.New("invalid token")

// Principal is the already-verified identity the engine consumes.
type Principal struct {
	UserID         model.UUID
	Role           string
	SessionVersion int
	ExpiresAt      time.Time
}

// Validator verifies RS256-signed tokens against a static public key.
type Validator struct {
	publicKey *rsa.PublicKey
}

// NewValidator parses a PEM-encoded RSA public key.
func NewValidator(publicKeyPEM []byte) (*Validator, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return &Validator{publicKey: key}, nil
}

// NewValidatorFromFile reads the public key from disk.
func NewValidatorFromFile(path string) (*Validator, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key %s: %w", path, err)
	}
	return NewValidator(pem)
}

// Validate verifies the token signature and extracts the principal.
// Expiry is parsed but not enforced here; session versioning on the auth
// side owns token invalidation.
func (v *Validator) Validate(tokenString string) (*Principal, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithoutClaimsValidation(),
	)
	claims := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.publicKey, nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	rawUser, ok := claims["user"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing user claim", ErrInvalidToken)
	}
	userID, err := model.ParseUUID(rawUser)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	principal := &Principal{UserID: userID}
	if role, ok := claims["role"].(string); ok {
		principal.Role = role
	}
	if version, ok := claims["session_version"].(float64); ok {
		principal.SessionVersion = int(version)
	}
	if exp, ok := claims["exp"].(float64); ok {
		principal.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return principal, nil
}
