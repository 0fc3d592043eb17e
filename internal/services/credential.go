package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/pbkdf2"
)

var (
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenMalformed        = errors.New("token malformed")
)

const (
	pbkdf2Iterations = 10000
	pbkdf2KeyLength  = 32
	bearerPrefix     = "Bearer "
)

// CredentialService owns password digests and bearer token issuance.
// Tokens are stateless: nothing is stored server-side, verification is
// signature plus expiry only.
type CredentialService struct {
	jwtSecret    []byte
	jwtExpiry    time.Duration
	passwordSalt []byte
}

func NewCredentialService(jwtSecret string, jwtExpiry time.Duration, passwordSalt string) *CredentialService {
	return &CredentialService{
		jwtSecret:    []byte(jwtSecret),
		jwtExpiry:    jwtExpiry,
		passwordSalt: []byte(passwordSalt),
	}
}

// HashPassword derives a deterministic digest: the same password always
// yields the same hex string, so verification is a re-hash and compare.
func (s *CredentialService) HashPassword(password string) string {
	key := pbkdf2.Key([]byte(password), s.passwordSalt, pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
	return hex.EncodeToString(key)
}

func (s *CredentialService) VerifyPassword(password, digest string) bool {
	rehashed := s.HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(rehashed), []byte(digest)) == 1
}

// IssueToken produces a signed time-boxed token binding the account ID as
// the subject claim.
func (s *CredentialService) IssueToken(accountID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature and expiry and returns the subject account
// ID. Failures are typed so callers can map them all to 401.
func (s *CredentialService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", ErrTokenInvalidSignature
	default:
		return "", ErrTokenMalformed
	}

	if !token.Valid {
		return "", ErrTokenMalformed
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}

// ExtractBearer pulls the token out of an Authorization header value. Any
// shape other than "Bearer <token>" yields ok=false, which callers treat as
// unauthenticated rather than an error.
func ExtractBearer(headerValue string) (string, bool) {
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return "", false
	}
	token := headerValue[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}
