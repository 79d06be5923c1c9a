package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleService marks tokens held by trusted backends (the daemon, the LMS, operators).
// Only service tokens may post raw ledger entries, mint, reward, tax or drain books.
const RoleService = "service"

// ErrMissingSubject is returned for a well-signed token that names no user.
var ErrMissingSubject = errors.New("token subject missing")

// AccessClaims are the registered claims plus the caller's role. End users carry no role.
type AccessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IsService reports whether the claims carry the service role.
func (c *AccessClaims) IsService() bool {
	return c.Role == RoleService
}

// IssueAccessToken signs an HS256 end-user token whose subject is the acting user id.
func IssueAccessToken(userID string, secret string, ttl time.Duration, issuer string) (string, error) {
	return issue(userID, "", secret, ttl, issuer)
}

// IssueServiceToken signs an HS256 token carrying the service role.
func IssueServiceToken(subject string, secret string, ttl time.Duration, issuer string) (string, error) {
	return issue(subject, RoleService, secret, ttl, issuer)
}

func issue(subject, role, secret string, ttl time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAccessToken validates signature and standard claims and returns them.
// Errors wrap jwt.ErrTokenExpired and friends so callers can tell them apart.
func ParseAccessToken(tokenString string, secret string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}
