package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredential is the single failure returned for every verification
// problem. Structural errors, signature mismatches, expiry, and match-id
// mismatches are deliberately indistinguishable to the caller so the
// verification step cannot be used as an oracle.
var ErrInvalidCredential = errors.New("invalid credential")

// Claims is the claim set carried by a signed activation assertion.
type Claims struct {
	MatchID string `json:"match_id,omitempty"`
	jwt.RegisteredClaims
}

// Verify checks the signed assertion against the shared secret and returns
// the decoded claims. When the claim set carries a match id and the call
// declares one, the two must agree. Any failure collapses to
// ErrInvalidCredential.
func Verify(assertion, secret, matchID string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(assertion, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidCredential
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredential
	}

	if claims.MatchID != "" && matchID != "" && claims.MatchID != matchID {
		return nil, ErrInvalidCredential
	}

	return claims, nil
}

// Sign mints an assertion for the given match id, valid for the given
// duration. Used by the dev server and by tests; the production service does
// its own signing.
func Sign(secret, matchID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		MatchID: matchID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   matchID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}

	return signed, nil
}
