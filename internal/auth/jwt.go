package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/heartmarshall/crewdir/internal/domain"
)

// Identity is who the engine acts as.
type Identity struct {
	Mode   domain.Mode
	UserID string
	Role   string
}

// Guest is the identity used when no access token is configured.
func Guest() Identity {
	return Identity{Mode: domain.ModeGuest}
}

// IsGuest reports whether the identity browses without an account.
func (i Identity) IsGuest() bool {
	return i.Mode != domain.ModeAuthenticated
}

// accessClaims extends standard JWT claims with the user's role.
type accessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// TokenReader resolves an access token into an Identity. The engine does not
// issue tokens; it only reads the one the session layer handed it.
type TokenReader struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenReader creates a TokenReader. With an empty secret the token's
// signature is not checked (the backend verifies it on every request), but
// expiry still is. A non-empty issuer must match the token's issuer.
func NewTokenReader(secret, issuer string) *TokenReader {
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &TokenReader{secret: key, issuer: issuer, now: time.Now}
}

// Identify returns the Guest identity for an empty token.
func (r *TokenReader) Identify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Guest(), nil
	}

	claims, err := r.parse(tokenString)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	if r.issuer != "" && claims.Issuer != r.issuer {
		return Identity{}, fmt.Errorf("%w: invalid issuer: expected %s, got %s", domain.ErrUnauthorized, r.issuer, claims.Issuer)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}

	return Identity{
		Mode:   domain.ModeAuthenticated,
		UserID: claims.Subject,
		Role:   claims.Role,
	}, nil
}

func (r *TokenReader) parse(tokenString string) (*accessClaims, error) {
	claims := &accessClaims{}

	if r.secret == nil {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return nil, fmt.Errorf("parse token: %w", err)
		}
		if claims.ExpiresAt != nil && !r.now().Before(claims.ExpiresAt.Time) {
			return nil, errors.New("token is expired")
		}
		return claims, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithTimeFunc(r.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
