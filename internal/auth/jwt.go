package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenantd/internal/models"
)

// JWTAuthenticator validates Bearer JWTs signed with an HMAC-SHA256
// shared secret and maps the subject claim to the principal's external
// identifier.
type JWTAuthenticator struct {
	secret []byte
}

// NewJWTAuthenticator builds an authenticator from the shared secret.
func NewJWTAuthenticator(secret string) (*JWTAuthenticator, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not provided")
	}
	return &JWTAuthenticator{secret: []byte(secret)}, nil
}

// Authenticate extracts and validates the bearer token. Any failure
// yields the anonymous principal.
func (a *JWTAuthenticator) Authenticate(_ context.Context, r *http.Request) models.Principal {
	tokenStr, ok := bearerToken(r)
	if !ok {
		return models.AnonymousPrincipal()
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("invalid signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		log.Debug().Err(err).Msg("JWT parse error")
		return models.AnonymousPrincipal()
	}

	if !parsed.Valid {
		return models.AnonymousPrincipal()
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return models.AnonymousPrincipal()
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return models.AnonymousPrincipal()
	}

	return models.Principal{ExternalID: claims.Subject}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
