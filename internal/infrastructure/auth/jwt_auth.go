// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package auth validates the bearer tokens accompanying inbound requests.
package auth

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"
)

// JWTAuthConfig holds the configuration for JWT token validation
type JWTAuthConfig struct {
	// JWKSURL is the JSON Web Key Set endpoint of the token issuer
	JWKSURL string

	// Audience is the expected audience claim
	Audience string
}

// jwtAuth validates RS256 bearer tokens against the issuer's key set
type jwtAuth struct {
	config    JWTAuthConfig
	validator *validator.Validator
}

// NewJWTAuth creates a JWT authenticator from the given configuration
func NewJWTAuth(config JWTAuthConfig) (port.Authenticator, error) {
	if config.JWKSURL == "" {
		return nil, errors.NewValidation("JWKS URL is required for JWT authentication")
	}

	jwksURL, err := url.Parse(config.JWKSURL)
	if err != nil {
		return nil, errors.NewValidation("invalid JWKS URL", err)
	}

	// The issuer is the JWKS URL origin
	issuerURL := &url.URL{Scheme: jwksURL.Scheme, Host: jwksURL.Host}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute, jwks.WithCustomJWKSURI(jwksURL))

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String()+"/",
		[]string{config.Audience},
	)
	if err != nil {
		return nil, errors.NewUnexpected("failed to set up JWT validator", err)
	}

	return &jwtAuth{
		config:    config,
		validator: jwtValidator,
	}, nil
}

// ParsePrincipal validates a bearer token and returns the subject claim.
func (a *jwtAuth) ParsePrincipal(ctx context.Context, token string, logger *slog.Logger) (string, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return "", errors.NewUnauthorized("bearer token is required")
	}

	claims, err := a.validator.ValidateToken(ctx, token)
	if err != nil {
		logger.WarnContext(ctx, "token validation failed", "error", err)
		return "", errors.NewUnauthorized("invalid bearer token", err)
	}

	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok || validated.RegisteredClaims.Subject == "" {
		return "", errors.NewUnauthorized("token carries no subject")
	}

	principal := validated.RegisteredClaims.Subject
	logger.DebugContext(ctx, "parsed principal", "user_id", principal)

	return principal, nil
}
