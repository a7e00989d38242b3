package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/binay-das/cloudify/config"
	"github.com/binay-das/cloudify/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
)

// IdentityClaims are the ID token claims used to find the local user.
type IdentityClaims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
}

type UserResolver interface {
	ResolveOIDCUser(ctx context.Context, email string, name string) (string, error)
}

type tokenVerifier func(ctx context.Context, raw string) (IdentityClaims, error)

type OIDCAuthenticator struct {
	verify   tokenVerifier
	resolver UserResolver
}

func NewOIDCAuthenticator(ctx context.Context, cfg config.OIDCConfig, resolver UserResolver) (*OIDCAuthenticator, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider init: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	logger.Info("OIDC provider initialized",
		zap.String("issuer", cfg.IssuerURL),
		zap.String("client_id", cfg.ClientID))

	return &OIDCAuthenticator{
		verify: func(ctx context.Context, raw string) (IdentityClaims, error) {
			idToken, err := verifier.Verify(ctx, raw)
			if err != nil {
				return IdentityClaims{}, err
			}
			var claims IdentityClaims
			if err := idToken.Claims(&claims); err != nil {
				return IdentityClaims{}, fmt.Errorf("parse oidc claims: %w", err)
			}
			return claims, nil
		},
		resolver: resolver,
	}, nil
}

func (a *OIDCAuthenticator) Authenticate(ctx context.Context, raw string) (string, error) {
	claims, err := a.verify(ctx, raw)
	if err != nil {
		return "", err
	}
	if claims.Email == "" {
		return "", errors.New("id token has no email claim")
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return "", errors.New("email not verified")
	}
	return a.resolver.ResolveOIDCUser(ctx, claims.Email, claims.Name)
}
