package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/binay-das/cloudify/logger"
	"github.com/binay-das/cloudify/repositories"
	"github.com/binay-das/cloudify/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserID   = "user_id"
	ContextTokenID  = "token_id"
	ContextTokenExp = "token_exp"
)

type AuthOptions struct {
	Secret    string
	Blocklist repositories.TokenBlocklist
	// OIDC is optional; when set, tokens the local key rejects are tried as ID tokens.
	OIDC *OIDCAuthenticator
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func unauthorized(c *gin.Context) {
	utils.Error(c, http.StatusUnauthorized, "Unauthorized")
	c.Abort()
}

func AuthMiddleware(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c)
			return
		}

		claims, err := utils.ParseToken(opts.Secret, token)
		if err == nil {
			if opts.Blocklist != nil {
				revoked, revokeErr := opts.Blocklist.IsRevoked(c.Request.Context(), claims.ID)
				if revokeErr != nil {
					logger.Error("token revocation check failed", zap.Error(revokeErr))
					utils.Error(c, http.StatusInternalServerError, "internal error")
					c.Abort()
					return
				}
				if revoked {
					unauthorized(c)
					return
				}
			}
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextTokenID, claims.ID)
			if claims.ExpiresAt != nil {
				c.Set(ContextTokenExp, claims.ExpiresAt.Time)
			}
			c.Next()
			return
		}

		if opts.OIDC != nil {
			userID, oidcErr := opts.OIDC.Authenticate(c.Request.Context(), token)
			if oidcErr == nil {
				c.Set(ContextUserID, userID)
				c.Next()
				return
			}
			logger.Debug("oidc token rejected", zap.Error(oidcErr))
		}

		unauthorized(c)
	}
}

// UserID returns the authenticated caller set by AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func TokenInfo(c *gin.Context) (string, time.Time) {
	return c.GetString(ContextTokenID), c.GetTime(ContextTokenExp)
}
