package httpkit

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	errMissingToken = "missing token"
	errInvalidToken = "invalid token"

	tokenTypeAccess = "access"
)

var errWrongTokenType = errors.New("not an access token")

// accessClaims is the token shape issued by the identity provider. Subject is
// the user; TenantID is empty for users without an organization.
type accessClaims struct {
	jwt.RegisteredClaims
	Type     string   `json:"type"`
	TenantID string   `json:"tenant_id,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// AuthRequired verifies HMAC-signed access tokens and stores the caller's
// identity on the gin and request contexts.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.GetJWTAccessSecret()), nil
	}

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, errMissingToken)
			return
		}

		var claims accessClaims
		if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}
		userID, tenantID, err := claims.identity()
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		roles := claims.Roles
		if roles == nil {
			roles = []string{}
		}
		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRolesKey, roles)

		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, userID.String())
		if tenantID != nil {
			c.Set(ContextTenantIDKey, *tenantID)
			ctx = context.WithValue(ctx, logger.TenantIDKey, tenantID.String())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func (ac accessClaims) identity() (uuid.UUID, *uuid.UUID, error) {
	if ac.Type != tokenTypeAccess {
		return uuid.Nil, nil, errWrongTokenType
	}
	userID, err := uuid.Parse(ac.Subject)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if strings.TrimSpace(ac.TenantID) == "" {
		return userID, nil, nil
	}
	tenantID, err := uuid.Parse(ac.TenantID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return userID, &tenantID, nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: message})
}
