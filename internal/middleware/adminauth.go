package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/serroba/shortlink/internal/handlers"
	"go.uber.org/zap"
)

// RoleAdmin is the role claim an admin token must carry.
const RoleAdmin = "admin"

var errMissingToken = errors.New("missing bearer token")

// AdminClaims are the claims of an admin bearer token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewAdminToken signs an HS256 admin token for subject valid for ttl.
func NewAdminToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// AdminAuth returns a Huma middleware guarding operations tagged with
// handlers.MetadataAdmin. Other operations pass through untouched.
func AdminAuth(api huma.API, secret []byte, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !requiresAdmin(ctx.Operation()) {
			next(ctx)

			return
		}

		claims, err := parseAdminToken(ctx.Header("Authorization"), secret)
		if err != nil {
			logger.Warn("admin token rejected",
				zap.String("path", ctx.Operation().Path),
				zap.String("clientIp", clientIP(ctx)),
				zap.Error(err),
			)
			ctx.SetHeader("WWW-Authenticate", `Bearer realm="admin"`)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing or invalid admin token")

			return
		}

		if claims.Role != RoleAdmin {
			logger.Warn("admin role required",
				zap.String("path", ctx.Operation().Path),
				zap.String("subject", claims.Subject),
				zap.String("role", claims.Role),
			)
			_ = huma.WriteErr(api, ctx, http.StatusForbidden, "admin role required")

			return
		}

		ctx = huma.WithContext(ctx, handlers.ContextWithActor(ctx.Context(), claims.Subject))

		next(ctx)
	}
}

func requiresAdmin(op *huma.Operation) bool {
	if op == nil {
		return false
	}

	admin, _ := op.Metadata[handlers.MetadataAdmin].(bool)

	return admin
}

func parseAdminToken(header string, secret []byte) (*AdminClaims, error) {
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		return nil, errMissingToken
	}

	claims := &AdminClaims{}

	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	return claims, nil
}
