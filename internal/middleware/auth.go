package middleware

import (
	"context"
	"strings"

	"github.com/amplyst/backend/internal/auth"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const CtxIdentity = "identity"

// IdentityResolver maps verified claims to the local user.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, claims *auth.Claims) (auth.Identity, error)
}

// AuthMiddleware verifies the bearer token and stores the caller's identity in the
// request locals. Websocket upgrades may pass the token as ?token= instead, since
// browsers cannot set headers on them.
func AuthMiddleware(verifier *auth.Verifier, resolver IdentityResolver, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, errMsg := bearerToken(c)
		if errMsg != "" {
			return unauthorized(c, errMsg)
		}

		claims, err := verifier.Parse(tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return unauthorized(c, "invalid or expired token")
		}

		id, err := resolver.ResolveIdentity(c.UserContext(), claims)
		if err != nil {
			log.Error("failed to resolve identity", zap.String("subject", claims.Subject), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":      "internal error",
				"request_id": GetRequestID(c),
			})
		}

		c.Locals(CtxIdentity, id)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(c) {
			if q := c.Query("token"); q != "" {
				return q, ""
			}
		}
		return "", "missing authorization header"
	}

	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenStr == authHeader || tokenStr == "" {
		return "", "invalid authorization format"
	}
	return tokenStr, ""
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":      msg,
		"request_id": GetRequestID(c),
	})
}

// GetIdentity returns the caller resolved by AuthMiddleware, or the zero identity.
func GetIdentity(c *fiber.Ctx) auth.Identity {
	id, _ := c.Locals(CtxIdentity).(auth.Identity)
	return id
}
