package middleware

import (
	"fmt"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/evandrarf/drivequiz-be/internal/delivery/http/domain"
	"github.com/evandrarf/drivequiz-be/internal/delivery/http/entity"
	"github.com/evandrarf/drivequiz-be/internal/engine"
	"github.com/evandrarf/drivequiz-be/internal/pkg/response"
	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// Identity resolves the caller from an optional bearer token. No token means
// an anonymous free-tier caller; a token that fails verification is rejected.
func (m *Middleware) Identity() fiber.Handler {
	secret := ""
	if m != nil && m.Config != nil {
		secret = m.Config.GetString("auth.jwt_secret")
	}

	return func(ctx *fiber.Ctx) error {
		header := strings.TrimSpace(ctx.Get(fiber.HeaderAuthorization))
		if header == "" {
			ctx.Locals(identityKey, entity.Identity{Tier: engine.TierFree})
			return ctx.Next()
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		identity, err := parseIdentity(tokenString, secret)
		if err != nil {
			if m != nil && m.Log != nil {
				m.Log.WithError(err).Debug("rejected bearer token")
			}
			return response.NewFailed(domain.AUTH_INVALID_TOKEN, fiber.NewError(fiber.StatusUnauthorized, err.Error()), nil).Send(ctx)
		}

		ctx.Locals(identityKey, identity)
		return ctx.Next()
	}
}

// GetIdentity returns the identity stored by Identity, or an anonymous one.
func GetIdentity(ctx *fiber.Ctx) entity.Identity {
	if identity, ok := ctx.Locals(identityKey).(entity.Identity); ok {
		return identity
	}
	return entity.Identity{Tier: engine.TierFree}
}

func parseIdentity(tokenString string, secret string) (entity.Identity, error) {
	if secret == "" {
		return entity.Identity{}, fmt.Errorf("token authentication is not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return entity.Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return entity.Identity{}, fmt.Errorf("invalid token")
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return entity.Identity{}, fmt.Errorf("token has no subject")
	}

	tier := engine.TierFree
	if raw, ok := claims["tier"].(string); ok && raw != "" {
		parsed, err := engine.ParseTier(raw)
		if err != nil {
			return entity.Identity{}, err
		}
		tier = parsed
	}

	return entity.Identity{UserID: userID, Tier: tier}, nil
}
