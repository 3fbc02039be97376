// Package middleware provides the HTTP middleware chain of the API.
package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/npkumar/social-coder/internal/cache"
	"github.com/npkumar/social-coder/internal/config"
	"github.com/npkumar/social-coder/internal/models"
	"github.com/npkumar/social-coder/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Token claim values shared by issuer and verifier.
const (
	TokenIssuer   = "social-coder-api"
	TokenAudience = "social-coder-client"
	TokenTTL      = time.Hour
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// Claims is the JWT payload issued at login.
type Claims struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for user valid for ttl.
func IssueToken(secret string, user *models.User, ttl time.Duration, now time.Time) (string, *Claims, error) {
	claims := &Claims{
		Name:   user.Name,
		Avatar: user.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseToken verifies signature, expiry, issuer and audience of tokenString.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token is missing subject")
	}
	return claims, nil
}

func unauthorized(c *fiber.Ctx, message string) error {
	return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(message))
}

// AuthRequired is a middleware that enforces authentication for protected routes.
// On success the requester is available through IdentityFrom.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return unauthorized(c, "Unauthorized")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return unauthorized(c, "Invalid authorization header format")
	}

	claims, err := ParseToken(cfg.JWTSecret, parts[1])
	if err != nil {
		return unauthorized(c, "Invalid or expired token")
	}

	revoked, err := cache.IsTokenRevoked(c.UserContext(), claims.ID)
	if err != nil {
		Logger.WarnContext(c.UserContext(), "token revocation check failed", "error", err)
	}
	if revoked {
		return unauthorized(c, "Token has been revoked")
	}

	identity := models.Identity{
		UserID:  claims.Subject,
		Name:    claims.Name,
		Avatar:  claims.Avatar,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}

	observability.AddTraceAttributesToContext(c.UserContext(), attribute.String("enduser.id", identity.UserID))

	c.Locals(LocalUserID, identity.UserID)
	c.Locals(LocalIdentity, identity)
	c.SetUserContext(withLocals(c, c.UserContext()))

	return c.Next()
}

// IdentityFrom returns the identity established by AuthRequired.
func IdentityFrom(c *fiber.Ctx) (models.Identity, bool) {
	identity, ok := c.Locals(LocalIdentity).(models.Identity)
	return identity, ok
}
