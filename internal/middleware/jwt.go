package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-escape-reservation/internal/utils"
)

// TokenCookie is the cookie the access token is also delivered in.
const TokenCookie = "token"

// bearerOrCookie returns the access token from the Authorization header,
// falling back to the token cookie.
func bearerOrCookie(c echo.Context) string {
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if ck, err := c.Cookie(TokenCookie); err == nil {
		return ck.Value
	}
	return ""
}

// JWTAuth rejects requests without a valid access token and exposes the
// token's member id, role and name through c.Get.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerOrCookie(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing access token"})
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			setIdentity(c, claims)
			return next(c)
		}
	}
}

// OptionalJWT sets the identity when a valid token is present and lets
// every request through.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := bearerOrCookie(c); raw != "" {
				if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
					setIdentity(c, claims)
				}
			}
			return next(c)
		}
	}
}
