package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-escape-reservation/internal/utils"
)

// Context keys set by JWTAuth and OptionalJWT.
const (
	KeyMemberID = "user_id"
	KeyRole     = "role"
	KeyName     = "name"
)

func setIdentity(c echo.Context, claims utils.Claims) {
	c.Set(KeyMemberID, claims.MemberID)
	c.Set(KeyRole, claims.Role)
	c.Set(KeyName, claims.Name)
}

// MemberID returns the authenticated member id, or false for anonymous
// requests.
func MemberID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(KeyMemberID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated role, or "" for anonymous requests.
func Role(c echo.Context) string {
	r, _ := c.Get(KeyRole).(string)
	return r
}

// rateIdentity keys anonymous callers together.
func rateIdentity(c echo.Context) string {
	if id, ok := MemberID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
