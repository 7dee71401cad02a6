package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-hub/internal/model"
)

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// Identity returns the authenticated caller stored by JWTAuth.
func Identity(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(CtxUserID).(uint64)
	if !ok || id == 0 {
		return model.Identity{}, false
	}
	role, _ := c.Get(CtxRole).(string)
	return model.Identity{UserID: id, Role: role}, true
}

// parseSubject accepts the numeric forms a "sub" claim arrives in.
func parseSubject(v any) (uint64, bool) {
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		return n, err == nil && n > 0
	case float64:
		if t <= 0 || t != float64(uint64(t)) {
			return 0, false
		}
		return uint64(t), true
	}
	return 0, false
}
