package service

import (
	"strings"

	"simorder/response"
	"simorder/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserID      = "userID"
	ctxPermissions = "permissions"
)

// TraceMiddleware tags every request with an 8-hex trace id, honoring a
// client-sent X-Trace-ID.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		}
		c.Set(response.TraceIDKey, traceID)
		c.Header("X-Trace-ID", traceID)
		c.Next()
	}
}

// AuthMiddleware verifies the bearer token and stores the subject user id
// and permission codes on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		msg, err := CheckJWTToken(c)
		if err != nil {
			response.HandleError(c, err)
			c.Abort()
			return
		}
		c.Set(ctxUserID, msg.UserID)
		c.Set(ctxPermissions, msg.Permissions)
		c.Next()
	}
}

// CheckJWTToken extracts and verifies the Authorization bearer token.
func CheckJWTToken(c *gin.Context) (util.JWTMessage, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return util.JWTMessage{}, response.NewUnauthorized(response.InvalidToken, "missing bearer token")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return util.JWTMessage{}, response.NewUnauthorized(response.InvalidToken, "malformed authorization header")
	}
	msg, err := util.GetTokenMgr().CheckToken(token)
	if err != nil {
		return util.JWTMessage{}, response.NewUnauthorized(response.TokenExpired, "invalid or expired token")
	}
	return msg, nil
}

// RequirePermission rejects requests whose token does not carry the given
// permission code. Mounted after AuthMiddleware; admins hold every active
// code, so their tokens pass as long as the permission row exists.
func RequirePermission(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range currentPermissions(c) {
			if p == code {
				c.Next()
				return
			}
		}
		response.HandleError(c, response.NewForbidden("missing permission "+code))
		c.Abort()
	}
}

// currentUserID reads the authenticated user id set by AuthMiddleware.
func currentUserID(c *gin.Context) uint {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func currentPermissions(c *gin.Context) []string {
	if v, ok := c.Get(ctxPermissions); ok {
		if perms, ok := v.([]string); ok {
			return perms
		}
	}
	return nil
}
