package middleware

import (
	"fmt"
	"strings"

	"github.com/diyetisyenim/diyet-api/model"
	"github.com/diyetisyenim/diyet-api/util"
	"github.com/gin-gonic/gin"
)

const (
	userIDContextKey   = "auth_user_id"
	usernameContextKey = "auth_username"
	roleContextKey     = "auth_role"
)

// Authenticate is the access guard. It verifies the bearer token's
// signature and expiry, then attaches the resolved identity to the
// request context. Missing, malformed, expired or badly signed tokens
// are rejected with 401 before any handler runs.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.LogUnauthorizedAccess("", "", c.ClientIP(), c.Request.URL.Path, "missing bearer token")
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Authentication required",
				Err: fmt.Errorf("missing bearer token"),
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header || tokenString == "" {
			util.LogUnauthorizedAccess("", "", c.ClientIP(), c.Request.URL.Path, "malformed authorization header")
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Authentication required",
				Err: fmt.Errorf("malformed authorization header"),
			})
			c.Abort()
			return
		}

		claims, userID, err := util.ParseToken(tokenString)
		if err != nil {
			util.LogUnauthorizedAccess("", "", c.ClientIP(), c.Request.URL.Path, "invalid or expired token")
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Invalid or expired token",
				Err: fmt.Errorf("invalid or expired token"),
			})
			c.Abort()
			return
		}

		c.Set(userIDContextKey, userID)
		c.Set(usernameContextKey, claims.Username)
		c.Set(roleContextKey, claims.Role)
		c.Next()
	}
}

// RequireRoles gates a route behind a role allow-list. An empty list
// admits any authenticated caller; otherwise the caller's role must
// appear in the list exactly.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(roles) == 0 {
			c.Next()
			return
		}

		role, ok := GetRole(c)
		if !ok {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Authentication required",
				Err: fmt.Errorf("no authenticated identity"),
			})
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		username, _ := GetUsername(c)
		util.LogForbiddenAccess(userID, username, c.ClientIP(), c.Request.URL.Path, fmt.Sprintf("role %s not allowed", role))
		util.CallUserForbidden(c, util.APIErrorParams{
			Msg: "You do not have permission to access this resource",
			Err: fmt.Errorf("role not allowed"),
		})
		c.Abort()
	}
}

// GetUserID returns the authenticated user's id from the context.
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(userIDContextKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// GetUsername returns the authenticated username from the context.
func GetUsername(c *gin.Context) (string, bool) {
	value, exists := c.Get(usernameContextKey)
	if !exists {
		return "", false
	}
	username, ok := value.(string)
	return username, ok
}

// GetRole returns the authenticated role from the context.
func GetRole(c *gin.Context) (model.Role, bool) {
	value, exists := c.Get(roleContextKey)
	if !exists {
		return "", false
	}
	role, ok := value.(model.Role)
	return role, ok
}
