package middleware

import (
	"fmt"
	"time"

	"github.com/diyetisyenim/diyet-api/util"
	"github.com/gin-gonic/gin"
)

// EndpointCallLogger logs each HTTP request as an audit event. It relies
// on DatabaseMiddleware and util.SetSecurityLoggerDB having been wired
// during startup so events are persisted to the security_logs table.
func EndpointCallLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		userID, _ := GetUserID(c)
		username, _ := GetUsername(c)
		if username == "" && userID != 0 {
			username = util.GetUsernameByID(GetDB(c), userID)
		}

		details := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"raw_path":    c.Request.URL.Path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"query":       c.Request.URL.RawQuery,
		}
		if userID != 0 {
			details["user_id"] = userID
		}
		if role, ok := GetRole(c); ok {
			details["role"] = string(role)
		}

		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventEndpointCall,
			UserID:    fmt.Sprintf("%d", userID),
			Username:  username,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status),
			Details:   details,
		})
	}
}
