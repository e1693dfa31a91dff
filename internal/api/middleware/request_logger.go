package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const healthPath = "/ping"

// RequestLogger logs one line per request. Long-lived websocket sessions are
// logged on close, so their latency is the connection lifetime.
func RequestLogger(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)
		c.Set("request_id", reqID)

		ws := websocketUpgrade(c)
		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"request_id": reqID,
			"method":     c.Request.Method,
			"route":      c.FullPath(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		}
		if uid, ok := c.Get("user_id"); ok {
			fields["user_id"] = uid
		}
		if sid := c.Param("session_id"); sid != "" {
			fields["session_id"] = sid
		}
		if ws {
			fields["websocket"] = true
		}
		entry := l.WithFields(fields)
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		entry.Log(levelFor(status, c.FullPath()), "request")
	}
}

func levelFor(status int, route string) logrus.Level {
	switch {
	case status >= 500:
		return logrus.ErrorLevel
	case status >= 400:
		return logrus.WarnLevel
	case route == healthPath:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}
