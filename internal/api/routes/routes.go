package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yoockh/yoointerview/internal/api/handlers"
	"github.com/yoockh/yoointerview/internal/api/middleware"
)

type Deps struct {
	Session *handlers.SessionHandler
	Profile *handlers.ProfileHandler // optional
	Report  *handlers.ReportHandler  // optional
	WS      *handlers.WSHandler

	Auth gin.HandlerFunc // defaults to middleware.JWTAuth()
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	auth := r.Group("/")
	if d.Auth == nil {
		d.Auth = middleware.JWTAuth()
	}
	auth.Use(d.Auth)

	auth.POST("/session/start", d.Session.Start)
	auth.GET("/session/:session_id", d.Session.Get)
	auth.POST("/session/:session_id/message", d.Session.Message)
	auth.POST("/session/:session_id/end", d.Session.End)

	if d.Profile != nil {
		auth.GET("/profile/me", d.Profile.Me)
	}
	if d.Report != nil {
		auth.GET("/reports", d.Report.List)
		auth.GET("/reports/:session_id", d.Report.Get)
	}

	auth.GET("/ws/session/:session_id", d.WS.SessionWS)
}
