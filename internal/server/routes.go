package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionName = "feedback_session"

func (s *Server) setupRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(securityHeaders())

	store := cookie.NewStore([]byte(s.cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/geolocate", s.handleGeolocate)
		api.GET("/stores", s.handleListStores)
		api.GET("/stores/:id", s.handleGetStore)
		api.GET("/nearest", s.handleNearest)
		api.POST("/locate", s.handleLocate)
		api.GET("/selection", s.handleGetSelection)
		api.POST("/selection", s.handleSetSelection)
		api.POST("/reviews", s.handleSubmitReview)
		api.GET("/widget-config", s.handleWidgetConfig)
	}

	r.POST("/admin/login", s.handleLogin)
	r.POST("/admin/logout", s.handleLogout)

	admin := r.Group("/admin")
	admin.Use(authRequired)
	{
		admin.GET("/reviews", s.handleListReviews)
		admin.GET("/stats", s.handleStats)
		admin.POST("/export", s.handleStartExport)
		admin.GET("/jobs/:id", s.handleJobStatus)
		admin.GET("/download/:filename", s.handleDownload)
	}

	return r
}
