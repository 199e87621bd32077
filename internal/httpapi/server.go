// Package httpapi exposes the REST surface over gin.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rafli4514/absensi-magang-sub001/internal/attendance"
	"github.com/rafli4514/absensi-magang-sub001/internal/auth"
	"github.com/rafli4514/absensi-magang-sub001/internal/config"
	"github.com/rafli4514/absensi-magang-sub001/internal/dashboard"
	"github.com/rafli4514/absensi-magang-sub001/internal/httpmiddleware"
	"github.com/rafli4514/absensi-magang-sub001/internal/imagestore"
	"github.com/rafli4514/absensi-magang-sub001/internal/leave"
	"github.com/rafli4514/absensi-magang-sub001/internal/logbook"
	"github.com/rafli4514/absensi-magang-sub001/internal/participant"
	"github.com/rafli4514/absensi-magang-sub001/internal/policy"
	"github.com/rafli4514/absensi-magang-sub001/internal/queue"
	"github.com/rafli4514/absensi-magang-sub001/internal/store"
	"github.com/rafli4514/absensi-magang-sub001/internal/user"
)

// Deps bundles everything the API needs.
type Deps struct {
	Cfg          config.App
	DB           *store.DB
	Redis        *store.Redis
	Admissions   *attendance.Service
	Events       *attendance.Repository
	Participants *participant.Repository
	Users        *user.Repository
	Settings     *policy.Repository
	Leaves       *leave.Service
	Logbooks     *logbook.Repository
	Dashboards   *dashboard.Queries
	Images       *imagestore.Client // nil when not configured
	Queue        queue.Queue
	Limiter      httpmiddleware.Limiter
}

// Server handles HTTP requests.
type Server struct {
	Deps
}

// NewServer creates the API server.
func NewServer(deps Deps) *Server {
	return &Server{Deps: deps}
}

// Router builds the gin engine with all middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	if s.Limiter != nil {
		r.Use(httpmiddleware.RateLimit(s.Limiter))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.handleHealth)

	r.POST("/v1/auth/login", s.handleLogin)
	r.POST("/v1/auth/refresh", s.handleRefresh)

	authed := r.Group("/v1", auth.UserAuth(s.Cfg.JWTSigningKey, s.Cfg.JWTIssuer))

	authed.POST("/upload", s.handleUpload)

	authed.POST("/attendance", auth.RequireRoles(auth.RoleParticipant, auth.RoleAdmin), s.handleSubmitAttendance)
	authed.GET("/attendance", s.handleListAttendance)
	authed.DELETE("/attendance/:id", auth.RequireRoles(auth.RoleAdmin), s.handleDeleteAttendance)

	authed.GET("/participants", auth.RequireRoles(auth.RoleAdmin, auth.RoleMentor), s.handleListParticipants)
	authed.POST("/participants", auth.RequireRoles(auth.RoleAdmin), s.handleCreateParticipant)
	authed.GET("/participants/:id", s.handleGetParticipant)
	authed.PUT("/participants/:id", auth.RequireRoles(auth.RoleAdmin), s.handleUpdateParticipant)
	authed.DELETE("/participants/:id", auth.RequireRoles(auth.RoleAdmin), s.handleDeleteParticipant)

	authed.POST("/leaves", auth.RequireRoles(auth.RoleParticipant), s.handleCreateLeave)
	authed.GET("/leaves", s.handleListLeaves)
	authed.POST("/leaves/:id/decision", auth.RequireRoles(auth.RoleAdmin, auth.RoleMentor), s.handleDecideLeave)

	authed.POST("/logbooks", auth.RequireRoles(auth.RoleParticipant), s.handleCreateLogbook)
	authed.GET("/logbooks", s.handleListLogbooks)
	authed.PUT("/logbooks/:id", auth.RequireRoles(auth.RoleParticipant), s.handleUpdateLogbook)
	authed.POST("/logbooks/:id/review", auth.RequireRoles(auth.RoleAdmin, auth.RoleMentor), s.handleReviewLogbook)

	authed.GET("/dashboard/stats", auth.RequireRoles(auth.RoleAdmin, auth.RoleMentor), s.handleDashboardStats)

	settings := authed.Group("/settings", auth.RequireRoles(auth.RoleAdmin))
	settings.GET("", s.handleGetSettings)
	settings.GET("/:category", s.handleGetSettingsCategory)
	settings.PUT("", s.handleReplaceSettings)
	settings.POST("/reset", s.handleResetSettings)

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	redisHealthy := s.Redis.Healthy(c.Request.Context())
	dbHealthy := s.DB != nil && s.DB.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}
