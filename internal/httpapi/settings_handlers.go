package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rafli4514/absensi-magang-sub001/internal/policy"
)

func (s *Server) handleGetSettings(c *gin.Context) {
	cfg, err := s.Settings.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "settings", cfg)
}

func (s *Server) handleGetSettingsCategory(c *gin.Context) {
	cfg, err := s.Settings.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	section, ok := cfg.Category(c.Param("category"))
	if !ok {
		respondNotFound(c, "unknown settings category")
		return
	}
	respondOK(c, http.StatusOK, "settings", section)
}

func (s *Server) handleReplaceSettings(c *gin.Context) {
	var cfg policy.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := s.Settings.ReplaceAll(c.Request.Context(), cfg.Flatten()); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "settings replaced", cfg)
}

func (s *Server) handleResetSettings(c *gin.Context) {
	if err := s.Settings.Reset(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "settings reset to defaults", policy.Defaults())
}
