package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rafli4514/absensi-magang-sub001/internal/auth"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	u, err := s.Users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	if u == nil || !u.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: "invalid credentials"})
		return
	}

	participantID := ""
	if u.ParticipantID != nil {
		participantID = *u.ParticipantID
	}
	tokens, err := auth.Issue(u.ID, u.Role, participantID, s.Cfg.JWTIssuer, s.Cfg.JWTSigningKey, s.Cfg.AccessTTL, s.Cfg.RefreshTTL)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.Users.SaveRefreshToken(c.Request.Context(), u.ID, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "logged in", gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
		"role":          u.Role,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	claims, err := auth.Parse(req.RefreshToken, s.Cfg.JWTSigningKey, s.Cfg.JWTIssuer)
	if err != nil {
		c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: "invalid refresh token"})
		return
	}
	valid, err := s.Users.RefreshTokenValid(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: "invalid refresh token"})
		return
	}

	// Rotation: the presented token is spent.
	_ = s.Users.RevokeRefreshToken(c.Request.Context(), req.RefreshToken)

	tokens, err := auth.Issue(claims.Subject, claims.Role, claims.ParticipantID, s.Cfg.JWTIssuer, s.Cfg.JWTSigningKey, s.Cfg.AccessTTL, s.Cfg.RefreshTTL)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.Users.SaveRefreshToken(c.Request.Context(), claims.Subject, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "token refreshed", gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}
