package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rafli4514/absensi-magang-sub001/internal/auth"
	"github.com/rafli4514/absensi-magang-sub001/internal/participant"
)

type participantRequest struct {
	Handle      string `json:"handle" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Institution string `json:"institution"`
	Status      string `json:"status"`
}

func (s *Server) handleCreateParticipant(c *gin.Context) {
	var req participantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	status := participant.Status(req.Status)
	if req.Status != "" && !status.Known() {
		respondBadRequest(c, "unknown participant status")
		return
	}

	p, err := s.Participants.Create(c.Request.Context(), participant.Participant{
		Handle:      req.Handle,
		Name:        req.Name,
		Institution: req.Institution,
		Status:      status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "participant created", p)
}

func (s *Server) handleListParticipants(c *gin.Context) {
	list, err := s.Participants.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "participants", gin.H{"participants": list})
}

func (s *Server) handleGetParticipant(c *gin.Context) {
	id := c.Param("id")
	claims, _ := auth.FromContext(c)
	if claims.Role == auth.RoleParticipant && claims.ParticipantID != id {
		respondForbidden(c, "participants may only view their own profile")
		return
	}

	p, err := s.Participants.Lookup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if p == nil {
		respondNotFound(c, "participant not found")
		return
	}
	respondOK(c, http.StatusOK, "participant", p)
}

func (s *Server) handleUpdateParticipant(c *gin.Context) {
	var req participantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	status := participant.Status(req.Status)
	if req.Status != "" && !status.Known() {
		respondBadRequest(c, "unknown participant status")
		return
	}

	err := s.Participants.Update(c.Request.Context(), participant.Participant{
		ID:          c.Param("id"),
		Name:        req.Name,
		Institution: req.Institution,
		Status:      status,
	})
	if err != nil {
		if errors.Is(err, participant.ErrNotFound) {
			respondNotFound(c, "participant not found")
			return
		}
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "participant updated", nil)
}

func (s *Server) handleDeleteParticipant(c *gin.Context) {
	if err := s.Participants.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, participant.ErrNotFound) {
			respondNotFound(c, "participant not found")
			return
		}
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "participant deleted", nil)
}
