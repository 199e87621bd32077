package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rafli4514/absensi-magang-sub001/internal/auth"
	"github.com/rafli4514/absensi-magang-sub001/internal/logbook"
)

type logbookRequest struct {
	Date        string `json:"date" binding:"required"`
	Activity    string `json:"activity" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func (s *Server) handleCreateLogbook(c *gin.Context) {
	var req logbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondBadRequest(c, "invalid date, expected YYYY-MM-DD")
		return
	}

	claims, _ := auth.FromContext(c)
	entry, err := s.Logbooks.Create(c.Request.Context(), logbook.Entry{
		ParticipantID: claims.ParticipantID,
		Date:          date,
		Activity:      req.Activity,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "logbook entry created", entry)
}

func (s *Server) handleListLogbooks(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	participantID := c.Query("participant_id")
	if claims.Role == auth.RoleParticipant {
		participantID = claims.ParticipantID
	}

	entries, err := s.Logbooks.List(c.Request.Context(), participantID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "logbook entries", gin.H{"entries": entries})
}

func (s *Server) handleUpdateLogbook(c *gin.Context) {
	var req logbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	claims, _ := auth.FromContext(c)
	err := s.Logbooks.Update(c.Request.Context(), logbook.Entry{
		ID:            c.Param("id"),
		ParticipantID: claims.ParticipantID,
		Activity:      req.Activity,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, logbook.ErrNotFound) {
			respondNotFound(c, "logbook entry not found")
			return
		}
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "logbook entry updated", nil)
}

func (s *Server) handleReviewLogbook(c *gin.Context) {
	if err := s.Logbooks.MarkReviewed(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, logbook.ErrNotFound) {
			respondNotFound(c, "logbook entry not found")
			return
		}
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "logbook entry reviewed", nil)
}
