package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rafli4514/absensi-magang-sub001/internal/auth"
	"github.com/rafli4514/absensi-magang-sub001/internal/leave"
)

type createLeaveRequest struct {
	Kind      string `json:"kind" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

func (s *Server) handleCreateLeave(c *gin.Context) {
	var req createLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		respondBadRequest(c, "invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		respondBadRequest(c, "invalid end_date, expected YYYY-MM-DD")
		return
	}

	claims, _ := auth.FromContext(c)
	created, err := s.Leaves.Create(c.Request.Context(), claims.ParticipantID, leave.Kind(req.Kind), start, end, req.Reason)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, "leave request filed", created)
}

func (s *Server) handleListLeaves(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	participantID := c.Query("participant_id")
	if claims.Role == auth.RoleParticipant {
		participantID = claims.ParticipantID
	}

	list, err := s.Leaves.List(c.Request.Context(), participantID, leave.Status(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "leave requests", gin.H{"requests": list})
}

type leaveDecisionRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

func (s *Server) handleDecideLeave(c *gin.Context) {
	var req leaveDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	claims, _ := auth.FromContext(c)
	decided, err := s.Leaves.Decide(c.Request.Context(), c.Param("id"), req.Approve, req.Note, claims.Subject)
	if err != nil {
		if errors.Is(err, leave.ErrNotFound) {
			respondNotFound(c, "leave request not found")
			return
		}
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, http.StatusOK, "leave request decided", decided)
}
