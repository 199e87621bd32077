package httpapi

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rafli4514/absensi-magang-sub001/internal/attendance"
	"github.com/rafli4514/absensi-magang-sub001/internal/audit"
	"github.com/rafli4514/absensi-magang-sub001/internal/auth"
	"github.com/rafli4514/absensi-magang-sub001/internal/queue"
)

type locationPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type submitAttendanceRequest struct {
	ParticipantID string           `json:"participant_id"`
	Kind          string           `json:"kind" binding:"required"`
	Timestamp     string           `json:"timestamp"`
	Location      *locationPayload `json:"location"`
	ImageURL      string           `json:"image_url"`
	QRPayload     string           `json:"qr_payload"`
	Notes         string           `json:"notes"`
}

func (s *Server) handleSubmitAttendance(c *gin.Context) {
	var req submitAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	claims, _ := auth.FromContext(c)
	participantID := req.ParticipantID
	if claims.Role == auth.RoleParticipant {
		// Participants always clock for themselves.
		participantID = claims.ParticipantID
	}

	sub := attendance.Submission{
		ParticipantID: participantID,
		Kind:          attendance.Kind(req.Kind),
		Timestamp:     req.Timestamp,
		ImageURL:      req.ImageURL,
		QRPayload:     req.QRPayload,
		Notes:         req.Notes,
		RemoteIP:      clientAddr(c.Request),
	}
	if req.Location != nil {
		sub.Latitude = req.Location.Latitude
		sub.Longitude = req.Location.Longitude
	}

	res, err := s.Admissions.Submit(c.Request.Context(), sub)
	s.publishAudit(c, sub, res, err)
	if err != nil {
		respondError(c, err)
		return
	}

	data := gin.H{"event": res.Event}
	if res.Distance != nil {
		data["meta"] = gin.H{"distance": *res.Distance, "radius": *res.Radius}
	}
	respondOK(c, http.StatusCreated, "attendance recorded", data)
}

func (s *Server) publishAudit(c *gin.Context, sub attendance.Submission, res attendance.Result, err error) {
	entry := audit.Entry{
		ParticipantID: sub.ParticipantID,
		Kind:          string(sub.Kind),
		Outcome:       "accepted",
		RemoteIP:      sub.RemoteIP,
		OccurredAt:    attendance.NowCivil(),
	}
	if err != nil {
		entry.Outcome = "rejected"
		if aerr, ok := err.(*attendance.Error); ok {
			entry.Code = aerr.Code
			entry.Message = aerr.Message
		}
	} else {
		entry.Code = string(res.Event.Status)
		entry.OccurredAt = res.Event.OccurredAt
	}
	if perr := s.Queue.Publish(c.Request.Context(), queue.Message{Type: "admission", Body: entry.Marshal()}); perr != nil {
		log.Printf("queue publish failed: %v", perr)
	}
}

func (s *Server) handleListAttendance(c *gin.Context) {
	claims, _ := auth.FromContext(c)

	filter := attendance.ListFilter{
		ParticipantID: c.Query("participant_id"),
		Kind:          attendance.Kind(c.Query("kind")),
	}
	if claims.Role == auth.RoleParticipant {
		filter.ParticipantID = claims.ParticipantID
	}
	if raw := c.Query("from"); raw != "" {
		t, err := attendance.ParseClientTime(raw)
		if err != nil {
			respondBadRequest(c, "invalid from date")
			return
		}
		filter.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := attendance.ParseClientTime(raw)
		if err != nil {
			respondBadRequest(c, "invalid to date")
			return
		}
		_, filter.To = attendance.DayBounds(t)
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Offset = parsed
		}
	}

	events, err := s.Events.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "attendance events", gin.H{"events": events})
}

func (s *Server) handleDeleteAttendance(c *gin.Context) {
	deleted, err := s.Events.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		respondNotFound(c, "attendance event not found")
		return
	}
	respondOK(c, http.StatusOK, "attendance event deleted", nil)
}
