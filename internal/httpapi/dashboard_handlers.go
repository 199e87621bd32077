package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rafli4514/absensi-magang-sub001/internal/attendance"
)

func (s *Server) handleDashboardStats(c *gin.Context) {
	now := attendance.NowCivil()
	from, to := attendance.DayBounds(now)

	if raw := c.Query("from"); raw != "" {
		t, err := attendance.ParseClientTime(raw)
		if err != nil {
			respondBadRequest(c, "invalid from date")
			return
		}
		from, _ = attendance.DayBounds(t)
	}
	if raw := c.Query("to"); raw != "" {
		t, err := attendance.ParseClientTime(raw)
		if err != nil {
			respondBadRequest(c, "invalid to date")
			return
		}
		_, to = attendance.DayBounds(t)
	}

	stats, err := s.Dashboards.Range(c.Request.Context(), c.Query("participant_id"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	dayStart, dayEnd := attendance.DayBounds(now)
	today, err := s.Dashboards.Today(c.Request.Context(), dayStart, dayEnd)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "dashboard stats", gin.H{"range": stats, "today": today})
}
