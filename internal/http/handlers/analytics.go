package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gradebridge-backend/internal/analytics"
	"github.com/yungbote/gradebridge-backend/internal/http/response"
	"github.com/yungbote/gradebridge-backend/internal/services"
)

type AnalyticsHandler struct {
	svc services.AnalyticsService
}

func NewAnalyticsHandler(svc services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) Summary(c *gin.Context) {
	response.RespondOK(c, h.svc.Summary(c.Request.Context()))
}

func (h *AnalyticsHandler) Grades(c *gin.Context) {
	response.RespondOK(c, h.svc.Grades(c.Request.Context()))
}

func (h *AnalyticsHandler) Topics(c *gin.Context) {
	response.RespondOK(c, h.svc.Topics(c.Request.Context()))
}

func (h *AnalyticsHandler) Students(c *gin.Context) {
	limit := analytics.DefaultTopStudents
	if raw := strings.TrimSpace(c.Query("top")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_top", fmt.Errorf("top must be a positive integer"))
			return
		}
		limit = n
	}
	response.RespondOK(c, h.svc.Students(c.Request.Context(), limit))
}

func (h *AnalyticsHandler) Scores(c *gin.Context) {
	response.RespondOK(c, h.svc.Scores(c.Request.Context()))
}

// Class answers {"stats": null} when no record has a numeric score.
func (h *AnalyticsHandler) Class(c *gin.Context) {
	response.RespondOK(c, gin.H{"stats": h.svc.Class(c.Request.Context())})
}

func (h *AnalyticsHandler) Timeline(c *gin.Context) {
	response.RespondOK(c, h.svc.Timeline(c.Request.Context()))
}

func (h *AnalyticsHandler) Segments(c *gin.Context) {
	weak, err := queryFloat(c, "weak", analytics.DefaultWeakThreshold)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_threshold", err)
		return
	}
	strong, err := queryFloat(c, "strong", analytics.DefaultStrongThreshold)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_threshold", err)
		return
	}
	response.RespondOK(c, h.svc.Segments(c.Request.Context(), weak, strong))
}

func queryFloat(c *gin.Context, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}
