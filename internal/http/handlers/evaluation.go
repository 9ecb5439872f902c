package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gradebridge-backend/internal/analytics"
	"github.com/yungbote/gradebridge-backend/internal/grading"
	"github.com/yungbote/gradebridge-backend/internal/http/response"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
	"github.com/yungbote/gradebridge-backend/internal/services"
)

type Evaluator interface {
	Evaluate(ctx context.Context, sub grading.Submission) grading.Evaluation
	EvaluatePDF(ctx context.Context, question string, pdfBytes []byte, rubric, studentName, studentRoll string, persist bool) grading.Evaluation
}

type EvaluationHandler struct {
	log       *logger.Logger
	evaluator Evaluator
	analytics services.AnalyticsService
}

func NewEvaluationHandler(log *logger.Logger, evaluator Evaluator, analyticsSvc services.AnalyticsService) *EvaluationHandler {
	return &EvaluationHandler{
		log:       log.With("handler", "EvaluationHandler"),
		evaluator: evaluator,
		analytics: analyticsSvc,
	}
}

type evaluateRequest struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Rubric      string `json:"rubric"`
	StudentName string `json:"student_name"`
	StudentRoll string `json:"student_roll"`
	Persist     *bool  `json:"persist"`
}

// Evaluate always answers 200 once the request is well formed; grading failures
// come back as a degraded result.
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.Answer) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_fields", errors.New("question and answer are required"))
		return
	}
	persist := true
	if req.Persist != nil {
		persist = *req.Persist
	}
	out := h.evaluator.Evaluate(c.Request.Context(), grading.Submission{
		Question:    req.Question,
		Answer:      req.Answer,
		Rubric:      req.Rubric,
		StudentName: req.StudentName,
		StudentRoll: req.StudentRoll,
		Persist:     persist,
	})
	response.RespondOK(c, out)
}

func (h *EvaluationHandler) EvaluatePDF(c *gin.Context) {
	data, err := readUpload(c, "file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_upload", err)
		return
	}
	question := formValue(c, "question")
	if question == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_question", errors.New("question is required"))
		return
	}
	out := h.evaluator.EvaluatePDF(
		c.Request.Context(),
		question,
		data,
		formValue(c, "rubric"),
		formValue(c, "student_name"),
		formValue(c, "student_roll"),
		formBool(c, "persist", true),
	)
	response.RespondOK(c, out)
}

func (h *EvaluationHandler) ListRecent(c *gin.Context) {
	limit := analytics.DefaultRecentLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be between 1 and 1000"))
			return
		}
		limit = n
	}
	response.RespondOK(c, gin.H{"evaluations": h.analytics.Recent(c.Request.Context(), limit)})
}
