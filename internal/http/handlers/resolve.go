package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gradebridge-backend/internal/http/response"
	"github.com/yungbote/gradebridge-backend/internal/resolver"
)

type GuidelineResolver interface {
	Resolve(ctx context.Context, query string) resolver.Outcome
}

type ResolveHandler struct {
	resolver GuidelineResolver
}

func NewResolveHandler(r GuidelineResolver) *ResolveHandler {
	return &ResolveHandler{resolver: r}
}

func (h *ResolveHandler) Resolve(c *gin.Context) {
	var req struct {
		Question string `json:"question"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_question", errors.New("question is required"))
		return
	}
	out := h.resolver.Resolve(c.Request.Context(), req.Question)
	response.RespondOK(c, gin.H{
		"found":    out.Found(),
		"solution": out.Text,
		"outcome":  out.Kind.String(),
		"path":     out.Path,
	})
}
