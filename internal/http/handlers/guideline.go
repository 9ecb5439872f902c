package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gradebridge-backend/internal/http/response"
	"github.com/yungbote/gradebridge-backend/internal/ingestion"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
	"github.com/yungbote/gradebridge-backend/internal/services"
)

type GuidelineHandler struct {
	log *logger.Logger
	svc services.GuidelineService
}

func NewGuidelineHandler(log *logger.Logger, svc services.GuidelineService) *GuidelineHandler {
	return &GuidelineHandler{log: log.With("handler", "GuidelineHandler"), svc: svc}
}

type createGuidelineRequest struct {
	Question string `json:"question"`
	Solution string `json:"solution"`
}

type createDocumentRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

func (h *GuidelineHandler) Create(c *gin.Context) {
	var req createGuidelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	g, err := h.svc.StoreGuideline(c.Request.Context(), req.Question, req.Solution)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"guideline": g})
}

func (h *GuidelineHandler) CreateDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	g, err := h.svc.StoreGuidelineWithMetadata(c.Request.Context(), req.Text, req.Title)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"guideline": g})
}

func (h *GuidelineHandler) UploadPDF(c *gin.Context) {
	data, err := readUpload(c, "file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_upload", err)
		return
	}
	g, err := h.svc.StoreGuidelineFromPDF(c.Request.Context(), data)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"guideline": g})
}

func (h *GuidelineHandler) respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyGuideline):
		response.RespondError(c, http.StatusBadRequest, "empty_guideline", err)
	case errors.Is(err, ingestion.ErrNotPDF), errors.Is(err, ingestion.ErrEmptyPDF):
		response.RespondError(c, http.StatusUnprocessableEntity, "unreadable_pdf", err)
	default:
		h.log.Error("Store guideline failed", "error", err)
		response.RespondError(c, http.StatusBadGateway, "store_failed", err)
	}
}
