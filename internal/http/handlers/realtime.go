package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gradebridge-backend/internal/http/response"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
	"github.com/yungbote/gradebridge-backend/internal/realtime"
)

var defaultStreamChannels = []string{realtime.ChannelEvaluations, realtime.ChannelGuidelines}

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// SSEStream subscribes the connection to ?channels=a,b (default: evaluations and guidelines).
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	channels := defaultStreamChannels
	if raw := strings.TrimSpace(c.Query("channels")); raw != "" {
		parsed, err := realtime.ParseChannels(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_channels", err)
			return
		}
		channels = parsed
	}

	client := h.hub.NewSSEClient()
	for _, ch := range channels {
		h.hub.AddChannel(client, ch)
	}
	h.log.Debug("SSE stream open", "client_id", client.ID, "channels", channels)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
	h.hub.CloseClient(client)
}
