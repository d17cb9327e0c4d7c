package v1

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/booomerangs/relay-api/internal/config"
	"github.com/booomerangs/relay-api/internal/gateway"
	"github.com/booomerangs/relay-api/internal/relay"
	"github.com/booomerangs/relay-api/internal/server/validator"
	"github.com/booomerangs/relay-api/pkg/api"
)

type ChatHandler struct {
	service  gateway.Service
	relay    *relay.Relay
	dispatch config.DispatchConfig
}

func NewChatHandler(service gateway.Service, r *relay.Relay, dispatch config.DispatchConfig) *ChatHandler {
	return &ChatHandler{
		service:  service,
		relay:    r,
		dispatch: dispatch,
	}
}

// Chat handles POST /chat. Failover makes the endpoint total: a valid
// body always yields a 200 with success=true, even when every upstream
// is down.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	resp := h.service.Chat(c.Request.Context(), &req)
	c.JSON(http.StatusOK, resp)
}

// Direct handles POST /chat/direct: one named provider, no failover,
// errors surfaced to the caller instead of being papered over.
func (h *ChatHandler) Direct(c *gin.Context) {
	var req api.DirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	resp, err := h.service.Direct(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, gateway.ErrProviderNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorEnvelope{
				Error:    err.Error(),
				Response: fmt.Sprintf("Провайдер %s не найден в системе", req.Provider),
				Provider: "unknown",
			})
			return
		}

		c.JSON(http.StatusBadGateway, api.ErrorEnvelope{
			Error:    err.Error(),
			Response: fmt.Sprintf("Ошибка при запросе к провайдеру %s", req.Provider),
			Provider: "error",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Stream handles POST /chat/stream, relaying provider output as SSE.
func (h *ChatHandler) Stream(c *gin.Context) {
	var req api.StreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	timeout := h.streamTimeout(req.Timeout)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	h.relay.Serve(c.Request.Context(), c.Writer, h.service, req.Message, req.Provider, timeout)
}

// streamTimeout converts the legacy millisecond field into a bounded
// duration. Out-of-range values mean the client is confused, so they get
// the default rather than an error.
func (h *ChatHandler) streamTimeout(ms int64) time.Duration {
	sec := ms / 1000
	if sec <= 0 || sec > int64(h.dispatch.MaxTimeoutSec) {
		return time.Duration(h.dispatch.DefaultTimeoutSec) * time.Second
	}
	return time.Duration(sec) * time.Second
}
