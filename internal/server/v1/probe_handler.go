package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/booomerangs/relay-api/internal/gateway"
	"github.com/booomerangs/relay-api/pkg/api"
)

type ProbeHandler struct {
	service gateway.Service
}

func NewProbeHandler(service gateway.Service) *ProbeHandler {
	return &ProbeHandler{service: service}
}

// Probe handles GET /test-provider/:name. Unknown names return the same
// 404 shape every time so callers can poll safely.
func (h *ProbeHandler) Probe(c *gin.Context) {
	name := c.Param("name")

	resp, err := h.service.Probe(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, gateway.ErrProviderNotFound) {
			c.JSON(http.StatusNotFound, api.ProbeResponse{
				Status:  "error",
				Message: fmt.Sprintf("Провайдер %s не найден в системе", name),
				Error:   err.Error(),
			})
			return
		}
		_ = c.Error(api.ProviderError("probe failed", err))
		return
	}

	c.JSON(http.StatusOK, resp)
}
