package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/booomerangs/relay-api/internal/gateway"
	"github.com/booomerangs/relay-api/pkg/api"
)

const serviceName = "BOOOMERANGS-Relay"

type HealthHandler struct {
	registry *gateway.Registry
	port     string
}

func NewHealthHandler(registry *gateway.Registry, port string) *HealthHandler {
	return &HealthHandler{registry: registry, port: port}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Status:    "ok",
		Service:   serviceName,
		Port:      h.port,
		Providers: h.registry.Len(),
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
	})
}

// Banner answers GET / so load balancer checks and the curious get a
// human-readable line instead of a 404.
func (h *HealthHandler) Banner(c *gin.Context) {
	c.String(http.StatusOK, "BOOOMERANGS AI Relay is running")
}
