package server

import (
	"github.com/booomerangs/relay-api/internal/relay"
	"github.com/booomerangs/relay-api/internal/server/middleware"
	v1 "github.com/booomerangs/relay-api/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))
	s.router.Use(middleware.Tracing("relay-api"))

	limiter := middleware.NewRateLimiter(
		s.config.RateLimit.RequestsPerSecond,
		s.config.RateLimit.Burst,
		s.logger,
	)
	s.router.Use(limiter.Middleware())

	healthHandler := v1.NewHealthHandler(s.service.Registry(), s.config.Server.Port)
	s.router.GET("/", healthHandler.Banner)
	s.router.GET("/health", healthHandler.Health)

	chatHandler := v1.NewChatHandler(s.service, relay.New(s.logger), s.config.Dispatch)
	s.router.POST("/chat", chatHandler.Chat)
	s.router.POST("/chat/direct", chatHandler.Direct)
	s.router.POST("/chat/stream", chatHandler.Stream)

	probeHandler := v1.NewProbeHandler(s.service)
	s.router.GET("/test-provider/:name", probeHandler.Probe)
}
