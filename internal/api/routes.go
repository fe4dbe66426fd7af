package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/healthz", s.health)

	api := s.router.Group("/api/v1")
	{
		api.POST("/units", s.createUnit)
		api.GET("/units", s.listUnits)
		api.GET("/units/:id", s.unitStatus)
		api.POST("/units/:id/load", s.loadUnit)
		api.POST("/units/:id/show", s.showUnit)
		api.DELETE("/units/:id", s.destroyUnit)
		api.POST("/token", s.setToken)
	}
}
