package api

import (
	"ad-mediation/internal/app"
	"ad-mediation/internal/metrics"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	router   *gin.Engine
	mediator app.MediatorInterface
	server   *http.Server
	log      logrus.FieldLogger
}

func NewServer(mediator app.MediatorInterface, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	router := gin.New()

	server := &Server{
		router:   router,
		mediator: mediator,
		log:      log.WithField("component", "api"),
	}
	router.Use(gin.Recovery(), server.observeRequest)

	server.setupRoutes()
	return server
}

func (s *Server) Start(address string) error {
	s.server = &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// observeRequest пишет запрос в лог и метрики
func (s *Server) observeRequest(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	s.log.WithFields(logrus.Fields{
		"method":   c.Request.Method,
		"route":    route,
		"status":   status,
		"duration": time.Since(start),
	}).Debug("api request")
}
