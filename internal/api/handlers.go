package api

import (
	"ad-mediation/internal/app"
	"ad-mediation/internal/placement"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateUnitRequest запрос на создание рекламного блока
type CreateUnitRequest struct {
	Category string `json:"category" binding:"required"`
	Key      string `json:"key"`
}

// SetTokenRequest запрос на сохранение токена
type SetTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) createUnit(c *gin.Context) {
	var req CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := placement.ParseCategory(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := s.mediator.CreateUnit(c.Request.Context(), category, req.Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, status)
}

func (s *Server) listUnits(c *gin.Context) {
	c.JSON(http.StatusOK, s.mediator.List(c.Request.Context()))
}

func (s *Server) unitStatus(c *gin.Context) {
	status, err := s.mediator.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) loadUnit(c *gin.Context) {
	status, err := s.mediator.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, status)
}

func (s *Server) showUnit(c *gin.Context) {
	status, err := s.mediator.Show(c.Request.Context(), c.Param("id"))
	if errors.Is(err, app.ErrNotReady) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "unit": status})
		return
	}
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) destroyUnit(c *gin.Context) {
	if err := s.mediator.Destroy(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) setToken(c *gin.Context) {
	var req SetTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.mediator.SetToken(c.Request.Context(), req.Token); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrUnitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app.ErrEmptyToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
