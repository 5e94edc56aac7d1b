// Package httpapi serves the message routes over plain HTTP with gin, for
// running the store outside Lambda.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"message-store/handler"
	"message-store/internal/domain"
	"message-store/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type Server struct {
	uc     handler.MessageUseCase
	log    *slog.Logger
	engine *gin.Engine
}

func New(uc handler.MessageUseCase, log *slog.Logger) (*Server, error) {
	if uc == nil {
		return nil, errors.New("httpapi: use case must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Server{uc: uc, log: log, engine: gin.New()}
	s.engine.HandleMethodNotAllowed = true
	s.engine.Use(gin.Recovery(), s.correlate)
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.ErrorResponse{Error: "NOT_FOUND", Message: "route not found"})
	})
	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handler.ErrorResponse{Error: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	messages := s.engine.Group("/messages")
	messages.GET("", s.list)
	messages.POST("", s.add)
	messages.GET("/:id", s.get)
	messages.PUT("/:id", s.update)
	messages.DELETE("/:id", s.remove)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) correlate(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(correlationHeader))
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(correlationHeader, id)
	c.Next()
	s.log.Info("request handled",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"correlation_id", id,
	)
}

func (s *Server) list(c *gin.Context) {
	msgs, err := s.uc.ListMessages(c.Request.Context())
	s.respond(c, http.StatusOK, msgs, err)
}

func (s *Server) get(c *gin.Context) {
	msg, err := s.uc.GetMessage(c.Request.Context(), c.Param("id"))
	s.respond(c, http.StatusOK, msg, err)
}

func (s *Server) add(c *gin.Context) {
	var payload domain.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badBody(c)
		return
	}
	msg, err := s.uc.AddMessage(c.Request.Context(), payload)
	s.respond(c, http.StatusCreated, msg, err)
}

func (s *Server) update(c *gin.Context) {
	var payload domain.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badBody(c)
		return
	}
	msg, err := s.uc.UpdateMessage(c.Request.Context(), c.Param("id"), payload)
	s.respond(c, http.StatusOK, msg, err)
}

func (s *Server) remove(c *gin.Context) {
	msg, err := s.uc.DeleteMessage(c.Request.Context(), c.Param("id"))
	s.respond(c, http.StatusOK, msg, err)
}

func (s *Server) respond(c *gin.Context, status int, v any, err error) {
	if err != nil {
		code, body := handler.StatusFor(err)
		c.JSON(code, body)
		return
	}
	c.JSON(status, v)
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, handler.ErrorResponse{Error: string(usecase.ErrorInvalidArgument), Message: "invalid request body"})
}
