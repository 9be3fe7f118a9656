// Package http настраивает маршруты, middleware и запускает HTTP-сервер.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	handlers "github.com/aseptimu/call-logger/internal/app/handlers/http"
	"github.com/aseptimu/call-logger/internal/app/interceptor"
	"github.com/aseptimu/call-logger/internal/app/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	srv    *http.Server
	logger *zap.SugaredLogger
}

// NewServer собирает gin.Engine: сначала AuthMiddleware определяет вызывающего,
// затем CallLogger логирует каждый вызов обработчика.
func NewServer(addr string, secretKey string, ic *interceptor.Interceptor, logger *zap.SugaredLogger, h handlers.Handlers) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	logger.Debug("Setting up middleware")
	r.Use(gin.Recovery(), middleware.AuthMiddleware(secretKey, logger), middleware.CallLogger(ic))
	h.RegisterRoutes(r)

	return &Server{
		srv:    &http.Server{Addr: addr, Handler: r},
		logger: logger,
	}
}

// Handler возвращает корневой http.Handler сервера.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run запускает сервер и останавливает его после отмены ctx.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Infow("Initializing server", "address", s.srv.Addr)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		s.logger.Infow("Shutting down HTTP server", "address", s.srv.Addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorw("Error shutting down server", "error", err)
		}
	}()

	s.logger.Infow("Starting HTTP server", "addr", s.srv.Addr)
	err := s.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	wg.Wait()
	return nil
}
