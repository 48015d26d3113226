package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	server *http.Server
	log    *zap.Logger
}

// NewRouter роутер API с восстановлением после паники и логированием запросов
func NewRouter(h *Handler, log *zap.Logger) http.Handler {
	router := httprouter.New()
	h.RegisterRoutes(router)

	var handler http.Handler = router
	handler = RequestLogging(log)(handler)
	handler = Recovery(log)(handler)
	return handler
}

func NewServer(addr string, h *Handler, log *zap.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      NewRouter(h, log),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// Run слушает до отмены ctx, затем останавливает сервер
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", zap.String("address", s.server.Addr))
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown failed", zap.Error(err))
		return s.server.Close()
	}

	s.log.Info("HTTP server stopped")
	return nil
}
