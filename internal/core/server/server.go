package server

import (
	"context"
	"fmt"
	"time"

	"astro-checkout/internal/core/config"
	"astro-checkout/internal/core/logger"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "astro-checkout/docs/swagger"
)

// shutdownTimeout bounds how long in-flight requests may run after Run's context ends.
const shutdownTimeout = 10 * time.Second

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg *config.AppConfig
}

// Registrar is implemented by every feature handler.
type Registrar interface {
	Register(r fiber.Router)
}

// New creates a new Server instance with configured middleware.
func New(cfg *config.AppConfig) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "astro-checkout",
	})

	app.Use(requestid.New(requestid.Config{
		Header: "X-Ray-ID",
	}))

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	return &Server{
		App: app,
		cfg: cfg,
	}
}

// Mount registers the routes of each handler on the app.
func (s *Server) Mount(handlers ...Registrar) {
	for _, h := range handlers {
		h.Register(s.App)
	}
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
// It returns the listen error, if any, or the shutdown error.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Get().Info("Starting server", zap.String("address", addr))
		return s.App.Listen(addr)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Get().Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.App.ShutdownWithContext(shutdownCtx)
	})

	return g.Wait()
}
