package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"

	"github.com/Rana718/tablekeep/internal/metrics"
	"github.com/Rana718/tablekeep/internal/tables"
)

type Server struct {
	app     *fiber.App
	store   *tables.Store
	service *Service
	logger  *slog.Logger
	port    int
}

// NewServer builds the studio API around store. rec may be nil, in which
// case /metrics is not served.
func NewServer(store *tables.Store, rec *metrics.Recorder, logger *slog.Logger, port int) (*Server, error) {
	if store == nil {
		return nil, tables.ErrNoStore
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "tablekeep studio",
		DisableStartupMessage: true,
	})

	server := &Server{
		app:     app,
		store:   store,
		service: NewService(store),
		logger:  logger,
		port:    port,
	}

	server.setupRoutes(rec)
	return server, nil
}

// App exposes the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) setupRoutes(rec *metrics.Recorder) {
	s.app.Use(s.requestID)

	if rec != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(rec.Handler()))
	}

	api := s.app.Group("/api")
	api.Get("/tables", s.handleGetTables)
	api.Post("/tables", s.handleCreateTables)
	api.Put("/tables", s.handleRenameTables)
	api.Delete("/tables", s.handleDeleteTables)
	api.Get("/tables/:name", s.handleGetTable)
	api.Put("/active", s.handleSelect)

	api.Post("/tables/:name/columns", s.handleAddColumns)
	api.Put("/tables/:name/columns", s.handleRenameColumns)
	api.Delete("/tables/:name/columns", s.handleDeleteColumns)

	api.Post("/tables/:name/rows", s.handleAddRow)
	api.Put("/tables/:name/rows/:index", s.handleEditRow)
	api.Delete("/tables/:name/rows/:index", s.handleDeleteRow)

	api.Get("/stats", s.handleGetStats)
	api.Get("/export", s.handleExport)
}

func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, id)
	c.Locals("request_id", id)

	start := time.Now()
	err := c.Next()
	s.logger.Debug("request",
		"id", id,
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"took", time.Since(start),
	)
	return err
}

// fail maps store errors to HTTP responses.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	if v, ok := tables.IsValidation(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(Response{
			Success: false,
			Kind:    v.Kind,
			Message: v.Message,
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, tables.ErrUnknownTable):
		status = fiber.StatusNotFound
	case errors.Is(err, tables.ErrRowOutOfRange):
		status = fiber.StatusConflict
	default:
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(Response{
		Success: false,
		Message: err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Response{
		Success: false,
		Message: message,
	})
}

func (s *Server) Start(openBrowser bool) error {
	url := fmt.Sprintf("http://localhost:%d", s.port)

	fmt.Printf("🚀 tablekeep studio starting on %s\n", url)

	if openBrowser {
		go s.openBrowser(url)
	}

	return s.app.Listen(fmt.Sprintf(":%d", s.port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	case "darwin":
		cmd = "open"
		args = []string{url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		s.logger.Debug("could not open browser", "error", err)
	}
}
