package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"ica-price-tracker/config"
	"ica-price-tracker/search"
	"ica-price-tracker/utils"
)

// Server exposes the built product index over HTTP: a fuzzy search endpoint
// plus the static frontend. Handlers only read the immutable index, so no
// locking is needed anywhere in the request path.
type Server struct {
	cfg    *config.Config
	logger *utils.Logger
	index  *search.Index
}

// New creates a Server around an already-built index.
func New(cfg *config.Config, logger *utils.Logger, index *search.Index) *Server {
	return &Server{cfg: cfg, logger: logger, index: index}
}

// App builds the Fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New()
	app.Use(cors.New())

	app.Post("/search", s.handleSearch)
	app.Get("/healthz", s.handleHealth)
	app.Static("/", s.cfg.StaticDir)

	return app
}

// Listen builds the app and serves it on the configured address.
func (s *Server) Listen() error {
	s.logger.Info("[server] Listening on %s", s.cfg.ListenAddr)
	return s.App().Listen(s.cfg.ListenAddr)
}

type searchRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSearch(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	results := s.index.Search(req.Name)
	s.logger.Debug("[server] search %q → %d results", req.Name, len(results))
	return c.JSON(results)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "products": s.index.Len()})
}
