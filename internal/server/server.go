package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/wernerjr/gpstracker/internal/config"
	"github.com/wernerjr/gpstracker/internal/store"
	"github.com/wernerjr/gpstracker/internal/stream"
	"github.com/wernerjr/gpstracker/internal/syncer"
	"github.com/wernerjr/gpstracker/internal/tracking"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Store   *store.Store
	Stream  *stream.Hub
	Tracker *tracking.Controller
	Engine  *syncer.Engine
}

// NewServer wires the single shared store into both the tracking controller
// and the sync engine. src is the platform position adapter; it may be nil
// when fixes arrive through the ingestion route instead.
func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, src tracking.Source) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	st := store.NewStore(db)
	hub := stream.NewHub(redisClient)

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      db,
		Redis:   redisClient,
		Store:   st,
		Stream:  hub,
		Tracker: tracking.NewController(st, hub, src, cfg),
		Engine:  syncer.NewEngine(st, syncer.NewHTTPRemote(cfg.RemoteSyncURL), cfg),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	tracking.RegisterRoutes(s.App.Group("/tracking"), s.Tracker)
	syncer.RegisterRoutes(s.App, s.Engine, s.Store, s.Cfg.PageSize)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
