package forum

import (
	"forum-indexer/feature/forum/chain"
	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	cfg     Config
}

// NewFeature assembles the forum feature: store, engine, service and HTTP
// handler.
func NewFeature(db *gorm.DB, ch chain.Client, resolver *content.Resolver, logger *zap.Logger, cfg Config) *Feature {
	st := store.New(db)
	engine := NewEngine(st, ch, resolver, logger, cfg)
	svc := NewService(engine, st, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h, cfg: cfg}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "forum"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.cfg.Enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the assembled service for non-HTTP drivers such as the
// replay command.
func (f *Feature) Service() *Service {
	return f.service
}
