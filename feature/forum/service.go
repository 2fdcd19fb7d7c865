package forum

import (
	"context"
	"sync"

	"forum-indexer/feature/forum/models"
	"forum-indexer/feature/forum/store"

	"go.uber.org/zap"
)

// Service fronts the engine with the event intake and the read surface over
// the derived model. Event processing is strictly one at a time: the intake
// mutex is the only lock in the system, it serializes callers so the engine
// itself can stay lock-free.
type Service struct {
	engine *Engine
	store  *store.Store
	logger *zap.Logger

	intake sync.Mutex
}

// NewService creates the forum service.
func NewService(engine *Engine, st *store.Store, logger *zap.Logger) *Service {
	return &Service{engine: engine, store: st, logger: logger}
}

// Ingest processes one event envelope. Envelopes must arrive in source
// order; concurrent callers are serialized.
func (s *Service) Ingest(ctx context.Context, env Envelope) error {
	s.intake.Lock()
	defer s.intake.Unlock()
	return s.engine.Dispatch(ctx, env)
}

func (s *Service) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.store.Post(ctx, id)
}

func (s *Service) GetPostReplies(ctx context.Context, id string) ([]models.Reply, error) {
	return s.store.RepliesByPost(ctx, id)
}

func (s *Service) GetCommunity(ctx context.Context, id string) (*models.Community, error) {
	return s.store.Community(ctx, id)
}

func (s *Service) GetCommunityPosts(ctx context.Context, id string) ([]models.Post, error) {
	return s.store.PostsByCommunity(ctx, id)
}

func (s *Service) GetUser(ctx context.Context, address string) (*models.User, error) {
	return s.store.User(ctx, address)
}

func (s *Service) GetTransactionHistory(ctx context.Context, txHash string) ([]models.HistoryEntry, error) {
	return s.store.HistoryByTransaction(ctx, txHash)
}

func (s *Service) GetEntityHistory(ctx context.Context, entityID string) ([]models.HistoryEntry, error) {
	return s.store.HistoryByEntity(ctx, entityID)
}
