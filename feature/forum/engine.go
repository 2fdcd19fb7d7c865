package forum

import (
	"context"
	"fmt"

	"forum-indexer/core/metrics"
	"forum-indexer/feature/forum/chain"
	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/models"
	"forum-indexer/feature/forum/store"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Outcome classifies how an event was processed. It is recorded on the audit
// trail and exported as a metric label; it never drives control flow.
type Outcome string

const (
	// OutcomeSuccess: the event was fully applied.
	OutcomeSuccess Outcome = "success"
	// OutcomeNotFound: the authoritative read reported the target absent;
	// the event is a recorded no-op.
	OutcomeNotFound Outcome = "not-found"
	// OutcomeSkipped: the event required no transition (e.g. deleting an
	// already-deleted entity).
	OutcomeSkipped Outcome = "skipped"
	// OutcomeContentUnreachable: the entity was applied but a content
	// payload exhausted its retry budget; dependent fields kept their
	// previous values.
	OutcomeContentUnreachable Outcome = "content-unreachable"
	// OutcomeContentInvalid: the entity was applied but a resolved payload
	// had an unexpected shape; display fields carry the sentinel.
	OutcomeContentInvalid Outcome = "content-invalid"
	// OutcomeError: a store or accessor failure; surfaced to the caller.
	OutcomeError Outcome = "error"
)

// Engine is the materialization engine. It is driven strictly one event at a
// time by a single worker; there is no internal locking.
type Engine struct {
	store    *store.Store
	chain    chain.Client
	resolver *content.Resolver
	logger   *zap.Logger
	cfg      Config
}

// NewEngine assembles the engine from its collaborators.
func NewEngine(st *store.Store, ch chain.Client, resolver *content.Resolver, logger *zap.Logger, cfg Config) *Engine {
	return &Engine{
		store:    st,
		chain:    ch,
		resolver: resolver,
		logger:   logger,
		cfg:      cfg,
	}
}

func (e *Engine) communityID(local int64) models.CommunityID {
	return models.CommunityID{Network: e.cfg.Network, ID: local}
}

func (e *Engine) postID(local int64) models.PostID {
	return models.PostID{Network: e.cfg.Network, ID: local}
}

// status accumulates content degradation across one handler run so a single
// outcome can be reported even when several payloads are touched.
type status struct {
	unreachable bool
	invalid     bool
	notFound    bool
	skipped     bool
}

func (s *status) outcome() Outcome {
	switch {
	case s.notFound:
		return OutcomeNotFound
	case s.skipped:
		return OutcomeSkipped
	case s.unreachable:
		return OutcomeContentUnreachable
	case s.invalid:
		return OutcomeContentInvalid
	default:
		return OutcomeSuccess
	}
}

// run executes one event handler, then records exactly one audit entry and
// the per-event metrics. Handler errors are store/accessor failures; all
// content and not-found conditions are outcomes, not errors.
func (e *Engine) run(ctx context.Context, tx TransactionInfo, event, entityType, entityID string, fn func(context.Context, *status) error) error {
	timer := prometheus.NewTimer(metrics.EventDuration.WithLabelValues(event))
	st := &status{}
	err := fn(ctx, st)
	timer.ObserveDuration()

	outcome := st.outcome()
	if err != nil {
		outcome = OutcomeError
	}
	metrics.EventsTotal.WithLabelValues(event, string(outcome)).Inc()

	entry := &models.HistoryEntry{
		ID:              fmt.Sprintf("%s-%s-%s", tx.Hash, event, entityID),
		TransactionHash: tx.Hash,
		EventName:       event,
		Actor:           tx.Actor,
		EntityType:      entityType,
		EntityID:        entityID,
		Timestamp:       tx.Timestamp,
		Outcome:         string(outcome),
	}
	if err != nil {
		entry.Note = err.Error()
	}
	if auditErr := e.store.SaveHistory(ctx, entry); auditErr != nil {
		e.logger.Error("failed to record audit entry",
			zap.String("event", event),
			zap.String("entity_id", entityID),
			zap.Error(auditErr),
		)
	}

	log := e.logger.With(
		zap.String("event", event),
		zap.String("entity_id", entityID),
		zap.String("tx", tx.Hash),
		zap.String("outcome", string(outcome)),
	)
	if err != nil {
		log.Error("event processing failed", zap.Error(err))
		return err
	}
	log.Debug("event processed")
	return nil
}
