package forum

import (
	"context"
	"errors"

	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/models"

	"go.uber.org/zap"
)

// ensureCommunity loads a community or materializes it from ledger truth.
// Returns (nil, nil) when the ledger has no record either: callers treat an
// untracked community as a recorded no-op target, never as an error.
func (e *Engine) ensureCommunity(ctx context.Context, st *status, id models.CommunityID) (*models.Community, error) {
	community, err := e.store.Community(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if community != nil {
		return community, nil
	}
	return e.materializeCommunity(ctx, st, id)
}

func (e *Engine) materializeCommunity(ctx context.Context, st *status, id models.CommunityID) (*models.Community, error) {
	truth, err := e.chain.GetCommunity(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if truth == nil {
		return nil, nil
	}

	community := &models.Community{
		ID:           id.String(),
		Network:      id.Network,
		LocalID:      id.ID,
		CreationTime: truth.CreationTime,
		IsFrozen:     truth.IsFrozen,
	}
	e.applyCommunityContent(ctx, st, community, truth.ContentHash)
	if err := e.store.SaveCommunity(ctx, community); err != nil {
		return nil, err
	}

	// Materialize the community's current tag set so tag-scoped counters
	// have a home from the first event on.
	tags, err := e.chain.GetTags(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	for _, truthTag := range tags {
		tagKey := models.TagID{Community: id, ID: truthTag.ID}.String()
		tag := &models.Tag{
			ID:          tagKey,
			CommunityID: id.String(),
			LocalID:     truthTag.ID,
		}
		if err := e.applyTag(ctx, st, tag, truthTag); err != nil {
			return nil, err
		}
		community.TagCount++
	}
	if community.TagCount > 0 {
		if err := e.store.SaveCommunity(ctx, community); err != nil {
			return nil, err
		}
	}
	return community, nil
}

func (e *Engine) applyCommunityContent(ctx context.Context, st *status, community *models.Community, contentHash string) {
	if contentHash == "" || contentHash == community.ContentHash {
		return
	}
	community.ContentHash = contentHash

	payload, err := e.resolver.Fetch(ctx, contentHash)
	if err != nil {
		st.unreachable = true
		if !errors.Is(err, content.ErrUnreachable) {
			e.logger.Warn("failed to resolve community content",
				zap.String("community_id", community.ID),
				zap.Error(err),
			)
		}
		return
	}

	parsed, err := content.ParseCommunityContent(payload)
	if err != nil {
		st.invalid = true
		community.Name = content.Unresolvable
		community.Description = content.Unresolvable
		return
	}
	community.Name = parsed.Name
	community.Description = parsed.Description
	community.Website = parsed.Website
	community.Language = parsed.Language
	community.Avatar = parsed.Avatar
}

func (e *Engine) HandleCommunityCreated(ctx context.Context, ev CommunityCreated) error {
	id := e.communityID(ev.CommunityID)
	return e.run(ctx, ev.TransactionInfo, "community-created", models.EntityCommunity, id.String(), func(ctx context.Context, st *status) error {
		community, err := e.ensureCommunity(ctx, st, id)
		if err != nil {
			return err
		}
		if community == nil {
			st.notFound = true
		}
		return nil
	})
}

func (e *Engine) HandleCommunityUpdated(ctx context.Context, ev CommunityUpdated) error {
	id := e.communityID(ev.CommunityID)
	return e.run(ctx, ev.TransactionInfo, "community-updated", models.EntityCommunity, id.String(), func(ctx context.Context, st *status) error {
		community, err := e.ensureCommunity(ctx, st, id)
		if err != nil {
			return err
		}
		if community == nil {
			st.notFound = true
			return nil
		}

		truth, err := e.chain.GetCommunity(ctx, id.ID)
		if err != nil {
			return err
		}
		if truth == nil {
			st.notFound = true
			return nil
		}

		community.IsFrozen = truth.IsFrozen
		e.applyCommunityContent(ctx, st, community, truth.ContentHash)
		return e.store.SaveCommunity(ctx, community)
	})
}

func (e *Engine) setCommunityFrozen(ctx context.Context, st *status, id models.CommunityID, frozen bool) error {
	community, err := e.ensureCommunity(ctx, st, id)
	if err != nil {
		return err
	}
	if community == nil {
		st.notFound = true
		return nil
	}
	if community.IsFrozen == frozen {
		st.skipped = true
		return nil
	}
	community.IsFrozen = frozen
	return e.store.SaveCommunity(ctx, community)
}

func (e *Engine) HandleCommunityFrozen(ctx context.Context, ev CommunityFrozen) error {
	id := e.communityID(ev.CommunityID)
	return e.run(ctx, ev.TransactionInfo, "community-frozen", models.EntityCommunity, id.String(), func(ctx context.Context, st *status) error {
		return e.setCommunityFrozen(ctx, st, id, true)
	})
}

func (e *Engine) HandleCommunityUnfrozen(ctx context.Context, ev CommunityUnfrozen) error {
	id := e.communityID(ev.CommunityID)
	return e.run(ctx, ev.TransactionInfo, "community-unfrozen", models.EntityCommunity, id.String(), func(ctx context.Context, st *status) error {
		return e.setCommunityFrozen(ctx, st, id, false)
	})
}
