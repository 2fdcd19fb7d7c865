package forum

import (
	"context"
	"errors"

	"forum-indexer/feature/forum/chain"
	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/models"
)

// ensureTag loads a tag or materializes it from ledger truth, adjusting the
// owning community's tag count when the tag is new. Returns (nil, nil) when
// neither the store nor the ledger knows the tag.
func (e *Engine) ensureTag(ctx context.Context, st *status, id models.TagID) (*models.Tag, error) {
	tag, err := e.store.Tag(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if tag != nil {
		return tag, nil
	}

	truth, err := e.chain.GetTag(ctx, id.Community.ID, id.ID)
	if err != nil {
		return nil, err
	}
	if truth == nil {
		return nil, nil
	}

	tag = &models.Tag{
		ID:          id.String(),
		CommunityID: id.Community.String(),
		LocalID:     id.ID,
	}
	if err := e.applyTag(ctx, st, tag, *truth); err != nil {
		return nil, err
	}
	if err := e.communityTagAdded(ctx, id.Community.String()); err != nil {
		return nil, err
	}
	return tag, nil
}

// applyTag copies ledger truth onto the tag, resolves its metadata payload
// and reconciles its translation children, then persists it.
func (e *Engine) applyTag(ctx context.Context, st *status, tag *models.Tag, truth chain.Tag) error {
	if truth.ContentHash != "" && truth.ContentHash != tag.ContentHash {
		tag.ContentHash = truth.ContentHash

		payload, err := e.resolver.Fetch(ctx, truth.ContentHash)
		switch {
		case errors.Is(err, content.ErrUnreachable):
			st.unreachable = true
		case err != nil:
			return err
		default:
			parsed, perr := content.ParseTagContent(payload)
			if perr != nil {
				st.invalid = true
				tag.Name = content.Unresolvable
				tag.Description = content.Unresolvable
			} else {
				tag.Name = parsed.Name
				tag.Description = parsed.Description
			}
		}
	}

	if err := e.store.SaveTag(ctx, tag); err != nil {
		return err
	}
	return e.reconcileTranslations(ctx, st, models.EntityTag, tag.ID, truth.Translations)
}

func (e *Engine) HandleTagCreated(ctx context.Context, ev TagCreated) error {
	id := models.TagID{Community: e.communityID(ev.CommunityID), ID: ev.TagID}
	return e.run(ctx, ev.TransactionInfo, "tag-created", models.EntityTag, id.String(), func(ctx context.Context, st *status) error {
		if _, err := e.ensureCommunity(ctx, st, id.Community); err != nil {
			return err
		}
		tag, err := e.ensureTag(ctx, st, id)
		if err != nil {
			return err
		}
		if tag == nil {
			st.notFound = true
		}
		return nil
	})
}

func (e *Engine) HandleTagUpdated(ctx context.Context, ev TagUpdated) error {
	id := models.TagID{Community: e.communityID(ev.CommunityID), ID: ev.TagID}
	return e.run(ctx, ev.TransactionInfo, "tag-updated", models.EntityTag, id.String(), func(ctx context.Context, st *status) error {
		tag, err := e.ensureTag(ctx, st, id)
		if err != nil {
			return err
		}
		if tag == nil {
			st.notFound = true
			return nil
		}

		truth, err := e.chain.GetTag(ctx, id.Community.ID, id.ID)
		if err != nil {
			return err
		}
		if truth == nil {
			st.notFound = true
			return nil
		}
		return e.applyTag(ctx, st, tag, *truth)
	})
}
