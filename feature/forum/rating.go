package forum

import (
	"context"
	"strings"

	"forum-indexer/feature/forum/models"
)

// refreshRating re-derives the cached rating of a (user, community) pair from
// the authoritative accessor. The ledger's rating formula is not guaranteed
// linear, so the cache is never adjusted incrementally. A pair with no
// authoritative record yet gets the configured starting rating.
//
// Users banned in the community are skipped: their counters and rating cache
// must not be touched again by cascades.
func (e *Engine) refreshRating(ctx context.Context, address string, community models.CommunityID) error {
	address = strings.ToLower(address)
	if address == "" {
		return nil
	}

	ban, err := e.store.Ban(ctx, models.BanKey(community, address))
	if err != nil {
		return err
	}
	if ban != nil {
		return nil
	}

	truth, err := e.chain.GetUserRating(ctx, address, community.ID)
	if err != nil {
		return err
	}

	rating := e.cfg.StartingRating
	if truth != nil {
		rating = *truth
	}

	key := models.RatingKey(community, address)
	record, err := e.store.Rating(ctx, key)
	if err != nil {
		return err
	}
	if record == nil {
		record = &models.UserCommunityRating{
			ID:          key,
			CommunityID: community.String(),
			UserID:      address,
		}
	}
	record.Rating = rating

	return e.store.SaveRating(ctx, record)
}

// maybeRefreshRating is the policy gate in front of refreshRating. Every
// lifecycle transition goes through here with its policy flag, keeping a
// single authoritative refresh site per transition.
func (e *Engine) maybeRefreshRating(ctx context.Context, enabled bool, address string, community models.CommunityID) error {
	if !enabled {
		return nil
	}
	return e.refreshRating(ctx, address, community)
}
