package forum

import (
	"context"
	"strings"

	"forum-indexer/feature/forum/models"
)

// HandleUserBanned records a (community, user) ban. While the ban exists,
// rating refreshes for the pair are suppressed so cascade deletions over the
// banned user's content cannot touch the rating cache again.
func (e *Engine) HandleUserBanned(ctx context.Context, ev UserBanned) error {
	address := strings.ToLower(ev.Address)
	community := e.communityID(ev.CommunityID)
	key := models.BanKey(community, address)
	return e.run(ctx, ev.TransactionInfo, "user-banned", models.EntityBan, key, func(ctx context.Context, st *status) error {
		if _, err := e.ensureUser(ctx, st, address, ev.Timestamp); err != nil {
			return err
		}

		existing, err := e.store.Ban(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			st.skipped = true
			return nil
		}
		return e.store.SaveBan(ctx, &models.UserCommunityBan{
			ID:          key,
			CommunityID: community.String(),
			UserID:      address,
		})
	})
}

// HandleUserUnbanned lifts a ban and immediately re-derives the pair's rating
// from ledger truth.
func (e *Engine) HandleUserUnbanned(ctx context.Context, ev UserUnbanned) error {
	address := strings.ToLower(ev.Address)
	community := e.communityID(ev.CommunityID)
	key := models.BanKey(community, address)
	return e.run(ctx, ev.TransactionInfo, "user-unbanned", models.EntityBan, key, func(ctx context.Context, st *status) error {
		existing, err := e.store.Ban(ctx, key)
		if err != nil {
			return err
		}
		if existing == nil {
			st.skipped = true
			return nil
		}
		if err := e.store.RemoveBan(ctx, key); err != nil {
			return err
		}
		return e.refreshRating(ctx, address, community)
	})
}
