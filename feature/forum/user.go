package forum

import (
	"context"
	"errors"
	"strings"

	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/models"

	"go.uber.org/zap"
)

// ensureUser loads a user or materializes it from ledger truth. Any event may
// reference an address the model has not seen, so absence is never fatal; a
// user whose authoritative read reports absent is still created with the
// event timestamp so later counters have a home.
func (e *Engine) ensureUser(ctx context.Context, st *status, address string, eventTime int64) (*models.User, error) {
	address = strings.ToLower(address)
	user, err := e.store.User(ctx, address)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &models.User{ID: address, CreationTime: eventTime}

	truth, err := e.chain.GetUserByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if truth != nil {
		user.CreationTime = truth.CreationTime
		e.applyUserProfile(ctx, st, user, truth.ContentHash)
	}

	if err := e.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// applyUserProfile resolves and applies the user's profile payload. Content
// trouble degrades the profile fields, never the user record itself.
func (e *Engine) applyUserProfile(ctx context.Context, st *status, user *models.User, contentHash string) {
	if contentHash == "" || contentHash == user.ContentHash {
		return
	}
	user.ContentHash = contentHash

	payload, err := e.resolver.Fetch(ctx, contentHash)
	if errors.Is(err, content.ErrUnreachable) {
		st.unreachable = true
		return
	}
	if err != nil {
		st.unreachable = true
		e.logger.Warn("failed to resolve user profile",
			zap.String("address", user.ID),
			zap.Error(err),
		)
		return
	}

	profile, err := content.ParseUserProfile(payload)
	if err != nil {
		st.invalid = true
		user.DisplayName = content.Unresolvable
		return
	}
	user.DisplayName = profile.DisplayName
	user.Company = profile.Company
	user.Position = profile.Position
	user.Location = profile.Location
	user.About = profile.About
	user.Avatar = profile.Avatar
}

func (e *Engine) HandleUserCreated(ctx context.Context, ev UserCreated) error {
	address := strings.ToLower(ev.Address)
	return e.run(ctx, ev.TransactionInfo, "user-created", models.EntityUser, address, func(ctx context.Context, st *status) error {
		_, err := e.ensureUser(ctx, st, address, ev.Timestamp)
		return err
	})
}

func (e *Engine) HandleUserUpdated(ctx context.Context, ev UserUpdated) error {
	address := strings.ToLower(ev.Address)
	return e.run(ctx, ev.TransactionInfo, "user-updated", models.EntityUser, address, func(ctx context.Context, st *status) error {
		user, err := e.ensureUser(ctx, st, address, ev.Timestamp)
		if err != nil {
			return err
		}

		truth, err := e.chain.GetUserByAddress(ctx, address)
		if err != nil {
			return err
		}
		if truth == nil {
			st.notFound = true
			return nil
		}

		user.CreationTime = truth.CreationTime
		e.applyUserProfile(ctx, st, user, truth.ContentHash)
		return e.store.SaveUser(ctx, user)
	})
}

func (e *Engine) HandleCommunityFollowed(ctx context.Context, ev CommunityFollowed) error {
	address := strings.ToLower(ev.Address)
	communityKey := e.communityID(ev.CommunityID).String()
	return e.run(ctx, ev.TransactionInfo, "community-followed", models.EntityUser, address, func(ctx context.Context, st *status) error {
		// The community must exist on the books before its follower
		// counter can move; materializeCommunity cannot derive the
		// counter later, the ledger record does not carry it.
		community, err := e.ensureCommunity(ctx, st, e.communityID(ev.CommunityID))
		if err != nil {
			return err
		}
		if community == nil {
			st.notFound = true
			return nil
		}
		user, err := e.ensureUser(ctx, st, address, ev.Timestamp)
		if err != nil {
			return err
		}
		for _, key := range user.FollowedCommunities {
			if key == communityKey {
				st.skipped = true
				return nil
			}
		}
		user.FollowedCommunities = append(user.FollowedCommunities, communityKey)
		if err := e.store.SaveUser(ctx, user); err != nil {
			return err
		}
		return e.communityFollowerAdded(ctx, communityKey)
	})
}

func (e *Engine) HandleCommunityUnfollowed(ctx context.Context, ev CommunityUnfollowed) error {
	address := strings.ToLower(ev.Address)
	communityKey := e.communityID(ev.CommunityID).String()
	return e.run(ctx, ev.TransactionInfo, "community-unfollowed", models.EntityUser, address, func(ctx context.Context, st *status) error {
		community, err := e.ensureCommunity(ctx, st, e.communityID(ev.CommunityID))
		if err != nil {
			return err
		}
		if community == nil {
			st.notFound = true
			return nil
		}
		user, err := e.ensureUser(ctx, st, address, ev.Timestamp)
		if err != nil {
			return err
		}
		index := -1
		for i, key := range user.FollowedCommunities {
			if key == communityKey {
				index = i
				break
			}
		}
		if index < 0 {
			st.skipped = true
			return nil
		}
		user.FollowedCommunities = append(user.FollowedCommunities[:index], user.FollowedCommunities[index+1:]...)
		if err := e.store.SaveUser(ctx, user); err != nil {
			return err
		}
		return e.communityFollowerRemoved(ctx, communityKey)
	})
}
