package forum

import (
	"context"
	"errors"
	"strings"

	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/models"
)

// ensureAchievement loads an achievement configuration or materializes it
// from ledger truth, resolving its metadata payload.
func (e *Engine) ensureAchievement(ctx context.Context, st *status, localID int64) (*models.Achievement, error) {
	key := models.AchievementKey(e.cfg.Network, localID)
	achievement, err := e.store.Achievement(ctx, key)
	if err != nil {
		return nil, err
	}
	if achievement != nil {
		return achievement, nil
	}

	truth, err := e.chain.GetAchievement(ctx, localID)
	if err != nil {
		return nil, err
	}
	if truth == nil {
		return nil, nil
	}

	achievement = &models.Achievement{
		ID:              key,
		LocalID:         localID,
		FactCount:       truth.FactCount,
		MaxCount:        truth.MaxCount,
		AchievementURI:  truth.AchievementURI,
		AchievementType: truth.AchievementType,
	}
	if truth.CommunityID != 0 {
		achievement.CommunityID = e.communityID(truth.CommunityID).String()
	}

	if truth.AchievementURI != "" {
		payload, err := e.resolver.Fetch(ctx, truth.AchievementURI)
		switch {
		case errors.Is(err, content.ErrUnreachable):
			st.unreachable = true
		case err != nil:
			return nil, err
		default:
			parsed, perr := content.ParseAchievementContent(payload)
			if perr != nil {
				st.invalid = true
				achievement.Name = content.Unresolvable
				achievement.Description = content.Unresolvable
			} else {
				achievement.Name = parsed.Name
				achievement.Description = parsed.Description
				achievement.Image = parsed.Image
			}
		}
	}

	if err := e.store.SaveAchievement(ctx, achievement); err != nil {
		return nil, err
	}
	return achievement, nil
}

func (e *Engine) HandleAchievementCreated(ctx context.Context, ev AchievementCreated) error {
	key := models.AchievementKey(e.cfg.Network, ev.AchievementID)
	return e.run(ctx, ev.TransactionInfo, "achievement-created", models.EntityAchievement, key, func(ctx context.Context, st *status) error {
		achievement, err := e.ensureAchievement(ctx, st, ev.AchievementID)
		if err != nil {
			return err
		}
		if achievement == nil {
			st.notFound = true
		}
		return nil
	})
}

// HandleAchievementAwarded appends the achievement to the user's collection
// and advances the minted count. Re-awarding the same achievement is a
// recorded no-op.
func (e *Engine) HandleAchievementAwarded(ctx context.Context, ev AchievementAwarded) error {
	address := strings.ToLower(ev.Address)
	key := models.AchievementKey(e.cfg.Network, ev.AchievementID)
	return e.run(ctx, ev.TransactionInfo, "achievement-awarded", models.EntityAchievement, key, func(ctx context.Context, st *status) error {
		achievement, err := e.ensureAchievement(ctx, st, ev.AchievementID)
		if err != nil {
			return err
		}
		if achievement == nil {
			st.notFound = true
			return nil
		}

		user, err := e.ensureUser(ctx, st, address, ev.Timestamp)
		if err != nil {
			return err
		}
		for _, awarded := range user.Achievements {
			if awarded == key {
				st.skipped = true
				return nil
			}
		}

		user.Achievements = append(user.Achievements, key)
		if err := e.store.SaveUser(ctx, user); err != nil {
			return err
		}

		achievement.FactCount++
		return e.store.SaveAchievement(ctx, achievement)
	})
}
