package forum

import (
	"context"

	"forum-indexer/feature/forum/models"
)

// Counter maintenance. Every logical transition has exactly one helper and
// every helper has exactly one call site per transition, so a counter can
// never be adjusted twice for the same transition by two different handlers.
// Handlers materialize the parent before adjusting; a still-missing parent
// means the ledger does not know it either, and the adjustment is a no-op.

func (e *Engine) adjustCommunity(ctx context.Context, communityKey string, fn func(*models.Community)) error {
	if communityKey == "" {
		return nil
	}
	community, err := e.store.Community(ctx, communityKey)
	if err != nil || community == nil {
		return err
	}
	fn(community)
	return e.store.SaveCommunity(ctx, community)
}

func (e *Engine) adjustTag(ctx context.Context, tagKey string, fn func(*models.Tag)) error {
	tag, err := e.store.Tag(ctx, tagKey)
	if err != nil || tag == nil {
		return err
	}
	fn(tag)
	return e.store.SaveTag(ctx, tag)
}

func (e *Engine) adjustUser(ctx context.Context, address string, fn func(*models.User)) error {
	user, err := e.store.User(ctx, address)
	if err != nil || user == nil {
		return err
	}
	fn(user)
	return e.store.SaveUser(ctx, user)
}

// communityPostEntered: a post entered the community's books, on creation,
// lazy materialization or a move between communities. A live post brings its
// live top-level replies with it.
func (e *Engine) communityPostEntered(ctx context.Context, communityKey string, deleted bool, liveReplies int) error {
	return e.adjustCommunity(ctx, communityKey, func(c *models.Community) {
		if deleted {
			c.DeletedPostCount++
			return
		}
		c.PostCount++
		c.ReplyCount += liveReplies
	})
}

// communityPostLeft: a post left the community's books (moved to another
// community), taking its live top-level replies with it.
func (e *Engine) communityPostLeft(ctx context.Context, communityKey string, deleted bool, liveReplies int) error {
	return e.adjustCommunity(ctx, communityKey, func(c *models.Community) {
		if deleted {
			c.DeletedPostCount--
			return
		}
		c.PostCount--
		c.ReplyCount -= liveReplies
	})
}

// communityPostDeleted: a live post was soft-deleted together with its
// liveReplies live top-level replies.
func (e *Engine) communityPostDeleted(ctx context.Context, communityKey string, liveReplies int) error {
	return e.adjustCommunity(ctx, communityKey, func(c *models.Community) {
		c.PostCount--
		c.DeletedPostCount++
		c.ReplyCount -= liveReplies
	})
}

// communityPostRestored: a soft-deleted post was restored. Children stay
// deleted, so no reply count change.
func (e *Engine) communityPostRestored(ctx context.Context, communityKey string) error {
	return e.adjustCommunity(ctx, communityKey, func(c *models.Community) {
		c.PostCount++
		c.DeletedPostCount--
	})
}

func (e *Engine) communityReplyAdded(ctx context.Context, communityKey string) error {
	return e.adjustCommunity(ctx, communityKey, func(c *models.Community) {
		c.ReplyCount++
	})
}

func (e *Engine) communityReplyRemoved(ctx context.Context, communityKey string) error {
	return e.adjustCommunity(ctx, communityKey, func(c *models.Community) {
		c.ReplyCount--
	})
}

func (e *Engine) communityTagAdded(ctx context.Context, communityKey string) error {
	return e.adjustCommunity(ctx, communityKey, func(c *models.Community) {
		c.TagCount++
	})
}

func (e *Engine) communityFollowerAdded(ctx context.Context, communityKey string) error {
	return e.adjustCommunity(ctx, communityKey, func(c *models.Community) {
		c.FollowerCount++
	})
}

func (e *Engine) communityFollowerRemoved(ctx context.Context, communityKey string) error {
	return e.adjustCommunity(ctx, communityKey, func(c *models.Community) {
		c.FollowerCount--
	})
}

// tagPostEntered / tagPostLeft: tag-set membership transitions of a member
// post. A deleted member is tracked on the tag's deleted books.
func (e *Engine) tagPostEntered(ctx context.Context, tagKey string, deleted bool) error {
	return e.adjustTag(ctx, tagKey, func(t *models.Tag) {
		if deleted {
			t.DeletedPostCount++
			return
		}
		t.PostCount++
	})
}

func (e *Engine) tagPostLeft(ctx context.Context, tagKey string, deleted bool) error {
	return e.adjustTag(ctx, tagKey, func(t *models.Tag) {
		if deleted {
			t.DeletedPostCount--
			return
		}
		t.PostCount--
	})
}

// tagPostDeleted / tagPostRestored: soft-delete transitions of a member post.
func (e *Engine) tagPostDeleted(ctx context.Context, tagKey string) error {
	return e.adjustTag(ctx, tagKey, func(t *models.Tag) {
		t.PostCount--
		t.DeletedPostCount++
	})
}

func (e *Engine) tagPostRestored(ctx context.Context, tagKey string) error {
	return e.adjustTag(ctx, tagKey, func(t *models.Tag) {
		t.PostCount++
		t.DeletedPostCount--
	})
}

func (e *Engine) userPostAdded(ctx context.Context, address string) error {
	return e.adjustUser(ctx, address, func(u *models.User) {
		u.PostCount++
	})
}

func (e *Engine) userPostRemoved(ctx context.Context, address string) error {
	return e.adjustUser(ctx, address, func(u *models.User) {
		u.PostCount--
	})
}

func (e *Engine) userReplyAdded(ctx context.Context, address string) error {
	return e.adjustUser(ctx, address, func(u *models.User) {
		u.ReplyCount++
	})
}

func (e *Engine) userReplyRemoved(ctx context.Context, address string) error {
	return e.adjustUser(ctx, address, func(u *models.User) {
		u.ReplyCount--
	})
}

func (e *Engine) userCommentAdded(ctx context.Context, address string) error {
	return e.adjustUser(ctx, address, func(u *models.User) {
		u.CommentCount++
	})
}

func (e *Engine) userCommentRemoved(ctx context.Context, address string) error {
	return e.adjustUser(ctx, address, func(u *models.User) {
		u.CommentCount--
	})
}

// liveTopLevelReplies counts the non-deleted top-level replies of a post.
func (e *Engine) liveTopLevelReplies(ctx context.Context, postKey string) (int, error) {
	replies, err := e.store.RepliesByPost(ctx, postKey)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, r := range replies {
		if !r.IsDeleted && r.ParentReplyID == 0 {
			count++
		}
	}
	return count, nil
}
