package forum

import (
	"context"

	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/models"
)

// ensureReply loads a reply or materializes it from ledger truth under its
// (lazily materialized) parent post. Returns (nil, nil) when neither side
// knows it.
func (e *Engine) ensureReply(ctx context.Context, st *status, id models.ReplyID) (*models.Reply, error) {
	reply, err := e.store.Reply(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if reply != nil {
		return reply, nil
	}

	post, err := e.ensurePost(ctx, st, id.Post)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}

	truth, err := e.chain.GetReply(ctx, id.Post.ID, id.ID)
	if err != nil {
		return nil, err
	}
	if truth == nil {
		return nil, nil
	}

	author, err := e.ensureUser(ctx, st, truth.Author, truth.PostTime)
	if err != nil {
		return nil, err
	}

	reply = &models.Reply{
		ID:              id.String(),
		PostID:          id.Post.String(),
		LocalID:         id.ID,
		ParentReplyID:   truth.ParentReplyID,
		Author:          author.ID,
		Rating:          truth.Rating,
		PostTime:        truth.PostTime,
		CommentCount:    truth.CommentCount,
		IsDeleted:       truth.IsDeleted,
		IsFirstReply:    truth.IsFirstReply,
		IsQuickReply:    truth.IsQuickReply,
		IsOfficialReply: post.OfficialReply == id.ID,
		IsBestReply:     post.BestReply == id.ID,
	}
	e.applyReplyContent(ctx, st, reply, truth.ContentHash)
	if err := e.reconcileTranslations(ctx, st, models.EntityReply, reply.ID, truth.Translations); err != nil {
		return nil, err
	}
	if err := e.store.SaveReply(ctx, reply); err != nil {
		return nil, err
	}

	if !reply.IsDeleted {
		post.ReplyCount++
		if err := e.store.SavePost(ctx, post); err != nil {
			return nil, err
		}
		if reply.ParentReplyID == 0 {
			if err := e.communityReplyAdded(ctx, post.CommunityID); err != nil {
				return nil, err
			}
		}
		if err := e.userReplyAdded(ctx, reply.Author); err != nil {
			return nil, err
		}
	}
	return reply, nil
}

func (e *Engine) applyReplyContent(ctx context.Context, st *status, reply *models.Reply, contentHash string) {
	if contentHash == "" || contentHash == reply.ContentHash {
		return
	}
	reply.ContentHash = contentHash

	payload, err := e.resolver.Fetch(ctx, contentHash)
	if err != nil {
		st.unreachable = true
		return
	}

	parsed, err := content.ParseReplyContent(payload)
	if err != nil {
		st.invalid = true
		reply.Content = content.Unresolvable
		return
	}
	reply.Content = parsed.Content
}

// refreshPostSearch reloads a post and rebuilds its search blob. Used after a
// child mutation changed reachable content.
func (e *Engine) refreshPostSearch(ctx context.Context, postKey string) error {
	post, err := e.store.Post(ctx, postKey)
	if err != nil || post == nil {
		return err
	}
	if err := e.rebuildSearch(ctx, post); err != nil {
		return err
	}
	return e.store.SavePost(ctx, post)
}

func (e *Engine) HandleReplyCreated(ctx context.Context, ev ReplyCreated) error {
	id := models.ReplyID{Post: e.postID(ev.PostID), ID: ev.ReplyID}
	return e.run(ctx, ev.TransactionInfo, "reply-created", models.EntityReply, id.String(), func(ctx context.Context, st *status) error {
		existing, err := e.store.Reply(ctx, id.String())
		if err != nil {
			return err
		}

		var reply *models.Reply
		if existing != nil {
			reply, err = e.editReply(ctx, st, existing, id)
		} else {
			reply, err = e.ensureReply(ctx, st, id)
		}
		if err != nil {
			return err
		}
		if reply == nil {
			st.notFound = true
			return nil
		}
		if err := e.refreshPostSearch(ctx, reply.PostID); err != nil {
			return err
		}
		return e.refreshForAuthor(ctx, e.cfg.Policy.RefreshOnCreate, reply.PostID, reply.Author)
	})
}

func (e *Engine) HandleReplyEdited(ctx context.Context, ev ReplyEdited) error {
	id := models.ReplyID{Post: e.postID(ev.PostID), ID: ev.ReplyID}
	return e.run(ctx, ev.TransactionInfo, "reply-edited", models.EntityReply, id.String(), func(ctx context.Context, st *status) error {
		reply, err := e.ensureReply(ctx, st, id)
		if err != nil {
			return err
		}
		if reply == nil {
			st.notFound = true
			return nil
		}

		reply, err = e.editReply(ctx, st, reply, id)
		if err != nil {
			return err
		}
		if reply == nil {
			st.notFound = true
			return nil
		}
		if err := e.refreshPostSearch(ctx, reply.PostID); err != nil {
			return err
		}
		return e.refreshForAuthor(ctx, e.cfg.Policy.RefreshOnEdit, reply.PostID, reply.Author)
	})
}

func (e *Engine) editReply(ctx context.Context, st *status, reply *models.Reply, id models.ReplyID) (*models.Reply, error) {
	truth, err := e.chain.GetReply(ctx, id.Post.ID, id.ID)
	if err != nil {
		return nil, err
	}
	if truth == nil {
		return nil, nil
	}

	reply.IsFirstReply = truth.IsFirstReply
	reply.IsQuickReply = truth.IsQuickReply
	e.applyReplyContent(ctx, st, reply, truth.ContentHash)
	if err := e.reconcileTranslations(ctx, st, models.EntityReply, reply.ID, truth.Translations); err != nil {
		return nil, err
	}
	if err := e.store.SaveReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (e *Engine) HandleReplyDeleted(ctx context.Context, ev ReplyDeleted) error {
	id := models.ReplyID{Post: e.postID(ev.PostID), ID: ev.ReplyID}
	return e.run(ctx, ev.TransactionInfo, "reply-deleted", models.EntityReply, id.String(), func(ctx context.Context, st *status) error {
		reply, err := e.ensureReply(ctx, st, id)
		if err != nil {
			return err
		}
		if reply == nil {
			st.notFound = true
			return nil
		}
		if reply.IsDeleted {
			st.skipped = true
			return nil
		}

		post, err := e.store.Post(ctx, reply.PostID)
		if err != nil {
			return err
		}
		if post == nil {
			st.notFound = true
			return nil
		}
		community, err := models.ParseCommunityID(post.CommunityID)
		if err != nil {
			return err
		}

		affected := map[string]bool{reply.Author: true}
		if err := e.deleteCommentsUnder(ctx, post.ID, reply.LocalID, affected); err != nil {
			return err
		}

		reply.IsDeleted = true
		reply.CommentCount = 0
		if err := e.store.SaveReply(ctx, reply); err != nil {
			return err
		}

		post.ReplyCount--
		if reply.IsOfficialReply {
			post.OfficialReply = 0
		}
		if reply.IsBestReply {
			post.BestReply = 0
		}
		if err := e.rebuildSearch(ctx, post); err != nil {
			return err
		}
		if err := e.store.SavePost(ctx, post); err != nil {
			return err
		}

		if reply.ParentReplyID == 0 {
			if err := e.communityReplyRemoved(ctx, post.CommunityID); err != nil {
				return err
			}
		}
		if err := e.userReplyRemoved(ctx, reply.Author); err != nil {
			return err
		}

		for author := range affected {
			if err := e.maybeRefreshRating(ctx, e.cfg.Policy.RefreshOnDelete, author, community); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Engine) HandleReplyRestored(ctx context.Context, ev ReplyRestored) error {
	id := models.ReplyID{Post: e.postID(ev.PostID), ID: ev.ReplyID}
	return e.run(ctx, ev.TransactionInfo, "reply-restored", models.EntityReply, id.String(), func(ctx context.Context, st *status) error {
		reply, err := e.ensureReply(ctx, st, id)
		if err != nil {
			return err
		}
		if reply == nil {
			st.notFound = true
			return nil
		}
		if !reply.IsDeleted {
			st.skipped = true
			return nil
		}

		truth, err := e.chain.GetReply(ctx, id.Post.ID, id.ID)
		if err != nil {
			return err
		}
		if truth == nil {
			st.notFound = true
			return nil
		}
		if truth.IsDeleted {
			st.skipped = true
			return nil
		}

		reply.IsDeleted = false
		reply.IsFirstReply = truth.IsFirstReply
		reply.IsQuickReply = truth.IsQuickReply
		e.applyReplyContent(ctx, st, reply, truth.ContentHash)
		if err := e.reconcileTranslations(ctx, st, models.EntityReply, reply.ID, truth.Translations); err != nil {
			return err
		}
		if err := e.store.SaveReply(ctx, reply); err != nil {
			return err
		}

		post, err := e.store.Post(ctx, reply.PostID)
		if err != nil || post == nil {
			return err
		}
		post.ReplyCount++
		if err := e.rebuildSearch(ctx, post); err != nil {
			return err
		}
		if err := e.store.SavePost(ctx, post); err != nil {
			return err
		}
		if reply.ParentReplyID == 0 {
			if err := e.communityReplyAdded(ctx, post.CommunityID); err != nil {
				return err
			}
		}
		if err := e.userReplyAdded(ctx, reply.Author); err != nil {
			return err
		}
		return e.refreshForAuthor(ctx, e.cfg.Policy.RefreshOnCreate, reply.PostID, reply.Author)
	})
}

// refreshForAuthor refreshes an author's rating in the community owning the
// given post, honoring the policy flag.
func (e *Engine) refreshForAuthor(ctx context.Context, enabled bool, postKey, author string) error {
	if !enabled {
		return nil
	}
	post, err := e.store.Post(ctx, postKey)
	if err != nil || post == nil {
		return err
	}
	community, err := models.ParseCommunityID(post.CommunityID)
	if err != nil {
		return err
	}
	return e.refreshRating(ctx, author, community)
}

func (e *Engine) HandleOfficialReplyChanged(ctx context.Context, ev OfficialReplyChanged) error {
	id := e.postID(ev.PostID)
	return e.run(ctx, ev.TransactionInfo, "official-reply-changed", models.EntityPost, id.String(), func(ctx context.Context, st *status) error {
		post, err := e.ensurePost(ctx, st, id)
		if err != nil {
			return err
		}
		if post == nil {
			st.notFound = true
			return nil
		}
		if post.OfficialReply == ev.ReplyID {
			st.skipped = true
			return nil
		}
		_, err = e.swapReplyFlag(ctx, st, post, post.OfficialReply, ev.ReplyID,
			func(r *models.Reply, set bool) { r.IsOfficialReply = set })
		if err != nil {
			return err
		}
		post.OfficialReply = ev.ReplyID
		return e.store.SavePost(ctx, post)
	})
}

func (e *Engine) HandleBestReplyChanged(ctx context.Context, ev BestReplyChanged) error {
	id := e.postID(ev.PostID)
	return e.run(ctx, ev.TransactionInfo, "best-reply-changed", models.EntityPost, id.String(), func(ctx context.Context, st *status) error {
		post, err := e.ensurePost(ctx, st, id)
		if err != nil {
			return err
		}
		if post == nil {
			st.notFound = true
			return nil
		}
		if post.BestReply == ev.ReplyID {
			st.skipped = true
			return nil
		}
		previous := post.BestReply
		newReply, err := e.swapReplyFlag(ctx, st, post, previous, ev.ReplyID,
			func(r *models.Reply, set bool) { r.IsBestReply = set })
		if err != nil {
			return err
		}
		post.BestReply = ev.ReplyID
		if err := e.store.SavePost(ctx, post); err != nil {
			return err
		}

		// Marking a best reply moves rating for both the dethroned and the
		// newly chosen author.
		community, err := models.ParseCommunityID(post.CommunityID)
		if err != nil {
			return err
		}
		if previous != 0 {
			postID, err := models.ParsePostID(post.ID)
			if err != nil {
				return err
			}
			old, err := e.store.Reply(ctx, models.ReplyID{Post: postID, ID: previous}.String())
			if err != nil {
				return err
			}
			if old != nil {
				if err := e.maybeRefreshRating(ctx, e.cfg.Policy.RefreshOnBestReply, old.Author, community); err != nil {
					return err
				}
			}
		}
		if newReply != nil {
			if err := e.maybeRefreshRating(ctx, e.cfg.Policy.RefreshOnBestReply, newReply.Author, community); err != nil {
				return err
			}
		}
		return nil
	})
}

// swapReplyFlag clears a marker flag on the previous holder and sets it on
// the new one. A zero new id only clears. Returns the new holder, if any.
func (e *Engine) swapReplyFlag(ctx context.Context, st *status, post *models.Post, oldID, newID int64, set func(*models.Reply, bool)) (*models.Reply, error) {
	postID, err := models.ParsePostID(post.ID)
	if err != nil {
		return nil, err
	}

	if oldID != 0 {
		old, err := e.store.Reply(ctx, models.ReplyID{Post: postID, ID: oldID}.String())
		if err != nil {
			return nil, err
		}
		if old != nil {
			set(old, false)
			if err := e.store.SaveReply(ctx, old); err != nil {
				return nil, err
			}
		}
	}

	if newID == 0 {
		return nil, nil
	}
	newReply, err := e.ensureReply(ctx, st, models.ReplyID{Post: postID, ID: newID})
	if err != nil {
		return nil, err
	}
	if newReply == nil {
		return nil, nil
	}
	set(newReply, true)
	if err := e.store.SaveReply(ctx, newReply); err != nil {
		return nil, err
	}
	return newReply, nil
}
