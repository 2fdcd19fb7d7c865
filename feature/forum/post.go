package forum

import (
	"context"

	"forum-indexer/core/diff"
	"forum-indexer/feature/forum/chain"
	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/models"
)

// ensurePost loads a post or materializes it from ledger truth, wiring the
// counters of its community, tags and author as it appears. A ledger read
// may already report the post deleted (a delete event arriving for an unseen
// post); its counters then land on the deleted books directly.
func (e *Engine) ensurePost(ctx context.Context, st *status, id models.PostID) (*models.Post, error) {
	post, err := e.store.Post(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if post != nil {
		return post, nil
	}

	truth, err := e.chain.GetPost(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if truth == nil {
		return nil, nil
	}

	communityID := e.communityID(truth.CommunityID)
	if _, err := e.ensureCommunity(ctx, st, communityID); err != nil {
		return nil, err
	}
	author, err := e.ensureUser(ctx, st, truth.Author, truth.PostTime)
	if err != nil {
		return nil, err
	}

	post = &models.Post{
		ID:            id.String(),
		Network:       id.Network,
		LocalID:       id.ID,
		CommunityID:   communityID.String(),
		Author:        author.ID,
		PostType:      truth.PostType,
		Rating:        truth.Rating,
		PostTime:      truth.PostTime,
		CommentCount:  truth.CommentCount,
		ReplyCount:    truth.ReplyCount,
		OfficialReply: truth.OfficialReply,
		BestReply:     truth.BestReply,
		IsDeleted:     truth.IsDeleted,
		Tags:          truth.Tags,
	}
	e.applyPostContent(ctx, st, post, truth.ContentHash)
	if err := e.reconcileTranslations(ctx, st, models.EntityPost, post.ID, truth.Translations); err != nil {
		return nil, err
	}
	if err := e.rebuildSearch(ctx, post); err != nil {
		return nil, err
	}
	if err := e.store.SavePost(ctx, post); err != nil {
		return nil, err
	}

	if err := e.communityPostEntered(ctx, post.CommunityID, post.IsDeleted, 0); err != nil {
		return nil, err
	}
	if !post.IsDeleted {
		if err := e.userPostAdded(ctx, post.Author); err != nil {
			return nil, err
		}
	}
	for _, tagLocal := range post.Tags {
		tagID := models.TagID{Community: communityID, ID: tagLocal}
		if _, err := e.ensureTag(ctx, st, tagID); err != nil {
			return nil, err
		}
		if err := e.tagPostEntered(ctx, tagID.String(), post.IsDeleted); err != nil {
			return nil, err
		}
	}

	return post, nil
}

// applyPostContent resolves the post payload into the title and body fields.
func (e *Engine) applyPostContent(ctx context.Context, st *status, post *models.Post, contentHash string) {
	if contentHash == "" || contentHash == post.ContentHash {
		return
	}
	post.ContentHash = contentHash

	payload, err := e.resolver.Fetch(ctx, contentHash)
	if err != nil {
		st.unreachable = true
		return
	}

	parsed, err := content.ParsePostContent(payload)
	if err != nil {
		st.invalid = true
		post.Title = content.Unresolvable
		post.Content = content.Unresolvable
		return
	}
	post.Title = parsed.Title
	post.Content = parsed.Content
}

// applyPostTruth re-applies ledger truth onto an existing post: community
// re-homing, tag membership, content and translations. The caller persists
// after a search rebuild.
func (e *Engine) applyPostTruth(ctx context.Context, st *status, post *models.Post, truth *chain.Post) error {
	newCommunity := e.communityID(truth.CommunityID)
	oldCommunityKey := post.CommunityID

	if oldCommunityKey != newCommunity.String() {
		if err := e.movePost(ctx, st, post, newCommunity, truth.Tags); err != nil {
			return err
		}
	} else if err := e.reconcileTags(ctx, st, post, newCommunity, truth.Tags); err != nil {
		return err
	}

	post.PostType = truth.PostType
	e.applyPostContent(ctx, st, post, truth.ContentHash)
	return e.reconcileTranslations(ctx, st, models.EntityPost, post.ID, truth.Translations)
}

// movePost re-homes a post to another community. Its live top-level replies
// and its tag memberships move with it; tags are community-scoped, so every
// membership is dropped on the old side and re-established on the new side.
func (e *Engine) movePost(ctx context.Context, st *status, post *models.Post, newCommunity models.CommunityID, newTags []int64) error {
	oldCommunity, err := models.ParseCommunityID(post.CommunityID)
	if err != nil {
		return err
	}

	liveReplies := 0
	if !post.IsDeleted {
		liveReplies, err = e.liveTopLevelReplies(ctx, post.ID)
		if err != nil {
			return err
		}
	}

	for _, tagLocal := range post.Tags {
		tagKey := models.TagID{Community: oldCommunity, ID: tagLocal}.String()
		if err := e.tagPostLeft(ctx, tagKey, post.IsDeleted); err != nil {
			return err
		}
	}
	if err := e.communityPostLeft(ctx, post.CommunityID, post.IsDeleted, liveReplies); err != nil {
		return err
	}

	if _, err := e.ensureCommunity(ctx, st, newCommunity); err != nil {
		return err
	}
	if err := e.communityPostEntered(ctx, newCommunity.String(), post.IsDeleted, liveReplies); err != nil {
		return err
	}
	post.CommunityID = newCommunity.String()

	for _, tagLocal := range newTags {
		tagID := models.TagID{Community: newCommunity, ID: tagLocal}
		if _, err := e.ensureTag(ctx, st, tagID); err != nil {
			return err
		}
		if err := e.tagPostEntered(ctx, tagID.String(), post.IsDeleted); err != nil {
			return err
		}
	}
	post.Tags = newTags
	return nil
}

// reconcileTags applies a tag membership diff within the post's community.
// Unchanged memberships are left untouched.
func (e *Engine) reconcileTags(ctx context.Context, st *status, post *models.Post, community models.CommunityID, newTags []int64) error {
	added, removed := diff.Keys(post.Tags, newTags)

	for _, tagLocal := range removed {
		tagKey := models.TagID{Community: community, ID: tagLocal}.String()
		if err := e.tagPostLeft(ctx, tagKey, post.IsDeleted); err != nil {
			return err
		}
	}
	for _, tagLocal := range added {
		tagID := models.TagID{Community: community, ID: tagLocal}
		if _, err := e.ensureTag(ctx, st, tagID); err != nil {
			return err
		}
		if err := e.tagPostEntered(ctx, tagID.String(), post.IsDeleted); err != nil {
			return err
		}
	}
	post.Tags = newTags
	return nil
}

func (e *Engine) HandlePostCreated(ctx context.Context, ev PostCreated) error {
	id := e.postID(ev.PostID)
	return e.run(ctx, ev.TransactionInfo, "post-created", models.EntityPost, id.String(), func(ctx context.Context, st *status) error {
		existing, err := e.store.Post(ctx, id.String())
		if err != nil {
			return err
		}

		var post *models.Post
		if existing != nil {
			// Redelivered create: converge on current truth instead of
			// double-counting.
			post, err = e.editPost(ctx, st, existing, id)
		} else {
			post, err = e.ensurePost(ctx, st, id)
		}
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
		return e.maybeRefreshRating(ctx, e.cfg.Policy.RefreshOnCreate, post.Author, community)
	})
}

func (e *Engine) HandlePostEdited(ctx context.Context, ev PostEdited) error {
	id := e.postID(ev.PostID)
	return e.run(ctx, ev.TransactionInfo, "post-edited", models.EntityPost, id.String(), func(ctx context.Context, st *status) error {
		post, err := e.ensurePost(ctx, st, id)
		if err != nil {
			return err
		}
		if post == nil {
			st.notFound = true
			return nil
		}

		post, err = e.editPost(ctx, st, post, id)
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
		return e.maybeRefreshRating(ctx, e.cfg.Policy.RefreshOnEdit, post.Author, community)
	})
}

// editPost re-pulls truth and applies it to a loaded post, rebuilding the
// search blob. Returns nil when the ledger no longer knows the post.
func (e *Engine) editPost(ctx context.Context, st *status, post *models.Post, id models.PostID) (*models.Post, error) {
	truth, err := e.chain.GetPost(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if truth == nil {
		return nil, nil
	}

	if err := e.applyPostTruth(ctx, st, post, truth); err != nil {
		return nil, err
	}
	if err := e.rebuildSearch(ctx, post); err != nil {
		return nil, err
	}
	if err := e.store.SavePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (e *Engine) HandlePostDeleted(ctx context.Context, ev PostDeleted) error {
	id := e.postID(ev.PostID)
	return e.run(ctx, ev.TransactionInfo, "post-deleted", models.EntityPost, id.String(), func(ctx context.Context, st *status) error {
		post, err := e.ensurePost(ctx, st, id)
		if err != nil {
			return err
		}
		if post == nil {
			st.notFound = true
			return nil
		}
		if post.IsDeleted {
			st.skipped = true
			return nil
		}
		return e.deletePost(ctx, post)
	})
}

// deletePost soft-deletes a live post and cascades over its live children.
// Every distinct affected author gets one rating refresh; refreshRating
// itself skips banned authors.
func (e *Engine) deletePost(ctx context.Context, post *models.Post) error {
	community, err := models.ParseCommunityID(post.CommunityID)
	if err != nil {
		return err
	}

	liveReplies := 0
	affected := map[string]bool{post.Author: true}

	replies, err := e.store.RepliesByPost(ctx, post.ID)
	if err != nil {
		return err
	}
	for _, reply := range replies {
		if reply.IsDeleted {
			continue
		}
		if reply.ParentReplyID == 0 {
			liveReplies++
		}
		reply := reply
		reply.IsDeleted = true
		reply.CommentCount = 0
		if err := e.store.SaveReply(ctx, &reply); err != nil {
			return err
		}
		if err := e.userReplyRemoved(ctx, reply.Author); err != nil {
			return err
		}
		affected[reply.Author] = true

		if err := e.deleteCommentsUnder(ctx, post.ID, reply.LocalID, affected); err != nil {
			return err
		}
	}
	if err := e.deleteCommentsUnder(ctx, post.ID, 0, affected); err != nil {
		return err
	}

	// Every child is now deleted, so the post's own child counters go to
	// zero with them; a later restore brings back the post alone.
	post.IsDeleted = true
	post.ReplyCount = 0
	post.CommentCount = 0
	if err := e.store.SavePost(ctx, post); err != nil {
		return err
	}

	if err := e.communityPostDeleted(ctx, post.CommunityID, liveReplies); err != nil {
		return err
	}
	if err := e.userPostRemoved(ctx, post.Author); err != nil {
		return err
	}
	for _, tagLocal := range post.Tags {
		tagKey := models.TagID{Community: community, ID: tagLocal}.String()
		if err := e.tagPostDeleted(ctx, tagKey); err != nil {
			return err
		}
	}

	for author := range affected {
		if err := e.maybeRefreshRating(ctx, e.cfg.Policy.RefreshOnDelete, author, community); err != nil {
			return err
		}
	}
	return nil
}

// deleteCommentsUnder soft-deletes the live comments under a post or reply,
// recording their authors in affected.
func (e *Engine) deleteCommentsUnder(ctx context.Context, postKey string, parentReplyID int64, affected map[string]bool) error {
	comments, err := e.store.CommentsByParent(ctx, postKey, parentReplyID)
	if err != nil {
		return err
	}
	for _, comment := range comments {
		if comment.IsDeleted {
			continue
		}
		comment := comment
		comment.IsDeleted = true
		if err := e.store.SaveComment(ctx, &comment); err != nil {
			return err
		}
		if err := e.userCommentRemoved(ctx, comment.Author); err != nil {
			return err
		}
		affected[comment.Author] = true
	}
	return nil
}

func (e *Engine) HandlePostRestored(ctx context.Context, ev PostRestored) error {
	id := e.postID(ev.PostID)
	return e.run(ctx, ev.TransactionInfo, "post-restored", models.EntityPost, id.String(), func(ctx context.Context, st *status) error {
		post, err := e.ensurePost(ctx, st, id)
		if err != nil {
			return err
		}
		if post == nil {
			st.notFound = true
			return nil
		}
		if !post.IsDeleted {
			st.skipped = true
			return nil
		}

		// A restore must be confirmed by ledger truth before the terminal
		// flag is lifted.
		truth, err := e.chain.GetPost(ctx, id.ID)
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

		// Converge on truth while still on the deleted books so tag and
		// community diffs adjust the deleted counters, then lift the flag.
		if err := e.applyPostTruth(ctx, st, post, truth); err != nil {
			return err
		}
		post.IsDeleted = false
		if err := e.rebuildSearch(ctx, post); err != nil {
			return err
		}
		if err := e.store.SavePost(ctx, post); err != nil {
			return err
		}

		// Children stay deleted; only the post itself returns to the live
		// books.
		if err := e.communityPostRestored(ctx, post.CommunityID); err != nil {
			return err
		}
		if err := e.userPostAdded(ctx, post.Author); err != nil {
			return err
		}
		community, err := models.ParseCommunityID(post.CommunityID)
		if err != nil {
			return err
		}
		for _, tagLocal := range post.Tags {
			tagKey := models.TagID{Community: community, ID: tagLocal}.String()
			if err := e.tagPostRestored(ctx, tagKey); err != nil {
				return err
			}
		}
		return e.maybeRefreshRating(ctx, e.cfg.Policy.RefreshOnCreate, post.Author, community)
	})
}
