package forum

import (
	"context"

	"forum-indexer/feature/forum/models"
)

// HandleItemVoted routes a vote by id shape: a non-zero comment id targets a
// comment, else a non-zero reply id targets a reply, else the post itself.
// The target's rating is re-read from ledger truth rather than adjusted by a
// vote delta; the target author's community rating is refreshed per policy.
func (e *Engine) HandleItemVoted(ctx context.Context, ev ItemVoted) error {
	switch {
	case ev.CommentID != 0:
		return e.voteComment(ctx, ev)
	case ev.ReplyID != 0:
		return e.voteReply(ctx, ev)
	default:
		return e.votePost(ctx, ev)
	}
}

func (e *Engine) votePost(ctx context.Context, ev ItemVoted) error {
	id := e.postID(ev.PostID)
	return e.run(ctx, ev.TransactionInfo, "item-voted", models.EntityPost, id.String(), func(ctx context.Context, st *status) error {
		post, err := e.ensurePost(ctx, st, id)
		if err != nil {
			return err
		}
		if post == nil {
			st.notFound = true
			return nil
		}

		truth, err := e.chain.GetPost(ctx, id.ID)
		if err != nil {
			return err
		}
		if truth == nil {
			st.notFound = true
			return nil
		}
		post.Rating = truth.Rating
		if err := e.store.SavePost(ctx, post); err != nil {
			return err
		}
		return e.refreshForAuthor(ctx, e.cfg.Policy.RefreshOnVote, post.ID, post.Author)
	})
}

func (e *Engine) voteReply(ctx context.Context, ev ItemVoted) error {
	id := models.ReplyID{Post: e.postID(ev.PostID), ID: ev.ReplyID}
	return e.run(ctx, ev.TransactionInfo, "item-voted", models.EntityReply, id.String(), func(ctx context.Context, st *status) error {
		reply, err := e.ensureReply(ctx, st, id)
		if err != nil {
			return err
		}
		if reply == nil {
			st.notFound = true
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
		reply.Rating = truth.Rating
		if err := e.store.SaveReply(ctx, reply); err != nil {
			return err
		}
		return e.refreshForAuthor(ctx, e.cfg.Policy.RefreshOnVote, reply.PostID, reply.Author)
	})
}

func (e *Engine) voteComment(ctx context.Context, ev ItemVoted) error {
	id := models.CommentID{Post: e.postID(ev.PostID), ParentReply: ev.ReplyID, ID: ev.CommentID}
	return e.run(ctx, ev.TransactionInfo, "item-voted", models.EntityComment, id.String(), func(ctx context.Context, st *status) error {
		comment, err := e.ensureComment(ctx, st, id)
		if err != nil {
			return err
		}
		if comment == nil {
			st.notFound = true
			return nil
		}

		truth, err := e.chain.GetComment(ctx, id.Post.ID, id.ParentReply, id.ID)
		if err != nil {
			return err
		}
		if truth == nil {
			st.notFound = true
			return nil
		}
		comment.Rating = truth.Rating
		if err := e.store.SaveComment(ctx, comment); err != nil {
			return err
		}
		return e.refreshForAuthor(ctx, e.cfg.Policy.RefreshOnVote, comment.PostID, comment.Author)
	})
}
