package forum

import (
	"context"

	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/models"
)

// ensureComment loads a comment or materializes it from ledger truth under
// its lazily materialized parents.
func (e *Engine) ensureComment(ctx context.Context, st *status, id models.CommentID) (*models.Comment, error) {
	comment, err := e.store.Comment(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if comment != nil {
		return comment, nil
	}

	post, err := e.ensurePost(ctx, st, id.Post)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}
	if id.ParentReply != 0 {
		reply, err := e.ensureReply(ctx, st, models.ReplyID{Post: id.Post, ID: id.ParentReply})
		if err != nil {
			return nil, err
		}
		if reply == nil {
			return nil, nil
		}
	}

	truth, err := e.chain.GetComment(ctx, id.Post.ID, id.ParentReply, id.ID)
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

	comment = &models.Comment{
		ID:            id.String(),
		PostID:        id.Post.String(),
		ParentReplyID: id.ParentReply,
		LocalID:       id.ID,
		Author:        author.ID,
		Rating:        truth.Rating,
		PostTime:      truth.PostTime,
		IsDeleted:     truth.IsDeleted,
	}
	e.applyCommentContent(ctx, st, comment, truth.ContentHash)
	if err := e.reconcileTranslations(ctx, st, models.EntityComment, comment.ID, truth.Translations); err != nil {
		return nil, err
	}
	if err := e.store.SaveComment(ctx, comment); err != nil {
		return nil, err
	}

	if !comment.IsDeleted {
		if err := e.bumpParentCommentCount(ctx, id, 1); err != nil {
			return nil, err
		}
		if err := e.userCommentAdded(ctx, comment.Author); err != nil {
			return nil, err
		}
	}
	return comment, nil
}

func (e *Engine) applyCommentContent(ctx context.Context, st *status, comment *models.Comment, contentHash string) {
	if contentHash == "" || contentHash == comment.ContentHash {
		return
	}
	comment.ContentHash = contentHash

	payload, err := e.resolver.Fetch(ctx, contentHash)
	if err != nil {
		st.unreachable = true
		return
	}

	parsed, err := content.ParseReplyContent(payload)
	if err != nil {
		st.invalid = true
		comment.Content = content.Unresolvable
		return
	}
	comment.Content = parsed.Content
}

// bumpParentCommentCount adjusts the comment count of the direct parent: the
// reply when the comment is nested, the post otherwise.
func (e *Engine) bumpParentCommentCount(ctx context.Context, id models.CommentID, delta int) error {
	if id.ParentReply != 0 {
		reply, err := e.store.Reply(ctx, models.ReplyID{Post: id.Post, ID: id.ParentReply}.String())
		if err != nil || reply == nil {
			return err
		}
		reply.CommentCount += delta
		return e.store.SaveReply(ctx, reply)
	}
	post, err := e.store.Post(ctx, id.Post.String())
	if err != nil || post == nil {
		return err
	}
	post.CommentCount += delta
	return e.store.SavePost(ctx, post)
}

func (e *Engine) HandleCommentCreated(ctx context.Context, ev CommentCreated) error {
	id := models.CommentID{Post: e.postID(ev.PostID), ParentReply: ev.ParentReplyID, ID: ev.CommentID}
	return e.run(ctx, ev.TransactionInfo, "comment-created", models.EntityComment, id.String(), func(ctx context.Context, st *status) error {
		existing, err := e.store.Comment(ctx, id.String())
		if err != nil {
			return err
		}

		var comment *models.Comment
		if existing != nil {
			comment, err = e.editComment(ctx, st, existing, id)
		} else {
			comment, err = e.ensureComment(ctx, st, id)
		}
		if err != nil {
			return err
		}
		if comment == nil {
			st.notFound = true
			return nil
		}
		if err := e.refreshPostSearch(ctx, comment.PostID); err != nil {
			return err
		}
		return e.refreshForAuthor(ctx, e.cfg.Policy.RefreshOnCreate, comment.PostID, comment.Author)
	})
}

func (e *Engine) HandleCommentEdited(ctx context.Context, ev CommentEdited) error {
	id := models.CommentID{Post: e.postID(ev.PostID), ParentReply: ev.ParentReplyID, ID: ev.CommentID}
	return e.run(ctx, ev.TransactionInfo, "comment-edited", models.EntityComment, id.String(), func(ctx context.Context, st *status) error {
		comment, err := e.ensureComment(ctx, st, id)
		if err != nil {
			return err
		}
		if comment == nil {
			st.notFound = true
			return nil
		}

		comment, err = e.editComment(ctx, st, comment, id)
		if err != nil {
			return err
		}
		if comment == nil {
			st.notFound = true
			return nil
		}
		if err := e.refreshPostSearch(ctx, comment.PostID); err != nil {
			return err
		}
		return e.refreshForAuthor(ctx, e.cfg.Policy.RefreshOnEdit, comment.PostID, comment.Author)
	})
}

func (e *Engine) editComment(ctx context.Context, st *status, comment *models.Comment, id models.CommentID) (*models.Comment, error) {
	truth, err := e.chain.GetComment(ctx, id.Post.ID, id.ParentReply, id.ID)
	if err != nil {
		return nil, err
	}
	if truth == nil {
		return nil, nil
	}

	e.applyCommentContent(ctx, st, comment, truth.ContentHash)
	if err := e.reconcileTranslations(ctx, st, models.EntityComment, comment.ID, truth.Translations); err != nil {
		return nil, err
	}
	if err := e.store.SaveComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (e *Engine) HandleCommentDeleted(ctx context.Context, ev CommentDeleted) error {
	id := models.CommentID{Post: e.postID(ev.PostID), ParentReply: ev.ParentReplyID, ID: ev.CommentID}
	return e.run(ctx, ev.TransactionInfo, "comment-deleted", models.EntityComment, id.String(), func(ctx context.Context, st *status) error {
		comment, err := e.ensureComment(ctx, st, id)
		if err != nil {
			return err
		}
		if comment == nil {
			st.notFound = true
			return nil
		}
		if comment.IsDeleted {
			st.skipped = true
			return nil
		}

		comment.IsDeleted = true
		if err := e.store.SaveComment(ctx, comment); err != nil {
			return err
		}
		if err := e.bumpParentCommentCount(ctx, id, -1); err != nil {
			return err
		}
		if err := e.userCommentRemoved(ctx, comment.Author); err != nil {
			return err
		}
		if err := e.refreshPostSearch(ctx, comment.PostID); err != nil {
			return err
		}
		return e.refreshForAuthor(ctx, e.cfg.Policy.RefreshOnDelete, comment.PostID, comment.Author)
	})
}
