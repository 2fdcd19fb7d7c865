package forum

import (
	"context"
	"strings"

	"forum-indexer/feature/forum/models"
)

// rebuildSearch rebuilds the denormalized search blob of a post from scratch:
// tag names with their translations, the post title and body, post
// translations, each live reply with its translations and live comments, and
// finally the live top-level comments. The order is fixed so a rebuild over
// unchanged content is byte-identical. The caller persists the post.
func (e *Engine) rebuildSearch(ctx context.Context, post *models.Post) error {
	communityID, err := models.ParseCommunityID(post.CommunityID)
	if err != nil {
		return err
	}

	var parts []string
	add := func(values ...string) {
		for _, v := range values {
			if v != "" {
				parts = append(parts, v)
			}
		}
	}

	for _, tagLocal := range post.Tags {
		tagKey := models.TagID{Community: communityID, ID: tagLocal}.String()
		tag, err := e.store.Tag(ctx, tagKey)
		if err != nil {
			return err
		}
		if tag == nil {
			continue
		}
		add(tag.Name)
		if err := e.addTranslations(ctx, tagKey, add); err != nil {
			return err
		}
	}

	add(post.Title, post.Content)
	if err := e.addTranslations(ctx, post.ID, add); err != nil {
		return err
	}

	replies, err := e.store.RepliesByPost(ctx, post.ID)
	if err != nil {
		return err
	}
	for _, reply := range replies {
		if reply.IsDeleted {
			continue
		}
		add(reply.Content)
		if err := e.addTranslations(ctx, reply.ID, add); err != nil {
			return err
		}
		comments, err := e.store.CommentsByParent(ctx, post.ID, reply.LocalID)
		if err != nil {
			return err
		}
		for _, comment := range comments {
			if comment.IsDeleted {
				continue
			}
			add(comment.Content)
			if err := e.addTranslations(ctx, comment.ID, add); err != nil {
				return err
			}
		}
	}

	topLevel, err := e.store.CommentsByParent(ctx, post.ID, 0)
	if err != nil {
		return err
	}
	for _, comment := range topLevel {
		if comment.IsDeleted {
			continue
		}
		add(comment.Content)
		if err := e.addTranslations(ctx, comment.ID, add); err != nil {
			return err
		}
	}

	post.SearchContent = strings.Join(parts, " ")
	return nil
}

func (e *Engine) addTranslations(ctx context.Context, parentKey string, add func(...string)) error {
	translations, err := e.store.TranslationsByParent(ctx, parentKey)
	if err != nil {
		return err
	}
	for _, t := range translations {
		add(t.Title, t.Content)
	}
	return nil
}
