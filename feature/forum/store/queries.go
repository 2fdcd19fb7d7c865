package store

import (
	"context"
	"fmt"

	"forum-indexer/feature/forum/models"
)

// Ordered child queries used by the cascade, aggregation and search rebuild
// paths. Ordering is always ascending ledger-local id so rebuilds are
// deterministic.

// RepliesByPost returns all replies of a post, ascending reply id.
func (s *Store) RepliesByPost(ctx context.Context, postID string) ([]models.Reply, error) {
	var replies []models.Reply
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("local_id asc").
		Find(&replies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list replies of post %q: %w", postID, err)
	}
	return replies, nil
}

// CommentsByParent returns the comments under a post (parentReplyID 0) or
// under a reply, ascending comment id.
func (s *Store) CommentsByParent(ctx context.Context, postID string, parentReplyID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND parent_reply_id = ?", postID, parentReplyID).
		Order("local_id asc").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of post %q reply %d: %w", postID, parentReplyID, err)
	}
	return comments, nil
}

// TranslationsByParent returns the translation children of an entity,
// ascending language code.
func (s *Store) TranslationsByParent(ctx context.Context, parentID string) ([]models.Translation, error) {
	var translations []models.Translation
	err := s.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("language asc").
		Find(&translations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list translations of %q: %w", parentID, err)
	}
	return translations, nil
}

// PostsByCommunity returns all posts of a community, ascending local id.
func (s *Store) PostsByCommunity(ctx context.Context, communityID string) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("local_id asc").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts of community %q: %w", communityID, err)
	}
	return posts, nil
}

// LivePostCount counts non-deleted forum posts of a community. Documentation
// posts are tracked by the documentation tree, not by the community's post
// counter. Used by invariant checks, not by the counter maintenance itself.
func (s *Store) LivePostCount(ctx context.Context, communityID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("community_id = ? AND is_deleted = ? AND post_type <> ?", communityID, false, models.PostTypeDocumentation).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count live posts of community %q: %w", communityID, err)
	}
	return count, nil
}

// HistoryByTransaction returns the audit records of a transaction.
func (s *Store) HistoryByTransaction(ctx context.Context, txHash string) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := s.db.WithContext(ctx).
		Where("transaction_hash = ?", txHash).
		Order("id asc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history of tx %q: %w", txHash, err)
	}
	return entries, nil
}

// HistoryByEntity returns the audit records touching an entity.
func (s *Store) HistoryByEntity(ctx context.Context, entityID string) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := s.db.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("timestamp asc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history of entity %q: %w", entityID, err)
	}
	return entries, nil
}
