package forum

import (
	"context"
	"strings"

	"forum-indexer/core/diff"
	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/models"

	"go.uber.org/zap"
)

// HandleDocumentationUpdated reconciles the documentation posts of a
// community against a new tree snapshot: nodes present only in the old tree
// lose their post, nodes present only in the new tree gain one, nodes in
// both are left untouched. Shape violations inside a tree are reported and
// skipped, never fatal.
func (e *Engine) HandleDocumentationUpdated(ctx context.Context, ev DocumentationUpdated) error {
	communityID := e.communityID(ev.CommunityID)
	communityKey := communityID.String()
	return e.run(ctx, ev.TransactionInfo, "documentation-updated", models.EntityDocumentation, communityKey, func(ctx context.Context, st *status) error {
		if _, err := e.ensureCommunity(ctx, st, communityID); err != nil {
			return err
		}

		record, err := e.store.Documentation(ctx, communityKey)
		if err != nil {
			return err
		}
		if record != nil && record.ContentHash == ev.ContentHash {
			st.skipped = true
			return nil
		}

		newTree := e.resolveTree(ctx, st, ev.ContentHash)
		if newTree == nil {
			// Unreachable or invalid payload: the materialized post set
			// keeps its previous shape, only the audit records the trouble.
			return nil
		}

		var oldTree *diff.Tree
		if record != nil && record.ContentHash != "" {
			oldTree = e.resolveTree(ctx, st, record.ContentHash)
			if oldTree == nil {
				// Without the previous snapshot the vanished nodes
				// cannot be identified. Keep the stored hash so a
				// redelivery retries the whole diff instead of
				// leaving their posts behind.
				return nil
			}
		}

		createIDs, deleteIDs, violations := diff.Trees(oldTree, newTree)
		for _, v := range violations {
			e.logger.Warn("documentation tree node skipped",
				zap.String("community_id", communityKey),
				zap.String("path", v.Path),
				zap.String("reason", v.Reason),
			)
		}

		for _, nodeID := range deleteIDs {
			if err := e.store.RemovePost(ctx, models.DocumentationPostKey(e.cfg.Network, nodeID)); err != nil {
				return err
			}
		}
		for _, nodeID := range createIDs {
			node := diff.NodeByID(newTree, nodeID)
			if node == nil {
				continue
			}
			post := &models.Post{
				ID:          models.DocumentationPostKey(e.cfg.Network, nodeID),
				Network:     e.cfg.Network,
				CommunityID: communityKey,
				Author:      strings.ToLower(ev.Actor),
				PostType:    models.PostTypeDocumentation,
				PostTime:    ev.Timestamp,
				Title:       node.Title,
			}
			if err := e.store.SavePost(ctx, post); err != nil {
				return err
			}
		}

		if record == nil {
			record = &models.CommunityDocumentation{ID: communityKey}
		}
		record.ContentHash = ev.ContentHash
		return e.store.SaveDocumentation(ctx, record)
	})
}

// resolveTree fetches and parses a documentation tree snapshot, degrading to
// nil on unreachable or malformed payloads.
func (e *Engine) resolveTree(ctx context.Context, st *status, contentHash string) *diff.Tree {
	payload, err := e.resolver.Fetch(ctx, contentHash)
	if err != nil {
		st.unreachable = true
		return nil
	}
	tree, err := content.ParseDocumentationTree(payload)
	if err != nil {
		st.invalid = true
		return nil
	}
	return tree
}
