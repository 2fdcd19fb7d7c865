package forum

import (
	"context"
	"errors"

	"forum-indexer/core/diff"
	"forum-indexer/feature/forum/chain"
	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/models"

	"go.uber.org/zap"
)

// reconcileTranslations brings the translation children of a parent entity in
// line with the language set the ledger currently reports. Languages no longer
// reported are removed, new languages are materialized, and languages present
// on both sides are re-resolved only when their content hash changed.
func (e *Engine) reconcileTranslations(ctx context.Context, st *status, parentType, parentKey string, truth []chain.Translation) error {
	stored, err := e.store.TranslationsByParent(ctx, parentKey)
	if err != nil {
		return err
	}

	byLanguage := make(map[string]chain.Translation, len(truth))
	newLanguages := make([]string, 0, len(truth))
	for _, t := range truth {
		byLanguage[t.Language] = t
		newLanguages = append(newLanguages, t.Language)
	}
	oldLanguages := make([]string, 0, len(stored))
	for _, t := range stored {
		oldLanguages = append(oldLanguages, t.Language)
	}

	added, removed := diff.Keys(oldLanguages, newLanguages)

	for _, language := range removed {
		if err := e.store.RemoveTranslation(ctx, models.TranslationKey(parentKey, language)); err != nil {
			return err
		}
	}

	for _, language := range added {
		record := &models.Translation{
			ID:         models.TranslationKey(parentKey, language),
			ParentType: parentType,
			ParentID:   parentKey,
			Language:   language,
		}
		if err := e.applyTranslation(ctx, st, record, byLanguage[language]); err != nil {
			return err
		}
	}

	// Re-resolve surviving languages whose payload moved to a new hash.
	for _, record := range stored {
		t, ok := byLanguage[record.Language]
		if !ok || record.ContentHash == t.ContentHash {
			continue
		}
		record := record
		if err := e.applyTranslation(ctx, st, &record, t); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) applyTranslation(ctx context.Context, st *status, record *models.Translation, truth chain.Translation) error {
	record.ContentHash = truth.ContentHash

	payload, err := e.resolver.Fetch(ctx, truth.ContentHash)
	switch {
	case errors.Is(err, content.ErrUnreachable):
		st.unreachable = true
	case err != nil:
		return err
	default:
		parsed, perr := content.ParsePostContent(payload)
		if perr != nil {
			st.invalid = true
			record.Title = content.Unresolvable
			record.Content = content.Unresolvable
			e.logger.Warn("translation payload has unexpected shape",
				zap.String("translation_id", record.ID),
				zap.Error(perr),
			)
		} else {
			record.Title = parsed.Title
			record.Content = parsed.Content
		}
	}

	return e.store.SaveTranslation(ctx, record)
}
