package store

import (
	"context"
	"fmt"
	"testing"

	"forum-indexer/core/database"
	"forum-indexer/feature/forum/models"

	"github.com/stretchr/testify/assert"
)

func setupStore(t *testing.T) *Store {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: dsn})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	s := New(db)
	if err := s.AutoMigrate(); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}
	return s
}

func TestLoadAbsentRecordReturnsNil(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	post, err := s.Post(ctx, "1-404")
	assert.NoError(t, err)
	assert.Nil(t, post)
}

func TestUpsertIsLastWriteWins(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	assert.NoError(t, s.SavePost(ctx, &models.Post{ID: "1-7", CommunityID: "1-1", Title: "first"}))
	assert.NoError(t, s.SavePost(ctx, &models.Post{ID: "1-7", CommunityID: "1-1", Title: "second"}))

	post, err := s.Post(ctx, "1-7")
	assert.NoError(t, err)
	if assert.NotNil(t, post) {
		assert.Equal(t, "second", post.Title)
	}
}

func TestRepliesByPostOrderedByLocalId(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		assert.NoError(t, s.SaveReply(ctx, &models.Reply{
			ID:      fmt.Sprintf("1-7-%d", id),
			PostID:  "1-7",
			LocalID: id,
		}))
	}

	replies, err := s.RepliesByPost(ctx, "1-7")
	assert.NoError(t, err)
	if assert.Len(t, replies, 3) {
		assert.Equal(t, int64(1), replies[0].LocalID)
		assert.Equal(t, int64(3), replies[2].LocalID)
	}
}

func TestCommentsByParentSeparatesNestingLevels(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	assert.NoError(t, s.SaveComment(ctx, &models.Comment{ID: "1-7-0-1", PostID: "1-7", ParentReplyID: 0, LocalID: 1}))
	assert.NoError(t, s.SaveComment(ctx, &models.Comment{ID: "1-7-2-1", PostID: "1-7", ParentReplyID: 2, LocalID: 1}))

	topLevel, err := s.CommentsByParent(ctx, "1-7", 0)
	assert.NoError(t, err)
	assert.Len(t, topLevel, 1)

	nested, err := s.CommentsByParent(ctx, "1-7", 2)
	assert.NoError(t, err)
	assert.Len(t, nested, 1)
}

func TestLivePostCountExcludesDeletedAndDocumentation(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	assert.NoError(t, s.SavePost(ctx, &models.Post{ID: "1-1", CommunityID: "1-1"}))
	assert.NoError(t, s.SavePost(ctx, &models.Post{ID: "1-2", CommunityID: "1-1", IsDeleted: true}))
	assert.NoError(t, s.SavePost(ctx, &models.Post{ID: "1-doc", CommunityID: "1-1", PostType: models.PostTypeDocumentation}))

	count, err := s.LivePostCount(ctx, "1-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRemoveTranslationIsIdempotent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	assert.NoError(t, s.SaveTranslation(ctx, &models.Translation{ID: "1-7-en", ParentID: "1-7", Language: "en"}))
	assert.NoError(t, s.RemoveTranslation(ctx, "1-7-en"))
	assert.NoError(t, s.RemoveTranslation(ctx, "1-7-en"))

	translations, err := s.TranslationsByParent(ctx, "1-7")
	assert.NoError(t, err)
	assert.Empty(t, translations)
}

func TestHistoryByEntityOrderedByTimestamp(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	assert.NoError(t, s.SaveHistory(ctx, &models.HistoryEntry{ID: "0xb-post-edited-1-7", EntityID: "1-7", Timestamp: 200, Outcome: "success"}))
	assert.NoError(t, s.SaveHistory(ctx, &models.HistoryEntry{ID: "0xa-post-created-1-7", EntityID: "1-7", Timestamp: 100, Outcome: "success"}))

	entries, err := s.HistoryByEntity(ctx, "1-7")
	assert.NoError(t, err)
	if assert.Len(t, entries, 2) {
		assert.Equal(t, int64(100), entries[0].Timestamp)
	}
}
