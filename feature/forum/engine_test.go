package forum

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"forum-indexer/core/database"
	"forum-indexer/feature/forum/chain"
	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/models"
	"forum-indexer/feature/forum/store"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeStorage serves content payloads from memory. Missing objects fail every
// fetch, which exercises the resolver's retry budget.
type fakeStorage struct {
	objects map[string][]byte
}

func (f *fakeStorage) BucketExists(context.Context, string) (bool, error) {
	return true, nil
}

func (f *fakeStorage) GetObject(_ context.Context, _, objectName string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	payload, ok := f.objects[objectName]
	if !ok {
		return nil, errors.New("object does not exist")
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	engine  *Engine
	store   *store.Store
	snap    *chain.Snapshot
	objects map[string][]byte
	txSeq   int
}

func newFixture(t *testing.T) *fixture {
	// A named shared-cache database keeps every pooled connection on the
	// same in-memory store while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: dsn})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}

	snap := &chain.Snapshot{
		Users:        map[string]*chain.User{},
		Ratings:      map[string]*int{},
		Communities:  map[string]*chain.Community{},
		Tags:         map[string]*chain.Tag{},
		Posts:        map[string]*chain.Post{},
		Replies:      map[string]*chain.Reply{},
		Comments:     map[string]*chain.Comment{},
		Achievements: map[string]*chain.Achievement{},
		Tokens:       map[string]*chain.CommunityToken{},
	}
	objects := map[string][]byte{}
	resolver := content.NewResolver(
		&fakeStorage{objects: objects},
		"forum-content",
		content.Config{Prefix: "content/", RetryBudget: 30},
		zap.NewNop(),
	)
	cfg := Config{
		Enabled:        true,
		Network:        1,
		StartingRating: 10,
		Policy: Policy{
			RefreshOnCreate:    true,
			RefreshOnEdit:      true,
			RefreshOnDelete:    true,
			RefreshOnVote:      true,
			RefreshOnBestReply: true,
		},
	}

	return &fixture{
		t:       t,
		ctx:     context.Background(),
		engine:  NewEngine(st, snap, resolver, zap.NewNop(), cfg),
		store:   st,
		snap:    snap,
		objects: objects,
	}
}

func (f *fixture) tx() TransactionInfo {
	f.txSeq++
	return TransactionInfo{
		Hash:      fmt.Sprintf("0xtx%04d", f.txSeq),
		Timestamp: int64(1700000000 + f.txSeq),
		Actor:     "0xoperator",
	}
}

func (f *fixture) addObject(hash, payload string) {
	f.objects["content/"+hash] = []byte(payload)
}

func (f *fixture) seedCommunity(id int64, tagCount int) *chain.Community {
	c := &chain.Community{ID: id, CreationTime: 1690000000, TagCount: tagCount}
	f.snap.Communities[fmt.Sprintf("%d", id)] = c
	return c
}

func (f *fixture) seedTag(communityID, tagID int64) *chain.Tag {
	tag := &chain.Tag{CommunityID: communityID, ID: tagID}
	f.snap.Tags[fmt.Sprintf("%d-%d", communityID, tagID)] = tag
	return tag
}

func (f *fixture) seedPost(id, communityID int64, author string, tags []int64) *chain.Post {
	p := &chain.Post{
		ID:          id,
		CommunityID: communityID,
		Author:      author,
		PostTime:    1690001000,
		Tags:        tags,
	}
	f.snap.Posts[fmt.Sprintf("%d", id)] = p
	return p
}

func (f *fixture) seedReply(postID, replyID int64, author string) *chain.Reply {
	r := &chain.Reply{Author: author, PostTime: 1690002000}
	f.snap.Replies[fmt.Sprintf("%d-%d", postID, replyID)] = r
	return r
}

func (f *fixture) seedComment(postID, parentReplyID, commentID int64, author string) *chain.Comment {
	c := &chain.Comment{Author: author, PostTime: 1690003000}
	f.snap.Comments[fmt.Sprintf("%d-%d-%d", postID, parentReplyID, commentID)] = c
	return c
}

func (f *fixture) seedToken(communityID int64, address string) *chain.CommunityToken {
	token := &chain.CommunityToken{
		ContractAddress: address,
		CommunityID:     communityID,
		Name:            "Community Coin",
		Symbol:          "CC",
		CreationTime:    1690004000,
	}
	f.snap.Tokens[fmt.Sprintf("%d-%s", communityID, address)] = token
	return token
}

func (f *fixture) mustCommunity(key string) *models.Community {
	c, err := f.store.Community(f.ctx, key)
	if err != nil || c == nil {
		f.t.Fatalf("community %q not materialized: %v", key, err)
	}
	return c
}

func (f *fixture) mustPost(key string) *models.Post {
	p, err := f.store.Post(f.ctx, key)
	if err != nil || p == nil {
		f.t.Fatalf("post %q not materialized: %v", key, err)
	}
	return p
}

func (f *fixture) lastOutcome(entityID string) string {
	entries, err := f.store.HistoryByEntity(f.ctx, entityID)
	if err != nil || len(entries) == 0 {
		f.t.Fatalf("no audit entries for %q: %v", entityID, err)
	}
	return entries[len(entries)-1].Outcome
}

func TestPostCreateMaintainsCommunityAndTagCounters(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 1)
	f.seedTag(1, 1)
	f.seedPost(42, 1, "0xAlice", []int64{1})

	err := f.engine.HandleCommunityCreated(f.ctx, CommunityCreated{TransactionInfo: f.tx(), CommunityID: 1})
	assert.NoError(t, err)
	err = f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 42})
	assert.NoError(t, err)

	community := f.mustCommunity("1-1")
	assert.Equal(t, 1, community.PostCount)
	assert.Equal(t, 1, community.TagCount)
	assert.Equal(t, 0, community.DeletedPostCount)

	tag, err := f.store.Tag(f.ctx, "1-1-1")
	assert.NoError(t, err)
	if assert.NotNil(t, tag) {
		assert.Equal(t, 1, tag.PostCount)
	}

	user, err := f.store.User(f.ctx, "0xalice")
	assert.NoError(t, err)
	if assert.NotNil(t, user) {
		assert.Equal(t, 1, user.PostCount)
	}

	// First rating-relevant event assigns the starting rating.
	rating, err := f.store.Rating(f.ctx, "1-1-0xalice")
	assert.NoError(t, err)
	if assert.NotNil(t, rating) {
		assert.Equal(t, 10, rating.Rating)
	}
}

func TestPostDeleteCascadesOverLiveChildren(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.seedPost(7, 1, "0xAlice", nil)
	f.seedReply(7, 1, "0xBob")
	f.seedComment(7, 1, 1, "0xCarol")

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandleReplyCreated(f.ctx, ReplyCreated{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))
	assert.NoError(t, f.engine.HandleCommentCreated(f.ctx, CommentCreated{TransactionInfo: f.tx(), PostID: 7, ParentReplyID: 1, CommentID: 1}))

	community := f.mustCommunity("1-1")
	assert.Equal(t, 1, community.PostCount)
	assert.Equal(t, 1, community.ReplyCount)

	assert.NoError(t, f.engine.HandlePostDeleted(f.ctx, PostDeleted{TransactionInfo: f.tx(), PostID: 7}))

	post := f.mustPost("1-7")
	assert.True(t, post.IsDeleted)

	reply, err := f.store.Reply(f.ctx, "1-7-1")
	assert.NoError(t, err)
	if assert.NotNil(t, reply) {
		assert.True(t, reply.IsDeleted)
	}
	comment, err := f.store.Comment(f.ctx, "1-7-1-1")
	assert.NoError(t, err)
	if assert.NotNil(t, comment) {
		assert.True(t, comment.IsDeleted)
	}

	community = f.mustCommunity("1-1")
	assert.Equal(t, 0, community.PostCount)
	assert.Equal(t, 1, community.DeletedPostCount)
	assert.Equal(t, 0, community.ReplyCount)

	bob, err := f.store.User(f.ctx, "0xbob")
	assert.NoError(t, err)
	if assert.NotNil(t, bob) {
		assert.Equal(t, 0, bob.ReplyCount)
	}
	carol, err := f.store.User(f.ctx, "0xcarol")
	assert.NoError(t, err)
	if assert.NotNil(t, carol) {
		assert.Equal(t, 0, carol.CommentCount)
	}
}

func TestPostDeleteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.seedPost(7, 1, "0xAlice", nil)

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandlePostDeleted(f.ctx, PostDeleted{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandlePostDeleted(f.ctx, PostDeleted{TransactionInfo: f.tx(), PostID: 7}))

	community := f.mustCommunity("1-1")
	assert.Equal(t, 0, community.PostCount)
	assert.Equal(t, 1, community.DeletedPostCount)
	assert.Equal(t, "skipped", f.lastOutcome("1-7"))
}

func TestRedeliveredCreateDoesNotDoubleCount(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.seedPost(7, 1, "0xAlice", nil)

	ev := PostCreated{TransactionInfo: f.tx(), PostID: 7}
	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, ev))
	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, ev))

	community := f.mustCommunity("1-1")
	assert.Equal(t, 1, community.PostCount)

	user, err := f.store.User(f.ctx, "0xalice")
	assert.NoError(t, err)
	if assert.NotNil(t, user) {
		assert.Equal(t, 1, user.PostCount)
	}

	// The audit key includes the transaction hash, so a redelivery
	// overwrites its row instead of duplicating it.
	entries, err := f.store.HistoryByTransaction(f.ctx, ev.Hash)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDeleteOfUnseenPostMaterializesFirst(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.seedPost(5, 1, "0xAlice", nil)

	// No create event was ever processed for post 5.
	assert.NoError(t, f.engine.HandlePostDeleted(f.ctx, PostDeleted{TransactionInfo: f.tx(), PostID: 5}))

	post := f.mustPost("1-5")
	assert.True(t, post.IsDeleted)

	community := f.mustCommunity("1-1")
	assert.Equal(t, 0, community.PostCount)
	assert.Equal(t, 1, community.DeletedPostCount)
}

func TestDeleteOfUnknownPostIsRecordedNoOp(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.engine.HandlePostDeleted(f.ctx, PostDeleted{TransactionInfo: f.tx(), PostID: 99}))

	post, err := f.store.Post(f.ctx, "1-99")
	assert.NoError(t, err)
	assert.Nil(t, post)
	assert.Equal(t, "not-found", f.lastOutcome("1-99"))
}

func TestCommunityPostCountMatchesLivePosts(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	for i := int64(1); i <= 4; i++ {
		f.seedPost(i, 1, "0xAlice", nil)
	}

	for i := int64(1); i <= 4; i++ {
		assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: i}))
	}
	assert.NoError(t, f.engine.HandlePostDeleted(f.ctx, PostDeleted{TransactionInfo: f.tx(), PostID: 2}))
	assert.NoError(t, f.engine.HandlePostDeleted(f.ctx, PostDeleted{TransactionInfo: f.tx(), PostID: 4}))
	assert.NoError(t, f.engine.HandlePostDeleted(f.ctx, PostDeleted{TransactionInfo: f.tx(), PostID: 4}))

	community := f.mustCommunity("1-1")
	live, err := f.store.LivePostCount(f.ctx, "1-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(community.PostCount), live)
	assert.Equal(t, 2, community.PostCount)
	assert.Equal(t, 2, community.DeletedPostCount)
}

func TestPostRestoreRevalidatesAgainstLedger(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	truth := f.seedPost(7, 1, "0xAlice", nil)
	f.seedReply(7, 1, "0xBob")

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandleReplyCreated(f.ctx, ReplyCreated{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))
	assert.NoError(t, f.engine.HandlePostDeleted(f.ctx, PostDeleted{TransactionInfo: f.tx(), PostID: 7}))

	// The ledger still reports the post deleted: restore must not proceed.
	truth.IsDeleted = true
	assert.NoError(t, f.engine.HandlePostRestored(f.ctx, PostRestored{TransactionInfo: f.tx(), PostID: 7}))
	assert.True(t, f.mustPost("1-7").IsDeleted)
	assert.Equal(t, "skipped", f.lastOutcome("1-7"))

	truth.IsDeleted = false
	assert.NoError(t, f.engine.HandlePostRestored(f.ctx, PostRestored{TransactionInfo: f.tx(), PostID: 7}))

	post := f.mustPost("1-7")
	assert.False(t, post.IsDeleted)

	// Children stay deleted and the community's reply count stays at zero.
	reply, err := f.store.Reply(f.ctx, "1-7-1")
	assert.NoError(t, err)
	if assert.NotNil(t, reply) {
		assert.True(t, reply.IsDeleted)
	}
	community := f.mustCommunity("1-1")
	assert.Equal(t, 1, community.PostCount)
	assert.Equal(t, 0, community.DeletedPostCount)
	assert.Equal(t, 0, community.ReplyCount)
}

func TestPostRestoreResetsChildCounters(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.seedPost(7, 1, "0xAlice", nil)
	f.seedReply(7, 1, "0xBob")
	f.seedComment(7, 1, 1, "0xCarol")

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandleReplyCreated(f.ctx, ReplyCreated{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))
	assert.NoError(t, f.engine.HandleCommentCreated(f.ctx, CommentCreated{TransactionInfo: f.tx(), PostID: 7, ParentReplyID: 1, CommentID: 1}))

	assert.Equal(t, 1, f.mustPost("1-7").ReplyCount)

	assert.NoError(t, f.engine.HandlePostDeleted(f.ctx, PostDeleted{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandlePostRestored(f.ctx, PostRestored{TransactionInfo: f.tx(), PostID: 7}))

	// The children stay deleted, so the restored post reports no live
	// replies or comments.
	post := f.mustPost("1-7")
	assert.False(t, post.IsDeleted)
	assert.Equal(t, 0, post.ReplyCount)
	assert.Equal(t, 0, post.CommentCount)

	reply, err := f.store.Reply(f.ctx, "1-7-1")
	assert.NoError(t, err)
	if assert.NotNil(t, reply) {
		assert.True(t, reply.IsDeleted)
		assert.Equal(t, 0, reply.CommentCount)
	}
}

func TestReplyDeleteResetsOwnCommentCount(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.seedPost(7, 1, "0xAlice", nil)
	f.seedReply(7, 1, "0xBob")
	f.seedComment(7, 1, 1, "0xCarol")

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandleReplyCreated(f.ctx, ReplyCreated{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))
	assert.NoError(t, f.engine.HandleCommentCreated(f.ctx, CommentCreated{TransactionInfo: f.tx(), PostID: 7, ParentReplyID: 1, CommentID: 1}))
	assert.NoError(t, f.engine.HandleReplyDeleted(f.ctx, ReplyDeleted{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))

	reply, err := f.store.Reply(f.ctx, "1-7-1")
	assert.NoError(t, err)
	if assert.NotNil(t, reply) {
		assert.True(t, reply.IsDeleted)
		assert.Equal(t, 0, reply.CommentCount)
	}
	assert.Equal(t, 0, f.mustPost("1-7").ReplyCount)
}

func TestTagMembershipDiffOnEdit(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 2)
	f.seedTag(1, 1)
	f.seedTag(1, 2)
	truth := f.seedPost(7, 1, "0xAlice", []int64{1})

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))

	truth.Tags = []int64{2}
	assert.NoError(t, f.engine.HandlePostEdited(f.ctx, PostEdited{TransactionInfo: f.tx(), PostID: 7}))

	tag1, err := f.store.Tag(f.ctx, "1-1-1")
	assert.NoError(t, err)
	if assert.NotNil(t, tag1) {
		assert.Equal(t, 0, tag1.PostCount)
	}
	tag2, err := f.store.Tag(f.ctx, "1-1-2")
	assert.NoError(t, err)
	if assert.NotNil(t, tag2) {
		assert.Equal(t, 1, tag2.PostCount)
	}
	assert.Equal(t, []int64{2}, f.mustPost("1-7").Tags)
}

func TestPostMoveBetweenCommunities(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.seedCommunity(2, 0)
	truth := f.seedPost(7, 1, "0xAlice", nil)
	f.seedReply(7, 1, "0xBob")

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandleReplyCreated(f.ctx, ReplyCreated{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))

	truth.CommunityID = 2
	assert.NoError(t, f.engine.HandlePostEdited(f.ctx, PostEdited{TransactionInfo: f.tx(), PostID: 7}))

	old := f.mustCommunity("1-1")
	assert.Equal(t, 0, old.PostCount)
	assert.Equal(t, 0, old.ReplyCount)

	moved := f.mustCommunity("1-2")
	assert.Equal(t, 1, moved.PostCount)
	assert.Equal(t, 1, moved.ReplyCount)
	assert.Equal(t, "1-2", f.mustPost("1-7").CommunityID)
}

func TestContentUnreachableLeavesFieldsUnset(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	truth := f.seedPost(7, 1, "0xAlice", nil)
	truth.ContentHash = "Qmmissing"

	// Every fetch attempt fails; the event still completes.
	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))

	post := f.mustPost("1-7")
	assert.Empty(t, post.Title)
	assert.Empty(t, post.Content)
	assert.Equal(t, "content-unreachable", f.lastOutcome("1-7"))
}

func TestContentShapeInvalidSetsSentinel(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	truth := f.seedPost(7, 1, "0xAlice", nil)
	truth.ContentHash = "Qmbadshape"
	f.addObject("Qmbadshape", "][ not json")

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))

	post := f.mustPost("1-7")
	assert.Equal(t, content.Unresolvable, post.Title)
	assert.Equal(t, content.Unresolvable, post.Content)
	assert.Equal(t, "content-invalid", f.lastOutcome("1-7"))
}

func TestPostContentResolvedIntoSearchBlob(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 1)
	tag := f.seedTag(1, 1)
	tag.ContentHash = "Qmtag"
	f.addObject("Qmtag", `{"name":"golang","description":"Go questions"}`)
	truth := f.seedPost(7, 1, "0xAlice", []int64{1})
	truth.ContentHash = "Qmpost"
	f.addObject("Qmpost", `{"title":"How do channels work","content":"Buffered vs unbuffered"}`)

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))

	post := f.mustPost("1-7")
	assert.Equal(t, "How do channels work", post.Title)
	assert.Contains(t, post.SearchContent, "golang")
	assert.Contains(t, post.SearchContent, "How do channels work")
	assert.Contains(t, post.SearchContent, "Buffered vs unbuffered")
}

func TestReplyDeleteDropsItFromSearchBlob(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	truth := f.seedPost(7, 1, "0xAlice", nil)
	truth.ContentHash = "Qmpost"
	f.addObject("Qmpost", `{"title":"T","content":"B"}`)
	reply := f.seedReply(7, 1, "0xBob")
	reply.ContentHash = "Qmreply"
	f.addObject("Qmreply", `{"content":"use select"}`)

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandleReplyCreated(f.ctx, ReplyCreated{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))
	assert.Contains(t, f.mustPost("1-7").SearchContent, "use select")

	assert.NoError(t, f.engine.HandleReplyDeleted(f.ctx, ReplyDeleted{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))
	assert.NotContains(t, f.mustPost("1-7").SearchContent, "use select")
}

func TestTranslationSetFollowsLedger(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	truth := f.seedPost(7, 1, "0xAlice", nil)
	truth.Translations = []chain.Translation{
		{Language: "en", ContentHash: "Qmen"},
		{Language: "fr", ContentHash: "Qmfr"},
	}
	f.addObject("Qmen", `{"title":"Title","content":"Body"}`)
	f.addObject("Qmfr", `{"title":"Titre","content":"Corps"}`)

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))

	translations, err := f.store.TranslationsByParent(f.ctx, "1-7")
	assert.NoError(t, err)
	assert.Len(t, translations, 2)

	truth.Translations = truth.Translations[1:]
	assert.NoError(t, f.engine.HandlePostEdited(f.ctx, PostEdited{TransactionInfo: f.tx(), PostID: 7}))

	translations, err = f.store.TranslationsByParent(f.ctx, "1-7")
	assert.NoError(t, err)
	if assert.Len(t, translations, 1) {
		assert.Equal(t, "fr", translations[0].Language)
		assert.Equal(t, "Titre", translations[0].Title)
	}
}

func TestOfficialReplySwap(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.seedPost(7, 1, "0xAlice", nil)
	f.seedReply(7, 1, "0xBob")
	f.seedReply(7, 2, "0xCarol")

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandleOfficialReplyChanged(f.ctx, OfficialReplyChanged{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))
	assert.NoError(t, f.engine.HandleOfficialReplyChanged(f.ctx, OfficialReplyChanged{TransactionInfo: f.tx(), PostID: 7, ReplyID: 2}))

	first, err := f.store.Reply(f.ctx, "1-7-1")
	assert.NoError(t, err)
	if assert.NotNil(t, first) {
		assert.False(t, first.IsOfficialReply)
	}
	second, err := f.store.Reply(f.ctx, "1-7-2")
	assert.NoError(t, err)
	if assert.NotNil(t, second) {
		assert.True(t, second.IsOfficialReply)
	}
	assert.Equal(t, int64(2), f.mustPost("1-7").OfficialReply)
}

func TestBestReplyClearedOnZeroId(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.seedPost(7, 1, "0xAlice", nil)
	f.seedReply(7, 1, "0xBob")

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandleBestReplyChanged(f.ctx, BestReplyChanged{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))
	assert.NoError(t, f.engine.HandleBestReplyChanged(f.ctx, BestReplyChanged{TransactionInfo: f.tx(), PostID: 7, ReplyID: 0}))

	reply, err := f.store.Reply(f.ctx, "1-7-1")
	assert.NoError(t, err)
	if assert.NotNil(t, reply) {
		assert.False(t, reply.IsBestReply)
	}
	assert.Equal(t, int64(0), f.mustPost("1-7").BestReply)
}

func TestVoteRoutesByIdShape(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	post := f.seedPost(7, 1, "0xAlice", nil)
	reply := f.seedReply(7, 1, "0xBob")
	comment := f.seedComment(7, 1, 1, "0xCarol")

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandleReplyCreated(f.ctx, ReplyCreated{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))
	assert.NoError(t, f.engine.HandleCommentCreated(f.ctx, CommentCreated{TransactionInfo: f.tx(), PostID: 7, ParentReplyID: 1, CommentID: 1}))

	post.Rating = 5
	reply.Rating = 3
	comment.Rating = 2

	assert.NoError(t, f.engine.HandleItemVoted(f.ctx, ItemVoted{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandleItemVoted(f.ctx, ItemVoted{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))
	assert.NoError(t, f.engine.HandleItemVoted(f.ctx, ItemVoted{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1, CommentID: 1}))

	assert.Equal(t, 5, f.mustPost("1-7").Rating)
	gotReply, err := f.store.Reply(f.ctx, "1-7-1")
	assert.NoError(t, err)
	if assert.NotNil(t, gotReply) {
		assert.Equal(t, 3, gotReply.Rating)
	}
	gotComment, err := f.store.Comment(f.ctx, "1-7-1-1")
	assert.NoError(t, err)
	if assert.NotNil(t, gotComment) {
		assert.Equal(t, 2, gotComment.Rating)
	}
}

func TestRatingRefreshReadsLedgerTruth(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.seedPost(7, 1, "0xAlice", nil)
	truthRating := 37
	f.snap.Ratings["1-0xalice"] = &truthRating

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))

	rating, err := f.store.Rating(f.ctx, "1-1-0xalice")
	assert.NoError(t, err)
	if assert.NotNil(t, rating) {
		assert.Equal(t, 37, rating.Rating)
	}
}

func TestBanSuppressesRatingRefresh(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.seedPost(7, 1, "0xAlice", nil)
	f.seedReply(7, 1, "0xBob")

	assert.NoError(t, f.engine.HandlePostCreated(f.ctx, PostCreated{TransactionInfo: f.tx(), PostID: 7}))
	assert.NoError(t, f.engine.HandleUserBanned(f.ctx, UserBanned{TransactionInfo: f.tx(), CommunityID: 1, Address: "0xBob"}))

	truthRating := 99
	f.snap.Ratings["1-0xbob"] = &truthRating

	// The cascade touches Bob's reply but the ban keeps the rating cache
	// untouched.
	assert.NoError(t, f.engine.HandleReplyCreated(f.ctx, ReplyCreated{TransactionInfo: f.tx(), PostID: 7, ReplyID: 1}))
	assert.NoError(t, f.engine.HandlePostDeleted(f.ctx, PostDeleted{TransactionInfo: f.tx(), PostID: 7}))

	rating, err := f.store.Rating(f.ctx, "1-1-0xbob")
	assert.NoError(t, err)
	assert.Nil(t, rating)

	// Unbanning re-derives it immediately.
	assert.NoError(t, f.engine.HandleUserUnbanned(f.ctx, UserUnbanned{TransactionInfo: f.tx(), CommunityID: 1, Address: "0xBob"}))
	rating, err = f.store.Rating(f.ctx, "1-1-0xbob")
	assert.NoError(t, err)
	if assert.NotNil(t, rating) {
		assert.Equal(t, 99, rating.Rating)
	}
}

func TestFollowUnfollowAdjustsFollowerCount(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)

	assert.NoError(t, f.engine.HandleCommunityCreated(f.ctx, CommunityCreated{TransactionInfo: f.tx(), CommunityID: 1}))
	assert.NoError(t, f.engine.HandleCommunityFollowed(f.ctx, CommunityFollowed{TransactionInfo: f.tx(), Address: "0xAlice", CommunityID: 1}))
	assert.NoError(t, f.engine.HandleCommunityFollowed(f.ctx, CommunityFollowed{TransactionInfo: f.tx(), Address: "0xAlice", CommunityID: 1}))

	assert.Equal(t, 1, f.mustCommunity("1-1").FollowerCount)

	assert.NoError(t, f.engine.HandleCommunityUnfollowed(f.ctx, CommunityUnfollowed{TransactionInfo: f.tx(), Address: "0xAlice", CommunityID: 1}))
	assert.Equal(t, 0, f.mustCommunity("1-1").FollowerCount)

	user, err := f.store.User(f.ctx, "0xalice")
	assert.NoError(t, err)
	if assert.NotNil(t, user) {
		assert.Empty(t, user.FollowedCommunities)
	}
}

func TestFollowMaterializesCommunityForCounter(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)

	// No community-created event yet: the follow itself must put the
	// community on the books so the counter has a home.
	assert.NoError(t, f.engine.HandleCommunityFollowed(f.ctx, CommunityFollowed{TransactionInfo: f.tx(), Address: "0xAlice", CommunityID: 1}))

	community := f.mustCommunity("1-1")
	assert.Equal(t, 1, community.FollowerCount)

	user, err := f.store.User(f.ctx, "0xalice")
	assert.NoError(t, err)
	if assert.NotNil(t, user) {
		assert.Equal(t, []string{"1-1"}, user.FollowedCommunities)
	}

	// A later create finds the community already materialized; the counter
	// survives.
	assert.NoError(t, f.engine.HandleCommunityCreated(f.ctx, CommunityCreated{TransactionInfo: f.tx(), CommunityID: 1}))
	assert.Equal(t, 1, f.mustCommunity("1-1").FollowerCount)
}

func TestFollowOfUnknownCommunityIsRecordedNoOp(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.engine.HandleCommunityFollowed(f.ctx, CommunityFollowed{TransactionInfo: f.tx(), Address: "0xAlice", CommunityID: 9}))
	assert.Equal(t, "not-found", f.lastOutcome("0xalice"))

	user, err := f.store.User(f.ctx, "0xalice")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestCommunityTokenRewardsFollowLedger(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	truth := f.seedToken(1, "0xc0ffee")

	assert.NoError(t, f.engine.HandleCommunityTokenCreated(f.ctx, CommunityTokenCreated{TransactionInfo: f.tx(), CommunityID: 1, TokenAddress: "0xC0ffee"}))

	token, err := f.store.Token(f.ctx, "1-1-0xc0ffee")
	assert.NoError(t, err)
	if assert.NotNil(t, token) {
		assert.Equal(t, "Community Coin", token.Name)
		assert.Equal(t, "CC", token.Symbol)
		assert.Equal(t, int64(0), token.MaxRewardPerPeriod)
	}

	truth.MaxRewardPerPeriod = 500
	truth.ActiveUsersInPeriod = 25
	truth.MaxRewardPerUser = 20
	assert.NoError(t, f.engine.HandleCommunityTokenUpdated(f.ctx, CommunityTokenUpdated{TransactionInfo: f.tx(), CommunityID: 1, TokenAddress: "0xC0ffee"}))

	token, err = f.store.Token(f.ctx, "1-1-0xc0ffee")
	assert.NoError(t, err)
	if assert.NotNil(t, token) {
		assert.Equal(t, int64(500), token.MaxRewardPerPeriod)
		assert.Equal(t, int64(25), token.ActiveUsersInPeriod)
		assert.Equal(t, int64(20), token.MaxRewardPerUser)
	}
}

func TestCommunityTokenUnknownInLedgerIsRecordedNoOp(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)

	assert.NoError(t, f.engine.HandleCommunityTokenCreated(f.ctx, CommunityTokenCreated{TransactionInfo: f.tx(), CommunityID: 1, TokenAddress: "0xdead"}))
	assert.Equal(t, "not-found", f.lastOutcome("1-1-0xdead"))

	token, err := f.store.Token(f.ctx, "1-1-0xdead")
	assert.NoError(t, err)
	assert.Nil(t, token)
}

func TestAchievementAwardIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.snap.Achievements["3"] = &chain.Achievement{ID: 3, MaxCount: 100}

	assert.NoError(t, f.engine.HandleAchievementCreated(f.ctx, AchievementCreated{TransactionInfo: f.tx(), AchievementID: 3}))
	assert.NoError(t, f.engine.HandleAchievementAwarded(f.ctx, AchievementAwarded{TransactionInfo: f.tx(), AchievementID: 3, Address: "0xAlice"}))
	assert.NoError(t, f.engine.HandleAchievementAwarded(f.ctx, AchievementAwarded{TransactionInfo: f.tx(), AchievementID: 3, Address: "0xAlice"}))

	achievement, err := f.store.Achievement(f.ctx, "1-3")
	assert.NoError(t, err)
	if assert.NotNil(t, achievement) {
		assert.Equal(t, int64(1), achievement.FactCount)
	}
	user, err := f.store.User(f.ctx, "0xalice")
	assert.NoError(t, err)
	if assert.NotNil(t, user) {
		assert.Equal(t, []string{"1-3"}, user.Achievements)
	}
}

func TestDocumentationTreeDiff(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.addObject("Qmdoc1", `{"documentations":[{"id":"a","title":"Intro","children":[{"id":"b","title":"Setup"}]}]}`)
	f.addObject("Qmdoc2", `{"documentations":[{"id":"a","title":"Intro","children":[{"id":"c","title":"Usage"}]}]}`)

	assert.NoError(t, f.engine.HandleDocumentationUpdated(f.ctx, DocumentationUpdated{TransactionInfo: f.tx(), CommunityID: 1, ContentHash: "Qmdoc1"}))

	f.mustPost("1-a")
	f.mustPost("1-b")

	assert.NoError(t, f.engine.HandleDocumentationUpdated(f.ctx, DocumentationUpdated{TransactionInfo: f.tx(), CommunityID: 1, ContentHash: "Qmdoc2"}))

	// b left the tree, c entered it, a survives untouched.
	removed, err := f.store.Post(f.ctx, "1-b")
	assert.NoError(t, err)
	assert.Nil(t, removed)
	created := f.mustPost("1-c")
	assert.Equal(t, models.PostTypeDocumentation, created.PostType)
	assert.Equal(t, "Usage", created.Title)
	f.mustPost("1-a")

	record, err := f.store.Documentation(f.ctx, "1-1")
	assert.NoError(t, err)
	if assert.NotNil(t, record) {
		assert.Equal(t, "Qmdoc2", record.ContentHash)
	}
}

func TestDocumentationUnchangedHashIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.addObject("Qmdoc1", `{"documentations":[{"id":"a","title":"Intro"}]}`)

	assert.NoError(t, f.engine.HandleDocumentationUpdated(f.ctx, DocumentationUpdated{TransactionInfo: f.tx(), CommunityID: 1, ContentHash: "Qmdoc1"}))
	assert.NoError(t, f.engine.HandleDocumentationUpdated(f.ctx, DocumentationUpdated{TransactionInfo: f.tx(), CommunityID: 1, ContentHash: "Qmdoc1"}))

	assert.Equal(t, "skipped", f.lastOutcome("1-1"))
}

func TestDocumentationUnresolvableOldTreeHaltsDiff(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.addObject("Qmdoc1", `{"documentations":[{"id":"a","title":"Intro"},{"id":"b","title":"Setup"}]}`)
	f.addObject("Qmdoc2", `{"documentations":[{"id":"a","title":"Intro"}]}`)

	assert.NoError(t, f.engine.HandleDocumentationUpdated(f.ctx, DocumentationUpdated{TransactionInfo: f.tx(), CommunityID: 1, ContentHash: "Qmdoc1"}))

	// The previous snapshot can no longer be fetched: without it the
	// vanished nodes cannot be identified, so the stored hash must not
	// advance past them.
	delete(f.objects, "content/Qmdoc1")
	assert.NoError(t, f.engine.HandleDocumentationUpdated(f.ctx, DocumentationUpdated{TransactionInfo: f.tx(), CommunityID: 1, ContentHash: "Qmdoc2"}))
	assert.Equal(t, "content-unreachable", f.lastOutcome("1-1"))

	f.mustPost("1-a")
	f.mustPost("1-b")
	record, err := f.store.Documentation(f.ctx, "1-1")
	assert.NoError(t, err)
	if assert.NotNil(t, record) {
		assert.Equal(t, "Qmdoc1", record.ContentHash)
	}

	// Once the old payload is reachable again the diff completes.
	f.addObject("Qmdoc1", `{"documentations":[{"id":"a","title":"Intro"},{"id":"b","title":"Setup"}]}`)
	assert.NoError(t, f.engine.HandleDocumentationUpdated(f.ctx, DocumentationUpdated{TransactionInfo: f.tx(), CommunityID: 1, ContentHash: "Qmdoc2"}))

	removed, err := f.store.Post(f.ctx, "1-b")
	assert.NoError(t, err)
	assert.Nil(t, removed)
	record, err = f.store.Documentation(f.ctx, "1-1")
	assert.NoError(t, err)
	if assert.NotNil(t, record) {
		assert.Equal(t, "Qmdoc2", record.ContentHash)
	}
}

func TestDispatchRoutesEnvelopes(t *testing.T) {
	f := newFixture(t)
	f.seedCommunity(1, 0)
	f.seedPost(7, 1, "0xAlice", nil)

	env := Envelope{
		Event:     "post-created",
		Hash:      "0xfeed",
		Timestamp: 1700000100,
		Actor:     "0xAlice",
		Params:    []byte(`{"post_id":7}`),
	}
	assert.NoError(t, f.engine.Dispatch(f.ctx, env))
	f.mustPost("1-7")

	err := f.engine.Dispatch(f.ctx, Envelope{Event: "no-such-event"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
