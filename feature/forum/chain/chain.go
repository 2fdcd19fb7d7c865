package chain

import "context"

// The ledger is the source of truth the derived model tracks. All getters are
// pure reads against ledger state as of the current event. Absence (including
// a reverted contract read) is reported as a nil record with a nil error,
// never as an error: the reconcilers degrade gracefully on absent truth.

// Translation is one per-language translation of an item as reported by the
// ledger.
type Translation struct {
	Language    string `json:"language"`
	ContentHash string `json:"content_hash"`
}

// User is the ledger-truth record of an account.
type User struct {
	Address      string `json:"address"`
	CreationTime int64  `json:"creation_time"`
	ContentHash  string `json:"content_hash"`
}

// Community is the ledger-truth record of a community.
type Community struct {
	ID           int64  `json:"id"`
	CreationTime int64  `json:"creation_time"`
	IsFrozen     bool   `json:"is_frozen"`
	ContentHash  string `json:"content_hash"`
	TagCount     int    `json:"tag_count"`
}

// Tag is the ledger-truth record of a community tag.
type Tag struct {
	CommunityID  int64         `json:"community_id"`
	ID           int64         `json:"id"`
	ContentHash  string        `json:"content_hash"`
	Translations []Translation `json:"translations"`
}

// Post is the ledger-truth record of a post.
type Post struct {
	ID            int64         `json:"id"`
	CommunityID   int64         `json:"community_id"`
	Author        string        `json:"author"`
	Rating        int           `json:"rating"`
	PostTime      int64         `json:"post_time"`
	PostType      int           `json:"post_type"`
	CommentCount  int           `json:"comment_count"`
	ReplyCount    int           `json:"reply_count"`
	OfficialReply int64         `json:"official_reply"`
	BestReply     int64         `json:"best_reply"`
	IsDeleted     bool          `json:"is_deleted"`
	Tags          []int64       `json:"tags"`
	ContentHash   string        `json:"content_hash"`
	Translations  []Translation `json:"translations"`
}

// Reply is the ledger-truth record of a reply.
type Reply struct {
	Author        string        `json:"author"`
	Rating        int           `json:"rating"`
	PostTime      int64         `json:"post_time"`
	ParentReplyID int64         `json:"parent_reply_id"`
	CommentCount  int           `json:"comment_count"`
	IsDeleted     bool          `json:"is_deleted"`
	IsFirstReply  bool          `json:"is_first_reply"`
	IsQuickReply  bool          `json:"is_quick_reply"`
	ContentHash   string        `json:"content_hash"`
	Translations  []Translation `json:"translations"`
}

// Comment is the ledger-truth record of a comment.
type Comment struct {
	Author       string        `json:"author"`
	Rating       int           `json:"rating"`
	PostTime     int64         `json:"post_time"`
	IsDeleted    bool          `json:"is_deleted"`
	ContentHash  string        `json:"content_hash"`
	Translations []Translation `json:"translations"`
}

// Achievement is the ledger-truth record of an NFT achievement configuration.
type Achievement struct {
	ID              int64  `json:"id"`
	FactCount       int64  `json:"fact_count"`
	MaxCount        int64  `json:"max_count"`
	AchievementURI  string `json:"achievement_uri"`
	AchievementType int    `json:"achievement_type"`
	CommunityID     int64  `json:"community_id"`
}

// CommunityToken is the ledger-truth record of a community's reward token.
type CommunityToken struct {
	ContractAddress     string `json:"contract_address"`
	CommunityID         int64  `json:"community_id"`
	Name                string `json:"name"`
	Symbol              string `json:"symbol"`
	CreationTime        int64  `json:"creation_time"`
	MaxRewardPerPeriod  int64  `json:"max_reward_per_period"`
	ActiveUsersInPeriod int64  `json:"active_users_in_period"`
	MaxRewardPerUser    int64  `json:"max_reward_per_user"`
}

// Client is the authoritative state accessor. Implementations wrap the actual
// ledger transport; the engine only ever sees these typed reads.
type Client interface {
	GetUserByAddress(ctx context.Context, address string) (*User, error)
	// GetUserRating returns the authoritative rating of a user within a
	// community, or nil when the ledger has no record yet.
	GetUserRating(ctx context.Context, address string, communityID int64) (*int, error)
	GetCommunity(ctx context.Context, id int64) (*Community, error)
	GetTag(ctx context.Context, communityID, tagID int64) (*Tag, error)
	// GetTags returns all tags of a community in ledger order.
	GetTags(ctx context.Context, communityID int64) ([]Tag, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	GetReply(ctx context.Context, postID, replyID int64) (*Reply, error)
	GetComment(ctx context.Context, postID, parentReplyID, commentID int64) (*Comment, error)
	GetAchievement(ctx context.Context, id int64) (*Achievement, error)
	GetCommunityToken(ctx context.Context, contractAddress string, communityID int64) (*CommunityToken, error)
}
