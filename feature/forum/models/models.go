package models

// Post types as reported by the ledger.
const (
	PostTypeExpert        = 0
	PostTypeCommon        = 1
	PostTypeTutorial      = 2
	PostTypeDocumentation = 3
)

// Entity type names used for audit records and translation parents.
const (
	EntityUser          = "user"
	EntityCommunity     = "community"
	EntityTag           = "tag"
	EntityPost          = "post"
	EntityReply         = "reply"
	EntityComment       = "comment"
	EntityTranslation   = "translation"
	EntityDocumentation = "documentation"
	EntityRating        = "rating"
	EntityToken         = "token"
	EntityBan           = "ban"
	EntityAchievement   = "achievement"
)

// User is a ledger account materialized on the first event referencing its
// address. Users are never hard-deleted.
type User struct {
	// ID is the lowercased ledger address.
	ID           string `gorm:"primaryKey" json:"id"`
	CreationTime int64  `json:"creation_time"`
	ContentHash  string `json:"content_hash"`

	// Profile fields resolved from content.
	DisplayName string `json:"display_name"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location"`
	About       string `json:"about"`
	Avatar      string `json:"avatar"`

	// FollowedCommunities holds community keys the user follows.
	FollowedCommunities []string `gorm:"serializer:json" json:"followed_communities"`
	// Achievements holds achievement keys awarded to the user.
	Achievements []string `gorm:"serializer:json" json:"achievements"`

	// Authored-content counters, live entities only.
	PostCount    int `json:"post_count"`
	ReplyCount   int `json:"reply_count"`
	CommentCount int `json:"comment_count"`
}

// Community is a forum community.
type Community struct {
	ID      string `gorm:"primaryKey" json:"id"`
	Network int    `json:"network"`
	LocalID int64  `json:"local_id"`

	CreationTime int64  `json:"creation_time"`
	IsFrozen     bool   `json:"is_frozen"`
	ContentHash  string `json:"content_hash"`

	// Metadata resolved from content.
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Language    string `json:"language"`
	Avatar      string `json:"avatar"`

	TagCount         int `json:"tag_count"`
	PostCount        int `json:"post_count"`
	DeletedPostCount int `json:"deleted_post_count"`
	ReplyCount       int `json:"reply_count"`
	FollowerCount    int `json:"follower_count"`
}

// Tag belongs to exactly one community.
type Tag struct {
	ID          string `gorm:"primaryKey" json:"id"`
	CommunityID string `gorm:"index" json:"community_id"`
	LocalID     int64  `json:"local_id"`
	ContentHash string `json:"content_hash"`

	Name        string `json:"name"`
	Description string `json:"description"`

	PostCount        int `json:"post_count"`
	DeletedPostCount int `json:"deleted_post_count"`
}

// Post is a forum post. Documentation posts are materialized from the
// community documentation tree and carry PostTypeDocumentation.
type Post struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Network     int    `json:"network"`
	LocalID     int64  `json:"local_id"`
	CommunityID string `gorm:"index" json:"community_id"`
	Author      string `gorm:"index" json:"author"`

	PostType    int    `json:"post_type"`
	Rating      int    `json:"rating"`
	PostTime    int64  `json:"post_time"`
	ContentHash string `json:"content_hash"`

	Title   string `json:"title"`
	Content string `json:"content"`
	// SearchContent is the denormalized search blob rebuilt by the content
	// aggregator whenever reachable content changes.
	SearchContent string `json:"search_content"`

	// Tags holds the ledger-local tag ids of the owning community.
	Tags []int64 `gorm:"serializer:json" json:"tags"`

	CommentCount int `json:"comment_count"`
	ReplyCount   int `json:"reply_count"`

	// OfficialReply/BestReply are ledger-local reply ids, 0 when unset.
	OfficialReply int64 `json:"official_reply"`
	BestReply     int64 `json:"best_reply"`

	IsDeleted bool `json:"is_deleted"`
}

// Reply is a post reply. ParentReplyID 0 marks a top-level reply.
type Reply struct {
	ID            string `gorm:"primaryKey" json:"id"`
	PostID        string `gorm:"index" json:"post_id"`
	LocalID       int64  `json:"local_id"`
	ParentReplyID int64  `json:"parent_reply_id"`
	Author        string `gorm:"index" json:"author"`

	Rating      int    `json:"rating"`
	PostTime    int64  `json:"post_time"`
	ContentHash string `json:"content_hash"`
	Content     string `json:"content"`

	CommentCount int `json:"comment_count"`

	IsDeleted       bool `json:"is_deleted"`
	IsFirstReply    bool `json:"is_first_reply"`
	IsQuickReply    bool `json:"is_quick_reply"`
	IsOfficialReply bool `json:"is_official_reply"`
	IsBestReply     bool `json:"is_best_reply"`
}

// Comment sits under a post (ParentReplyID 0) or under a reply.
type Comment struct {
	ID            string `gorm:"primaryKey" json:"id"`
	PostID        string `gorm:"index" json:"post_id"`
	ParentReplyID int64  `json:"parent_reply_id"`
	LocalID       int64  `json:"local_id"`
	Author        string `gorm:"index" json:"author"`

	Rating      int    `json:"rating"`
	PostTime    int64  `json:"post_time"`
	ContentHash string `json:"content_hash"`
	Content     string `json:"content"`

	IsDeleted bool `json:"is_deleted"`
}

// Translation is a per-language child of a post, reply, comment, tag or
// community. It exists exactly while the ledger reports its language for the
// parent.
type Translation struct {
	ID          string `gorm:"primaryKey" json:"id"`
	ParentType  string `json:"parent_type"`
	ParentID    string `gorm:"index" json:"parent_id"`
	Language    string `json:"language"`
	ContentHash string `json:"content_hash"`

	Title   string `json:"title"`
	Content string `json:"content"`
}

// CommunityDocumentation stores the current documentation tree content hash of
// a community. Keyed by the community id.
type CommunityDocumentation struct {
	ID          string `gorm:"primaryKey" json:"id"`
	ContentHash string `json:"content_hash"`
}

// UserCommunityRating caches the authoritative rating of a user within a
// community. Created lazily on the first rating-relevant event.
type UserCommunityRating struct {
	ID          string `gorm:"primaryKey" json:"id"`
	CommunityID string `gorm:"index" json:"community_id"`
	UserID      string `gorm:"index" json:"user_id"`
	Rating      int    `json:"rating"`
}

// UserCommunityBan marks a user as banned within a community. While present,
// cascade deletions skip the user's rating refresh.
type UserCommunityBan struct {
	ID          string `gorm:"primaryKey" json:"id"`
	CommunityID string `gorm:"index" json:"community_id"`
	UserID      string `gorm:"index" json:"user_id"`
}

// CommunityToken is a community's reward token configuration: identity from
// creation, reward parameters refreshed on token update events.
type CommunityToken struct {
	ID              string `gorm:"primaryKey" json:"id"`
	CommunityID     string `gorm:"index" json:"community_id"`
	ContractAddress string `json:"contract_address"`

	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	CreationTime int64  `json:"creation_time"`

	MaxRewardPerPeriod  int64 `json:"max_reward_per_period"`
	ActiveUsersInPeriod int64 `json:"active_users_in_period"`
	MaxRewardPerUser    int64 `json:"max_reward_per_user"`
}

// Achievement is an NFT achievement configuration.
type Achievement struct {
	ID      string `gorm:"primaryKey" json:"id"`
	LocalID int64  `json:"local_id"`

	FactCount       int64  `json:"fact_count"`
	MaxCount        int64  `json:"max_count"`
	AchievementURI  string `json:"achievement_uri"`
	AchievementType int    `json:"achievement_type"`
	CommunityID     string `json:"community_id"`

	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// HistoryEntry is one audit record per processed event. The key includes the
// transaction hash, event name and target entity, so redelivery of an event
// overwrites its audit row instead of duplicating it.
type HistoryEntry struct {
	ID              string `gorm:"primaryKey" json:"id"`
	TransactionHash string `gorm:"index" json:"transaction_hash"`
	EventName       string `json:"event_name"`
	Actor           string `json:"actor"`
	EntityType      string `json:"entity_type"`
	EntityID        string `gorm:"index" json:"entity_id"`
	Timestamp       int64  `json:"timestamp"`
	Outcome         string `json:"outcome"`
	Note            string `json:"note"`
}
