package forum

// TransactionInfo is the originating transaction identity every event
// carries. It is recorded on the audit trail, never used for control flow.
type TransactionInfo struct {
	// Hash is the transaction hash.
	Hash string `json:"hash"`
	// Timestamp is the block timestamp in unix seconds.
	Timestamp int64 `json:"timestamp"`
	// Actor is the address that signed the transaction.
	Actor string `json:"actor"`
}

// One parameter record per event kind. Ids are ledger-local; the engine
// combines them with its configured network id to form entity keys.

type UserCreated struct {
	TransactionInfo
	Address string `json:"address"`
}

type UserUpdated struct {
	TransactionInfo
	Address string `json:"address"`
}

type CommunityFollowed struct {
	TransactionInfo
	Address     string `json:"address"`
	CommunityID int64  `json:"community_id"`
}

type CommunityUnfollowed struct {
	TransactionInfo
	Address     string `json:"address"`
	CommunityID int64  `json:"community_id"`
}

type CommunityCreated struct {
	TransactionInfo
	CommunityID int64 `json:"community_id"`
}

type CommunityUpdated struct {
	TransactionInfo
	CommunityID int64 `json:"community_id"`
}

type CommunityFrozen struct {
	TransactionInfo
	CommunityID int64 `json:"community_id"`
}

type CommunityUnfrozen struct {
	TransactionInfo
	CommunityID int64 `json:"community_id"`
}

type TagCreated struct {
	TransactionInfo
	CommunityID int64 `json:"community_id"`
	TagID       int64 `json:"tag_id"`
}

type TagUpdated struct {
	TransactionInfo
	CommunityID int64 `json:"community_id"`
	TagID       int64 `json:"tag_id"`
}

type PostCreated struct {
	TransactionInfo
	PostID int64 `json:"post_id"`
}

type PostEdited struct {
	TransactionInfo
	PostID int64 `json:"post_id"`
}

type PostDeleted struct {
	TransactionInfo
	PostID int64 `json:"post_id"`
}

type PostRestored struct {
	TransactionInfo
	PostID int64 `json:"post_id"`
}

type ReplyCreated struct {
	TransactionInfo
	PostID  int64 `json:"post_id"`
	ReplyID int64 `json:"reply_id"`
}

type ReplyEdited struct {
	TransactionInfo
	PostID  int64 `json:"post_id"`
	ReplyID int64 `json:"reply_id"`
}

type ReplyDeleted struct {
	TransactionInfo
	PostID  int64 `json:"post_id"`
	ReplyID int64 `json:"reply_id"`
}

type ReplyRestored struct {
	TransactionInfo
	PostID  int64 `json:"post_id"`
	ReplyID int64 `json:"reply_id"`
}

type CommentCreated struct {
	TransactionInfo
	PostID        int64 `json:"post_id"`
	ParentReplyID int64 `json:"parent_reply_id"`
	CommentID     int64 `json:"comment_id"`
}

type CommentEdited struct {
	TransactionInfo
	PostID        int64 `json:"post_id"`
	ParentReplyID int64 `json:"parent_reply_id"`
	CommentID     int64 `json:"comment_id"`
}

type CommentDeleted struct {
	TransactionInfo
	PostID        int64 `json:"post_id"`
	ParentReplyID int64 `json:"parent_reply_id"`
	CommentID     int64 `json:"comment_id"`
}

// ItemVoted routes by id shape: a non-zero CommentID targets a comment, else
// a non-zero ReplyID targets a reply, else the post itself.
type ItemVoted struct {
	TransactionInfo
	PostID    int64 `json:"post_id"`
	ReplyID   int64 `json:"reply_id"`
	CommentID int64 `json:"comment_id"`
}

type OfficialReplyChanged struct {
	TransactionInfo
	PostID  int64 `json:"post_id"`
	ReplyID int64 `json:"reply_id"`
}

type BestReplyChanged struct {
	TransactionInfo
	PostID  int64 `json:"post_id"`
	ReplyID int64 `json:"reply_id"`
}

type UserBanned struct {
	TransactionInfo
	CommunityID int64  `json:"community_id"`
	Address     string `json:"address"`
}

type UserUnbanned struct {
	TransactionInfo
	CommunityID int64  `json:"community_id"`
	Address     string `json:"address"`
}

type CommunityTokenCreated struct {
	TransactionInfo
	CommunityID  int64  `json:"community_id"`
	TokenAddress string `json:"token_address"`
}

type CommunityTokenUpdated struct {
	TransactionInfo
	CommunityID  int64  `json:"community_id"`
	TokenAddress string `json:"token_address"`
}

type AchievementCreated struct {
	TransactionInfo
	AchievementID int64 `json:"achievement_id"`
}

type AchievementAwarded struct {
	TransactionInfo
	AchievementID int64  `json:"achievement_id"`
	Address       string `json:"address"`
}

type DocumentationUpdated struct {
	TransactionInfo
	CommunityID int64  `json:"community_id"`
	ContentHash string `json:"content_hash"`
}
