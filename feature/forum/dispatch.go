package forum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the wire form of one ledger event: the event name, the
// originating transaction identity and the event-specific parameters.
type Envelope struct {
	Event     string          `json:"event"`
	Hash      string          `json:"hash"`
	Timestamp int64           `json:"timestamp"`
	Actor     string          `json:"actor"`
	Params    json.RawMessage `json:"params"`
}

// ErrUnknownEvent is wrapped into dispatch errors for unrecognized event
// names.
var ErrUnknownEvent = errors.New("unknown event")

func decode[E any](env Envelope) (E, error) {
	var ev E
	if len(env.Params) > 0 {
		if err := json.Unmarshal(env.Params, &ev); err != nil {
			return ev, fmt.Errorf("invalid %s params: %w", env.Event, err)
		}
	}
	return ev, nil
}

func dispatch[E any](ctx context.Context, env Envelope, set func(*E, TransactionInfo), handle func(context.Context, E) error) error {
	ev, err := decode[E](env)
	if err != nil {
		return err
	}
	set(&ev, TransactionInfo{Hash: env.Hash, Timestamp: env.Timestamp, Actor: env.Actor})
	return handle(ctx, ev)
}

// Dispatch routes one event envelope to its typed handler. Events are
// expected strictly in source order; the caller is the single worker.
func (e *Engine) Dispatch(ctx context.Context, env Envelope) error {
	switch env.Event {
	case "user-created":
		return dispatch(ctx, env, func(ev *UserCreated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleUserCreated)
	case "user-updated":
		return dispatch(ctx, env, func(ev *UserUpdated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleUserUpdated)
	case "community-followed":
		return dispatch(ctx, env, func(ev *CommunityFollowed, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleCommunityFollowed)
	case "community-unfollowed":
		return dispatch(ctx, env, func(ev *CommunityUnfollowed, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleCommunityUnfollowed)
	case "community-created":
		return dispatch(ctx, env, func(ev *CommunityCreated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleCommunityCreated)
	case "community-updated":
		return dispatch(ctx, env, func(ev *CommunityUpdated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleCommunityUpdated)
	case "community-frozen":
		return dispatch(ctx, env, func(ev *CommunityFrozen, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleCommunityFrozen)
	case "community-unfrozen":
		return dispatch(ctx, env, func(ev *CommunityUnfrozen, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleCommunityUnfrozen)
	case "tag-created":
		return dispatch(ctx, env, func(ev *TagCreated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleTagCreated)
	case "tag-updated":
		return dispatch(ctx, env, func(ev *TagUpdated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleTagUpdated)
	case "post-created":
		return dispatch(ctx, env, func(ev *PostCreated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandlePostCreated)
	case "post-edited":
		return dispatch(ctx, env, func(ev *PostEdited, t TransactionInfo) { ev.TransactionInfo = t }, e.HandlePostEdited)
	case "post-deleted":
		return dispatch(ctx, env, func(ev *PostDeleted, t TransactionInfo) { ev.TransactionInfo = t }, e.HandlePostDeleted)
	case "post-restored":
		return dispatch(ctx, env, func(ev *PostRestored, t TransactionInfo) { ev.TransactionInfo = t }, e.HandlePostRestored)
	case "reply-created":
		return dispatch(ctx, env, func(ev *ReplyCreated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleReplyCreated)
	case "reply-edited":
		return dispatch(ctx, env, func(ev *ReplyEdited, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleReplyEdited)
	case "reply-deleted":
		return dispatch(ctx, env, func(ev *ReplyDeleted, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleReplyDeleted)
	case "reply-restored":
		return dispatch(ctx, env, func(ev *ReplyRestored, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleReplyRestored)
	case "comment-created":
		return dispatch(ctx, env, func(ev *CommentCreated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleCommentCreated)
	case "comment-edited":
		return dispatch(ctx, env, func(ev *CommentEdited, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleCommentEdited)
	case "comment-deleted":
		return dispatch(ctx, env, func(ev *CommentDeleted, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleCommentDeleted)
	case "item-voted":
		return dispatch(ctx, env, func(ev *ItemVoted, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleItemVoted)
	case "official-reply-changed":
		return dispatch(ctx, env, func(ev *OfficialReplyChanged, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleOfficialReplyChanged)
	case "best-reply-changed":
		return dispatch(ctx, env, func(ev *BestReplyChanged, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleBestReplyChanged)
	case "user-banned":
		return dispatch(ctx, env, func(ev *UserBanned, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleUserBanned)
	case "user-unbanned":
		return dispatch(ctx, env, func(ev *UserUnbanned, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleUserUnbanned)
	case "community-token-created":
		return dispatch(ctx, env, func(ev *CommunityTokenCreated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleCommunityTokenCreated)
	case "community-token-updated":
		return dispatch(ctx, env, func(ev *CommunityTokenUpdated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleCommunityTokenUpdated)
	case "achievement-created":
		return dispatch(ctx, env, func(ev *AchievementCreated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleAchievementCreated)
	case "achievement-awarded":
		return dispatch(ctx, env, func(ev *AchievementAwarded, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleAchievementAwarded)
	case "documentation-updated":
		return dispatch(ctx, env, func(ev *DocumentationUpdated, t TransactionInfo) { ev.TransactionInfo = t }, e.HandleDocumentationUpdated)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}
