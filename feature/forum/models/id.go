package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Entity keys are stable strings derived from ledger identifiers. Every key
// starts with the network id, so entities from different networks never
// collide. The composite id types below are the only place key strings are
// produced; nothing else in the codebase concatenates id fragments.

// CommunityID identifies a community as (network, ledger-local id).
type CommunityID struct {
	Network int
	ID      int64
}

func (c CommunityID) String() string {
	return fmt.Sprintf("%d-%d", c.Network, c.ID)
}

// PostID identifies a post as (network, ledger-local id).
type PostID struct {
	Network int
	ID      int64
}

func (p PostID) String() string {
	return fmt.Sprintf("%d-%d", p.Network, p.ID)
}

// ReplyID identifies a reply within its post.
type ReplyID struct {
	Post PostID
	ID   int64
}

func (r ReplyID) String() string {
	return fmt.Sprintf("%s-%d", r.Post, r.ID)
}

// CommentID identifies a comment within its post and parent reply.
// ParentReply 0 means the comment sits directly under the post.
type CommentID struct {
	Post        PostID
	ParentReply int64
	ID          int64
}

func (c CommentID) String() string {
	return fmt.Sprintf("%s-%d-%d", c.Post, c.ParentReply, c.ID)
}

// TagID identifies a tag within its community.
type TagID struct {
	Community CommunityID
	ID        int64
}

func (t TagID) String() string {
	return fmt.Sprintf("%s-%d", t.Community, t.ID)
}

// DocumentationPostKey returns the key of a documentation post. The local part
// is the content-derived node identifier from the documentation tree.
func DocumentationPostKey(network int, nodeID string) string {
	return fmt.Sprintf("%d-%s", network, nodeID)
}

// TranslationKey returns the key of a translation child of the given parent.
func TranslationKey(parentKey, language string) string {
	return parentKey + "-" + language
}

// RatingKey returns the key of a (community, user) rating record.
func RatingKey(community CommunityID, address string) string {
	return community.String() + "-" + strings.ToLower(address)
}

// BanKey returns the key of a (community, user) ban record.
func BanKey(community CommunityID, address string) string {
	return community.String() + "-" + strings.ToLower(address)
}

// TokenKey returns the key of a community's reward token record.
func TokenKey(community CommunityID, contractAddress string) string {
	return community.String() + "-" + strings.ToLower(contractAddress)
}

// AchievementKey returns the key of an achievement configuration.
func AchievementKey(network int, id int64) string {
	return fmt.Sprintf("%d-%d", network, id)
}

// ParseCommunityID parses a "network-id" community key.
func ParseCommunityID(s string) (CommunityID, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return CommunityID{}, fmt.Errorf("invalid community id %q", s)
	}
	network, err := strconv.Atoi(parts[0])
	if err != nil {
		return CommunityID{}, fmt.Errorf("invalid community id %q: %w", s, err)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return CommunityID{}, fmt.Errorf("invalid community id %q: %w", s, err)
	}
	return CommunityID{Network: network, ID: id}, nil
}

// ParsePostID parses a "network-id" post key.
func ParsePostID(s string) (PostID, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return PostID{}, fmt.Errorf("invalid post id %q", s)
	}
	network, err := strconv.Atoi(parts[0])
	if err != nil {
		return PostID{}, fmt.Errorf("invalid post id %q: %w", s, err)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return PostID{}, fmt.Errorf("invalid post id %q: %w", s, err)
	}
	return PostID{Network: network, ID: id}, nil
}
