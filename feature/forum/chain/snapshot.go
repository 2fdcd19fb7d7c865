package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Snapshot is a Client backed by a JSON state document. It exists for the
// replay command and for tests: the real ledger transport is an external
// collaborator, but a frozen state snapshot is enough to drive the engine
// through a recorded event stream.
//
// Map keys use the ledger-local id shapes: users by lowercased address,
// communities and posts by decimal id, tags "community-tag", replies
// "post-reply", comments "post-parent-comment", ratings and tokens
// "community-address".
type Snapshot struct {
	Users        map[string]*User           `json:"users"`
	Ratings      map[string]*int            `json:"ratings"`
	Communities  map[string]*Community      `json:"communities"`
	Tags         map[string]*Tag            `json:"tags"`
	Posts        map[string]*Post           `json:"posts"`
	Replies      map[string]*Reply          `json:"replies"`
	Comments     map[string]*Comment        `json:"comments"`
	Achievements map[string]*Achievement    `json:"achievements"`
	Tokens       map[string]*CommunityToken `json:"tokens"`
}

// LoadSnapshot reads a snapshot document from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return ParseSnapshot(raw)
}

// ParseSnapshot decodes a snapshot document.
func ParseSnapshot(raw []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &s, nil
}

func (s *Snapshot) GetUserByAddress(_ context.Context, address string) (*User, error) {
	return s.Users[strings.ToLower(address)], nil
}

func (s *Snapshot) GetUserRating(_ context.Context, address string, communityID int64) (*int, error) {
	return s.Ratings[fmt.Sprintf("%d-%s", communityID, strings.ToLower(address))], nil
}

func (s *Snapshot) GetCommunity(_ context.Context, id int64) (*Community, error) {
	return s.Communities[fmt.Sprintf("%d", id)], nil
}

func (s *Snapshot) GetTag(_ context.Context, communityID, tagID int64) (*Tag, error) {
	return s.Tags[fmt.Sprintf("%d-%d", communityID, tagID)], nil
}

func (s *Snapshot) GetTags(_ context.Context, communityID int64) ([]Tag, error) {
	community, ok := s.Communities[fmt.Sprintf("%d", communityID)]
	if !ok {
		return nil, nil
	}
	// Ledger tags are 1-based and dense.
	tags := make([]Tag, 0, community.TagCount)
	for i := 1; i <= community.TagCount; i++ {
		if tag := s.Tags[fmt.Sprintf("%d-%d", communityID, i)]; tag != nil {
			tags = append(tags, *tag)
		}
	}
	return tags, nil
}

func (s *Snapshot) GetPost(_ context.Context, id int64) (*Post, error) {
	return s.Posts[fmt.Sprintf("%d", id)], nil
}

func (s *Snapshot) GetReply(_ context.Context, postID, replyID int64) (*Reply, error) {
	return s.Replies[fmt.Sprintf("%d-%d", postID, replyID)], nil
}

func (s *Snapshot) GetComment(_ context.Context, postID, parentReplyID, commentID int64) (*Comment, error) {
	return s.Comments[fmt.Sprintf("%d-%d-%d", postID, parentReplyID, commentID)], nil
}

func (s *Snapshot) GetAchievement(_ context.Context, id int64) (*Achievement, error) {
	return s.Achievements[fmt.Sprintf("%d", id)], nil
}

func (s *Snapshot) GetCommunityToken(_ context.Context, contractAddress string, communityID int64) (*CommunityToken, error) {
	return s.Tokens[fmt.Sprintf("%d-%s", communityID, strings.ToLower(contractAddress))], nil
}
