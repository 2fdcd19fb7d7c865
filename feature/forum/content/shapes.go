package content

import (
	"encoding/json"
	"fmt"

	"forum-indexer/core/diff"
	"forum-indexer/core/metrics"
)

// Unresolvable is the sentinel written to display fields whose payload
// resolved but did not parse as the expected shape. A sentinel is preferred
// over stale values: operators can find and re-resolve these records.
const Unresolvable = "#unresolvable-content"

// All parse helpers decode the payload once into a typed shape. A payload
// that fails to decode is a shape error; callers substitute the Unresolvable
// sentinel into display fields and record a content-invalid audit entry.

// PostContent is the payload shape of posts and their translations.
type PostContent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ReplyContent is the payload shape of replies and comments.
type ReplyContent struct {
	Content string `json:"content"`
}

// UserProfile is the payload shape of user profiles.
type UserProfile struct {
	DisplayName string `json:"displayName"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location"`
	About       string `json:"about"`
	Avatar      string `json:"avatar"`
}

// CommunityContent is the payload shape of community metadata.
type CommunityContent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Language    string `json:"language"`
	Avatar      string `json:"avatar"`
}

// TagContent is the payload shape of tag metadata and tag translations.
type TagContent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AchievementAttribute is one trait of an achievement payload.
type AchievementAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// AchievementContent is the payload shape of achievement metadata.
type AchievementContent struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Image       string                 `json:"image"`
	Attributes  []AchievementAttribute `json:"attributes"`
}

func parse(payload []byte, dst any, shape string) error {
	if err := json.Unmarshal(payload, dst); err != nil {
		metrics.ContentShapeInvalid.Inc()
		return fmt.Errorf("invalid %s payload: %w", shape, err)
	}
	return nil
}

func ParsePostContent(payload []byte) (*PostContent, error) {
	var c PostContent
	if err := parse(payload, &c, "post"); err != nil {
		return nil, err
	}
	return &c, nil
}

func ParseReplyContent(payload []byte) (*ReplyContent, error) {
	var c ReplyContent
	if err := parse(payload, &c, "reply"); err != nil {
		return nil, err
	}
	return &c, nil
}

func ParseUserProfile(payload []byte) (*UserProfile, error) {
	var p UserProfile
	if err := parse(payload, &p, "user profile"); err != nil {
		return nil, err
	}
	return &p, nil
}

func ParseCommunityContent(payload []byte) (*CommunityContent, error) {
	var c CommunityContent
	if err := parse(payload, &c, "community"); err != nil {
		return nil, err
	}
	return &c, nil
}

func ParseTagContent(payload []byte) (*TagContent, error) {
	var c TagContent
	if err := parse(payload, &c, "tag"); err != nil {
		return nil, err
	}
	return &c, nil
}

func ParseAchievementContent(payload []byte) (*AchievementContent, error) {
	var c AchievementContent
	if err := parse(payload, &c, "achievement"); err != nil {
		return nil, err
	}
	return &c, nil
}

// docNode decodes one documentation tree node tolerantly: a missing or
// mistyped id/title becomes the zero value, which the tree walk reports as a
// non-fatal violation instead of failing the whole document.
type docNode struct {
	ID       json.RawMessage `json:"id"`
	Title    json.RawMessage `json:"title"`
	Children []docNode       `json:"children"`
}

type docTree struct {
	PinnedPost *docNode  `json:"pinnedPost"`
	Nodes      []docNode `json:"documentations"`
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (n docNode) toNode() diff.Node {
	node := diff.Node{
		ID:    rawString(n.ID),
		Title: rawString(n.Title),
	}
	for _, child := range n.Children {
		node.Children = append(node.Children, child.toNode())
	}
	return node
}

// ParseDocumentationTree decodes a documentation tree payload into a
// diff.Tree snapshot. The document shape itself is strict; individual node
// fields are tolerant (see docNode).
func ParseDocumentationTree(payload []byte) (*diff.Tree, error) {
	var doc docTree
	if err := parse(payload, &doc, "documentation tree"); err != nil {
		return nil, err
	}

	tree := &diff.Tree{}
	if doc.PinnedPost != nil {
		tree.PinnedPost = rawString(doc.PinnedPost.ID)
	}
	for _, n := range doc.Nodes {
		tree.Nodes = append(tree.Nodes, n.toNode())
	}
	return tree, nil
}
