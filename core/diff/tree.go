package diff

import "fmt"

// Node is one node of a documentation tree snapshot. Every valid node
// references a documentation post by a content-derived identifier.
type Node struct {
	ID       string
	Title    string
	Children []Node
}

// Tree is a documentation tree snapshot as resolved from a content payload.
type Tree struct {
	// PinnedPost is the optional identifier of the pinned documentation post.
	PinnedPost string
	// Nodes are the top-level documentation nodes in source order.
	Nodes []Node
}

// Violation describes a non-fatal shape problem found while walking a tree
// snapshot: a node with a missing or mistyped id or title. The node is skipped
// from the id set; the caller decides how to report it.
type Violation struct {
	// Path locates the node in the snapshot, e.g. "nodes[1].children[0]".
	Path string
	// Reason describes what was wrong with the node.
	Reason string
}

// CollectIDs returns all node identifiers reachable in the tree, depth-first
// in source order, together with any shape violations encountered. Nodes with
// an empty id or title are skipped but their children are still visited.
// A nil tree yields an empty id set.
//
// The walk assumes an acyclic payload, cycle detection is the responsibility
// of upstream validation.
func CollectIDs(t *Tree) ([]string, []Violation) {
	if t == nil {
		return nil, nil
	}
	ids := make([]string, 0, len(t.Nodes))
	var violations []Violation
	for i := range t.Nodes {
		ids, violations = collectNode(&t.Nodes[i], fmt.Sprintf("nodes[%d]", i), ids, violations)
	}
	return ids, violations
}

func collectNode(n *Node, path string, ids []string, violations []Violation) ([]string, []Violation) {
	switch {
	case n.ID == "":
		violations = append(violations, Violation{Path: path, Reason: "missing or mistyped id"})
	case n.Title == "":
		violations = append(violations, Violation{Path: path, Reason: "missing or mistyped title"})
	default:
		ids = append(ids, n.ID)
	}
	for i := range n.Children {
		ids, violations = collectNode(&n.Children[i], fmt.Sprintf("%s.children[%d]", path, i), ids, violations)
	}
	return ids, violations
}

// Trees diffs two documentation tree snapshots and returns the node ids to
// create (present only in new) and to delete (present only in old), each in
// the depth-first order of its source snapshot. Ids present in both trees are
// left untouched. A nil old tree means no prior documentation: deleteIDs is
// empty.
//
// Trees is pure over its two inputs; no state is shared across invocations.
func Trees(old, new *Tree) (createIDs, deleteIDs []string, violations []Violation) {
	oldIDs, oldViolations := CollectIDs(old)
	newIDs, newViolations := CollectIDs(new)
	violations = append(oldViolations, newViolations...)

	createIDs, deleteIDs = Keys(oldIDs, newIDs)
	return createIDs, deleteIDs, violations
}

// NodeByID returns the first node with the given id in depth-first order, or
// nil if the tree does not contain it.
func NodeByID(t *Tree, id string) *Node {
	if t == nil {
		return nil
	}
	for i := range t.Nodes {
		if n := nodeByID(&t.Nodes[i], id); n != nil {
			return n
		}
	}
	return nil
}

func nodeByID(n *Node, id string) *Node {
	if n.ID == id {
		return n
	}
	for i := range n.Children {
		if found := nodeByID(&n.Children[i], id); found != nil {
			return found
		}
	}
	return nil
}
