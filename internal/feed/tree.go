package feed

import (
	"sort"

	"github.com/deephealth-lab/community/internal/models"
)

// CommentNode is a comment plus its replies, produced fresh on every build.
// Depth is 0 for roots and grows by one per nesting level.
type CommentNode struct {
	models.Comment
	Depth    int            `json:"depth"`
	Children []*CommentNode `json:"children"`
}

// BuildCommentTree turns a flat, unordered comment list into an ordered
// forest. Duplicate ids collapse to one node (last one wins). A comment
// whose parent_id is missing from the batch, or points at itself, is placed
// at the root instead.
//
// Roots are ordered newest first; every children list is ordered oldest
// first, so replies read in conversational order.
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	byID := make(map[string]*CommentNode, len(comments))
	for _, c := range comments {
		byID[c.ID] = &CommentNode{Comment: c}
	}

	// Attach from the deduplicated map, not the raw input, so a duplicate
	// id is linked exactly once.
	roots := make([]*CommentNode, 0, len(byID))
	for _, node := range byID {
		if node.ParentID != nil {
			if parent, ok := byID[*node.ParentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sort.Slice(roots, func(i, j int) bool {
		if !roots[i].CreatedAt.Equal(roots[j].CreatedAt) {
			return roots[i].CreatedAt.After(roots[j].CreatedAt)
		}
		return roots[i].ID < roots[j].ID
	})

	// Depth-first over an explicit worklist: sorts every children list and
	// tags depths without growing the Go stack on deep threads.
	stack := make([]*CommentNode, len(roots))
	copy(stack, roots)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sortReplies(n.Children)
		for _, child := range n.Children {
			child.Depth = n.Depth + 1
			stack = append(stack, child)
		}
	}

	return roots
}

func sortReplies(nodes []*CommentNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// FlattenCommentTree lists a forest in render order (pre-order, replies
// under their parent), again without recursion.
func FlattenCommentTree(roots []*CommentNode) []*CommentNode {
	var out []*CommentNode
	stack := make([]*CommentNode, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}
