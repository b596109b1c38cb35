package sync

import "writehub/internal/model"

// CommentNode is one comment with its replies attached.
type CommentNode struct {
	Comment model.Comment  `json:"comment"`
	Replies []*CommentNode `json:"replies"`
}

// BuildCommentTree assembles the server's flat, creation-ordered list into
// a reply tree. A comment whose parent is missing from the list (the parent
// was deleted) is promoted to the top level rather than dropped, so no
// reply ever silently disappears.
func BuildCommentTree(comments []model.Comment) []*CommentNode {
	nodes := make(map[int64]*CommentNode, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = &CommentNode{Comment: comments[i]}
	}

	var roots []*CommentNode
	for i := range comments {
		node := nodes[comments[i].ID]
		parentID := comments[i].ParentCommentID

		if parentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*parentID]; ok {
			parent.Replies = append(parent.Replies, node)
			continue
		}
		// Orphaned reply: parent deleted, surface at the top level
		roots = append(roots, node)
	}

	return roots
}
