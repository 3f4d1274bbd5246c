package services

import (
	"playto/internal/models"
	"sort"
)

// CommentNode 是评论树的一个节点，Replies 为按时间排好序的直接子评论
type CommentNode struct {
	models.Comment
	ParentAuthor string         `json:"parent_author,omitempty"`
	Replies      []*CommentNode `json:"replies"`
}

// BuildCommentTree 把一个帖子下的平铺评论集合组装成嵌套树。
// 纯函数：同样的输入反复构建,结果完全一致。
//
// 规则：
//   - ParentID 为空的评论是根
//   - ParentID 指向的评论不在输入集合里（孤儿,比如父评论没被这一页捞出来）时,
//     降级当作根处理,不报错
//   - 同级按 CreatedAt 升序,相同时间按 ID 升序,保证顺序确定
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	byID := make(map[uint]*CommentNode, len(comments))
	nodes := make([]*CommentNode, 0, len(comments))
	for i := range comments {
		n := &CommentNode{Comment: comments[i], Replies: []*CommentNode{}}
		byID[n.ID] = n
		nodes = append(nodes, n)
	}

	var roots []*CommentNode
	for _, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := byID[*n.ParentID]
		if !ok {
			// 孤儿评论,按根展示
			roots = append(roots, n)
			continue
		}
		n.ParentAuthor = parent.User.Username
		parent.Replies = append(parent.Replies, n)
	}

	sortSiblings(roots)
	for _, n := range nodes {
		sortSiblings(n.Replies)
	}
	return roots
}

func sortSiblings(siblings []*CommentNode) {
	sort.SliceStable(siblings, func(i, j int) bool {
		a, b := siblings[i], siblings[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
