// Package client 是 playto 服务端的程序化客户端：
// 封装全部 HTTP 接口，并在 Feed 上提供点赞的乐观更新与回滚。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// TargetKind 与服务端一致
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type Post struct {
	ID            uint      `json:"id"`
	Author        Author    `json:"author"`
	Content       string    `json:"content"`
	ContentHTML   string    `json:"content_html"`
	CreatedAt     time.Time `json:"created_at"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	IsLiked       bool      `json:"is_liked"`
}

// Comment 是评论树节点，Replies 已按时间排序
type Comment struct {
	ID           uint      `json:"id"`
	PostID       uint      `json:"post_id"`
	Author       Author    `json:"author"`
	ParentID     *uint     `json:"parent_id"`
	ParentAuthor string    `json:"parent_author,omitempty"`
	Content      string    `json:"content"`
	ContentHTML  string    `json:"content_html"`
	CreatedAt    time.Time `json:"created_at"`
	LikesCount   int64     `json:"likes_count"`
	IsLiked      bool      `json:"is_liked"`
	Replies      []Comment `json:"replies"`
}

type PostDetail struct {
	Post
	Comments []Comment `json:"comments"`
}

type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

type LeaderboardRow struct {
	Username string `json:"username"`
	Karma    int    `json:"karma"`
}

// APIError 服务端返回的非 2xx 响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsUnauthorized 判断错误是否为未登录/登录失效
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound 判断错误是否为目标不存在
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusNotFound
}

// Client 持有会话 cookie，所有请求自动带上身份凭证
type Client struct {
	baseURL  string
	http     *http.Client
	username string
}

// New 创建客户端。超时内没有结果的请求一律按失败处理，不会无限挂着
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Username 返回当前已登录的用户名，未登录为空串
func (c *Client) Username() string {
	return c.username
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup 注册并建立会话
func (c *Client) Signup(ctx context.Context, username, password string) error {
	var resp struct {
		Username string `json:"username"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/signup", credentials{username, password}, &resp); err != nil {
		return err
	}
	c.username = resp.Username
	return nil
}

// Login 登录并建立会话
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp struct {
		Username string `json:"username"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/login", credentials{username, password}, &resp); err != nil {
		return err
	}
	c.username = resp.Username
	return nil
}

// Logout 退出登录并清掉本地身份
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil); err != nil {
		return err
	}
	c.username = ""
	return nil
}

// ListPosts 拉取帖子流
func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	err := c.do(ctx, http.MethodGet, "/api/posts", nil, &posts)
	return posts, err
}

// CreatePost 发布帖子
func (c *Client) CreatePost(ctx context.Context, content string) (*Post, error) {
	var post Post
	err := c.do(ctx, http.MethodPost, "/api/posts", map[string]string{"content": content}, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPost 拉取帖子详情和评论树
func (c *Client) GetPost(ctx context.Context, id uint) (*PostDetail, error) {
	var detail PostDetail
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, &detail)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateComment 发表评论，parentID 非空时为回复
func (c *Client) CreateComment(ctx context.Context, postID uint, content string, parentID *uint) (*Comment, error) {
	body := map[string]interface{}{"content": content}
	if parentID != nil {
		body["parent_id"] = *parentID
	}
	var comment Comment
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", postID), body, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ToggleLike 请求服务端翻转点赞状态，返回权威结果
func (c *Client) ToggleLike(ctx context.Context, kind TargetKind, id uint) (*LikeResult, error) {
	var result LikeResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/like/%s/%d", kind, id), nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Leaderboard 拉取窗口内 karma 榜单
func (c *Client) Leaderboard(ctx context.Context, hours, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/leaderboard?hours=%d&limit=%d", hours, limit), nil, &rows)
	return rows, err
}
