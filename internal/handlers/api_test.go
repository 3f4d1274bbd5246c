package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"playto/internal/db"
	"playto/internal/middleware"
	"playto/internal/utils"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "playto-test.db")
	gdb, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	// SQLite 写写并发会直接报 busy，测试库收紧到单连接
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db.DB = gdb

	// 本地缓存是进程级单例，换库后必须清空
	utils.GetCache().Purge()

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("playto_session", store))
	r.Use(middleware.LoadUser())
	registerAPIRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// 路由注册和 router 包保持一致；这里手工注册避免 handlers→router 的环
func registerAPIRoutes(r *gin.Engine) {
	authHandler := NewAuthHandler()
	postHandler := NewPostHandler()
	commentHandler := NewCommentHandler()
	likeHandler := NewLikeHandler()
	leaderboardHandler := NewLeaderboardHandler()

	api := r.Group("/api")
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/:id", postHandler.Detail)
	api.GET("/leaderboard", leaderboardHandler.List)

	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts", postHandler.Create)
		authorized.POST("/posts/:id/comments", commentHandler.Create)
		authorized.POST("/like/:type/:id", likeHandler.Toggle)
	}
}

func newSessionClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body interface{}, out interface{}) int {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if body != nil {
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func signup(t *testing.T, srv *httptest.Server, username string) *http.Client {
	t.Helper()
	client := newSessionClient(t)
	creds := map[string]string{"username": username, "password": "password123"}
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/signup", creds, nil); code != http.StatusCreated {
		t.Fatalf("signup %s: got status %d, want 201", username, code)
	}
	return client
}

func TestAuthFlow(t *testing.T) {
	srv := setupTestServer(t)
	client := newSessionClient(t)

	creds := map[string]string{"username": "alice", "password": "password123"}
	var signupResp struct {
		Username string `json:"username"`
	}
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/signup", creds, &signupResp); code != http.StatusCreated {
		t.Fatalf("signup: got %d, want 201", code)
	}
	if signupResp.Username != "alice" {
		t.Errorf("signup username: got %q, want alice", signupResp.Username)
	}

	// 重名注册被拒
	other := newSessionClient(t)
	if code := doJSON(t, other, http.MethodPost, srv.URL+"/api/signup", creds, nil); code != http.StatusBadRequest {
		t.Errorf("duplicate signup: got %d, want 400", code)
	}

	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/logout", nil, nil); code != http.StatusOK {
		t.Errorf("logout: got %d, want 200", code)
	}

	bad := map[string]string{"username": "alice", "password": "wrong-password"}
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/login", bad, nil); code != http.StatusUnauthorized {
		t.Errorf("bad login: got %d, want 401", code)
	}
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/login", creds, nil); code != http.StatusOK {
		t.Errorf("login: got %d, want 200", code)
	}
}

type postResp struct {
	ID            uint   `json:"id"`
	Content       string `json:"content"`
	LikesCount    int64  `json:"likes_count"`
	CommentsCount int64  `json:"comments_count"`
	IsLiked       bool   `json:"is_liked"`
}

type commentResp struct {
	ID           uint          `json:"id"`
	ParentID     *uint         `json:"parent_id"`
	ParentAuthor string        `json:"parent_author"`
	Content      string        `json:"content"`
	Replies      []commentResp `json:"replies"`
}

type detailResp struct {
	postResp
	Comments []commentResp `json:"comments"`
}

func TestPostAndCommentFlow(t *testing.T) {
	srv := setupTestServer(t)
	alice := signup(t, srv, "alice")
	bob := signup(t, srv, "bob")

	// 未登录不能发帖
	anon := newSessionClient(t)
	if code := doJSON(t, anon, http.MethodPost, srv.URL+"/api/posts", map[string]string{"content": "x"}, nil); code != http.StatusUnauthorized {
		t.Errorf("anonymous post: got %d, want 401", code)
	}

	// 空内容被拒
	if code := doJSON(t, alice, http.MethodPost, srv.URL+"/api/posts", map[string]string{"content": "   "}, nil); code != http.StatusBadRequest {
		t.Errorf("blank post: got %d, want 400", code)
	}

	var created postResp
	if code := doJSON(t, alice, http.MethodPost, srv.URL+"/api/posts", map[string]string{"content": "hello world"}, &created); code != http.StatusCreated {
		t.Fatalf("create post: got %d, want 201", code)
	}

	// bob 发评论，alice 楼中楼回复
	var top commentResp
	url := fmt.Sprintf("%s/api/posts/%d/comments", srv.URL, created.ID)
	if code := doJSON(t, bob, http.MethodPost, url, map[string]interface{}{"content": "first"}, &top); code != http.StatusCreated {
		t.Fatalf("create comment: got %d, want 201", code)
	}
	reply := map[string]interface{}{"content": "thanks", "parent_id": top.ID}
	if code := doJSON(t, alice, http.MethodPost, url, reply, nil); code != http.StatusCreated {
		t.Fatalf("create reply: got %d, want 201", code)
	}

	// 回复其他帖子下的评论被拒
	var otherPost postResp
	if code := doJSON(t, bob, http.MethodPost, srv.URL+"/api/posts", map[string]string{"content": "another"}, &otherPost); code != http.StatusCreated {
		t.Fatalf("create second post: got %d, want 201", code)
	}
	crossReply := map[string]interface{}{"content": "bad", "parent_id": top.ID}
	crossURL := fmt.Sprintf("%s/api/posts/%d/comments", srv.URL, otherPost.ID)
	if code := doJSON(t, bob, http.MethodPost, crossURL, crossReply, nil); code != http.StatusBadRequest {
		t.Errorf("cross-post reply: got %d, want 400", code)
	}

	// 详情返回嵌套树
	var detail detailResp
	if code := doJSON(t, anon, http.MethodGet, fmt.Sprintf("%s/api/posts/%d", srv.URL, created.ID), nil, &detail); code != http.StatusOK {
		t.Fatalf("detail: got %d, want 200", code)
	}
	if detail.CommentsCount != 2 {
		t.Errorf("comments_count: got %d, want 2", detail.CommentsCount)
	}
	if len(detail.Comments) != 1 || len(detail.Comments[0].Replies) != 1 {
		t.Fatalf("expected one root with one reply, got %+v", detail.Comments)
	}
	if detail.Comments[0].Replies[0].ParentAuthor != "bob" {
		t.Errorf("parent_author: got %q, want bob", detail.Comments[0].Replies[0].ParentAuthor)
	}

	// 列表能看到两个帖子，时间倒序
	var list []postResp
	if code := doJSON(t, anon, http.MethodGet, srv.URL+"/api/posts", nil, &list); code != http.StatusOK {
		t.Fatalf("list: got %d, want 200", code)
	}
	if len(list) != 2 {
		t.Fatalf("list length: got %d, want 2", len(list))
	}
	if list[0].ID != otherPost.ID {
		t.Errorf("list order: newest first, got %d at head", list[0].ID)
	}
}

func TestLikeAndLeaderboardEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	alice := signup(t, srv, "alice")
	bob := signup(t, srv, "bob")

	var post postResp
	if code := doJSON(t, alice, http.MethodPost, srv.URL+"/api/posts", map[string]string{"content": "like me"}, &post); code != http.StatusCreated {
		t.Fatalf("create post: got %d, want 201", code)
	}

	likeURL := fmt.Sprintf("%s/api/like/post/%d", srv.URL, post.ID)

	// 未登录点赞直接 401，不会产生任何状态
	anon := newSessionClient(t)
	if code := doJSON(t, anon, http.MethodPost, likeURL, nil, nil); code != http.StatusUnauthorized {
		t.Errorf("anonymous like: got %d, want 401", code)
	}

	var result struct {
		Liked      bool  `json:"liked"`
		LikesCount int64 `json:"likes_count"`
	}
	if code := doJSON(t, bob, http.MethodPost, likeURL, nil, &result); code != http.StatusOK {
		t.Fatalf("like: got %d, want 200", code)
	}
	if !result.Liked || result.LikesCount != 1 {
		t.Errorf("like result: got %+v, want liked=true count=1", result)
	}

	// 列表里 bob 看到 is_liked=true，匿名用户看不到
	var list []postResp
	doJSON(t, bob, http.MethodGet, srv.URL+"/api/posts", nil, &list)
	if len(list) != 1 || !list[0].IsLiked || list[0].LikesCount != 1 {
		t.Errorf("bob's view: got %+v, want liked with count 1", list)
	}
	doJSON(t, anon, http.MethodGet, srv.URL+"/api/posts", nil, &list)
	if len(list) != 1 || list[0].IsLiked {
		t.Errorf("anonymous view must not be marked liked: %+v", list)
	}

	// 榜单：alice 拿到 5 分
	var board []struct {
		Username string `json:"username"`
		Karma    int    `json:"karma"`
	}
	if code := doJSON(t, anon, http.MethodGet, srv.URL+"/api/leaderboard", nil, &board); code != http.StatusOK {
		t.Fatalf("leaderboard: got %d, want 200", code)
	}
	if len(board) != 1 || board[0].Username != "alice" || board[0].Karma != 5 {
		t.Errorf("leaderboard: got %+v, want [{alice 5}]", board)
	}

	// 取消点赞后净 karma 为 0，作者从榜单消失
	if code := doJSON(t, bob, http.MethodPost, likeURL, nil, &result); code != http.StatusOK {
		t.Fatalf("unlike: got %d, want 200", code)
	}
	if result.Liked || result.LikesCount != 0 {
		t.Errorf("unlike result: got %+v, want liked=false count=0", result)
	}

	utils.GetCache().Purge() // 榜单缓存 1 分钟，测试里手动清掉
	doJSON(t, anon, http.MethodGet, srv.URL+"/api/leaderboard", nil, &board)
	if len(board) != 0 {
		t.Errorf("leaderboard after unlike: got %+v, want empty", board)
	}

	// 不存在的目标
	if code := doJSON(t, bob, http.MethodPost, srv.URL+"/api/like/post/99999", nil, nil); code != http.StatusNotFound {
		t.Errorf("missing target: got %d, want 404", code)
	}
	if code := doJSON(t, bob, http.MethodPost, srv.URL+"/api/like/story/1", nil, nil); code != http.StatusBadRequest {
		t.Errorf("unknown kind: got %d, want 400", code)
	}
}
