package client

import (
	"context"
	"sync"
)

// ActionState 单个待确认动作的状态机：
// Idle → Optimistic → Confirmed | RolledBack
type ActionState int

const (
	StateIdle ActionState = iota
	StateOptimistic
	StateConfirmed
	StateRolledBack
)

type targetKey struct {
	Kind TargetKind
	ID   uint
}

// LikeView 是一个目标在本地的点赞视图
type LikeView struct {
	Liked bool
	Count int64
}

// LikeAction 是一次待确认的点赞动作
type LikeAction struct {
	feed     *Feed
	ctx      context.Context
	key      targetKey
	snapshot LikeView // 乐观更新前的视图，失败时回滚到这里
	state    ActionState
	result   *LikeResult
	err      error
	done     chan struct{}
}

// Wait 阻塞到动作被确认或回滚
func (a *LikeAction) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return a.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State 返回动作当前状态
func (a *LikeAction) State() ActionState {
	a.feed.mu.Lock()
	defer a.feed.mu.Unlock()
	return a.state
}

// Err 返回导致回滚的错误，确认成功时为 nil
func (a *LikeAction) Err() error {
	a.feed.mu.Lock()
	defer a.feed.mu.Unlock()
	return a.err
}

// Feed 维护本地视图状态，并把点赞做成"先更新界面、后对账服务端"的乐观流程。
//
// 同一目标上的动作排 FIFO 队列：第二次点击要等第一次的响应回来才发出去，
// 因此同一目标的对账永远按发起顺序完成，不会乱序。不同目标互不影响。
type Feed struct {
	api *Client

	mu       sync.Mutex
	views    map[targetKey]LikeView
	queues   map[targetKey][]*LikeAction
	inflight map[targetKey]bool

	// OnUnauthorized 在动作因登录失效回滚后调用，由外部接登录流程
	OnUnauthorized func()
}

// NewFeed 创建乐观更新层
func NewFeed(api *Client) *Feed {
	return &Feed{
		api:      api,
		views:    make(map[targetKey]LikeView),
		queues:   make(map[targetKey][]*LikeAction),
		inflight: make(map[targetKey]bool),
	}
}

// LoadPosts 拉取帖子流并用服务端数据初始化本地视图
func (f *Feed) LoadPosts(ctx context.Context) ([]Post, error) {
	posts, err := f.api.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	for _, p := range posts {
		f.views[targetKey{TargetPost, p.ID}] = LikeView{Liked: p.IsLiked, Count: p.LikesCount}
	}
	f.mu.Unlock()
	return posts, nil
}

// LoadPost 拉取帖子详情，帖子和整棵评论树的视图都初始化好
func (f *Feed) LoadPost(ctx context.Context, id uint) (*PostDetail, error) {
	detail, err := f.api.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.views[targetKey{TargetPost, detail.ID}] = LikeView{Liked: detail.IsLiked, Count: detail.LikesCount}
	f.seedComments(detail.Comments)
	f.mu.Unlock()
	return detail, nil
}

func (f *Feed) seedComments(comments []Comment) {
	for _, com := range comments {
		f.views[targetKey{TargetComment, com.ID}] = LikeView{Liked: com.IsLiked, Count: com.LikesCount}
		f.seedComments(com.Replies)
	}
}

// View 返回目标的当前本地视图（含未确认的乐观更新）
func (f *Feed) View(kind TargetKind, id uint) LikeView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.views[targetKey{kind, id}]
}

// ToggleLike 立即翻转本地视图并异步向服务端发起翻转。
// 返回的动作可以 Wait 等待对账结果；界面直接读 View 即可，不必等待。
func (f *Feed) ToggleLike(ctx context.Context, kind TargetKind, id uint) *LikeAction {
	key := targetKey{kind, id}

	f.mu.Lock()
	view := f.views[key]

	action := &LikeAction{
		feed:     f,
		ctx:      ctx,
		key:      key,
		snapshot: view,
		state:    StateOptimistic,
		done:     make(chan struct{}),
	}

	// 乐观翻转：和服务端同一条规则，flip liked、计数 ±1
	if view.Liked {
		view.Liked = false
		view.Count--
	} else {
		view.Liked = true
		view.Count++
	}
	f.views[key] = view

	f.queues[key] = append(f.queues[key], action)
	startDrain := !f.inflight[key]
	if startDrain {
		f.inflight[key] = true
	}
	f.mu.Unlock()

	if startDrain {
		go f.drain(key)
	}
	return action
}

// drain 逐个对账某个目标上排队的动作
func (f *Feed) drain(key targetKey) {
	for {
		f.mu.Lock()
		queue := f.queues[key]
		if len(queue) == 0 {
			f.inflight[key] = false
			f.mu.Unlock()
			return
		}
		action := queue[0]
		f.queues[key] = queue[1:]
		f.mu.Unlock()

		result, err := f.api.ToggleLike(action.ctx, key.Kind, key.ID)

		f.mu.Lock()
		if err != nil {
			// 回滚到该动作发起前的快照。排在后面的动作建立在这次乐观更新之上，
			// 前提已经不成立，连同作废；快照是嵌套的，恢复最早的那份即可
			f.views[key] = action.snapshot
			action.state = StateRolledBack
			action.err = err
			close(action.done)
			for _, q := range f.queues[key] {
				q.state = StateRolledBack
				q.err = err
				close(q.done)
			}
			f.queues[key] = nil
			f.inflight[key] = false
			hook := f.OnUnauthorized
			f.mu.Unlock()

			if IsUnauthorized(err) && hook != nil {
				hook()
			}
			return
		}

		// 权威结果无条件覆盖本地猜测（别的会话可能同时改过计数）
		f.views[key] = LikeView{Liked: result.Liked, Count: result.LikesCount}
		action.state = StateConfirmed
		action.result = result
		close(action.done)
		f.mu.Unlock()
	}
}
