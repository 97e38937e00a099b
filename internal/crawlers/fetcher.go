package crawlers

import (
	"context"
	"errors"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/extract"
)

var (
	// ErrBrowserCrashed 浏览器会话中发生panic
	ErrBrowserCrashed = errors.New("浏览器崩溃")
	// ErrMaxRetriesReached 重试次数耗尽
	ErrMaxRetriesReached = errors.New("已达到最大重试次数")
)

const (
	// DefaultWaitTimeout 等待内容标记的默认上限
	DefaultWaitTimeout = 20 * time.Second

	// ClickTimeout 单次原生点击的上限
	ClickTimeout = 5 * time.Second

	// DefaultUserAgent 没有HeaderProvider时使用
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
)

// FetchRequest 获取请求
type FetchRequest struct {
	URL      string
	RenderJS bool
	// WaitSelectors 内容已加载的标记,命中任意一个即可
	WaitSelectors []string
	WaitTimeout   time.Duration
	// Settle 标记出现后再等待的时间
	Settle       time.Duration
	ScrollRounds int
}

// Page 会话内的页面,只在 Fetch 回调期间有效
type Page interface {
	extract.Source

	// URL 当前地址(可能经过重定向)
	URL() string
	// HTML 当前文档的完整HTML
	HTML() (string, error)
	// Navigate 在同一会话内打开新地址
	Navigate(ctx context.Context, url string) error
	// ClickFirst 点击第一个存在且可见的元素,返回是否点击成功
	ClickFirst(ctx context.Context, selectors []string) (bool, error)
	// Scroll 滚动到底部若干次,触发懒加载
	Scroll(ctx context.Context, rounds int) error
}

// Fetcher 页面获取器
// 会话由Fetch创建并独占,回调返回后(包括panic)一定被释放
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest, fn func(Page) error) error
}

// Router 根据 RenderJS 选择静态或浏览器获取器
type Router struct {
	Static  Fetcher
	Browser Fetcher
	// ForceStatic/ForceBrowser 对应 --mode static|browser
	ForceStatic  bool
	ForceBrowser bool
}

// Fetch 实现Fetcher
func (r *Router) Fetch(ctx context.Context, req FetchRequest, fn func(Page) error) error {
	useBrowser := req.RenderJS
	if r.ForceStatic {
		useBrowser = false
	}
	if r.ForceBrowser {
		useBrowser = true
	}
	if useBrowser && r.Browser != nil {
		return r.Browser.Fetch(ctx, req, fn)
	}
	return r.Static.Fetch(ctx, req, fn)
}

// SleepContext 可被取消的等待,d<=0 时只检查ctx
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
