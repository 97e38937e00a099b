package crawlers

import (
	"context"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle 单主机令牌桶 + 随机延迟
type Throttle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64

	minDelay time.Duration
	maxDelay time.Duration

	// Sleep 可替换,测试中置为空操作
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewThrottle 创建节流器,rps<=0 时不限速
func NewThrottle(rps float64, minDelay, maxDelay time.Duration) *Throttle {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Throttle{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		minDelay: minDelay,
		maxDelay: maxDelay,
		Sleep:    SleepContext,
	}
}

func (t *Throttle) limiter(host string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(t.rps), 1)
	t.limiters[host] = l
	return l
}

// Wait 请求前调用
func (t *Throttle) Wait(ctx context.Context, rawURL string) error {
	if t == nil {
		return ctx.Err()
	}
	if t.rps > 0 {
		if err := t.limiter(hostOf(rawURL)).Wait(ctx); err != nil {
			return err
		}
	}
	return t.Sleep(ctx, t.jitter())
}

// Pause 会话内操作之间的随机停顿(滚动、翻页)
func (t *Throttle) Pause(ctx context.Context) error {
	if t == nil {
		return ctx.Err()
	}
	return t.Sleep(ctx, t.jitter())
}

func (t *Throttle) jitter() time.Duration {
	if t.maxDelay <= t.minDelay {
		return t.minDelay
	}
	return t.minDelay + time.Duration(rand.Int63n(int64(t.maxDelay-t.minDelay)))
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
