package crawlers

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceGuard 启动浏览器前的内存检查
// 可用内存低于保留值时等待,超过上限仍不足则放弃本次会话
type ResourceGuard struct {
	reserve  uint64
	maxWait  time.Duration
	interval time.Duration

	// available 可替换,测试中模拟内存压力
	available func() (uint64, error)
	logger    zerolog.Logger
}

// NewResourceGuard reserveMB<=0 时不做检查
func NewResourceGuard(reserveMB int, maxWait time.Duration, logger zerolog.Logger) *ResourceGuard {
	if maxWait <= 0 {
		maxWait = 30 * time.Second
	}
	return &ResourceGuard{
		reserve:   uint64(max(reserveMB, 0)) * 1024 * 1024,
		maxWait:   maxWait,
		interval:  time.Second,
		available: systemAvailable,
		logger:    logger.With().Str("component", "resource_guard").Logger(),
	}
}

func systemAvailable() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// Wait 阻塞直到可用内存满足保留值
func (g *ResourceGuard) Wait(ctx context.Context) error {
	if g == nil || g.reserve == 0 {
		return nil
	}

	deadline := time.Now().Add(g.maxWait)
	warned := false
	for {
		avail, err := g.available()
		if err != nil {
			// 读不到内存信息时不阻塞爬取
			g.logger.Debug().Err(err).Msg("获取可用内存失败,跳过检查")
			return nil
		}
		if avail >= g.reserve {
			return nil
		}

		if !warned {
			g.logger.Warn().
				Str("available", formatMB(avail)).
				Str("reserve", formatMB(g.reserve)).
				Msg("可用内存不足,等待释放")
			warned = true
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("可用内存不足: %s < %s", formatMB(avail), formatMB(g.reserve))
		}
		if err := SleepContext(ctx, g.interval); err != nil {
			return err
		}
	}
}

// Check 单次检查,返回当前可用内存以及是否满足保留值
func (g *ResourceGuard) Check() (string, bool, error) {
	avail, err := g.available()
	if err != nil {
		return "", false, err
	}
	return formatMB(avail), avail >= g.reserve, nil
}

func formatMB(b uint64) string {
	return fmt.Sprintf("%.0fMB", float64(b)/(1024*1024))
}
