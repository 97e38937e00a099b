package main

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/core"
	"github.com/RecoveryAshes/kjobcrawl/internal/crawlers"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/RecoveryAshes/kjobcrawl/internal/service"
	"github.com/RecoveryAshes/kjobcrawl/internal/sites"
	"github.com/RecoveryAshes/kjobcrawl/internal/store"
	"github.com/rs/zerolog"
)

// guardMaxWait 浏览器启动前等待内存释放的上限
const guardMaxWait = 30 * time.Second

// app 一次命令执行所需的组件
type app struct {
	config     *core.Config
	headers    *core.HeaderManager
	dispatcher *core.Dispatcher
	store      *store.DB
	logger     zerolog.Logger
}

// newApp 按配置组装获取器、站点爬取器和存储
func newApp(ctx context.Context, cfg *core.Config, cliHeaders []string, logger zerolog.Logger) (*app, error) {
	hm, err := core.NewHeaderManager(cfg.Output.HeadersFile, cliHeaders, logger)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP头部管理器失败: %w", err)
	}
	if err := hm.LoadConfig(); err != nil {
		return nil, fmt.Errorf("加载头部配置失败: %w", err)
	}

	throttle := crawlers.NewThrottle(cfg.Fetch.RatePerSec, cfg.Fetch.MinDelay, cfg.Fetch.MaxDelay)
	guard := crawlers.NewResourceGuard(cfg.Fetch.MemoryReserveMB, guardMaxWait, logger)
	router := &crawlers.Router{
		Static:       crawlers.NewStaticFetcher(cfg.Fetch, hm, throttle, logger),
		Browser:      crawlers.NewBrowserFetcher(cfg.Fetch, hm, guard, throttle, logger),
		ForceStatic:  cfg.Crawl.Mode == models.FetchStatic,
		ForceBrowser: cfg.Crawl.Mode == models.FetchBrowser,
	}
	retrier := crawlers.NewRetrier(cfg.Fetch.Retries, cfg.Fetch.Backoff, logger)
	registry := sites.NewRegistry(router, retrier, sites.OptionsFromConfig(cfg.Fetch, cfg.Crawl), logger)

	a := &app{
		config:     cfg,
		headers:    hm,
		dispatcher: core.NewDispatcher(registry, cfg.Crawl.Parallelism, logger),
		logger:     logger,
	}

	if cfg.Store.Path != "" {
		db, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.store = db
	}

	logger.Debug().
		Str("mode", string(cfg.Crawl.Mode)).
		Int("retries", cfg.Fetch.Retries).
		Str("store", cfg.Store.Path).
		Int("headers", len(hm.GetSafeHeaders())).
		Msg("组件初始化完成")
	return a, nil
}

// recordStore 未配置存储时返回nil接口
func (a *app) recordStore() core.RecordStore {
	if a.store == nil {
		return nil
	}
	return a.store
}

func (a *app) service() *service.Service {
	if a.store == nil {
		return service.New(a.dispatcher, nil, a.logger)
	}
	return service.New(a.dispatcher, a.store, a.logger)
}

func (a *app) Close() error {
	return a.store.Close()
}
