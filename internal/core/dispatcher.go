package core

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/RecoveryAshes/kjobcrawl/internal/sites"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ScraperSource 按站点提供爬取器, *sites.Registry 实现了它
type ScraperSource interface {
	Get(site models.SiteID) (sites.Scraper, bool)
}

// Dispatcher 按域名把URL分发给站点爬取器
type Dispatcher struct {
	scrapers    ScraperSource
	parallelism int
	logger      zerolog.Logger
}

// NewDispatcher 创建分发器, parallelism<=1 时按站点顺序执行
func NewDispatcher(scrapers ScraperSource, parallelism int, logger zerolog.Logger) *Dispatcher {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Dispatcher{
		scrapers:    scrapers,
		parallelism: parallelism,
		logger:      logger.With().Str("component", "dispatcher").Logger(),
	}
}

// DetectSite 按主机名后缀识别站点
func DetectSite(rawURL string) (models.SiteID, bool) {
	return models.SiteForURL(rawURL)
}

// Scraper 返回URL对应的爬取器
func (d *Dispatcher) Scraper(rawURL string) (sites.Scraper, error) {
	site, ok := DetectSite(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedSite, rawURL)
	}
	s, ok := d.scrapers.Get(site)
	if !ok {
		return nil, fmt.Errorf("%w: %s (未注册)", models.ErrUnsupportedSite, site)
	}
	return s, nil
}

// Crawl 爬取单个入口URL
// 不支持的站点返回 ErrUnsupportedSite; 爬取器出错时连同已得到的记录一起返回
func (d *Dispatcher) Crawl(ctx context.Context, rawURL string, maxJobs int) (site models.SiteID, records []*models.JobRecord, err error) {
	scraper, err := d.Scraper(rawURL)
	if err != nil {
		d.logger.Warn().Str("url", rawURL).Msg("不支持的站点,跳过")
		return "", nil, err
	}
	site = scraper.Site()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().
				Str("site", string(site)).
				Str("url", rawURL).
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("站点爬取异常")
			err = fmt.Errorf("站点 %s 爬取异常: %v", site, r)
		}
	}()

	d.logger.Info().Str("site", string(site)).Str("url", rawURL).Int("max_jobs", maxJobs).Msg("开始爬取")
	records, err = scraper.Crawl(ctx, rawURL, maxJobs)
	if err != nil {
		d.logger.Error().Err(err).Str("site", string(site)).Str("url", rawURL).Int("records", len(records)).Msg("站点爬取失败")
		return site, records, err
	}
	d.logger.Info().Str("site", string(site)).Str("url", rawURL).Int("records", len(records)).Msg("站点爬取完成")
	return site, records, nil
}

// CrawlMultiple 按站点分组爬取,各站点结果互不影响
// 不支持的URL被跳过; 没有记录的站点不出现在结果中
func (d *Dispatcher) CrawlMultiple(ctx context.Context, urls []string, maxJobsPerSite int) map[models.SiteID][]*models.JobRecord {
	groups := make(map[models.SiteID][]string)
	var order []models.SiteID
	for _, u := range urls {
		site, ok := DetectSite(u)
		if !ok {
			d.logger.Warn().Str("url", u).Msg("不支持的URL,跳过")
			continue
		}
		if _, seen := groups[site]; !seen {
			order = append(order, site)
		}
		groups[site] = append(groups[site], u)
	}

	var mu sync.Mutex
	results := make(map[models.SiteID][]*models.JobRecord)
	runSite := func(site models.SiteID) {
		records := d.crawlSite(ctx, site, groups[site], maxJobsPerSite)
		if len(records) == 0 {
			return
		}
		mu.Lock()
		results[site] = records
		mu.Unlock()
	}

	if d.parallelism <= 1 || len(order) <= 1 {
		for _, site := range order {
			runSite(site)
		}
		return results
	}

	// 每个站点在独立的goroutine中运行,获取器每次Fetch使用独立会话
	var g errgroup.Group
	g.SetLimit(d.parallelism)
	for _, site := range order {
		site := site
		g.Go(func() error {
			runSite(site)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// crawlSite 顺序爬取同一站点的多个入口URL
func (d *Dispatcher) crawlSite(ctx context.Context, site models.SiteID, urls []string, maxJobs int) []*models.JobRecord {
	var all []*models.JobRecord
	for _, u := range urls {
		if ctx.Err() != nil {
			d.logger.Warn().Str("site", string(site)).Msg("时间预算耗尽,停止该站点")
			break
		}
		_, records, err := d.Crawl(ctx, u, maxJobs)
		if err != nil && !errors.Is(err, models.ErrUnsupportedSite) {
			d.logger.Warn().Err(err).Str("site", string(site)).Str("url", u).Msg("入口URL失败,继续下一个")
		}
		all = append(all, records...)
	}
	return all
}
