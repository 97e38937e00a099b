// Package sites 各招聘站点的爬取器
//
// 所有站点共用一个由 SiteProfile 参数化的实现,站点之间只有选择器和行为开关不同。
package sites

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/crawlers"
	"github.com/RecoveryAshes/kjobcrawl/internal/extract"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/rs/zerolog"
)

// ListingExtractor 从列表页收集详情页URL
type ListingExtractor interface {
	CrawlJobList(ctx context.Context, listingURL string, limit int) ([]string, error)
}

// DetailExtractor 从详情页抽取一条记录
type DetailExtractor interface {
	CrawlJobDetail(ctx context.Context, detailURL string) (*models.JobRecord, error)
}

// Scraper 单个站点的爬取器
type Scraper interface {
	Site() models.SiteID
	ListingExtractor
	DetailExtractor
	// Crawl 列表 -> 截断 -> 逐个详情,单条失败不影响其他
	Crawl(ctx context.Context, url string, maxJobs int) ([]*models.JobRecord, error)
}

// Options 爬取器运行参数
type Options struct {
	WaitTimeout time.Duration
	Settle      time.Duration
	// MaxPages 分页上限,0 时使用站点默认值
	MaxPages int
}

// OptionsFromConfig 从配置生成
func OptionsFromConfig(fetch models.FetchConfig, crawl models.CrawlConfig) Options {
	return Options{
		WaitTimeout: fetch.WaitTimeout,
		Settle:      fetch.Settle,
		MaxPages:    crawl.MaxPages,
	}
}

type siteScraper struct {
	profile   SiteProfile
	fetcher   crawlers.Fetcher
	retrier   *crawlers.Retrier
	extractor *extract.Extractor
	opts      Options
	now       func() time.Time
	logger    zerolog.Logger
}

// New 用站点配置创建爬取器
func New(profile SiteProfile, fetcher crawlers.Fetcher, retrier *crawlers.Retrier, opts Options, logger zerolog.Logger) Scraper {
	logger = logger.With().Str("site", string(profile.Site)).Logger()
	if retrier == nil {
		retrier = crawlers.NewRetrier(3, 5*time.Second, logger)
	}
	return &siteScraper{
		profile:   profile,
		fetcher:   fetcher,
		retrier:   retrier,
		extractor: extract.NewExtractor(logger),
		opts:      opts,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *siteScraper) Site() models.SiteID {
	return s.profile.Site
}

func (s *siteScraper) request(target string, markers []string) crawlers.FetchRequest {
	return crawlers.FetchRequest{
		URL:           target,
		RenderJS:      s.profile.RenderJS,
		WaitSelectors: markers,
		WaitTimeout:   s.opts.WaitTimeout,
		Settle:        s.opts.Settle,
		ScrollRounds:  s.profile.ScrollRounds,
	}
}

// CrawlJobList 收集详情页URL(绝对地址,按发现顺序去重)
func (s *siteScraper) CrawlJobList(ctx context.Context, listingURL string, limit int) ([]string, error) {
	if s.profile.IsDetailURL(listingURL) {
		return []string{listingURL}, nil
	}

	var urls []string
	err := s.retrier.Do(ctx, func(attempt int) error {
		set := crawlers.NewURLSet(limit)
		err := s.fetcher.Fetch(ctx, s.request(listingURL, s.profile.ListingMarkers), func(page crawlers.Page) error {
			s.dismiss(ctx, page)
			s.paginate(ctx, page, set)
			return nil
		})
		if err != nil {
			return err
		}
		urls = set.List()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("获取列表页失败: %w", err)
	}

	s.logger.Info().Str("url", listingURL).Int("count", len(urls)).Msg("列表页解析完成")
	return urls, nil
}

// paginate 收集当前页,按需翻页
func (s *siteScraper) paginate(ctx context.Context, page crawlers.Page, set *crawlers.URLSet) {
	pg := s.profile.Pagination
	maxPages := 1
	if pg != nil {
		maxPages = pg.MaxPages
		if s.opts.MaxPages > 0 && s.opts.MaxPages < maxPages {
			maxPages = s.opts.MaxPages
		}
	}

	for pageNo := 1; ; pageNo++ {
		added := s.collectLinks(page, set)
		s.logger.Debug().Int("page", pageNo).Int("added", added).Int("total", set.Len()).Msg("列表页链接")

		if set.Full() || added == 0 || pageNo >= maxPages || ctx.Err() != nil {
			return
		}
		if err := s.nextPage(ctx, page, pg); err != nil {
			s.logger.Warn().Err(err).Int("page", pageNo).Msg("翻页失败,停止收集")
			return
		}
	}
}

// collectLinks 级联解析链接,未命中时退化为<a href>扫描
func (s *siteScraper) collectLinks(page crawlers.Page, set *crawlers.URLSet) int {
	base := s.baseURL(page)

	hrefs := extract.ResolveAll(page, s.profile.ListingLinks)
	if len(hrefs) == 0 && s.profile.AnchorFragment != "" {
		html, err := page.HTML()
		if err != nil {
			s.logger.Warn().Err(err).Msg("读取页面HTML失败")
			return 0
		}
		scanned, err := crawlers.ScanAnchors(html, base.String(), s.profile.AnchorFragment)
		if err != nil {
			s.logger.Warn().Err(err).Msg("链接扫描失败")
			return 0
		}
		s.logger.Debug().Int("count", len(scanned)).Msg("选择器未命中,使用链接扫描")
		hrefs = scanned
	}

	added := 0
	for _, href := range hrefs {
		if set.Add(crawlers.AbsoluteURL(base, href)) {
			added++
		}
	}
	return added
}

func (s *siteScraper) baseURL(page crawlers.Page) *url.URL {
	if s.profile.Base != "" {
		if u, err := url.Parse(s.profile.Base); err == nil {
			return u
		}
	}
	u, err := url.Parse(page.URL())
	if err != nil {
		return &url.URL{}
	}
	return u
}

// nextPage 先点击翻页按钮,没有可点的按钮时改写URL参数
func (s *siteScraper) nextPage(ctx context.Context, page crawlers.Page, pg *Pagination) error {
	clicked, err := page.ClickFirst(ctx, pg.NextSelectors)
	if err != nil {
		return err
	}
	if clicked {
		if err := crawlers.SleepContext(ctx, s.opts.Settle); err != nil {
			return err
		}
	} else {
		next, err := NextPageURL(page.URL(), pg.Param, pg.Step)
		if err != nil {
			return err
		}
		s.logger.Debug().Str("url", next).Msg("通过URL翻页")
		if err := page.Navigate(ctx, next); err != nil {
			return err
		}
	}
	s.dismiss(ctx, page)
	return nil
}

// dismiss 关闭登录弹窗等遮挡层
func (s *siteScraper) dismiss(ctx context.Context, page crawlers.Page) {
	if len(s.profile.DismissSelectors) == 0 {
		return
	}
	if clicked, err := page.ClickFirst(ctx, s.profile.DismissSelectors); err != nil {
		s.logger.Debug().Err(err).Msg("关闭弹窗失败")
	} else if clicked {
		s.logger.Debug().Msg("已关闭弹窗")
	}
}

// CrawlJobDetail 带重试地抓取详情页
// 每次尝试使用新记录,只保留最后一次成功的结果
func (s *siteScraper) CrawlJobDetail(ctx context.Context, detailURL string) (*models.JobRecord, error) {
	var rec *models.JobRecord
	err := s.retrier.Do(ctx, func(attempt int) error {
		rec = nil
		s.logger.Info().Str("url", detailURL).Int("attempt", attempt).Msg("抓取详情页")
		return s.fetcher.Fetch(ctx, s.request(detailURL, s.profile.DetailMarkers), func(page crawlers.Page) error {
			s.dismiss(ctx, page)
			r := models.NewJobRecord(s.profile.Site, detailURL)
			s.extractor.Extract(page, s.profile.Extract, r)
			r.CrawledAt = s.now()
			rec = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if rec == nil || (rec.Title == "" && rec.CompanyName == "" && rec.Description == "") {
		return nil, fmt.Errorf("%w: %s", models.ErrPostingNotFound, detailURL)
	}
	return rec, nil
}

// Crawl 实现Scraper
// ctx到期后停止后续详情页,返回已得到的记录
func (s *siteScraper) Crawl(ctx context.Context, target string, maxJobs int) ([]*models.JobRecord, error) {
	urls, err := s.CrawlJobList(ctx, target, maxJobs)
	if err != nil {
		return nil, err
	}
	if maxJobs > 0 && len(urls) > maxJobs {
		urls = urls[:maxJobs]
	}

	records := make([]*models.JobRecord, 0, len(urls))
	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			s.logger.Warn().Err(err).Int("done", i).Int("total", len(urls)).Msg("时间预算耗尽,停止爬取")
			break
		}
		rec, err := s.CrawlJobDetail(ctx, u)
		if err != nil {
			if errors.Is(err, crawlers.ErrMaxRetriesReached) {
				s.logger.Error().Err(err).Str("url", u).Msg("详情页重试耗尽,跳过")
			} else {
				s.logger.Warn().Err(err).Str("url", u).Msg("详情页抓取失败,跳过")
			}
			continue
		}
		records = append(records, rec)
	}

	s.logger.Info().Str("url", target).Int("records", len(records)).Int("urls", len(urls)).Msg("站点爬取完成")
	return records, nil
}

// IsDetailURL 是否为详情页地址
func (p SiteProfile) IsDetailURL(rawURL string) bool {
	for _, m := range p.DetailURLMarkers {
		if strings.Contains(rawURL, m) {
			return true
		}
	}
	return false
}
