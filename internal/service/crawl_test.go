package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/RecoveryAshes/kjobcrawl/internal/core"
	"github.com/RecoveryAshes/kjobcrawl/internal/crawlers"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/RecoveryAshes/kjobcrawl/internal/sites"
	"github.com/RecoveryAshes/kjobcrawl/internal/store"
	"github.com/rs/zerolog"
)

// detailScraper 只实现详情抓取
type detailScraper struct {
	site  models.SiteID
	rec   func(url string) *models.JobRecord
	err   error
	panic bool
	calls int
}

func (d *detailScraper) Site() models.SiteID { return d.site }

func (d *detailScraper) CrawlJobList(context.Context, string, int) ([]string, error) {
	return nil, nil
}

func (d *detailScraper) CrawlJobDetail(_ context.Context, u string) (*models.JobRecord, error) {
	d.calls++
	if d.panic {
		panic("nil pointer in extractor")
	}
	if d.err != nil {
		return nil, d.err
	}
	if d.rec == nil {
		return nil, nil
	}
	return d.rec(u), nil
}

func (d *detailScraper) Crawl(context.Context, string, int) ([]*models.JobRecord, error) {
	return nil, nil
}

func saraminRecord(u string) *models.JobRecord {
	rec := models.NewJobRecord(models.SiteSaramin, u)
	rec.CompanyName = "(주)코리아테크"
	rec.Title = "Go 백엔드 개발자"
	return rec
}

func newTestService(t *testing.T, scraper *detailScraper, withStore bool) (*Service, *store.DB) {
	t.Helper()
	reg := &sites.Registry{}
	reg.Register(scraper)
	d := core.NewDispatcher(reg, 1, zerolog.Nop())

	if !withStore {
		return New(d, nil, zerolog.Nop()), nil
	}
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("打开数据库失败: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(d, db, zerolog.Nop()), db
}

const detailURL = "https://www.saramin.co.kr/zf_user/jobs/relay/view?rec_idx=101"

func TestCrawl_SuccessThenDuplicate(t *testing.T) {
	scraper := &detailScraper{site: models.SiteSaramin, rec: saraminRecord}
	svc, _ := newTestService(t, scraper, true)

	resp := svc.Crawl(context.Background(), CrawlRequest{URL: detailURL, Platform: "Saramin"})
	if !resp.Success || resp.Message != MsgCreated || resp.Job == nil || resp.Job.ID == 0 {
		t.Fatalf("首次抓取: %+v", resp)
	}
	if resp.Job.Job.Title != "Go 백엔드 개발자" {
		t.Errorf("title = %q", resp.Job.Job.Title)
	}

	again := svc.Crawl(context.Background(), CrawlRequest{URL: detailURL})
	if !again.Success || again.Message != MsgDuplicate || again.Job.ID != resp.Job.ID {
		t.Errorf("重复抓取: %+v", again)
	}
	if scraper.calls != 1 {
		t.Errorf("已保存的URL不应再次抓取, calls=%d", scraper.calls)
	}
}

func TestCrawl_Messages(t *testing.T) {
	tests := []struct {
		name    string
		scraper *detailScraper
		req     CrawlRequest
		want    string
	}{
		{
			name:    "URL为空",
			scraper: &detailScraper{site: models.SiteSaramin, rec: saraminRecord},
			req:     CrawlRequest{},
			want:    "유효하지 않은 URL입니다",
		},
		{
			name:    "URL格式错误",
			scraper: &detailScraper{site: models.SiteSaramin, rec: saraminRecord},
			req:     CrawlRequest{URL: "saramin.co.kr/jobs"},
			want:    "유효하지 않은 URL입니다",
		},
		{
			name:    "未知平台",
			scraper: &detailScraper{site: models.SiteSaramin, rec: saraminRecord},
			req:     CrawlRequest{URL: detailURL, Platform: "jobkorea"},
			want:    MsgUnsupported,
		},
		{
			name:    "不支持的站点",
			scraper: &detailScraper{site: models.SiteSaramin, rec: saraminRecord},
			req:     CrawlRequest{URL: "https://www.jobkorea.co.kr/Recruit/GI_Read/1"},
			want:    MsgUnsupported,
		},
		{
			name:    "平台不一致",
			scraper: &detailScraper{site: models.SiteSaramin, rec: saraminRecord},
			req:     CrawlRequest{URL: detailURL, Platform: "wanted"},
			want:    MsgMismatch,
		},
		{
			name:    "没有记录",
			scraper: &detailScraper{site: models.SiteSaramin},
			req:     CrawlRequest{URL: detailURL},
			want:    MsgNotFound,
		},
		{
			name:    "页面不存在",
			scraper: &detailScraper{site: models.SiteSaramin, err: fmt.Errorf("%w: %s", models.ErrPostingNotFound, detailURL)},
			req:     CrawlRequest{URL: detailURL},
			want:    MsgNotFound,
		},
		{
			name: "重试耗尽",
			scraper: &detailScraper{site: models.SiteSaramin, err: fmt.Errorf("%w: %w", crawlers.ErrMaxRetriesReached,
				&models.FetchError{URL: detailURL, Op: "browser", Err: errors.New("timeout")})},
			req:  CrawlRequest{URL: detailURL},
			want: MsgNotFound,
		},
		{
			name:    "HTTP 404",
			scraper: &detailScraper{site: models.SiteSaramin, err: &models.FetchError{URL: detailURL, Op: "static", StatusCode: 404}},
			req:     CrawlRequest{URL: detailURL},
			want:    MsgNotFound,
		},
		{
			name:    "未知错误",
			scraper: &detailScraper{site: models.SiteSaramin, err: context.Canceled},
			req:     CrawlRequest{URL: detailURL},
			want:    MsgServerError,
		},
		{
			name:    "panic",
			scraper: &detailScraper{site: models.SiteSaramin, panic: true},
			req:     CrawlRequest{URL: detailURL},
			want:    MsgServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, tt.scraper, false)
			resp := svc.Crawl(context.Background(), tt.req)
			if resp.Success {
				t.Errorf("期望失败: %+v", resp)
			}
			if resp.Message != tt.want {
				t.Errorf("message = %q, want %q", resp.Message, tt.want)
			}
			if resp.Job != nil {
				t.Error("失败时不应返回记录")
			}
		})
	}
}

func TestCrawl_WithoutStore(t *testing.T) {
	svc, _ := newTestService(t, &detailScraper{site: models.SiteSaramin, rec: saraminRecord}, false)

	resp := svc.Crawl(context.Background(), CrawlRequest{URL: "  " + detailURL + "  "})
	if !resp.Success || resp.Job == nil || resp.Job.ID != 0 || resp.Job.Job.URL != detailURL {
		t.Errorf("resp = %+v", resp)
	}
}
