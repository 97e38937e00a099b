package core

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/RecoveryAshes/kjobcrawl/internal/store"
	"github.com/RecoveryAshes/kjobcrawl/internal/utils"
	"github.com/rs/zerolog"
)

// memStore 内存存储,按url去重
type memStore struct {
	rows map[string]store.StoredRecord
	err  error
}

func (m *memStore) Save(_ context.Context, rec *models.JobRecord) (store.StoredRecord, bool, error) {
	if m.err != nil {
		return store.StoredRecord{}, false, m.err
	}
	if m.rows == nil {
		m.rows = make(map[string]store.StoredRecord)
	}
	if existing, ok := m.rows[rec.URL]; ok {
		return existing, false, nil
	}
	sr := store.StoredRecord{ID: int64(len(m.rows) + 1), Job: rec}
	m.rows[rec.URL] = sr
	return sr, true, nil
}

func newTestBatch(cfg models.CrawlConfig, st RecordStore, reporter *utils.Reporter, scrapers ...*stubScraper) (*BatchCrawler, *[]time.Duration) {
	d := NewDispatcher(newStubRegistry(scrapers...), 1, zerolog.Nop())
	bc := NewBatchCrawler(d, cfg, st, reporter, zerolog.Nop())
	bc.Progress = io.Discard
	var sleeps []time.Duration
	bc.Sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return bc, &sleeps
}

func TestCrawlBatch_StatsStoreAndReport(t *testing.T) {
	dir := t.TempDir()
	st := &memStore{}
	cfg := models.CrawlConfig{MaxJobs: 10, BatchDelay: time.Second, ContinueOnError: true}

	saramin := &stubScraper{site: models.SiteSaramin, records: 2}
	wanted := &stubScraper{site: models.SiteWanted, records: 1, err: errors.New("detail failed")}
	bc, sleeps := newTestBatch(cfg, st, utils.NewReporter(dir), saramin, wanted)

	urls := []string{
		"https://www.saramin.co.kr/search?q=go",
		"https://www.jobkorea.co.kr/list",
		"https://www.wanted.co.kr/wdlist",
		"https://www.saramin.co.kr/search?q=go",
	}
	result, err := bc.CrawlBatch(context.Background(), urls)
	if err != nil {
		t.Fatalf("CrawlBatch返回错误: %v", err)
	}

	stats := result.Report.Stats
	if stats.Targets != 4 || stats.Crawled != 5 || stats.Unsupported != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	// 第4个URL与第1个相同,记录已存在
	if stats.Saved != 3 || stats.Duplicates != 2 {
		t.Errorf("存储统计错误: %+v", stats)
	}
	if len(result.Records) != 5 || len(result.Report.Targets) != 4 {
		t.Errorf("records=%d targets=%d", len(result.Records), len(result.Report.Targets))
	}
	if result.Report.Targets[1].Error == "" || result.Report.Targets[0].Site != models.SiteSaramin {
		t.Errorf("targets = %+v", result.Report.Targets)
	}
	if len(*sleeps) != 3 {
		t.Errorf("URL之间应等待3次, 实际 %d", len(*sleeps))
	}

	if result.ReportPath != filepath.Join(dir, "reports", "crawl_report_"+result.Report.RunID+".json") {
		t.Errorf("ReportPath = %s", result.ReportPath)
	}
	saved, err := utils.ReadReport(result.ReportPath)
	if err != nil {
		t.Fatalf("读取报告失败: %v", err)
	}
	if saved.Stats.Crawled != 5 {
		t.Errorf("报告统计错误: %+v", saved.Stats)
	}
}

func TestCrawlBatch_StopOnError(t *testing.T) {
	cfg := models.CrawlConfig{MaxJobs: 10, ContinueOnError: false}
	failing := &stubScraper{site: models.SiteIncruit, err: errors.New("listing failed")}
	saramin := &stubScraper{site: models.SiteSaramin, records: 1}
	bc, _ := newTestBatch(cfg, nil, nil, failing, saramin)

	result, err := bc.CrawlBatch(context.Background(), []string{
		"https://www.jobkorea.co.kr/list", // 不支持的站点不算错误
		"https://www.incruit.com/list",
		"https://www.saramin.co.kr/search",
	})
	if err == nil {
		t.Fatal("continue_on_error=false 时应返回错误")
	}
	if len(saramin.calls) != 0 {
		t.Error("出错后不应继续处理后续URL")
	}
	if len(result.Report.Targets) != 2 || result.ReportPath != "" {
		t.Errorf("targets=%d path=%q", len(result.Report.Targets), result.ReportPath)
	}
}

func TestCrawlBatch_Budget(t *testing.T) {
	cfg := models.CrawlConfig{MaxJobs: 10, BatchDelay: time.Second, ContinueOnError: true, Budget: time.Hour}
	saramin := &stubScraper{site: models.SiteSaramin, records: 1}
	bc, _ := newTestBatch(cfg, nil, nil, saramin)
	bc.Sleep = func(context.Context, time.Duration) error { return context.DeadlineExceeded }

	result, err := bc.CrawlBatch(context.Background(), []string{
		"https://www.saramin.co.kr/search?q=1",
		"https://www.saramin.co.kr/search?q=2",
	})
	if err != nil {
		t.Fatalf("预算耗尽不是错误: %v", err)
	}
	if len(saramin.calls) != 1 || result.Report.Stats.Crawled != 1 {
		t.Errorf("calls=%d stats=%+v", len(saramin.calls), result.Report.Stats)
	}
}

func TestCrawlBatch_SaveAfterBudgetExpired(t *testing.T) {
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("打开数据库失败: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := models.CrawlConfig{MaxJobs: 10, ContinueOnError: true, Budget: 50 * time.Millisecond}
	saramin := &stubScraper{site: models.SiteSaramin, records: 2, waitDone: true}
	bc, _ := newTestBatch(cfg, db, nil, saramin)

	result, err := bc.CrawlBatch(context.Background(), []string{"https://www.saramin.co.kr/search?q=go"})
	if err != nil {
		t.Fatalf("CrawlBatch返回错误: %v", err)
	}
	if result.Report.Stats.Crawled != 2 || result.Report.Stats.Saved != 2 {
		t.Errorf("预算到期前抓到的记录应全部保存: %+v", result.Report.Stats)
	}

	n, err := db.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("数据库中记录数 = %d, want 2", n)
	}
}

func TestSaveContext(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	cancel()

	ctx, done := SaveContext(parent)
	defer done()
	if ctx.Err() != nil {
		t.Fatalf("上层已取消时写入ctx不应结束: %v", ctx.Err())
	}
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > StoreTimeout {
		t.Errorf("写入ctx应有上限, deadline=%v ok=%v", deadline, ok)
	}
}

func TestCrawlBatch_StoreError(t *testing.T) {
	cfg := models.CrawlConfig{MaxJobs: 10, ContinueOnError: true}
	saramin := &stubScraper{site: models.SiteSaramin, records: 2}
	bc, _ := newTestBatch(cfg, &memStore{err: errors.New("disk full")}, nil, saramin)

	result, err := bc.CrawlBatch(context.Background(), []string{"https://www.saramin.co.kr/search"})
	if err != nil {
		t.Fatalf("存储错误不应中止批量: %v", err)
	}
	if result.Report.Stats.Saved != 0 || result.Report.Stats.Crawled != 2 {
		t.Errorf("stats = %+v", result.Report.Stats)
	}
}
