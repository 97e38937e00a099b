package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/crawlers"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/RecoveryAshes/kjobcrawl/internal/store"
	"github.com/RecoveryAshes/kjobcrawl/internal/utils"
	"github.com/rs/zerolog"
)

// StoreTimeout 单条记录写入的上限
const StoreTimeout = 10 * time.Second

// SaveContext 返回不受批次预算取消的写入ctx,预算到期前抓到的记录仍要落库
func SaveContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), StoreTimeout)
}

// RecordStore 批量模式使用的存储, *store.DB 实现了它
type RecordStore interface {
	Save(ctx context.Context, rec *models.JobRecord) (store.StoredRecord, bool, error)
}

// BatchCrawler 批量爬取入口URL列表
type BatchCrawler struct {
	dispatcher *Dispatcher
	config     models.CrawlConfig
	store      RecordStore
	reporter   *utils.Reporter
	logger     zerolog.Logger

	// Progress 进度条输出, nil 时输出到标准错误
	Progress io.Writer
	// Sleep URL间等待, 测试中替换
	Sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// BatchResult 批量爬取结果
type BatchResult struct {
	Report  *models.CrawlReport
	Records []*models.JobRecord
	// ReportPath 未配置 Reporter 时为空
	ReportPath string
}

// NewBatchCrawler 创建批量爬取器, st 和 reporter 可以为nil
func NewBatchCrawler(d *Dispatcher, config models.CrawlConfig, st RecordStore, reporter *utils.Reporter, logger zerolog.Logger) *BatchCrawler {
	return &BatchCrawler{
		dispatcher: d,
		config:     config,
		store:      st,
		reporter:   reporter,
		logger:     logger.With().Str("component", "batch").Logger(),
		Sleep:      crawlers.SleepContext,
		now:        time.Now,
	}
}

// CrawlBatch 依次爬取每个入口URL
// 超过时间预算或 ContinueOnError=false 时遇错停止,已得到的结果仍写入报告
func (bc *BatchCrawler) CrawlBatch(ctx context.Context, urls []string) (*BatchResult, error) {
	runID := models.NewRunID()
	logger := bc.logger.With().Str("run_id", runID).Logger()

	if bc.config.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bc.config.Budget)
		defer cancel()
	}

	start := bc.now()
	report := &models.CrawlReport{
		RunID:     runID,
		StartTime: start,
		Config:    bc.config,
	}
	result := &BatchResult{Report: report}

	logger.Info().Int("urls", len(urls)).Dur("budget", bc.config.Budget).Msg("开始批量爬取")
	bar := utils.NewProgressBar(len(urls), "爬取中", bc.Progress)

	var stopErr error
	for i, target := range urls {
		if ctx.Err() != nil {
			logger.Warn().Int("remaining", len(urls)-i).Msg("时间预算耗尽,停止批量爬取")
			break
		}

		tr, records, err := bc.crawlTarget(ctx, target, &report.Stats)
		report.Targets = append(report.Targets, tr)
		result.Records = append(result.Records, records...)
		_ = bar.Add(1)

		if err != nil && !errors.Is(err, models.ErrUnsupportedSite) && !bc.config.ContinueOnError {
			logger.Warn().Err(err).Msg("批量爬取中止 (continue_on_error=false)")
			stopErr = fmt.Errorf("入口URL失败 [%s]: %w", target, err)
			break
		}

		if i < len(urls)-1 && bc.config.BatchDelay > 0 {
			if err := bc.Sleep(ctx, bc.config.BatchDelay); err != nil {
				logger.Warn().Msg("时间预算耗尽,停止批量爬取")
				break
			}
		}
	}
	_ = bar.Finish()

	report.EndTime = bc.now()
	report.Duration = report.EndTime.Sub(start).Seconds()
	report.Stats.Duration = report.Duration

	logger.Info().
		Int("targets", report.Stats.Targets).
		Int("crawled", report.Stats.Crawled).
		Int("saved", report.Stats.Saved).
		Int("duplicates", report.Stats.Duplicates).
		Int("failed", report.Stats.Failed).
		Int("unsupported", report.Stats.Unsupported).
		Float64("duration", report.Duration).
		Msg("批量爬取完成")

	if bc.reporter != nil {
		path, err := bc.reporter.GenerateReport(report)
		if err != nil {
			logger.Error().Err(err).Msg("生成报告失败")
		}
		result.ReportPath = path
	}
	return result, stopErr
}

// crawlTarget 爬取单个入口URL并保存记录
func (bc *BatchCrawler) crawlTarget(ctx context.Context, target string, stats *models.TaskStats) (models.TargetReport, []*models.JobRecord, error) {
	begin := bc.now()
	tr := models.TargetReport{URL: target}
	stats.Targets++

	site, records, err := bc.dispatcher.Crawl(ctx, target, bc.config.MaxJobs)
	tr.Site = site
	tr.Records = len(records)
	stats.Crawled += len(records)
	for _, rec := range records {
		tr.JobURLs = append(tr.JobURLs, rec.URL)
	}

	switch {
	case errors.Is(err, models.ErrUnsupportedSite):
		stats.Unsupported++
		tr.Error = err.Error()
	case err != nil:
		stats.Failed++
		tr.Error = err.Error()
	}

	if bc.store != nil {
		for _, rec := range records {
			sctx, cancel := SaveContext(ctx)
			_, created, serr := bc.store.Save(sctx, rec)
			cancel()
			switch {
			case serr != nil:
				bc.logger.Error().Err(serr).Str("url", rec.URL).Msg("保存记录失败")
			case created:
				stats.Saved++
			default:
				stats.Duplicates++
			}
		}
	}

	tr.Duration = bc.now().Sub(begin).Seconds()
	return tr, records, err
}
