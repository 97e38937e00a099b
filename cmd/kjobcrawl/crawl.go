package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/core"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/RecoveryAshes/kjobcrawl/internal/utils"
	"github.com/spf13/cobra"
)

// crawl 命令参数
var (
	targetURLs []string
	urlFile    string
	maxJobs    int
	budget     time.Duration
	parallel   int
	storePath  string
	outputDir  string
	headless   bool
	retries    int
	waitTime   time.Duration
	mode       string
	bySite     bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "爬取列表页或详情页中的招聘信息",
	Long: `依次处理每个入口URL: 列表页收集详情链接后逐条抽取,详情页直接抽取。
不支持的站点会被跳过并计入报告。

  kjobcrawl crawl -u "https://www.wanted.co.kr/wdlist/518" --max-jobs 20
  kjobcrawl crawl -f urls.txt --db jobs.db --budget 15m --parallel 3 --by-site`,
	RunE: runCrawl,
}

func init() {
	f := crawlCmd.Flags()
	f.StringArrayVarP(&targetURLs, "url", "u", nil, "入口URL,可多次指定")
	f.StringVarP(&urlFile, "url-file", "f", "", "包含URL列表的文件路径")
	f.IntVar(&maxJobs, "max-jobs", 10, "每个站点最多爬取的招聘数")
	f.DurationVar(&budget, "budget", 0, "整批次时间预算 (如 10m, 0=不限)")
	f.IntVar(&parallel, "parallel", 0, "站点级并发数 (1-5)")
	f.StringVar(&storePath, "db", "", "SQLite数据库路径 (空=不保存)")
	f.StringVarP(&outputDir, "output", "o", "", "报告输出目录")
	f.BoolVar(&headless, "headless", true, "无头浏览器模式")
	f.IntVar(&retries, "retries", 0, "详情页最大尝试次数")
	f.DurationVar(&waitTime, "wait", 0, "等待页面内容的上限 (如 20s)")
	f.StringVarP(&mode, "mode", "m", "", "获取方式 (auto|static|browser)")
	f.BoolVar(&bySite, "by-site", false, "按站点分组并发爬取 (不生成报告)")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if validateConfig {
		return runValidateConfig(cmd)
	}

	urls, err := collectURLs(targetURLs, urlFile)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return cmd.Help()
	}

	if err := ValidateFlags(maxJobs, parallel, retries, waitTime, budget, mode); err != nil {
		return err
	}
	overrides := core.CLIOverrides{
		MaxJobs:     maxJobs,
		Parallelism: parallel,
		Budget:      budget,
		Retries:     retries,
		Wait:        waitTime,
		Mode:        mode,
		StorePath:   storePath,
		OutputDir:   outputDir,
	}
	if cmd.Flags().Changed("headless") {
		overrides.Headless = &headless
	}
	appConfig.MergeCLIFlags(overrides)
	if err := appConfig.Validate(); err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), appConfig, headers, utils.Logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if bySite {
		return runBySite(cmd, a, urls)
	}

	bc := core.NewBatchCrawler(a.dispatcher, appConfig.Crawl, a.recordStore(), utils.NewReporter(appConfig.Output.BaseDir), utils.Logger)
	result, err := bc.CrawlBatch(cmd.Context(), urls)
	if result != nil {
		printStats(cmd.OutOrStdout(), result)
	}
	if err != nil {
		return fmt.Errorf("批量爬取失败: %w", err)
	}
	return nil
}

// runBySite 同一站点的URL顺序处理,不同站点按 --parallel 并发
func runBySite(cmd *cobra.Command, a *app, urls []string) error {
	ctx := cmd.Context()
	if appConfig.Crawl.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, appConfig.Crawl.Budget)
		defer cancel()
	}

	results := a.dispatcher.CrawlMultiple(ctx, urls, appConfig.Crawl.MaxJobs)

	sitesSeen := make([]string, 0, len(results))
	for site := range results {
		sitesSeen = append(sitesSeen, string(site))
	}
	sort.Strings(sitesSeen)

	out := cmd.OutOrStdout()
	var saved, total int
	for _, name := range sitesSeen {
		records := results[models.SiteID(name)]
		total += len(records)
		if a.store != nil {
			for _, rec := range records {
				sctx, cancel := core.SaveContext(ctx)
				_, created, err := a.store.Save(sctx, rec)
				cancel()
				if err != nil {
					utils.Errorf("保存记录失败 [%s]: %v", rec.URL, err)
				} else if created {
					saved++
				}
			}
		}
		fmt.Fprintf(out, "%-10s %d\n", name, len(records))
	}
	fmt.Fprintf(out, "共 %d 条, 新保存 %d 条\n", total, saved)
	return nil
}

// collectURLs 合并 -u 与 -f 的URL,去重并保持顺序
func collectURLs(flagURLs []string, file string) ([]string, error) {
	var normalized []string
	for _, raw := range flagURLs {
		u, err := NormalizeURL(raw)
		if err != nil {
			return nil, fmt.Errorf("无效的目标URL %q: %w", raw, err)
		}
		normalized = append(normalized, u)
	}

	var fromFile []string
	if file != "" {
		var err error
		fromFile, err = utils.ReadURLsFromFile(file)
		if err != nil {
			return nil, fmt.Errorf("读取URL文件失败: %w", err)
		}
	}
	return utils.MergeURLs(normalized, fromFile), nil
}

func printStats(out io.Writer, result *core.BatchResult) {
	stats := result.Report.Stats
	fmt.Fprintln(out, "\n==================================================")
	fmt.Fprintln(out, "爬取统计")
	fmt.Fprintln(out, "==================================================")
	fmt.Fprintf(out, "入口URL数:     %d\n", stats.Targets)
	fmt.Fprintf(out, "抽取记录数:    %d\n", stats.Crawled)
	fmt.Fprintf(out, "新保存:        %d\n", stats.Saved)
	fmt.Fprintf(out, "已存在:        %d\n", stats.Duplicates)
	fmt.Fprintf(out, "失败入口:      %d\n", stats.Failed)
	fmt.Fprintf(out, "不支持的站点:  %d\n", stats.Unsupported)
	fmt.Fprintf(out, "总耗时:        %.2f秒\n", stats.Duration)
	if result.ReportPath != "" {
		fmt.Fprintf(out, "报告:          %s\n", result.ReportPath)
	}
	fmt.Fprintln(out, "==================================================")
}
