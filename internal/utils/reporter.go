package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/schollz/progressbar/v3"
)

// Reporter 批次报告生成器
type Reporter struct {
	outputDir string
}

// NewReporter 创建报告生成器,报告写入 outputDir/reports
func NewReporter(outputDir string) *Reporter {
	return &Reporter{outputDir: outputDir}
}

// ReportPath 报告文件路径
func (r *Reporter) ReportPath(runID string) string {
	return filepath.Join(r.outputDir, "reports", fmt.Sprintf("crawl_report_%s.json", runID))
}

// GenerateReport 写出批次报告
func (r *Reporter) GenerateReport(report *models.CrawlReport) (string, error) {
	path := r.ReportPath(report.RunID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	data, err := report.ToJSON()
	if err != nil {
		return "", fmt.Errorf("序列化报告失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("写入报告文件失败: %w", err)
	}

	Logger.Info().Str("path", path).Msg("报告已生成")
	return path, nil
}

// ReadReport 读取已生成的报告
func ReadReport(path string) (*models.CrawlReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取报告失败: %w", err)
	}
	var report models.CrawlReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("解析报告失败: %w", err)
	}
	return &report, nil
}

// NewProgressBar 创建进度条,out 为nil时输出到标准错误
func NewProgressBar(max int, description string, out io.Writer) *progressbar.ProgressBar {
	if out == nil {
		out = os.Stderr
	}
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
