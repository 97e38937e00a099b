package models

import (
	"fmt"
	"time"
)

// FetchMode 页面获取方式
type FetchMode string

const (
	FetchAuto    FetchMode = "auto"    // 按站点配置决定
	FetchStatic  FetchMode = "static"  // 强制静态HTTP
	FetchBrowser FetchMode = "browser" // 强制浏览器渲染
)

// CrawlConfig 爬取配置
type CrawlConfig struct {
	MaxJobs         int           `json:"max_jobs" mapstructure:"max_jobs"`                   // 每个站点最多爬取的详情页数 (0=不限)
	MaxPages        int           `json:"max_pages" mapstructure:"max_pages"`                 // 列表页最多翻页数
	Parallelism     int           `json:"parallelism" mapstructure:"parallelism"`             // 站点级并发数 (默认:1,顺序执行)
	Budget          time.Duration `json:"budget" mapstructure:"budget"`                       // 整批次时间预算 (0=不限)
	BatchDelay      time.Duration `json:"batch_delay" mapstructure:"batch_delay"`             // 批量处理URL间延迟
	Mode            FetchMode     `json:"mode" mapstructure:"mode"`                           // 获取方式
	ContinueOnError bool          `json:"continue_on_error" mapstructure:"continue_on_error"` // 批量模式遇错继续
}

// Validate 验证配置
func (c *CrawlConfig) Validate() error {
	if c.MaxJobs < 0 || c.MaxJobs > 1000 {
		return fmt.Errorf("max_jobs必须在0-1000之间")
	}
	if c.MaxPages < 1 || c.MaxPages > 100 {
		return fmt.Errorf("max_pages必须在1-100之间")
	}
	if c.Parallelism < 1 || c.Parallelism > 5 {
		return fmt.Errorf("parallelism必须在1-5之间")
	}
	if c.Budget < 0 {
		return fmt.Errorf("budget不能为负数")
	}
	if c.BatchDelay < 0 {
		return fmt.Errorf("batch_delay不能为负数")
	}
	switch c.Mode {
	case "", FetchAuto, FetchStatic, FetchBrowser:
	default:
		return fmt.Errorf("不支持的获取方式: %s", c.Mode)
	}
	return nil
}

// TaskStats 任务统计
type TaskStats struct {
	Targets     int     `json:"targets"`     // 处理的入口URL数
	Crawled     int     `json:"crawled"`     // 成功抽取的记录数
	Failed      int     `json:"failed"`      // 出错的入口URL数
	Saved       int     `json:"saved"`       // 新写入存储的记录数
	Duplicates  int     `json:"duplicates"`  // 已存在的记录数
	Unsupported int     `json:"unsupported"` // 不支持的URL数
	Duration    float64 `json:"duration"`    // 总耗时(秒)
}

// Add 累加另一份统计
func (s *TaskStats) Add(o TaskStats) {
	s.Targets += o.Targets
	s.Crawled += o.Crawled
	s.Failed += o.Failed
	s.Saved += o.Saved
	s.Duplicates += o.Duplicates
	s.Unsupported += o.Unsupported
}

// FetchConfig 页面获取配置
type FetchConfig struct {
	Timeout         time.Duration `json:"timeout" mapstructure:"timeout"`                     // 静态请求超时
	WaitTimeout     time.Duration `json:"wait_timeout" mapstructure:"wait_timeout"`           // 等待内容标记的上限
	Settle          time.Duration `json:"settle" mapstructure:"settle"`                       // 标记出现后的额外等待
	Headless        bool          `json:"headless" mapstructure:"headless"`                   // 无头模式
	BrowserBin      string        `json:"browser_bin" mapstructure:"browser_bin"`             // 浏览器路径 (空=自动下载/查找)
	Retries         int           `json:"retries" mapstructure:"retries"`                     // 详情页最大尝试次数
	Backoff         time.Duration `json:"backoff" mapstructure:"backoff"`                     // 重试退避基数
	MinDelay        time.Duration `json:"min_delay" mapstructure:"min_delay"`                 // 请求间随机延迟下限
	MaxDelay        time.Duration `json:"max_delay" mapstructure:"max_delay"`                 // 请求间随机延迟上限
	RatePerSec      float64       `json:"rate_per_sec" mapstructure:"rate_per_sec"`           // 单主机令牌桶速率
	MemoryReserveMB int           `json:"memory_reserve_mb" mapstructure:"memory_reserve_mb"` // 启动浏览器前要求的可用内存
	InsecureTLS     bool          `json:"insecure_tls" mapstructure:"insecure_tls"`           // 跳过证书验证
}

// Validate 验证配置
func (c *FetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout必须大于0")
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("wait_timeout必须大于0")
	}
	if c.Retries < 1 || c.Retries > 10 {
		return fmt.Errorf("retries必须在1-10之间")
	}
	if c.Backoff < 0 || c.Settle < 0 {
		return fmt.Errorf("backoff和settle不能为负数")
	}
	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		return fmt.Errorf("延迟范围无效: min=%s max=%s", c.MinDelay, c.MaxDelay)
	}
	if c.RatePerSec < 0 {
		return fmt.Errorf("rate_per_sec不能为负数")
	}
	return nil
}
