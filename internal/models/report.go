package models

import (
	"encoding/json"
	"time"
)

// CrawlReport 批量爬取报告
type CrawlReport struct {
	RunID     string    `json:"run_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	Stats TaskStats `json:"stats"`

	Targets []TargetReport `json:"targets"`

	// 配置快照
	Config CrawlConfig `json:"config"`
}

// TargetReport 单个入口URL的结果
type TargetReport struct {
	URL      string   `json:"url"`
	Site     SiteID   `json:"site"`
	Records  int      `json:"records"`
	JobURLs  []string `json:"job_urls"`
	Error    string   `json:"error,omitempty"`
	Duration float64  `json:"duration"`
}

// ToJSON 序列化为JSON
func (r *CrawlReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *CrawlReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
