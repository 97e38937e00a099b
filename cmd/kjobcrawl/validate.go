package main

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

// ValidateFlags 验证crawl命令标志, 0 表示沿用配置文件
func ValidateFlags(maxJobs, parallel, retries int, wait, budget time.Duration, mode string) error {
	if maxJobs < 0 || maxJobs > 1000 {
		return fmt.Errorf("max-jobs必须在0-1000之间,当前值: %d", maxJobs)
	}
	if parallel < 0 || parallel > 5 {
		return fmt.Errorf("parallel必须在1-5之间,当前值: %d", parallel)
	}
	if retries < 0 || retries > 10 {
		return fmt.Errorf("retries必须在1-10之间,当前值: %d", retries)
	}
	if wait < 0 || wait > 2*time.Minute {
		return fmt.Errorf("wait必须在0-2m之间,当前值: %s", wait)
	}
	if budget < 0 {
		return fmt.Errorf("budget不能为负数: %s", budget)
	}

	switch models.FetchMode(mode) {
	case "", models.FetchAuto, models.FetchStatic, models.FetchBrowser:
	default:
		return fmt.Errorf("无效的获取方式: %s (有效值: auto, static, browser)", mode)
	}
	return nil
}

// NormalizeURL 规范化URL,没有协议时补https
func NormalizeURL(urlStr string) (string, error) {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return "", fmt.Errorf("URL不能为空")
	}
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}
	if err := models.ValidateURL(parsed.String()); err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// sortedPairs 按头部名称排序输出 "Name: Value"
func sortedPairs(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+": "+v)
	}
	sort.Strings(out)
	return out
}
