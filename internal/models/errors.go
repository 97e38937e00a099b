package models

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnsupportedSite URL不属于任何已知站点
	ErrUnsupportedSite = errors.New("不支持的站点")
	// ErrPostingNotFound 爬取结束但没有得到记录
	ErrPostingNotFound = errors.New("未找到招聘信息")
	// ErrInvalidURL 不是可爬取的 http(s) 地址
	ErrInvalidURL = errors.New("无效的URL")
)

// FetchError 页面获取失败(网络/超时/渲染)
type FetchError struct {
	URL        string
	Op         string // "static" | "browser"
	StatusCode int    // 非2xx时的状态码,网络错误时为0
	Err        error
}

// Error 实现error接口
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("获取页面失败 [%s %s]: HTTP %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("获取页面失败 [%s %s]: %v", e.Op, e.URL, e.Err)
}

// Unwrap 支持errors.Is/As
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable 是否值得重试
// 4xx(除429)说明页面本身有问题,重试无意义
func (e *FetchError) Retryable() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsRetryable 判断任意错误是否可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	// 浏览器崩溃、超时等未分类错误默认可重试
	return true
}
