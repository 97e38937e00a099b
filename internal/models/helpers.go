package models

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ValidateURL 入口URL必须是带主机名的 http(s) 绝对地址
// 返回的错误都包装 ErrInvalidURL
func ValidateURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	switch {
	case err != nil:
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	case u.Scheme != "http" && u.Scheme != "https":
		return fmt.Errorf("%w: 仅支持http/https (%q)", ErrInvalidURL, rawURL)
	case u.Hostname() == "":
		return fmt.Errorf("%w: 缺少主机名 (%q)", ErrInvalidURL, rawURL)
	}
	return nil
}

// NewRunID 批次ID, 写入报告文件名和日志字段
func NewRunID() string {
	return uuid.NewString()
}
