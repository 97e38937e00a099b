package utils

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

func TestHeaderValidator_ValidateHeader(t *testing.T) {
	validator := NewHeaderValidator()

	tests := []struct {
		name        string
		headerName  string
		headerValue string
		expectError bool
	}{
		{"合法头部", "Accept-Language", "ko-KR,ko;q=0.9", false},
		{"合法值-空字符串", "X-Empty", "", false},
		{"合法值-长字符串", "X-Long", strings.Repeat(" ", 8000), false},
		{"禁止头部-Host", "Host", "www.saramin.co.kr", true},
		{"禁止头部-小写", "content-length", "123", true},
		{"非法名称-空格", "User Agent", "x", true},
		{"非法名称-下划线", "User_Agent", "x", true},
		{"非法名称-空字符串", "", "x", true},
		{"非法值-超长", "X-TooLong", strings.Repeat("a", MaxHeaderValueLength+1), true},
		{"非法值-控制字符", "X-Bad", "value\x00with\x01null", true},
		{"非法值-韩文", "Referer", "https://www.saramin.co.kr/검색", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateHeader(tt.headerName, tt.headerValue)
			if (err != nil) != tt.expectError {
				t.Errorf("期望错误=%v, 实际错误=%v", tt.expectError, err)
			}
			var ve *models.ValidationError
			if err != nil && !errors.As(err, &ve) {
				t.Errorf("错误类型应为 ValidationError: %T", err)
			}
		})
	}
}

func TestHeaderValidator_Validate(t *testing.T) {
	validator := NewHeaderValidator()

	ok := http.Header{}
	ok.Set("Accept", "text/html")
	ok.Set("Accept-Language", "ko-KR")
	if err := validator.Validate(ok); err != nil {
		t.Errorf("合法头部返回错误: %v", err)
	}

	bad := ok.Clone()
	bad.Set("Connection", "keep-alive")
	if err := validator.Validate(bad); err == nil {
		t.Error("包含禁止头部时应返回错误")
	}
}

func TestHeaderRedactor(t *testing.T) {
	redactor := NewHeaderRedactor()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"Authorization", "Bearer abcdef123456", "Bearer ***"},
		{"Cookie", "li_at=AQEDAR0123456789", "li_a***6789"},
		{"X-Api-Key", "short", "***"},
		{"Accept-Language", "ko-KR", "ko-KR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactor.RedactHeaderValue(tt.name, tt.value); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	h := http.Header{}
	h.Set("Cookie", "short")
	h.Set("Accept", "text/html")
	if got := redactor.RedactToString(h); got != "Accept: text/html, Cookie: ***" {
		t.Errorf("RedactToString = %q", got)
	}
}
