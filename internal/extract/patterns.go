package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

// labelPatterns 生成 "标签: 值" / <dt>标签</dt><dd>值 / <th>标签</th><td>值 三种形式
func labelPatterns(labels ...string) []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, l := range labels {
		out = append(out, regexp.MustCompile(l+`\s*[:：]\s*([^<\n]+)`))
	}
	for _, l := range labels {
		out = append(out,
			regexp.MustCompile(l+`\s*</dt>\s*<dd[^>]*>([^<]+)`),
			regexp.MustCompile(l+`\s*</th>\s*<td[^>]*>([^<]+)`),
		)
	}
	return out
}

// DefaultPatterns 未单独配置时使用的正则兜底,按顺序尝试
var DefaultPatterns = map[models.Field][]*regexp.Regexp{
	models.FieldCompanyName: labelPatterns("회사명", "기업명"),
	models.FieldTitle: {
		regexp.MustCompile(`<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']+)`),
		regexp.MustCompile(`<title[^>]*>([^<|]+)`),
	},
	models.FieldDeadline: append(labelPatterns("마감일", "접수마감", "접수기간", "모집기간"),
		regexp.MustCompile(`(\d{4}[.\-/]\s?\d{1,2}[.\-/]\s?\d{1,2})\s*(?:\([^)]*\))?\s*(?:까지|마감)`),
	),
	models.FieldLocation:       labelPatterns("근무지역", "근무지", "근무장소", "지역"),
	models.FieldExperience:     labelPatterns("경력"),
	models.FieldEducation:      labelPatterns("학력"),
	models.FieldEmploymentType: labelPatterns("고용형태", "근무형태"),
	models.FieldSalary:         labelPatterns("급여", "연봉"),
}

// 误命中标记:脚本片段或把整段页面内容截进来的情况
var falsePositiveMarkers = []string{"상세요강", "추천공고", "window.onload", "function("}

const maxRegexValueRunes = 200

// MatchPatterns 先在原始HTML再在可见文本上依次执行正则,返回第一个合格值
func MatchPatterns(raw, text string, patterns []*regexp.Regexp) string {
	for _, haystack := range []string{raw, text} {
		if haystack == "" {
			continue
		}
		for _, re := range patterns {
			for _, m := range re.FindAllStringSubmatch(haystack, -1) {
				v := m[0]
				if len(m) > 1 {
					v = m[1]
				}
				v = CleanLine(stripMarkup(v))
				if acceptRegexValue(v) {
					return v
				}
			}
		}
	}
	return ""
}

func acceptRegexValue(v string) bool {
	if v == "" || utf8.RuneCountInString(v) > maxRegexValueRunes {
		return false
	}
	for _, m := range falsePositiveMarkers {
		if strings.Contains(v, m) {
			return false
		}
	}
	return true
}

var (
	deadlineLabelRe = regexp.MustCompile(`^(?:(?:접수\s*기간|접수\s*마감|지원\s*마감|모집\s*기간|마감\s*일)\s*[:：]?|마감\s*[:：])\s*`)
	fullDateRe      = regexp.MustCompile(`\d{4}\s*[.\-/]\s*\d{1,2}\s*[.\-/]\s*\d{1,2}|\d{4}년\s*\d{1,2}월\s*\d{1,2}일`)
	shortDateRe     = regexp.MustCompile(`\d{1,2}/\d{1,2}\s*\([월화수목금토일]\)`)
	loneShortRe     = regexp.MustCompile(`^~\s*\d{1,2}/\d{1,2}\s*\([월화수목금토일]\)$`)
)

// NormalizeDeadline 统一截止日期格式
//   - 两个及以上完整日期取第二个(区间的结束日)
//   - 一个完整日期直接返回
//   - 两个及以上 M/D(요일) 短日期返回 "~ " + 第二个
//   - 单独的 "~ M/D(요일)" 原样保留
//   - "…까지" 截断到 까지
func NormalizeDeadline(s string) string {
	s = CleanLine(s)
	s = strings.TrimSpace(deadlineLabelRe.ReplaceAllString(s, ""))
	if s == "" {
		return ""
	}

	if full := fullDateRe.FindAllString(s, -1); len(full) >= 2 {
		return full[1]
	} else if len(full) == 1 {
		return full[0]
	}

	if short := shortDateRe.FindAllString(s, -1); len(short) >= 2 {
		return "~ " + short[1]
	}
	if loneShortRe.MatchString(s) {
		return s
	}

	if idx := strings.Index(s, "까지"); idx >= 0 {
		return strings.TrimSpace(s[:idx+len("까지")])
	}
	return s
}
