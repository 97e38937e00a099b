package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

// FieldLabels 字段 -> 可接受的标签(同义词按顺序解析)
var FieldLabels = map[models.Field][]string{
	models.FieldCompanyName:    {"회사명", "기업명"},
	models.FieldTitle:          {"공고명", "채용제목", "모집분야"},
	models.FieldDeadline:       {"마감일", "접수마감", "지원마감", "접수기간", "모집기간", "마감"},
	models.FieldLocation:       {"근무지역", "근무지", "근무장소", "지역", "Location"},
	models.FieldExperience:     {"경력", "경력사항", "경력여부", "Seniority level", "Experience"},
	models.FieldEducation:      {"학력", "최종학력", "Education"},
	models.FieldEmploymentType: {"근무형태", "고용형태", "채용형태", "Employment type"},
	models.FieldSalary:         {"급여", "연봉", "임금", "보수", "Salary"},
	models.FieldWelfare:        {"복리후생", "복지"},
}

// ApplicationLabels 접수기간/지원방법 子字段标签
var ApplicationLabels = map[string][]string{
	models.AppPeriod: {"접수기간", "모집기간", "마감일", "접수마감"},
	models.AppMethod: {"지원방법", "접수방법", "지원방식", "접수방식"},
}

// CompanyLabels 기업정보 子字段标签
var CompanyLabels = map[string][]string{
	models.CompanyName:     {"회사명", "기업명"},
	models.CompanyType:     {"기업형태", "기업구분", "회사형태"},
	models.CompanySize:     {"기업규모", "사원수", "직원수", "회사규모", "Company size"},
	models.CompanyIndustry: {"산업", "업종", "산업분야", "Industries", "Industry"},
}

// 子字段键的固定顺序
var (
	applicationKeys = []string{models.AppPeriod, models.AppMethod}
	companyKeys     = []string{models.CompanyName, models.CompanyType, models.CompanySize, models.CompanyIndustry}
)

// claimedLabels 所有同义词表中出现过的标签(规范化后)
var claimedLabels = func() map[string]bool {
	m := make(map[string]bool)
	for _, syns := range FieldLabels {
		for _, s := range syns {
			m[normLabel(s)] = true
		}
	}
	for _, table := range []map[string][]string{ApplicationLabels, CompanyLabels} {
		for _, syns := range table {
			for _, s := range syns {
				m[normLabel(s)] = true
			}
		}
	}
	return m
}()

// 包含匹配只对短标签生效,避免长句子误命中
const maxContainLabelRunes = 20

// Pair 结构化区块中的 标签 -> 值
type Pair struct {
	Label string
	Value string
}

// LookupLabel 按同义词顺序查找值:先精确匹配,再包含匹配
func LookupLabel(pairs []Pair, synonyms []string) string {
	for _, syn := range synonyms {
		for _, p := range pairs {
			if normLabel(p.Label) == normLabel(syn) {
				return p.Value
			}
		}
	}
	for _, syn := range synonyms {
		n := normLabel(syn)
		for _, p := range pairs {
			label := normLabel(p.Label)
			// 其他字段的标签(如 회사규모)只能精确匹配
			if claimedLabels[label] {
				continue
			}
			if utf8.RuneCountInString(label) <= maxContainLabelRunes && strings.Contains(label, n) {
				return p.Value
			}
		}
	}
	return ""
}

// normLabel 去掉空白和冒号,英文转小写
func normLabel(s string) string {
	s = strings.ToLower(CleanLine(s))
	s = strings.TrimRight(s, ":：")
	return strings.Join(strings.Fields(s), "")
}
