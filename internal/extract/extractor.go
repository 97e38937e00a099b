package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/rs/zerolog"
)

// FieldSpec 单个字段的抽取配置
type FieldSpec struct {
	Cascade Cascade
	// Patterns 为空时使用 DefaultPatterns
	Patterns []*regexp.Regexp
	// Post 抽取后的处理函数(可选)
	Post func(string) string
}

// Profile 站点抽取配置
type Profile struct {
	Sections []SectionSpec
	Fields   map[models.Field]FieldSpec

	AppCascades     map[string]Cascade
	CompanyCascades map[string]Cascade

	// WelfareKeywords 文本区块关键词,先于 WelfareCascade
	WelfareKeywords []string
	WelfareCascade  Cascade

	// SplitDescription 对描述做小节切分并填充 Sections
	SplitDescription bool
	// ComposeDescription 切分成功时用规范化的小节渲染替换原描述
	ComposeDescription bool

	// DefaultDeadline 所有层都未命中时的截止日期
	DefaultDeadline string
}

// Extractor 字段抽取器
type Extractor struct {
	logger zerolog.Logger
}

// NewExtractor 创建抽取器
func NewExtractor(logger zerolog.Logger) *Extractor {
	return &Extractor{logger: logger.With().Str("component", "extractor").Logger()}
}

// Extract 填充记录的所有字段
// 每个字段独立recover,单个字段失败只会让该字段为空
func (e *Extractor) Extract(src Source, p Profile, rec *models.JobRecord) {
	snap := e.snapshot(src)
	var sections Sections
	e.guard("sections", func() {
		sections = CollectSections(snap, p.Sections)
	})
	e.logger.Debug().Str("url", rec.URL).Int("pairs", len(sections.Pairs)).Int("texts", len(sections.Texts)).Msg("结构化区块查找完成")

	for _, f := range models.TextFields {
		if f == models.FieldWelfare {
			continue
		}
		field := f
		value := ""
		e.guard(string(field), func() {
			value = e.extractField(src, snap, p, sections, field)
		})
		rec.Set(field, value)
	}

	rec.WelfareBenefits = ""
	e.guard(string(models.FieldWelfare), func() {
		rec.WelfareBenefits = e.extractWelfare(src, snap, p, sections)
	})

	rec.ApplicationPeriod = e.subFields("application_period", src, sections.Pairs, applicationKeys, ApplicationLabels, p.AppCascades)
	rec.CompanyInfo = e.subFields("company_info", src, sections.Pairs, companyKeys, CompanyLabels, p.CompanyCascades)

	rec.Sections = make(map[string]string)
	if p.SplitDescription && rec.Description != "" {
		e.guard("description_sections", func() {
			split := SplitSections(rec.Description)
			if len(split) == 0 {
				return
			}
			rec.Sections = split
			if p.ComposeDescription {
				rec.Description = ComposeDescription(split)
			}
			if rec.WelfareBenefits == "" {
				rec.WelfareBenefits = split[models.SectionBenefits]
			}
		})
	}

	if empty := rec.EmptyFields(); len(empty) > 0 {
		e.logger.Debug().Str("url", rec.URL).Interface("empty_fields", empty).Msg("部分字段未抽取到")
	}
}

// snapshot 取静态快照,失败时退化为空文档
func (e *Extractor) snapshot(src Source) (doc *Document) {
	doc = EmptyDocument()
	e.guard("snapshot", func() {
		d, err := src.Snapshot()
		if err != nil {
			e.logger.Warn().Err(err).Msg("获取文档快照失败,结构化和正则层将跳过")
			return
		}
		if d != nil {
			doc = d
		}
	})
	return doc
}

// extractField 结构化区块 -> 直接级联 -> 正则兜底
func (e *Extractor) extractField(src Source, snap *Document, p Profile, sections Sections, f models.Field) string {
	spec := p.Fields[f]
	layer := "structured"
	v := LookupLabel(sections.Pairs, FieldLabels[f])

	if v == "" && !spec.Cascade.Empty() {
		layer = "cascade"
		v = ResolveOne(src, spec.Cascade)
	}

	if v == "" {
		layer = "regex"
		patterns := spec.Patterns
		if len(patterns) == 0 {
			patterns = DefaultPatterns[f]
		}
		if len(patterns) > 0 {
			v = MatchPatterns(snap.Raw(), snap.Text(), patterns)
		}
	}

	if f == models.FieldDeadline {
		v = NormalizeDeadline(v)
		if v == "" && p.DefaultDeadline != "" {
			layer = "default"
			v = p.DefaultDeadline
		}
	}

	if v != "" && spec.Post != nil {
		v = spec.Post(v)
	}

	if v != "" {
		e.logger.Debug().Str("field", string(f)).Str("layer", layer).Msg("字段抽取成功")
	}
	return v
}

func (e *Extractor) extractWelfare(src Source, snap *Document, p Profile, sections Sections) string {
	if v := sections.Text(p.WelfareKeywords...); v != "" {
		return v
	}
	if !p.WelfareCascade.Empty() {
		if vals := ResolveAll(src, p.WelfareCascade); len(vals) > 0 {
			return strings.Join(vals, "\n")
		}
	}
	return LookupLabel(sections.Pairs, FieldLabels[models.FieldWelfare])
}

// subFields 先按标签表从区块对中取值,再用子字段级联补齐
func (e *Extractor) subFields(name string, src Source, pairs []Pair, keys []string, labels map[string][]string, cascades map[string]Cascade) map[string]string {
	out := make(map[string]string)
	for _, k := range keys {
		key := k
		e.guard(name+"."+key, func() {
			v := LookupLabel(pairs, labels[key])
			if v == "" {
				if c, ok := cascades[key]; ok {
					v = ResolveOne(src, c)
				}
			}
			if v != "" {
				out[key] = v
			}
		})
	}
	return out
}

// guard 执行fn并吞掉panic
func (e *Extractor) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn().Str("field", name).Str("panic", fmt.Sprint(r)).Msg("字段抽取异常,已置空")
		}
	}()
	fn()
}
