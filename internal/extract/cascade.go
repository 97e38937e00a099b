// Package extract 实现选择器级联解析与字段抽取
//
// # 概述
//
// 招聘站点的HTML结构不统一且经常变化,单一选择器很容易失效。
// 本包把"按顺序尝试多个定位器,取第一个非空结果"抽象为 Cascade,
// 再在其上叠加三层字段抽取:结构化区块查找 -> 直接级联 -> 正则兜底。
//
// # 数据源
//
// Source 接口屏蔽了静态文档与浏览器实时DOM的差异:
//   - Document: goquery(CSS) + htmlquery(XPath) + regexp(Regex)
//   - 浏览器页面: 由 crawlers 包通过 go-rod 实时查询
//
// 使用示例:
//
//	doc, _ := extract.NewDocument(html)
//	title := extract.ResolveOne(doc, extract.CSSChain(extract.Single, ".tit_job", "h1"))
package extract

import (
	"fmt"
)

// Kind 定位器类型
type Kind int

const (
	KindCSS Kind = iota
	KindXPath
	KindRegex
)

func (k Kind) String() string {
	switch k {
	case KindCSS:
		return "css"
	case KindXPath:
		return "xpath"
	case KindRegex:
		return "regex"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Mode 匹配模式
type Mode int

const (
	// Single 取第一个元素的文本
	Single Mode = iota
	// Multiple 取所有非空文本(文档顺序)
	Multiple
)

// Locator 单个定位器
type Locator struct {
	Kind Kind
	Expr string
	// Attr 非空时取属性值而不是文本
	Attr string
}

// CSS 创建CSS定位器
func CSS(expr string) Locator { return Locator{Kind: KindCSS, Expr: expr} }

// XPath 创建XPath定位器
func XPath(expr string) Locator { return Locator{Kind: KindXPath, Expr: expr} }

// Regex 创建正则定位器,有捕获组时取第1组
func Regex(expr string) Locator { return Locator{Kind: KindRegex, Expr: expr} }

// WithAttr 返回取属性值的副本
func (l Locator) WithAttr(attr string) Locator {
	l.Attr = attr
	return l
}

func (l Locator) String() string {
	if l.Attr != "" {
		return fmt.Sprintf("%s:%s@%s", l.Kind, l.Expr, l.Attr)
	}
	return fmt.Sprintf("%s:%s", l.Kind, l.Expr)
}

// Cascade 有序定位器列表
// 包级变量在初始化时构建,之后不再修改
type Cascade struct {
	Locators []Locator
	Mode     Mode
}

// Chain 创建级联(复制传入的定位器)
func Chain(mode Mode, locs ...Locator) Cascade {
	return Cascade{Locators: append([]Locator(nil), locs...), Mode: mode}
}

// CSSChain 全部由CSS选择器组成的级联
func CSSChain(mode Mode, exprs ...string) Cascade {
	locs := make([]Locator, 0, len(exprs))
	for _, e := range exprs {
		locs = append(locs, CSS(e))
	}
	return Cascade{Locators: locs, Mode: mode}
}

// AttrChain 全部取同一属性的CSS级联
func AttrChain(mode Mode, attr string, exprs ...string) Cascade {
	c := CSSChain(mode, exprs...)
	for i := range c.Locators {
		c.Locators[i].Attr = attr
	}
	return c
}

// Empty 是否没有任何定位器
func (c Cascade) Empty() bool {
	return len(c.Locators) == 0
}

// Source 可查询的文档
type Source interface {
	// Query 按定位器查询当前文档状态,返回原始文本(未清洗)
	// Single 模式下最多返回一个值
	Query(loc Locator, mode Mode) ([]string, error)

	// Snapshot 返回当前文档的静态快照,用于区块查找和正则兜底
	Snapshot() (*Document, error)
}

// Result 级联解析结果
type Result struct {
	Values  []string
	Locator Locator
	Matched bool
}

// First 第一个值,无结果时为空字符串
func (r Result) First() string {
	if len(r.Values) == 0 {
		return ""
	}
	return r.Values[0]
}

// Resolve 依次尝试级联中的定位器,返回第一个非空结果
// 定位器报错、panic或无匹配都会被跳过,不会向上抛出
func Resolve(src Source, c Cascade) Result {
	if src == nil {
		return Result{Values: []string{}}
	}
	for _, loc := range c.Locators {
		if vals := tryLocator(src, loc, c.Mode); len(vals) > 0 {
			return Result{Values: vals, Locator: loc, Matched: true}
		}
	}
	return Result{Values: []string{}}
}

// ResolveOne Single模式解析
func ResolveOne(src Source, c Cascade) string {
	c.Mode = Single
	return Resolve(src, c).First()
}

// ResolveAll Multiple模式解析
func ResolveAll(src Source, c Cascade) []string {
	c.Mode = Multiple
	return Resolve(src, c).Values
}

func tryLocator(src Source, loc Locator, mode Mode) (vals []string) {
	defer func() {
		if r := recover(); r != nil {
			vals = nil
		}
	}()

	raw, err := src.Query(loc, mode)
	if err != nil {
		return nil
	}

	if mode == Single {
		if len(raw) == 0 {
			return nil
		}
		v := cleanValue(raw[0], loc)
		if v == "" {
			return nil
		}
		return []string{v}
	}

	for _, r := range raw {
		if v := cleanValue(r, loc); v != "" {
			vals = append(vals, v)
		}
	}
	return vals
}

func cleanValue(s string, loc Locator) string {
	if loc.Attr != "" {
		return CleanLine(s)
	}
	return CleanText(s)
}
