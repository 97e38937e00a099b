package extract

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document 静态HTML文档
type Document struct {
	raw string
	doc *goquery.Document

	textOnce sync.Once
	text     string
}

// NewDocument 解析HTML
func NewDocument(raw string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}
	return &Document{raw: raw, doc: doc}, nil
}

// EmptyDocument 空文档,快照失败时使用
func EmptyDocument() *Document {
	d, _ := NewDocument("")
	return d
}

// Raw 原始HTML
func (d *Document) Raw() string {
	return d.raw
}

// Selection 根选择集
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Text 可见文本(已清洗)
func (d *Document) Text() string {
	d.textOnce.Do(func() {
		d.text = CleanText(NodeText(d.doc.Nodes...))
	})
	return d.text
}

// Snapshot 静态文档的快照就是自身
func (d *Document) Snapshot() (*Document, error) {
	return d, nil
}

// Query 实现Source
func (d *Document) Query(loc Locator, mode Mode) ([]string, error) {
	switch loc.Kind {
	case KindCSS:
		return d.queryCSS(loc, mode), nil
	case KindXPath:
		return d.queryXPath(loc, mode)
	case KindRegex:
		return queryRegex(d.raw, loc, mode)
	}
	return nil, fmt.Errorf("未知定位器类型: %s", loc.Kind)
}

func (d *Document) queryCSS(loc Locator, mode Mode) []string {
	sel := d.doc.Find(loc.Expr)
	if mode == Single {
		sel = sel.First()
	}
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		if loc.Attr != "" {
			v, _ := s.Attr(loc.Attr)
			out = append(out, v)
			return
		}
		out = append(out, NodeText(s.Nodes...))
	})
	return out
}

func (d *Document) queryXPath(loc Locator, mode Mode) ([]string, error) {
	if len(d.doc.Nodes) == 0 {
		return nil, nil
	}
	nodes, err := htmlquery.QueryAll(d.doc.Nodes[0], loc.Expr)
	if err != nil {
		return nil, fmt.Errorf("XPath表达式无效 [%s]: %w", loc.Expr, err)
	}
	if mode == Single && len(nodes) > 1 {
		nodes = nodes[:1]
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, xpathValue(n, loc.Attr))
	}
	return out, nil
}

func xpathValue(n *html.Node, attr string) string {
	if attr != "" {
		return htmlquery.SelectAttr(n, attr)
	}
	// text() 选中的是文本节点
	if n.Type == html.TextNode {
		return n.Data
	}
	return NodeText(n)
}

var regexCache sync.Map

func compileCached(expr string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	regexCache.Store(expr, re)
	return re, nil
}

// queryRegex 在原始HTML上执行正则定位器
func queryRegex(haystack string, loc Locator, mode Mode) ([]string, error) {
	re, err := compileCached(loc.Expr)
	if err != nil {
		return nil, fmt.Errorf("正则表达式无效 [%s]: %w", loc.Expr, err)
	}
	n := -1
	if mode == Single {
		n = 1
	}
	var out []string
	for _, m := range re.FindAllStringSubmatch(haystack, n) {
		v := m[0]
		if len(m) > 1 {
			v = m[1]
		}
		out = append(out, stripMarkup(v))
	}
	return out, nil
}
