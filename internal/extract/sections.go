package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Target 区块产出类型
type Target int

const (
	// TargetPairs 产出 标签 -> 值 对
	TargetPairs Target = iota
	// TargetText 产出整段文本,以命中的标题关键词为键
	TargetText
)

// SectionSpec 结构化区块描述
//
//	SectionSpec{
//	    Container: ".jv_cont", Heading: ".tit_job_condition",
//	    HeadingKeywords: []string{"근무조건"},
//	    Item: ".cont .item", Label: "dt", Value: "dd",
//	}
type SectionSpec struct {
	Container string
	// Heading 为空时容器无条件命中
	Heading         string
	HeadingKeywords []string
	// Item 为空时容器本身作为唯一条目
	Item   string
	Label  string
	Value  string
	Target Target
}

// Sections 区块查找结果
type Sections struct {
	Pairs []Pair
	Texts map[string]string
}

// Text 按关键词取文本区块
func (s Sections) Text(keywords ...string) string {
	for _, k := range keywords {
		if v := s.Texts[k]; v != "" {
			return v
		}
	}
	return ""
}

// CollectSections 在文档上执行所有区块描述
// Pairs 按文档顺序排列,同一标签重复出现时保留全部,查找时取第一个
func CollectSections(doc *Document, specs []SectionSpec) Sections {
	out := Sections{Texts: make(map[string]string)}
	if doc == nil {
		return out
	}
	for _, spec := range specs {
		doc.Selection().Find(spec.Container).Each(func(_ int, container *goquery.Selection) {
			keyword, ok := matchHeading(container, spec)
			if !ok {
				return
			}
			switch spec.Target {
			case TargetText:
				if _, exists := out.Texts[keyword]; exists || keyword == "" {
					return
				}
				body := container
				if spec.Value != "" {
					body = container.Find(spec.Value).First()
				}
				if text := CleanText(NodeText(body.Nodes...)); text != "" {
					out.Texts[keyword] = text
				}
			default:
				out.Pairs = append(out.Pairs, itemPairs(container, spec)...)
			}
		})
	}
	return out
}

// matchHeading 返回命中的关键词
func matchHeading(container *goquery.Selection, spec SectionSpec) (string, bool) {
	if spec.Heading == "" {
		return "", true
	}
	heading := CleanLine(NodeText(container.Find(spec.Heading).First().Nodes...))
	if heading == "" {
		return "", false
	}
	if len(spec.HeadingKeywords) == 0 {
		return heading, true
	}
	for _, k := range spec.HeadingKeywords {
		if strings.Contains(heading, k) {
			return k, true
		}
	}
	return "", false
}

func itemPairs(container *goquery.Selection, spec SectionSpec) []Pair {
	items := container
	if spec.Item != "" {
		items = container.Find(spec.Item)
	}

	var pairs []Pair
	items.Each(func(_ int, item *goquery.Selection) {
		labels := item.Find(spec.Label)
		values := item.Find(spec.Value)
		n := labels.Length()
		if values.Length() < n {
			n = values.Length()
		}
		for i := 0; i < n; i++ {
			label := CleanLine(NodeText(labels.Eq(i).Nodes...))
			value := CleanText(NodeText(values.Eq(i).Nodes...))
			if label != "" && value != "" {
				pairs = append(pairs, Pair{Label: label, Value: value})
			}
		}
	})
	return pairs
}
