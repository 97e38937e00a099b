package crawlers

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// AbsoluteURL 把href解析为绝对地址,非http(s)链接返回空
func AbsoluteURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return ""
	}

	link, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := link
	if base != nil {
		abs = base.ResolveReference(link)
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

// ScanAnchors 扫描所有<a href>,返回包含fragment的绝对链接(文档顺序,已去重)
// 选择器级联失效时的兜底手段
func ScanAnchors(htmlContent string, baseURL string, fragment string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("解析baseURL失败: %w", err)
	}

	set := NewURLSet(0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if fragment != "" && !strings.Contains(attr.Val, fragment) {
					break
				}
				set.Add(AbsoluteURL(base, attr.Val))
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return set.List(), nil
}
