package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var (
	spaceRunRe = regexp.MustCompile(`[ \t\f\v\p{Zs}]+`)
	tagRe      = regexp.MustCompile(`<[^>]*>`)
)

// CleanText 清洗多行文本
// NFC归一化,行内空白折叠,去除空行,行间以 \n 连接
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// CleanLine 清洗为单行文本
func CleanLine(s string) string {
	return strings.ReplaceAll(CleanText(s), "\n", " ")
}

// stripMarkup 去掉正则从原始HTML中截取到的残留标签和实体
func stripMarkup(s string) string {
	return html.UnescapeString(tagRe.ReplaceAllString(s, " "))
}

// 产生换行的块级元素
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "dd": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "tr": true, "ul": true, "th": true, "td": true,
}

// 不可见内容
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "head": true,
}

// NodeText 近似浏览器innerText:块级元素与<br>换行,跳过脚本样式
func NodeText(nodes ...*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		writeNodeText(&sb, n)
	}
	return sb.String()
}

func writeNodeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipTags[n.Data] {
			return
		}
		if n.Data == "br" {
			sb.WriteByte('\n')
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNodeText(sb, c)
	}
	if block {
		sb.WriteByte('\n')
	}
}
