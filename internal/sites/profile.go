package sites

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/RecoveryAshes/kjobcrawl/internal/extract"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

// SiteProfile 站点配置
type SiteProfile struct {
	Site models.SiteID
	// Base 相对链接的解析基准
	Base string
	// DetailURLMarkers URL包含任意一个即视为详情页
	DetailURLMarkers []string

	// ListingLinks 列表页链接级联(Multiple + href)
	ListingLinks extract.Cascade
	// AnchorFragment 级联未命中时扫描<a href>使用的过滤片段
	AnchorFragment string
	ListingMarkers []string
	DetailMarkers  []string

	RenderJS     bool
	ScrollRounds int
	// DismissSelectors 页面加载后尝试关闭的弹窗按钮
	DismissSelectors []string

	Extract    extract.Profile
	Pagination *Pagination
}

// Pagination 列表页翻页配置
type Pagination struct {
	NextSelectors []string
	// Param/Step 没有可点击按钮时的URL翻页参数
	Param    string
	Step     int
	MaxPages int
}

// NextPageURL 把偏移参数推进到下一页
// start=0 -> 25, start=25 -> 50, 不是step整数倍时对齐到下一页起点
func NextPageURL(current, param string, step int) (string, error) {
	u, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("解析当前页地址失败: %w", err)
	}
	if step <= 0 {
		return "", fmt.Errorf("无效的翻页步长: %d", step)
	}
	q := u.Query()
	start, _ := strconv.Atoi(q.Get(param))
	if start < 0 {
		start = 0
	}
	q.Set(param, strconv.Itoa((start/step+1)*step))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// links 列表页链接级联: 条目选择器 x 链接选择器
func links(items []string, anchors ...string) extract.Cascade {
	var exprs []string
	for _, item := range items {
		for _, a := range anchors {
			exprs = append(exprs, item+" "+a)
		}
	}
	return extract.AttrChain(extract.Multiple, "href", exprs...)
}

func field(exprs ...string) extract.FieldSpec {
	return extract.FieldSpec{Cascade: extract.CSSChain(extract.Single, exprs...)}
}

func single(exprs ...string) extract.Cascade {
	return extract.CSSChain(extract.Single, exprs...)
}
