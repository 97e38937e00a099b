package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RecoveryAshes/kjobcrawl/internal/extract"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// StaticFetcher 基于Colly的静态获取器
// 不执行JavaScript,适合服务端渲染的页面(如Incruit)
type StaticFetcher struct {
	collector      *colly.Collector
	headerProvider models.HeaderProvider
	throttle       *Throttle
	logger         zerolog.Logger
}

// NewStaticFetcher 创建静态获取器
func NewStaticFetcher(cfg models.FetchConfig, headerProvider models.HeaderProvider, throttle *Throttle, logger zerolog.Logger) *StaticFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	// 同一URL在重试时需要再次访问
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
	)
	c.SetClient(&http.Client{Transport: transport, Timeout: timeout})
	c.SetRequestTimeout(timeout)

	return &StaticFetcher{
		collector:      c,
		headerProvider: headerProvider,
		throttle:       throttle,
		logger:         logger.With().Str("component", "static_fetcher").Logger(),
	}
}

// Fetch 实现Fetcher,网络错误和非2xx均返回 *models.FetchError,不做重试
func (f *StaticFetcher) Fetch(ctx context.Context, req FetchRequest, fn func(Page) error) error {
	page := &staticPage{fetcher: f}
	if err := page.Navigate(ctx, req.URL); err != nil {
		return err
	}
	return fn(page)
}

// get 克隆collector执行一次GET,返回解码后的UTF-8正文和最终地址
func (f *StaticFetcher) get(ctx context.Context, target string) (string, string, error) {
	if err := f.throttle.Wait(ctx, target); err != nil {
		return "", "", err
	}

	c := f.collector.Clone()

	var (
		body       []byte
		headers    http.Header
		finalURL   = target
		statusCode int
		fetchErr   error
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		f.applyHeaders(r.Headers)
		f.logger.Debug().Str("url", r.URL.String()).Msg("静态请求")
	})

	c.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = r.Body
		headers = *r.Headers
		finalURL = r.Request.URL.String()
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = err
	})

	visitErr := c.Visit(target)
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	if fetchErr == nil {
		fetchErr = visitErr
	}
	if fetchErr != nil || statusCode < 200 || statusCode >= 300 {
		if fetchErr == nil {
			fetchErr = errors.New(http.StatusText(statusCode))
		}
		return "", "", &models.FetchError{URL: target, Op: "static", StatusCode: statusCode, Err: fetchErr}
	}

	decoded, err := decodeBody(headers.Get("Content-Encoding"), headers.Get("Content-Type"), body)
	if err != nil {
		f.logger.Warn().Err(err).Str("url", target).Msg("响应解码失败,使用原始内容")
		decoded = string(body)
	}
	return decoded, finalURL, nil
}

// applyHeaders 合并配置头部并设置UA
func (f *StaticFetcher) applyHeaders(h *http.Header) {
	ua := DefaultUserAgent
	if f.headerProvider != nil {
		merged, err := f.headerProvider.GetHeaders()
		if err != nil {
			f.logger.Warn().Err(err).Msg("获取HTTP头部失败")
		} else {
			for name, values := range merged {
				if len(values) > 0 {
					h.Set(name, values[0])
				}
			}
		}
		if v := f.headerProvider.UserAgent(); v != "" {
			ua = v
		}
	}
	h.Set("User-Agent", ua)
	if h.Get("Accept-Encoding") == "" {
		h.Set("Accept-Encoding", "gzip, deflate, br")
	}
}

// decodeBody 解压并转为UTF-8
func decodeBody(contentEncoding, contentType string, body []byte) (string, error) {
	raw, err := decompressResponse(contentEncoding, body)
	if err != nil {
		return "", err
	}
	// Colly已按Content-Type转码过的正文不再处理
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	enc, name, _ := charset.DetermineEncoding(raw, contentType)
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("字符集转换失败 [%s]: %w", name, err)
	}
	return string(out), nil
}

// decompressResponse 根据Content-Encoding解压
// Colly会自行处理gzip,所以gzip只在魔数匹配时解压
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip":
		if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
			return body, nil
		}
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()
		return io.ReadAll(reader)
	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()
		out, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return out, nil
	case "br":
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return out, nil
	default:
		return body, nil
	}
}

// staticPage 静态文档页面
type staticPage struct {
	*extract.Document
	url     string
	fetcher *StaticFetcher
}

// NewHTMLPage 用给定HTML构造页面,Navigate不可用
func NewHTMLPage(pageURL, html string) (Page, error) {
	doc, err := extract.NewDocument(html)
	if err != nil {
		return nil, err
	}
	return &staticPage{Document: doc, url: pageURL}, nil
}

func (p *staticPage) URL() string { return p.url }

func (p *staticPage) HTML() (string, error) { return p.Raw(), nil }

func (p *staticPage) Navigate(ctx context.Context, target string) error {
	if p.fetcher == nil {
		return &models.FetchError{URL: target, Op: "static", Err: errors.New("页面不支持导航")}
	}
	body, finalURL, err := p.fetcher.get(ctx, target)
	if err != nil {
		return err
	}
	doc, err := extract.NewDocument(body)
	if err != nil {
		return &models.FetchError{URL: target, Op: "static", Err: err}
	}
	p.Document = doc
	p.url = finalURL
	return nil
}

// ClickFirst 静态页面无法交互
func (p *staticPage) ClickFirst(context.Context, []string) (bool, error) { return false, nil }

// Scroll 静态页面无需滚动
func (p *staticPage) Scroll(context.Context, int) error { return nil }
