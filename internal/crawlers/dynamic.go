package crawlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/extract"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// 隐藏 navigator.webdriver
const stealthJS = `() => { Object.defineProperty(navigator, 'webdriver', {get: () => undefined}) }`

// BrowserFetcher 基于go-rod的渲染获取器
// 每次Fetch启动独立的浏览器会话,回调结束后关闭
type BrowserFetcher struct {
	cfg            models.FetchConfig
	headerProvider models.HeaderProvider
	guard          *ResourceGuard
	throttle       *Throttle
	logger         zerolog.Logger
}

// NewBrowserFetcher 创建浏览器获取器
func NewBrowserFetcher(cfg models.FetchConfig, headerProvider models.HeaderProvider, guard *ResourceGuard, throttle *Throttle, logger zerolog.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		cfg:            cfg,
		headerProvider: headerProvider,
		guard:          guard,
		throttle:       throttle,
		logger:         logger.With().Str("component", "browser_fetcher").Logger(),
	}
}

// Fetch 实现Fetcher
// 会话内的panic会被转换为包装 ErrBrowserCrashed 的 *models.FetchError
func (f *BrowserFetcher) Fetch(ctx context.Context, req FetchRequest, fn func(Page) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error().Str("url", req.URL).Str("panic", fmt.Sprint(r)).Msg("浏览器会话panic")
			err = &models.FetchError{URL: req.URL, Op: "browser", Err: fmt.Errorf("%w: %v", ErrBrowserCrashed, r)}
		}
	}()

	if f.guard != nil {
		if gerr := f.guard.Wait(ctx); gerr != nil {
			return &models.FetchError{URL: req.URL, Op: "browser", Err: gerr}
		}
	}

	ua := DefaultUserAgent
	if f.headerProvider != nil {
		if v := f.headerProvider.UserAgent(); v != "" {
			ua = v
		}
	}

	l := launcher.New().
		Headless(f.cfg.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("lang", "ko-KR").
		Set("user-agent", ua)
	if f.cfg.InsecureTLS {
		l = l.Set("ignore-certificate-errors")
	}
	if f.cfg.BrowserBin != "" {
		l = l.Bin(f.cfg.BrowserBin)
	}

	controlURL, lerr := l.Context(ctx).Launch()
	if lerr != nil {
		return &models.FetchError{URL: req.URL, Op: "browser", Err: fmt.Errorf("启动浏览器失败: %w", lerr)}
	}
	// Cleanup等待进程退出后删除用户目录,必须在Kill之后执行
	defer l.Cleanup()
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if cerr := browser.Connect(); cerr != nil {
		return &models.FetchError{URL: req.URL, Op: "browser", Err: fmt.Errorf("连接浏览器失败: %w", cerr)}
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			f.logger.Debug().Err(cerr).Msg("关闭浏览器失败")
		}
	}()

	rp, perr := browser.Page(proto.TargetCreateTarget{})
	if perr != nil {
		return &models.FetchError{URL: req.URL, Op: "browser", Err: fmt.Errorf("创建页面失败: %w", perr)}
	}

	page := &browserPage{page: rp, req: req, fetcher: f}
	stop, serr := page.setup(ua)
	if serr != nil {
		f.logger.Warn().Err(serr).Msg("页面初始化不完整,继续")
	}
	defer stop()

	if nerr := page.Navigate(ctx, req.URL); nerr != nil {
		return nerr
	}
	if req.ScrollRounds > 0 {
		if serr := page.Scroll(ctx, req.ScrollRounds); serr != nil {
			f.logger.Debug().Err(serr).Msg("滚动中断")
		}
	}

	return fn(page)
}

// browserPage 实时DOM页面
type browserPage struct {
	page    *rod.Page
	req     FetchRequest
	fetcher *BrowserFetcher

	mu   sync.Mutex
	snap *extract.Document
}

// setup 设置UA、额外头部、反检测脚本,并拦截图片等无关资源
func (p *browserPage) setup(ua string) (func(), error) {
	var errs []error

	if err := p.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      ua,
		AcceptLanguage: "ko-KR,ko;q=0.9,en-US;q=0.8",
	}); err != nil {
		errs = append(errs, err)
	}

	if p.fetcher.headerProvider != nil {
		if h, err := p.fetcher.headerProvider.GetHeaders(); err == nil {
			if _, err := p.page.SetExtraHeaders(extraHeaderPairs(h)); err != nil {
				errs = append(errs, err)
			}
		} else {
			errs = append(errs, err)
		}
	}

	if _, err := p.page.EvalOnNewDocument(stealthJS); err != nil {
		errs = append(errs, err)
	}

	router := p.page.HijackRequests()
	if err := router.Add("*", "", func(h *rod.Hijack) {
		switch h.Request.Type() {
		case proto.NetworkResourceTypeImage, proto.NetworkResourceTypeMedia, proto.NetworkResourceTypeFont:
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		default:
			h.ContinueRequest(&proto.FetchContinueRequest{})
		}
	}); err != nil {
		errs = append(errs, err)
		return func() {}, errors.Join(errs...)
	}
	go router.Run()

	return func() { _ = router.Stop() }, errors.Join(errs...)
}

// extraHeaderPairs 转为SetExtraHeaders需要的 k,v,k,v 形式
// UA由SetUserAgent负责,压缩协商交给浏览器
func extraHeaderPairs(h http.Header) []string {
	var out []string
	for name, values := range h {
		if len(values) == 0 {
			continue
		}
		switch http.CanonicalHeaderKey(name) {
		case "User-Agent", "Accept-Encoding":
			continue
		}
		out = append(out, name, values[0])
	}
	return out
}

func (p *browserPage) invalidate() {
	p.mu.Lock()
	p.snap = nil
	p.mu.Unlock()
}

func (p *browserPage) URL() string {
	info, err := p.page.Info()
	if err != nil || info == nil {
		return p.req.URL
	}
	return info.URL
}

func (p *browserPage) HTML() (string, error) {
	return p.page.HTML()
}

// Navigate 打开地址,等待加载和内容标记
// 标记超时只记录日志,按已加载的内容继续
func (p *browserPage) Navigate(ctx context.Context, target string) error {
	p.invalidate()
	log := p.fetcher.logger

	if err := p.fetcher.throttle.Wait(ctx, target); err != nil {
		return err
	}

	pg := p.page.Context(ctx)
	if err := pg.Navigate(target); err != nil {
		return &models.FetchError{URL: target, Op: "browser", Err: fmt.Errorf("导航失败: %w", err)}
	}

	waitTimeout := p.req.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitTimeout
	}

	loading := pg.Timeout(waitTimeout)
	if err := loading.WaitLoad(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Str("url", target).Msg("等待页面加载超时,继续")
	}
	loading.CancelTimeout()

	if len(p.req.WaitSelectors) > 0 {
		if !p.waitMarkers(ctx, waitTimeout) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Str("url", target).Strs("markers", p.req.WaitSelectors).Msg("内容标记未出现,按已加载内容继续")
		}
	}

	if err := SleepContext(ctx, p.req.Settle); err != nil {
		return err
	}
	log.Debug().Str("url", target).Msg("页面加载完成")
	return nil
}

// waitMarkers 轮询直到任一标记出现或超时
func (p *browserPage) waitMarkers(ctx context.Context, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		for _, sel := range p.req.WaitSelectors {
			if has, _, err := p.page.Has(sel); err == nil && has {
				return true
			}
		}
		if time.Now().After(deadline) {
			return false
		}
		if err := SleepContext(ctx, 500*time.Millisecond); err != nil {
			return false
		}
	}
}

func (p *browserPage) ClickFirst(ctx context.Context, selectors []string) (bool, error) {
	for _, sel := range selectors {
		has, el, err := p.page.Has(sel)
		if err != nil || !has {
			continue
		}
		if visible, verr := el.Visible(); verr != nil || !visible {
			continue
		}
		if disabled, _ := el.Attribute("disabled"); disabled != nil {
			continue
		}
		_ = el.ScrollIntoView()
		if err := p.fetcher.throttle.Pause(ctx); err != nil {
			return false, err
		}
		err = clickWithFallback(ctx, ClickTimeout,
			func(c context.Context) error { return el.Context(c).Click(proto.InputMouseButtonLeft, 1) },
			func() error {
				_, jerr := el.Eval(`() => this.click()`)
				return jerr
			})
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			continue
		}
		p.invalidate()
		return true, nil
	}
	return false, nil
}

// clickWithFallback 原生点击限时完成,超时或失败时改用JS点击
// rod 的 Click 会一直等待元素可交互,被遮挡时不会自行返回
func clickWithFallback(ctx context.Context, timeout time.Duration, click func(context.Context) error, jsClick func() error) error {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	err := click(cctx)
	cancel()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return jsClick()
}

func (p *browserPage) Scroll(ctx context.Context, rounds int) error {
	for i := 0; i < rounds; i++ {
		if _, err := p.page.Context(ctx).Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
			return err
		}
		if err := p.fetcher.throttle.Pause(ctx); err != nil {
			return err
		}
	}
	p.invalidate()
	return nil
}

// Snapshot 当前DOM的静态快照,DOM变化前重复调用复用同一份
func (p *browserPage) Snapshot() (*extract.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap != nil {
		return p.snap, nil
	}
	html, err := p.page.HTML()
	if err != nil {
		return nil, err
	}
	doc, err := extract.NewDocument(html)
	if err != nil {
		return nil, err
	}
	p.snap = doc
	return doc, nil
}

// Query 在实时DOM上查询,正则在快照上执行
func (p *browserPage) Query(loc extract.Locator, mode extract.Mode) ([]string, error) {
	var (
		els rod.Elements
		err error
	)
	switch loc.Kind {
	case extract.KindCSS:
		els, err = p.page.Elements(loc.Expr)
	case extract.KindXPath:
		els, err = p.page.ElementsX(loc.Expr)
	default:
		doc, serr := p.Snapshot()
		if serr != nil {
			return nil, serr
		}
		return doc.Query(loc, mode)
	}
	if err != nil {
		return nil, err
	}

	if mode == extract.Single && len(els) > 1 {
		els = els[:1]
	}
	out := make([]string, 0, len(els))
	for _, el := range els {
		if loc.Attr != "" {
			v, aerr := el.Attribute(loc.Attr)
			if aerr != nil || v == nil {
				out = append(out, "")
				continue
			}
			out = append(out, *v)
			continue
		}
		text, terr := el.Text()
		if terr != nil {
			out = append(out, "")
			continue
		}
		out = append(out, text)
	}
	return out, nil
}
