// Package crawlers 提供招聘页面的获取能力
//
// # 概述
//
// crawlers包实现两种获取方式: 静态(Colly)和动态(go-rod)。
// 两者实现同一个 Fetcher 接口,会话只在 Fetch 的回调内有效,回调返回后一定被释放。
//
// # 核心组件
//
// ## StaticFetcher
//
// 基于Colly的静态获取器,支持gzip/deflate/br解压和字符集检测(EUC-KR页面转为UTF-8)。
// 非2xx状态和网络错误都返回 *models.FetchError,本身不重试。
//
//	f := NewStaticFetcher(cfg.Fetch, headerManager, throttle, logger)
//	err := f.Fetch(ctx, FetchRequest{URL: u}, func(p Page) error {
//	    title := extract.ResolveOne(p, extract.CSSChain(extract.Single, "h1"))
//	    ...
//	})
//
// ## BrowserFetcher
//
// 基于go-rod的渲染获取器。每次Fetch启动独立浏览器,等待内容标记(超时只记录日志),
// 可选滚动触发懒加载。会话内的panic转换为包装 ErrBrowserCrashed 的错误。
//
// ## Router
//
// 按 FetchRequest.RenderJS 在两者之间选择,--mode 可以强制其中一种。
//
// ## Retrier
//
// 线性退避重试,第n次失败后等待 Backoff*n。4xx(除429)不重试。
//
//	r := NewRetrier(3, 5*time.Second, logger)
//	err := r.Do(ctx, func(attempt int) error { ... })
//	if errors.Is(err, ErrMaxRetriesReached) { ... }
//
// ## Throttle / ResourceGuard
//
// Throttle: 单主机令牌桶加1-2秒随机延迟。
// ResourceGuard: 启动浏览器前检查可用内存。
//
// ## URLSet / ScanAnchors
//
// 列表页链接去重(保持发现顺序)和选择器失效时的<a href>兜底扫描。
//
// # 并发安全
//
// Fetcher、Throttle、URLSet可以被多个goroutine共享。Page只属于创建它的回调。
package crawlers
