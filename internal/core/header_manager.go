package core

import (
	"math/rand"
	"net/http"
	"sync"

	"github.com/RecoveryAshes/kjobcrawl/internal/config"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/RecoveryAshes/kjobcrawl/internal/utils"
	"github.com/rs/zerolog"
)

// DefaultUserAgents 内置UA池,配置文件未提供 user_agents 时使用
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// HeaderManager 管理请求头部,实现 models.HeaderProvider
// 优先级: 默认 < 配置文件 < 命令行
type HeaderManager struct {
	defaults http.Header
	config   http.Header
	cli      http.Header
	agents   []string

	validator    *utils.HeaderValidator
	redactor     *utils.HeaderRedactor
	configLoader *config.HeaderConfigLoader
	logger       zerolog.Logger

	// pick 返回 [0,n) 的随机下标
	pick func(n int) int

	mu      sync.Mutex
	loaded  bool
	loadErr error
}

// NewHeaderManager 创建头部管理器
// configFile 为空时使用 configs/headers.yaml; cliHeaders 为 -H 参数原文
func NewHeaderManager(configFile string, cliHeaders []string, logger zerolog.Logger) (*HeaderManager, error) {
	cli, err := models.CliHeaders(cliHeaders).Parse()
	if err != nil {
		return nil, err
	}
	return &HeaderManager{
		defaults:     defaultHeaders(),
		config:       make(http.Header),
		cli:          cli,
		validator:    utils.NewHeaderValidator(),
		redactor:     utils.NewHeaderRedactor(),
		configLoader: config.NewHeaderConfigLoader(configFile),
		logger:       logger.With().Str("component", "headers").Logger(),
		pick:         rand.Intn,
	}, nil
}

func defaultHeaders() http.Header {
	return http.Header{
		"Accept":          []string{"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		"Accept-Language": []string{"ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"},
		"Accept-Encoding": []string{"gzip, deflate, br"},
	}
}

// LoadConfig 只加载一次,失败结果也会缓存
func (hm *HeaderManager) LoadConfig() error {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	if hm.loaded {
		return hm.loadErr
	}
	hm.loaded = true

	cfg, err := hm.configLoader.LoadConfig()
	if err != nil {
		hm.logger.Error().Err(err).Str("path", hm.configLoader.Path()).Msg("加载HTTP头部配置失败")
		hm.loadErr = err
		return err
	}
	for name, value := range cfg.Headers {
		hm.config.Set(name, value)
	}
	hm.agents = cfg.UserAgents

	if len(cfg.Headers) > 0 {
		hm.logger.Debug().Str("headers", hm.redactor.RedactToString(hm.config)).Int("user_agents", len(hm.agents)).Msg("已加载HTTP头部配置")
	}
	return nil
}

// Validate 依次验证 默认 -> 配置 -> 命令行
func (hm *HeaderManager) Validate() error {
	for _, layer := range []struct {
		name    string
		headers http.Header
	}{
		{"默认", hm.defaults},
		{"配置文件", hm.config},
		{"命令行", hm.cli},
	} {
		if err := hm.validator.Validate(layer.headers); err != nil {
			hm.logger.Error().Err(err).Str("layer", layer.name).Msg("头部验证失败")
			return err
		}
	}
	return nil
}

// GetMergedHeaders 按优先级合并
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for _, layer := range []http.Header{hm.defaults, hm.config, hm.cli} {
		for name, values := range layer {
			result[http.CanonicalHeaderKey(name)] = values
		}
	}
	return result
}

// GetSafeHeaders 脱敏后的合并结果,用于日志
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.GetMergedHeaders())
}

// GetHeaders 实现 HeaderProvider
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	if err := hm.LoadConfig(); err != nil {
		return nil, err
	}
	if err := hm.Validate(); err != nil {
		return nil, err
	}
	return hm.GetMergedHeaders(), nil
}

// UserAgent 命令行或配置文件显式指定时固定,否则从UA池随机选择
func (hm *HeaderManager) UserAgent() string {
	if ua := hm.cli.Get("User-Agent"); ua != "" {
		return ua
	}
	_ = hm.LoadConfig()
	if ua := hm.config.Get("User-Agent"); ua != "" {
		return ua
	}
	pool := hm.agents
	if len(pool) == 0 {
		pool = DefaultUserAgents
	}
	return pool[hm.pick(len(pool))]
}
