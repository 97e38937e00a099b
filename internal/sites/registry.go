package sites

import (
	"github.com/RecoveryAshes/kjobcrawl/internal/crawlers"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/rs/zerolog"
)

// Profiles 所有内置站点配置,顺序与 models.KnownSites 一致
var Profiles = []SiteProfile{Saramin, JobPlanet, Incruit, Wanted, LinkedIn}

// ProfileFor 查找站点配置
func ProfileFor(site models.SiteID) (SiteProfile, bool) {
	for _, p := range Profiles {
		if p.Site == site {
			return p, true
		}
	}
	return SiteProfile{}, false
}

// Registry 站点 -> 爬取器
type Registry struct {
	scrapers map[models.SiteID]Scraper
}

// NewRegistry 用同一个获取器和重试策略创建所有内置站点的爬取器
func NewRegistry(fetcher crawlers.Fetcher, retrier *crawlers.Retrier, opts Options, logger zerolog.Logger) *Registry {
	r := &Registry{scrapers: make(map[models.SiteID]Scraper, len(Profiles))}
	for _, p := range Profiles {
		r.Register(New(p, fetcher, retrier, opts, logger))
	}
	return r
}

// Register 注册或替换爬取器
func (r *Registry) Register(s Scraper) {
	if r.scrapers == nil {
		r.scrapers = make(map[models.SiteID]Scraper)
	}
	r.scrapers[s.Site()] = s
}

// Get 获取站点爬取器
func (r *Registry) Get(site models.SiteID) (Scraper, bool) {
	s, ok := r.scrapers[site]
	return s, ok
}

// Sites 已注册的站点(按 models.KnownSites 顺序)
func (r *Registry) Sites() []models.SiteID {
	var out []models.SiteID
	for _, site := range models.KnownSites {
		if _, ok := r.scrapers[site]; ok {
			out = append(out, site)
		}
	}
	return out
}
