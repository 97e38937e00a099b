package models

import (
	"net/url"
	"strings"
)

// SiteID 招聘站点标识
type SiteID string

const (
	SiteSaramin   SiteID = "saramin"   // 사람인
	SiteJobPlanet SiteID = "jobplanet" // 잡플래닛
	SiteIncruit   SiteID = "incruit"   // 인크루트
	SiteWanted    SiteID = "wanted"    // 원티드
	SiteLinkedIn  SiteID = "linkedin"  // LinkedIn
)

// KnownSites 所有支持的站点(固定顺序)
var KnownSites = []SiteID{SiteSaramin, SiteJobPlanet, SiteIncruit, SiteWanted, SiteLinkedIn}

// siteDomains 域名 -> 站点 映射表,按主机名后缀匹配
var siteDomains = []struct {
	domain string
	site   SiteID
}{
	{"saramin.co.kr", SiteSaramin},
	{"jobplanet.co.kr", SiteJobPlanet},
	{"incruit.com", SiteIncruit},
	{"wanted.co.kr", SiteWanted},
	{"linkedin.com", SiteLinkedIn},
}

// SiteForHost 根据主机名查找站点
// 支持子域名(如 m.saramin.co.kr),但不会把 notsaramin.co.kr 误判为 saramin
func SiteForHost(host string) (SiteID, bool) {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, found := strings.Cut(host, ":"); found {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", false
	}
	for _, d := range siteDomains {
		if host == d.domain || strings.HasSuffix(host, "."+d.domain) {
			return d.site, true
		}
	}
	return "", false
}

// SiteForURL 根据URL查找站点
func SiteForURL(rawURL string) (SiteID, bool) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return "", false
	}
	return SiteForHost(parsed.Host)
}

// ParseSiteID 解析站点名称(不区分大小写),用于API的platform参数
func ParseSiteID(name string) (SiteID, bool) {
	n := SiteID(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range KnownSites {
		if s == n {
			return s, true
		}
	}
	return "", false
}

// Valid 是否为已知站点
func (s SiteID) Valid() bool {
	_, ok := ParseSiteID(string(s))
	return ok
}

func (s SiteID) String() string {
	return string(s)
}
