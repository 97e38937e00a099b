package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"有效的HTTP URL", "http://www.saramin.co.kr", false},
		{"有效的HTTPS URL", "https://www.wanted.co.kr/wd/12345", false},
		{"无效的协议", "ftp://example.com", true},
		{"无效的URL", "not a url", true},
		{"空URL", "", true},
		{"无协议", "saramin.co.kr", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidURL) {
				t.Errorf("错误应包装 ErrInvalidURL: %v", err)
			}
		})
	}
}

func TestSiteForURL(t *testing.T) {
	tests := []struct {
		url    string
		want   SiteID
		wantOK bool
	}{
		{"https://www.saramin.co.kr/zf_user/jobs/relay/view?rec_idx=1", SiteSaramin, true},
		{"https://m.saramin.co.kr/job-search/view?rec_idx=2", SiteSaramin, true},
		{"https://www.jobplanet.co.kr/job/search/job/123", SiteJobPlanet, true},
		{"https://job.incruit.com/jobdb_info/jobpost.asp?job=1", SiteIncruit, true},
		{"https://www.wanted.co.kr/wd/1234", SiteWanted, true},
		{"https://kr.linkedin.com/jobs/view/999", SiteLinkedIn, true},
		{"https://WWW.LINKEDIN.COM:443/jobs/view/1", SiteLinkedIn, true},
		{"https://saramin.co.kr./x", SiteSaramin, true},
		{"https://notsaramin.co.kr/jobs", "", false},
		{"https://example.com/jobs", "", false},
		{"::::", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := SiteForURL(tt.url)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("SiteForURL(%q) = (%q, %v), want (%q, %v)", tt.url, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseSiteID(t *testing.T) {
	if s, ok := ParseSiteID(" Wanted "); !ok || s != SiteWanted {
		t.Errorf("ParseSiteID() = %q, %v", s, ok)
	}
	if _, ok := ParseSiteID("indeed"); ok {
		t.Error("indeed 不应被识别")
	}
	if !SiteLinkedIn.Valid() || SiteID("foo").Valid() {
		t.Error("Valid() 结果错误")
	}
}

func TestNewJobRecord_JSONKeys(t *testing.T) {
	rec := NewJobRecord(SiteSaramin, "https://www.saramin.co.kr/x")
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal失败: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal失败: %v", err)
	}

	keys := []string{"site", "url", "application_period", "company_info", "sections", "crawled_at"}
	for _, f := range TextFields {
		keys = append(keys, string(f))
	}
	for _, k := range keys {
		if _, ok := decoded[k]; !ok {
			t.Errorf("缺少键 %s", k)
		}
	}

	for _, k := range []string{"application_period", "company_info", "sections"} {
		if _, ok := decoded[k].(map[string]interface{}); !ok {
			t.Errorf("%s 应序列化为对象, got %v", k, decoded[k])
		}
	}
}

func TestJobRecord_NilMapsMarshalAsObjects(t *testing.T) {
	rec := JobRecord{Site: SiteWanted}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal失败: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("不应出现null: %s", data)
	}
}

func TestJobRecord_GetSet(t *testing.T) {
	rec := NewJobRecord(SiteIncruit, "u")
	for i, f := range TextFields {
		rec.Set(f, fmt.Sprintf("v%d", i))
	}
	for i, f := range TextFields {
		if got := rec.Get(f); got != fmt.Sprintf("v%d", i) {
			t.Errorf("Get(%s) = %q", f, got)
		}
	}
	rec.Set(Field("unknown"), "x")
	if rec.Get(Field("unknown")) != "" {
		t.Error("未知字段应返回空")
	}

	rec.Set(FieldSalary, "")
	empty := rec.EmptyFields()
	if len(empty) != 1 || empty[0] != FieldSalary {
		t.Errorf("EmptyFields() = %v", empty)
	}
}

func TestCrawlConfig_Validate(t *testing.T) {
	valid := CrawlConfig{MaxJobs: 10, MaxPages: 10, Parallelism: 1, Mode: FetchAuto}

	tests := []struct {
		name    string
		mutate  func(c *CrawlConfig)
		wantErr bool
	}{
		{"有效配置", func(c *CrawlConfig) {}, false},
		{"不限数量", func(c *CrawlConfig) { c.MaxJobs = 0 }, false},
		{"数量为负", func(c *CrawlConfig) { c.MaxJobs = -1 }, true},
		{"数量过大", func(c *CrawlConfig) { c.MaxJobs = 1001 }, true},
		{"翻页为0", func(c *CrawlConfig) { c.MaxPages = 0 }, true},
		{"并发过大", func(c *CrawlConfig) { c.Parallelism = 6 }, true},
		{"预算为负", func(c *CrawlConfig) { c.Budget = -time.Second }, true},
		{"延迟为负", func(c *CrawlConfig) { c.BatchDelay = -time.Second }, true},
		{"未知方式", func(c *CrawlConfig) { c.Mode = "ftp" }, true},
		{"空方式", func(c *CrawlConfig) { c.Mode = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTaskStats_Add(t *testing.T) {
	s := TaskStats{Crawled: 1, Failed: 1}
	s.Add(TaskStats{Crawled: 2, Saved: 2, Duplicates: 1, Targets: 3, Unsupported: 1})
	if s.Crawled != 3 || s.Failed != 1 || s.Saved != 2 || s.Duplicates != 1 || s.Targets != 3 || s.Unsupported != 1 {
		t.Errorf("Add() = %+v", s)
	}
}

func TestFetchError_Retryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"网络错误", &FetchError{URL: "u", Op: "static", Err: errors.New("connection reset")}, true},
		{"503", &FetchError{URL: "u", Op: "static", StatusCode: 503}, true},
		{"429", &FetchError{URL: "u", Op: "static", StatusCode: 429}, true},
		{"404", &FetchError{URL: "u", Op: "static", StatusCode: 404}, false},
		{"包装后的404", fmt.Errorf("detail: %w", &FetchError{StatusCode: 404}), false},
		{"未分类错误", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("wrap: %w", &FetchError{URL: "u", Op: "browser", Err: cause})
	if !errors.Is(err, cause) {
		t.Error("errors.Is 应能找到底层错误")
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Op != "browser" {
		t.Error("errors.As 应能取出FetchError")
	}
}

func TestCliHeaders_Parse(t *testing.T) {
	h, err := CliHeaders{"Cookie: a=b", "Referer:https://www.saramin.co.kr/"}.Parse()
	if err != nil {
		t.Fatalf("Parse失败: %v", err)
	}
	if h.Get("Cookie") != "a=b" || h.Get("Referer") != "https://www.saramin.co.kr/" {
		t.Errorf("解析结果错误: %v", h)
	}

	if _, err := (CliHeaders{"no-colon"}).Parse(); err == nil {
		t.Error("缺少冒号应报错")
	}
	if _, err := (CliHeaders{": value"}).Parse(); err == nil {
		t.Error("空名称应报错")
	}
}

func TestCrawlReport_JSON(t *testing.T) {
	r := &CrawlReport{
		RunID: NewRunID(),
		Stats: TaskStats{Crawled: 2},
		Targets: []TargetReport{
			{URL: "https://www.wanted.co.kr/wd/1", Site: SiteWanted, Records: 1},
		},
	}
	data, err := r.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON失败: %v", err)
	}
	var back CrawlReport
	if err := back.FromJSON(data); err != nil {
		t.Fatalf("FromJSON失败: %v", err)
	}
	if back.RunID != r.RunID || len(back.Targets) != 1 || back.Targets[0].Site != SiteWanted {
		t.Errorf("往返结果不一致: %+v", back)
	}
}
