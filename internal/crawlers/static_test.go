package crawlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/extract"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/korean"
)

type stubHeaders struct {
	headers http.Header
	ua      string
}

func (s stubHeaders) GetHeaders() (http.Header, error) { return s.headers.Clone(), nil }
func (s stubHeaders) UserAgent() string                { return s.ua }

func newTestStaticFetcher(hp models.HeaderProvider) *StaticFetcher {
	cfg := models.FetchConfig{Timeout: 5 * time.Second}
	return NewStaticFetcher(cfg, hp, nil, zerolog.Nop())
}

func TestStaticFetcher_Headers(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><h1 class="tit_job">백엔드 개발자</h1></body></html>`))
	}))
	defer srv.Close()

	hp := stubHeaders{
		headers: http.Header{"Accept-Language": {"ko-KR,ko;q=0.9"}},
		ua:      "kjobcrawl-test/1.0",
	}
	f := newTestStaticFetcher(hp)

	var title string
	err := f.Fetch(context.Background(), FetchRequest{URL: srv.URL}, func(p Page) error {
		title = extract.ResolveOne(p, extract.CSSChain(extract.Single, ".tit_job"))
		return nil
	})
	if err != nil {
		t.Fatalf("Fetch返回错误: %v", err)
	}
	if gotUA != "kjobcrawl-test/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotLang != "ko-KR,ko;q=0.9" {
		t.Errorf("Accept-Language = %q", gotLang)
	}
	if title != "백엔드 개발자" {
		t.Errorf("title = %q", title)
	}
}

func TestStaticFetcher_DefaultUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := newTestStaticFetcher(nil)
	if err := f.Fetch(context.Background(), FetchRequest{URL: srv.URL}, func(Page) error { return nil }); err != nil {
		t.Fatalf("Fetch返回错误: %v", err)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, 期望默认UA", gotUA)
	}
}

func TestStaticFetcher_Non2xx(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"404", http.StatusNotFound, false},
		{"429", http.StatusTooManyRequests, true},
		{"503", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			f := newTestStaticFetcher(nil)
			called := false
			err := f.Fetch(context.Background(), FetchRequest{URL: srv.URL}, func(Page) error {
				called = true
				return nil
			})

			var fe *models.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("期望 *models.FetchError, 实际 %v", err)
			}
			if fe.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, 期望 %d", fe.StatusCode, tt.status)
			}
			if fe.Op != "static" {
				t.Errorf("Op = %q", fe.Op)
			}
			if models.IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable = %v, 期望 %v", models.IsRetryable(err), tt.retryable)
			}
			if called {
				t.Error("失败时不应调用回调")
			}
		})
	}
}

func TestStaticFetcher_EUCKR(t *testing.T) {
	page := `<html><head><meta http-equiv="Content-Type" content="text/html; charset=euc-kr"></head>` +
		`<body><div class="jobpost_top_cpname">인크루트 주식회사</div></body></html>`
	encoded, err := korean.EUCKR.NewEncoder().String(page)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(encoded))
	}))
	defer srv.Close()

	f := newTestStaticFetcher(nil)
	var company string
	err = f.Fetch(context.Background(), FetchRequest{URL: srv.URL}, func(p Page) error {
		company = extract.ResolveOne(p, extract.CSSChain(extract.Single, ".jobpost_top_cpname"))
		return nil
	})
	if err != nil {
		t.Fatalf("Fetch返回错误: %v", err)
	}
	if company != "인크루트 주식회사" {
		t.Errorf("company = %q, 期望解码后的韩文", company)
	}
}

func TestStaticPage_Navigate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>" + strings.TrimPrefix(r.URL.Path, "/") + "</h1></body></html>"))
	}))
	defer srv.Close()

	f := newTestStaticFetcher(nil)
	var titles []string
	err := f.Fetch(context.Background(), FetchRequest{URL: srv.URL + "/first"}, func(p Page) error {
		titles = append(titles, extract.ResolveOne(p, extract.CSSChain(extract.Single, "h1")))
		if err := p.Navigate(context.Background(), srv.URL+"/second"); err != nil {
			return err
		}
		titles = append(titles, extract.ResolveOne(p, extract.CSSChain(extract.Single, "h1")))
		if !strings.HasSuffix(p.URL(), "/second") {
			t.Errorf("URL = %q", p.URL())
		}
		clicked, err := p.ClickFirst(context.Background(), []string{"h1"})
		if err != nil || clicked {
			t.Errorf("静态页面ClickFirst应返回false, got %v %v", clicked, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Fetch返回错误: %v", err)
	}
	if len(titles) != 2 || titles[0] != "first" || titles[1] != "second" {
		t.Errorf("titles = %v", titles)
	}
}

func TestNewHTMLPage_NavigateUnsupported(t *testing.T) {
	p, err := NewHTMLPage("https://example.com", "<p>x</p>")
	if err != nil {
		t.Fatalf("NewHTMLPage返回错误: %v", err)
	}
	err = p.Navigate(context.Background(), "https://example.com/next")
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		t.Errorf("期望 *models.FetchError, 实际 %v", err)
	}
}

func TestDecompressResponse(t *testing.T) {
	plain := []byte("<html>ok</html>")

	// 已被Colly解压过的gzip正文原样返回
	out, err := decompressResponse("gzip", plain)
	if err != nil || string(out) != string(plain) {
		t.Errorf("gzip无魔数时应原样返回, got %q %v", out, err)
	}

	out, err = decompressResponse("", plain)
	if err != nil || string(out) != string(plain) {
		t.Errorf("无编码时应原样返回, got %q %v", out, err)
	}
}
