package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "jobs.db"))
	if err != nil {
		t.Fatalf("Open返回错误: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleRecord(url string) *models.JobRecord {
	rec := models.NewJobRecord(models.SiteSaramin, url)
	rec.CompanyName = "(주)코리아테크"
	rec.Title = "Go 백엔드 개발자"
	rec.Deadline = "2025.01.31"
	rec.ApplicationPeriod[models.AppPeriod] = "2025.01.01 ~ 2025.01.31"
	rec.CompanyInfo[models.CompanyIndustry] = "소프트웨어 개발"
	rec.Sections[models.SectionRequirements] = "Go 3년 이상"
	rec.CrawledAt = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	return rec
}

func TestSaveAndFind(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	url := "https://www.saramin.co.kr/zf_user/jobs/relay/view?rec_idx=1"

	stored, created, err := db.Save(ctx, sampleRecord(url))
	if err != nil {
		t.Fatalf("Save返回错误: %v", err)
	}
	if !created || stored.ID == 0 {
		t.Fatalf("首次保存应创建记录: created=%v id=%d", created, stored.ID)
	}

	got, found, err := db.FindByURL(ctx, url)
	if err != nil || !found {
		t.Fatalf("FindByURL: found=%v err=%v", found, err)
	}
	if got.ID != stored.ID || got.Job.Title != "Go 백엔드 개발자" || got.Job.Site != models.SiteSaramin {
		t.Errorf("记录不一致: %+v", got.Job)
	}
	if got.Job.ApplicationPeriod[models.AppPeriod] != "2025.01.01 ~ 2025.01.31" {
		t.Errorf("application_period = %v", got.Job.ApplicationPeriod)
	}
	if got.Job.CompanyInfo[models.CompanyIndustry] != "소프트웨어 개발" || got.Job.Sections[models.SectionRequirements] != "Go 3년 이상" {
		t.Errorf("子字段丢失: %v %v", got.Job.CompanyInfo, got.Job.Sections)
	}
	if !got.Job.CrawledAt.Equal(time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("crawled_at = %v", got.Job.CrawledAt)
	}
}

func TestSave_Duplicate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	url := "https://www.wanted.co.kr/wd/1"

	first, _, err := db.Save(ctx, sampleRecord(url))
	if err != nil {
		t.Fatal(err)
	}

	changed := sampleRecord(url)
	changed.Title = "다른 제목"
	second, created, err := db.Save(ctx, changed)
	if err != nil {
		t.Fatalf("重复保存返回错误: %v", err)
	}
	if created {
		t.Error("重复url不应创建新记录")
	}
	if second.ID != first.ID || second.Job.Title != "Go 백엔드 개발자" {
		t.Errorf("应返回已有记录: %+v", second)
	}
	if n, _ := db.Count(ctx); n != 1 {
		t.Errorf("记录数 = %d", n)
	}
}

func TestFindByURL_Missing(t *testing.T) {
	db := openTestDB(t)
	_, found, err := db.FindByURL(context.Background(), "https://nope.example/1")
	if err != nil || found {
		t.Errorf("found=%v err=%v", found, err)
	}
}

func TestList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i, u := range []string{"https://a.example/1", "https://a.example/2", "https://a.example/3"} {
		rec := sampleRecord(u)
		rec.CrawledAt = rec.CrawledAt.Add(time.Duration(i) * time.Hour)
		if i == 2 {
			rec.Site = models.SiteWanted
		}
		if _, _, err := db.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	all, err := db.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List返回错误: %v", err)
	}
	if len(all) != 3 || all[0].Job.URL != "https://a.example/3" {
		t.Errorf("应按时间倒序: %d, first=%s", len(all), all[0].Job.URL)
	}

	saramin, err := db.List(ctx, models.SiteSaramin, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(saramin) != 1 || saramin[0].Job.URL != "https://a.example/2" {
		t.Errorf("按站点过滤失败: %+v", saramin)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := Migrate(ctx, db.Pool); err != nil {
		t.Fatalf("重复迁移返回错误: %v", err)
	}
	var v int
	if err := db.Pool.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		t.Fatal(err)
	}
	if v != schemaVersion {
		t.Errorf("user_version = %d", v)
	}
}

func TestSave_MissingURL(t *testing.T) {
	db := openTestDB(t)
	if _, _, err := db.Save(context.Background(), models.NewJobRecord(models.SiteWanted, "")); err == nil {
		t.Error("缺少url时应返回错误")
	}
}
