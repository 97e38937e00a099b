package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

// StoredRecord 带行号的记录
type StoredRecord struct {
	ID  int64             `json:"id"`
	Job *models.JobRecord `json:"job"`
}

const jobColumns = `id, site, url, company_name, title, deadline, location, experience, education,
  employment_type, salary, description, welfare_benefits, application_period, company_info,
  sections, crawled_at`

// Save 按url插入,已存在时返回已有记录且 created=false
func (d *DB) Save(ctx context.Context, rec *models.JobRecord) (StoredRecord, bool, error) {
	if rec == nil || rec.URL == "" {
		return StoredRecord{}, false, errors.New("记录缺少url")
	}

	app, err := encodeMap(rec.ApplicationPeriod)
	if err != nil {
		return StoredRecord{}, false, err
	}
	company, err := encodeMap(rec.CompanyInfo)
	if err != nil {
		return StoredRecord{}, false, err
	}
	sections, err := encodeMap(rec.Sections)
	if err != nil {
		return StoredRecord{}, false, err
	}
	crawledAt := rec.CrawledAt
	if crawledAt.IsZero() {
		crawledAt = time.Now()
	}

	res, err := d.Pool.ExecContext(ctx, `
INSERT OR IGNORE INTO job_postings(
  site, url, company_name, title, deadline, location, experience, education,
  employment_type, salary, description, welfare_benefits, application_period,
  company_info, sections, crawled_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		string(rec.Site), rec.URL, rec.CompanyName, rec.Title, rec.Deadline, rec.Location,
		rec.Experience, rec.Education, rec.EmploymentType, rec.Salary, rec.Description,
		rec.WelfareBenefits, app, company, sections, crawledAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return StoredRecord{}, false, fmt.Errorf("保存记录失败: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return StoredRecord{}, false, err
	}

	stored, found, err := d.FindByURL(ctx, rec.URL)
	if err != nil {
		return StoredRecord{}, false, err
	}
	if !found {
		return StoredRecord{}, false, fmt.Errorf("保存后未找到记录: %s", rec.URL)
	}
	return stored, n > 0, nil
}

// FindByURL 按url查找
func (d *DB) FindByURL(ctx context.Context, url string) (StoredRecord, bool, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM job_postings WHERE url = ?;`, url)
	stored, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredRecord{}, false, nil
	}
	if err != nil {
		return StoredRecord{}, false, fmt.Errorf("查询记录失败: %w", err)
	}
	return stored, true, nil
}

// List 按抓取时间倒序列出, site为空时不过滤, limit<=0 时默认100
func (d *DB) List(ctx context.Context, site models.SiteID, limit int) ([]StoredRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	var (
		rows *sql.Rows
		err  error
	)
	if site == "" {
		rows, err = d.Pool.QueryContext(ctx, `SELECT `+jobColumns+` FROM job_postings ORDER BY crawled_at DESC, id DESC LIMIT ?;`, limit)
	} else {
		rows, err = d.Pool.QueryContext(ctx, `SELECT `+jobColumns+` FROM job_postings WHERE site = ? ORDER BY crawled_at DESC, id DESC LIMIT ?;`, string(site), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("查询记录失败: %w", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		stored, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, rows.Err()
}

// Count 记录总数
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_postings;`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (StoredRecord, error) {
	var (
		id                         int64
		site                       string
		app, company, sections, at string
	)
	rec := &models.JobRecord{}
	err := s.Scan(
		&id, &site, &rec.URL, &rec.CompanyName, &rec.Title, &rec.Deadline, &rec.Location,
		&rec.Experience, &rec.Education, &rec.EmploymentType, &rec.Salary, &rec.Description,
		&rec.WelfareBenefits, &app, &company, &sections, &at,
	)
	if err != nil {
		return StoredRecord{}, err
	}
	rec.Site = models.SiteID(site)

	if rec.ApplicationPeriod, err = decodeMap(app); err != nil {
		return StoredRecord{}, err
	}
	if rec.CompanyInfo, err = decodeMap(company); err != nil {
		return StoredRecord{}, err
	}
	if rec.Sections, err = decodeMap(sections); err != nil {
		return StoredRecord{}, err
	}
	if rec.CrawledAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return StoredRecord{}, fmt.Errorf("解析crawled_at失败: %w", err)
	}
	return StoredRecord{ID: id, Job: rec}, nil
}

func encodeMap(m map[string]string) (string, error) {
	if m == nil {
		m = map[string]string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("序列化子字段失败: %w", err)
	}
	return string(b), nil
}

func decodeMap(s string) (map[string]string, error) {
	out := make(map[string]string)
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("解析子字段失败: %w", err)
	}
	return out, nil
}
