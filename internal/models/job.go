package models

import (
	"encoding/json"
	"time"
)

// Field 招聘记录的逻辑字段
type Field string

const (
	FieldCompanyName    Field = "company_name"
	FieldTitle          Field = "title"
	FieldDeadline       Field = "deadline"
	FieldLocation       Field = "location"
	FieldExperience     Field = "experience"
	FieldEducation      Field = "education"
	FieldEmploymentType Field = "employment_type"
	FieldSalary         Field = "salary"
	FieldDescription    Field = "description"
	FieldWelfare        Field = "welfare_benefits"
)

// TextFields 所有字符串字段,按抽取顺序排列
var TextFields = []Field{
	FieldCompanyName,
	FieldTitle,
	FieldDeadline,
	FieldLocation,
	FieldExperience,
	FieldEducation,
	FieldEmploymentType,
	FieldSalary,
	FieldDescription,
	FieldWelfare,
}

// 子字段键
const (
	AppPeriod = "접수기간"
	AppMethod = "지원방법"

	CompanyName     = "회사명"
	CompanyType     = "기업형태"
	CompanySize     = "기업규모"
	CompanyIndustry = "산업"

	SectionMainTasks    = "main_tasks"
	SectionRequirements = "requirements"
	SectionPreferences  = "preferences"
	SectionBenefits     = "benefits"
)

// JobRecord 标准化的招聘记录
// 缺失字段用空字符串/空map表示,序列化时所有键都存在
type JobRecord struct {
	Site              SiteID            `json:"site"`
	URL               string            `json:"url"`
	CompanyName       string            `json:"company_name"`
	Title             string            `json:"title"`
	Deadline          string            `json:"deadline"`
	Location          string            `json:"location"`
	Experience        string            `json:"experience"`
	Education         string            `json:"education"`
	EmploymentType    string            `json:"employment_type"`
	Salary            string            `json:"salary"`
	Description       string            `json:"description"`
	WelfareBenefits   string            `json:"welfare_benefits"`
	ApplicationPeriod map[string]string `json:"application_period"`
	CompanyInfo       map[string]string `json:"company_info"`
	Sections          map[string]string `json:"sections"`
	CrawledAt         time.Time         `json:"crawled_at"`
}

// NewJobRecord 创建空记录,所有map均已初始化
func NewJobRecord(site SiteID, url string) *JobRecord {
	return &JobRecord{
		Site:              site,
		URL:               url,
		ApplicationPeriod: make(map[string]string),
		CompanyInfo:       make(map[string]string),
		Sections:          make(map[string]string),
	}
}

// Get 按字段读取
func (r *JobRecord) Get(f Field) string {
	if p := r.fieldPtr(f); p != nil {
		return *p
	}
	return ""
}

// Set 按字段写入,未知字段忽略
func (r *JobRecord) Set(f Field, value string) {
	if p := r.fieldPtr(f); p != nil {
		*p = value
	}
}

func (r *JobRecord) fieldPtr(f Field) *string {
	switch f {
	case FieldCompanyName:
		return &r.CompanyName
	case FieldTitle:
		return &r.Title
	case FieldDeadline:
		return &r.Deadline
	case FieldLocation:
		return &r.Location
	case FieldExperience:
		return &r.Experience
	case FieldEducation:
		return &r.Education
	case FieldEmploymentType:
		return &r.EmploymentType
	case FieldSalary:
		return &r.Salary
	case FieldDescription:
		return &r.Description
	case FieldWelfare:
		return &r.WelfareBenefits
	}
	return nil
}

// EmptyFields 返回值为空的字段(用于日志)
func (r *JobRecord) EmptyFields() []Field {
	var empty []Field
	for _, f := range TextFields {
		if r.Get(f) == "" {
			empty = append(empty, f)
		}
	}
	return empty
}

// MarshalJSON 保证nil map序列化为{}而不是null
func (r JobRecord) MarshalJSON() ([]byte, error) {
	type plain JobRecord
	p := plain(r)
	if p.ApplicationPeriod == nil {
		p.ApplicationPeriod = map[string]string{}
	}
	if p.CompanyInfo == nil {
		p.CompanyInfo = map[string]string{}
	}
	if p.Sections == nil {
		p.Sections = map[string]string{}
	}
	return json.Marshal(p)
}
