package sites

import (
	"github.com/RecoveryAshes/kjobcrawl/internal/extract"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

// 사람인 详情页的标题区块: <div class="jv_cont"><h2 class="tit_job_condition">근무조건</h2><div class="cont">...
func saraminSection(keywords ...string) extract.SectionSpec {
	return extract.SectionSpec{
		Container:       ".jv_cont",
		Heading:         ".tit_job_condition",
		HeadingKeywords: keywords,
		Item:            ".cont .item",
		Label:           "dt",
		Value:           "dd",
	}
}

// Saramin 사람인
var Saramin = SiteProfile{
	Site:             models.SiteSaramin,
	Base:             "https://www.saramin.co.kr",
	DetailURLMarkers: []string{"rec_idx=", "/jobs/relay/view", "/zf_user/jobs/view"},

	ListingLinks:   links([]string{".item_recruit", ".list_item", ".list_body .box_item"}, ".job_tit a", "a.str_tit", "a[href*='rec_idx=']"),
	AnchorFragment: "rec_idx=",
	ListingMarkers: []string{".item_recruit", ".list_item", ".list_body"},
	DetailMarkers:  []string{".jv_cont", ".jv_header", ".wrap_jv_cont"},
	RenderJS:       true,

	Extract: extract.Profile{
		Sections: []extract.SectionSpec{
			saraminSection("근무조건"),
			{
				Container: ".jv_summary .jv_summary_info",
				Item:      "div.row",
				Label:     "div.col.head",
				Value:     "div.col.body",
			},
			{
				Container: ".jv_summary .cont",
				Item:      "dl",
				Label:     "dt",
				Value:     "dd",
			},
			saraminSection("접수기간", "지원방법"),
			saraminSection("기업정보"),
			{
				Container:       ".jv_cont",
				Heading:         ".tit_job_condition",
				HeadingKeywords: []string{"복리후생"},
				Value:           ".cont",
				Target:          extract.TargetText,
			},
		},
		Fields: map[models.Field]extract.FieldSpec{
			models.FieldCompanyName: field(
				".company_name", ".corp_name", ".name",
				`a[href*="company"]`, `a[href*="corp"]`,
				".company", ".corp", "#company_name", "#corp_name",
				".jv_header .company_name", ".jv_company .name",
			),
			models.FieldTitle: field(
				".tit_job", ".recruit_title", ".job_tit", "h1", "h2",
				".title", ".job_title", "#job_title", ".header_top_title",
				".jv_header .tit_job", ".jv_title",
			),
			models.FieldDeadline:       field(".deadline", ".apply_deadline", "#job-application-deadline-text", ".info_period"),
			models.FieldExperience:     field(".experience", ".career", ".info_exp", "#job-position-job-experience-text"),
			models.FieldEducation:      field(".education", ".info_edu", "#job-position-job-education-text"),
			models.FieldEmploymentType: field(".employment_type", ".info_emp_type", "#job-position-job-type-text"),
			models.FieldLocation:       field(".location", ".info_loc", "#job-position-job-location-text", ".work_place"),
			models.FieldSalary:         field(".salary", ".info_salary", "#job-position-job-salary-text"),
			models.FieldDescription: field(
				"#job_content", ".job_detail_content", ".recruit_detail", ".job_detail",
				".detail_content", "#jobDescriptionContent", ".job_description",
				".description", ".detail", ".content", ".jv_detail",
				".jv_cont .desc", ".jv_cont .cont",
			),
		},
		AppCascades: map[string]extract.Cascade{
			models.AppPeriod: single(".deadline", ".apply_deadline", "#job-application-deadline-text", ".info_period"),
			models.AppMethod: single(".apply_method", ".application_method", "#job-application-method-text", ".info_apply"),
		},
		CompanyCascades: map[string]extract.Cascade{
			models.CompanyName:     single(".company_name", ".corp_name", "#company-name-text", ".info_company"),
			models.CompanyType:     single(".company_type", ".corp_type", "#company-type-text", ".info_company_type"),
			models.CompanySize:     single(".company_size", ".corp_size", "#company-size-text", ".info_company_size"),
			models.CompanyIndustry: single(".company_industry", ".corp_industry", "#company-industry-text", ".info_company_industry"),
		},
		WelfareKeywords: []string{"복리후생"},
		WelfareCascade:  extract.CSSChain(extract.Multiple, ".welfare", ".benefits", "#job-welfare-text", ".jv_benefit"),
	},
}
