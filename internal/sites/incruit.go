package sites

import (
	"github.com/RecoveryAshes/kjobcrawl/internal/extract"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

// Incruit 인크루트,服务端渲染,页面多为EUC-KR
var Incruit = SiteProfile{
	Site:             models.SiteIncruit,
	Base:             "https://www.incruit.com",
	DetailURLMarkers: []string{"jobpost.asp", "view.asp"},

	ListingLinks: links(
		[]string{".list-default .c_col", ".jobList .jobItem", ".list-recruit .item"},
		".cell_mid > div.cl_top > a", "a.job_link", `a[href*="view.asp"]`,
	),
	AnchorFragment: "view.asp",
	ListingMarkers: []string{".list-default", ".jobList, .list-recruit, .list-jobs"},
	DetailMarkers:  []string{".jobview_wrap", ".job_detail, .view_wrap, .view_detail"},

	Extract: extract.Profile{
		Sections: []extract.SectionSpec{
			{Container: ".jobview_section", Item: "tr", Label: "th", Value: "td"},
			{Container: ".jobview_section", Item: "dl", Label: "dt", Value: "dd"},
		},
		Fields: map[models.Field]extract.FieldSpec{
			models.FieldCompanyName:    field(".jobpost_top_cpname", ".company_name", ".corp_name", ".view_company"),
			models.FieldTitle:          field(".jobpost_top_title", ".job_title", ".view_title", ".tit_job"),
			models.FieldDeadline:       field(".jobview_section .info_period", ".job_period", ".view_period", ".date_info"),
			models.FieldLocation:       field(".jobview_section .info_work_place", ".job_location", ".view_location", ".place_info"),
			models.FieldExperience:     field(".jobview_section .info_career", ".job_career", ".view_career", ".career_info"),
			models.FieldEducation:      field(".jobview_section .info_education", ".job_education", ".view_education", ".edu_info"),
			models.FieldSalary:         field(".jobview_section .info_salary", ".job_salary", ".view_salary", ".salary_info"),
			models.FieldEmploymentType: field(".jobview_section .info_worktype", ".job_type", ".view_type", ".type_info"),
			models.FieldDescription:    field(".jobview_section .jobview_cont", ".job_detail_content", ".view_detail_content", ".detail_info"),
		},
		WelfareKeywords: []string{"복리후생"},
		WelfareCascade:  extract.CSSChain(extract.Multiple, ".jobview_section .info_welfare", ".job_welfare", ".welfare_info"),
	},
}
