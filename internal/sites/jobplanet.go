package sites

import (
	"github.com/RecoveryAshes/kjobcrawl/internal/extract"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

// JobPlanet 잡플래닛
var JobPlanet = SiteProfile{
	Site:             models.SiteJobPlanet,
	Base:             "https://www.jobplanet.co.kr",
	DetailURLMarkers: []string{"/job/search/job/", "/job_postings/"},

	ListingLinks:   links([]string{".recruitment-item", ".job_item", ".recruit_list_item"}, `a[href*="/job/search/job/"]`, `a[href*="/job_postings/"]`),
	AnchorFragment: "/job/search/job/",
	ListingMarkers: []string{".recruitment-item", ".job_list, .recruit_list"},
	DetailMarkers:  []string{".recruitment-detail", ".job_detail, .view_wrap"},
	RenderJS:       true,

	Extract: extract.Profile{
		Sections: []extract.SectionSpec{
			{Container: ".recruitment-summary, .recruitment-info", Item: "dl", Label: "dt", Value: "dd"},
		},
		Fields: map[models.Field]extract.FieldSpec{
			models.FieldCompanyName:    field(".company-name", ".company_name", ".view_company"),
			models.FieldTitle:          field(".recruitment-title", ".job_title", ".view_title"),
			models.FieldDeadline:       field(".recruitment-info .info_period", ".job_period", ".view_period"),
			models.FieldLocation:       field(".recruitment-info .info_work_place", ".job_location", ".view_location"),
			models.FieldExperience:     field(".recruitment-info .info_career", ".job_career", ".view_career"),
			models.FieldEducation:      field(".recruitment-info .info_education", ".job_education", ".view_education"),
			models.FieldEmploymentType: field(".recruitment-info .info_worktype", ".job_type", ".view_type"),
			models.FieldSalary:         field(".recruitment-info .info_salary", ".job_salary", ".view_salary"),
			models.FieldDescription:    field(".recruitment-detail-content", ".job_detail_content", ".view_detail_content"),
		},
		WelfareKeywords:  []string{"복리후생", "복지"},
		WelfareCascade:   extract.CSSChain(extract.Multiple, ".recruitment-welfare", ".job_welfare", ".view_welfare"),
		SplitDescription: true,
	},
}
