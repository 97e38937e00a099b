package sites

import (
	"github.com/RecoveryAshes/kjobcrawl/internal/extract"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

// LinkedIn 未登录访问,只抓取公开页面
var LinkedIn = SiteProfile{
	Site:             models.SiteLinkedIn,
	Base:             "https://www.linkedin.com",
	DetailURLMarkers: []string{"/jobs/view/"},

	ListingLinks: links(
		[]string{".jobs-search-results__list-item", ".job-search-card", ".base-card.job-search-card"},
		"a.job-card-container__link", "a.base-card__full-link", "a[data-control-name='job_card_title']",
	),
	AnchorFragment: "/jobs/view/",
	ListingMarkers: []string{".jobs-search__results-list", ".job-search-card", ".jobs-search-results__list-item"},
	DetailMarkers:  []string{".top-card-layout__title", ".jobs-unified-top-card__job-title", ".show-more-less-html__markup"},
	RenderJS:       true,
	ScrollRounds:   3,

	DismissSelectors: []string{
		"button.modal__dismiss",
		"button.artdeco-modal__dismiss",
		"button[aria-label='닫기']",
		"button[aria-label='Close']",
	},

	Extract: extract.Profile{
		Sections: []extract.SectionSpec{
			{Container: ".description__job-criteria-item", Label: "h3", Value: "span"},
		},
		Fields: map[models.Field]extract.FieldSpec{
			models.FieldTitle: field(".jobs-unified-top-card__job-title", ".topcard__title", "h1.job-title", "h1.top-card-layout__title"),
			models.FieldCompanyName: field(
				".jobs-unified-top-card__company-name", ".topcard__org-name-link",
				"a.company-name", "a.topcard__org-name-link",
			),
			models.FieldLocation: field(".jobs-unified-top-card__bullet", ".topcard__flavor--bullet", ".job-location", "span.topcard__flavor--bullet"),
			models.FieldDescription: field(
				".jobs-description__content", ".description__text",
				".show-more-less-html__markup", ".jobs-description-content",
			),
		},
		SplitDescription: true,
	},

	Pagination: &Pagination{
		NextSelectors: []string{
			"button[aria-label='다음']",
			"button.artdeco-pagination__button--next",
			"li.artdeco-pagination__indicator--number.active + li button",
		},
		Param:    "start",
		Step:     25,
		MaxPages: 10,
	},
}
