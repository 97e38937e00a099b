package sites

import (
	"github.com/RecoveryAshes/kjobcrawl/internal/extract"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

// Wanted 원티드
// 类名带构建哈希(JobHeader_className__nhyKU),只按前缀匹配
var Wanted = SiteProfile{
	Site:             models.SiteWanted,
	Base:             "https://www.wanted.co.kr",
	DetailURLMarkers: []string{"/wd/"},

	ListingLinks:   links([]string{"[class^='JobCard_']", "[data-cy='job-card']"}, "a[href*='/wd/']"),
	AnchorFragment: "/wd/",
	ListingMarkers: []string{"[data-cy='job-card']", "[class^='JobCard_']"},
	DetailMarkers:  []string{"[class^='JobHeader_']", "[class^='JobDescription_']"},
	RenderJS:       true,
	ScrollRounds:   3,

	Extract: extract.Profile{
		Fields: map[models.Field]extract.FieldSpec{
			models.FieldCompanyName: field("[class^='JobHeader_'] h6", "[class*='JobHeader_'] h6", "[class*='JobHeader_'] a[href*='/company/']"),
			models.FieldTitle:       field("[class^='JobHeader_'] h2", "[class*='JobHeader_'] h2", "h1"),
			models.FieldLocation:    field("[class*='JobWorkPlace_'] span", "[class*='JobHeader_'] [class*='location']"),
			models.FieldDescription: field("[class^='JobDescription_']", "[class*='JobDescription_']"),
		},
		SplitDescription:   true,
		ComposeDescription: true,
		DefaultDeadline:    "상시채용",
	},
}
