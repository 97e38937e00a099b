package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
)

// sectionKeywords 详情小节标题同义词,按判断顺序排列
var sectionKeywords = []struct {
	key      string
	title    string
	keywords []string
}{
	{models.SectionMainTasks, "주요업무", []string{"주요업무", "핵심업무", "담당업무", "responsibilities", "what you'll do"}},
	{models.SectionRequirements, "자격요건", []string{"자격요건", "필수사항", "지원자격", "requirements", "qualifications"}},
	{models.SectionPreferences, "우대사항", []string{"우대사항", "preferred", "nice to have"}},
	{models.SectionBenefits, "혜택 및 복지", []string{"혜택", "복지", "처우", "benefits"}},
}

// 超过该长度的行视为正文,不会切换小节
const maxHeadingRunes = 40

// SplitSections 把描述文本切分为 주요업무/자격요건/우대사항/혜택 四个小节
func SplitSections(text string) map[string]string {
	collected := make(map[string][]string)
	current := ""
	for _, line := range strings.Split(CleanText(text), "\n") {
		if line == "" {
			continue
		}
		if key := headingKey(line); key != "" {
			current = key
			continue
		}
		if current != "" {
			collected[current] = append(collected[current], line)
		}
	}

	out := make(map[string]string, len(collected))
	for k, lines := range collected {
		out[k] = strings.Join(lines, "\n")
	}
	return out
}

func headingKey(line string) string {
	if utf8.RuneCountInString(line) > maxHeadingRunes {
		return ""
	}
	compact := strings.ToLower(strings.Join(strings.Fields(line), ""))
	spaced := strings.ToLower(line)
	for _, s := range sectionKeywords {
		for _, k := range s.keywords {
			if strings.Contains(compact, k) || strings.Contains(spaced, k) {
				return s.key
			}
		}
	}
	return ""
}

// ComposeDescription 按固定顺序渲染为 "[ 주요업무 ]\n..." 块
func ComposeDescription(sections map[string]string) string {
	var parts []string
	for _, s := range sectionKeywords {
		if body := sections[s.key]; body != "" {
			parts = append(parts, "[ "+s.title+" ]\n"+body)
		}
	}
	return strings.Join(parts, "\n\n")
}
