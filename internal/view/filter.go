package view

import (
	"sort"
	"strings"

	"os228/internal/domain"
)

// Filter 按搜索词和语言过滤，返回新的切片，不修改输入
// 搜索词不区分大小写，匹配名称、描述、技术标签、作者或分类
// languages 非空时，项目的语言 (可能是逗号分隔的多值) 至少要命中一个
func Filter(projects []domain.EnrichedProject, query string, languages []string) []domain.EnrichedProject {
	q := strings.ToLower(strings.TrimSpace(query))

	filtered := make([]domain.EnrichedProject, 0, len(projects))
	for _, p := range projects {
		if q != "" && !matchesQuery(p.Project, q) {
			continue
		}
		if len(languages) > 0 && !matchesLanguages(p.Language, languages) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// matchesQuery q 必须已经是小写
func matchesQuery(p domain.Project, q string) bool {
	if containsFold(p.Name, q) ||
		containsFold(p.Description, q) ||
		containsFold(p.Author, q) ||
		containsFold(p.Category, q) {
		return true
	}
	for _, tech := range p.Technologies {
		if containsFold(tech, q) {
			return true
		}
	}
	return false
}

func containsFold(s, lowerSubstr string) bool {
	return strings.Contains(strings.ToLower(s), lowerSubstr)
}

func matchesLanguages(field string, selected []string) bool {
	for _, lang := range SplitLanguages(field) {
		for _, want := range selected {
			if strings.EqualFold(lang, strings.TrimSpace(want)) {
				return true
			}
		}
	}
	return false
}

// SplitLanguages 把 "TypeScript, Go" 拆成 ["TypeScript", "Go"]，忽略空值
func SplitLanguages(field string) []string {
	parts := strings.Split(field, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if lang := strings.TrimSpace(part); lang != "" {
			out = append(out, lang)
		}
	}
	return out
}

// Languages 列出所有出现过的语言，去重并排序，用于语言筛选按钮
func Languages(projects []domain.EnrichedProject) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range projects {
		for _, lang := range SplitLanguages(p.Language) {
			if !seen[lang] {
				seen[lang] = true
				out = append(out, lang)
			}
		}
	}
	sort.Strings(out)
	return out
}
