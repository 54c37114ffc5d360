package view

import (
	"fmt"
	"sort"
	"strings"

	"os228/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey 排序方式
type SortKey string

const (
	SortByRecency    SortKey = "id" // 默认：最新加入的在前
	SortByName       SortKey = "name"
	SortByPopularity SortKey = "stars"
)

// ParseSortKey 解析排序参数，空字符串为默认排序
func ParseSortKey(raw string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SortByRecency:
		return SortByRecency, nil
	case SortByName:
		return SortByName, nil
	case SortByPopularity:
		return SortByPopularity, nil
	default:
		return "", fmt.Errorf("未知的排序方式: %q", raw)
	}
}

// nameLocale 项目名称按法语规则排序，与站点语言一致
var nameLocale = language.French

// Sort 返回排序后的副本；排序是稳定的，重复排序结果不变
func Sort(projects []domain.EnrichedProject, key SortKey) []domain.EnrichedProject {
	sorted := make([]domain.EnrichedProject, len(projects))
	copy(sorted, projects)

	switch key {
	case SortByName:
		// Collator 不是并发安全的，每次排序单独创建
		col := collate.New(nameLocale)
		sort.SliceStable(sorted, func(i, j int) bool {
			if c := col.CompareString(sorted[i].Name, sorted[j].Name); c != 0 {
				return c < 0
			}
			return sorted[i].ID > sorted[j].ID
		})
	case SortByPopularity:
		sort.SliceStable(sorted, func(i, j int) bool {
			si, sj := sorted[i].Stars(), sorted[j].Stars()
			if si != sj {
				return si > sj
			}
			return sorted[i].ID > sorted[j].ID
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ID > sorted[j].ID
		})
	}
	return sorted
}
