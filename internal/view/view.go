// Package view 从富化后的项目列表推导出页面上可见的部分。
//
// Derive 是纯函数：相同的项目列表和 State 总是得到相同的结果，
// 任何输入变化后直接重新调用即可，没有隐藏状态。Browser 在它之上
// 维护搜索、排序、语言筛选和窗口位置，并实现 "加载更多" 的节流逻辑。
package view

import (
	"os228/internal/domain"
)

// State 视图输入
type State struct {
	SearchQuery       string
	SortKey           SortKey
	SelectedLanguages []string
	Window            Window // nil 时使用默认的无限滚动窗口
}

// Result 视图输出
type Result struct {
	Items  []domain.EnrichedProject `json:"items"`
	Total  int                      `json:"total"` // 过滤后的总数
	Paging Paging                   `json:"paging"`
}

// Derive 过滤 → 排序 → 截取窗口
func Derive(projects []domain.EnrichedProject, state State) Result {
	window := state.Window
	if window == nil {
		window = NewRevealWindow(DefaultIncrement)
	}

	sorted := Sort(Filter(projects, state.SearchQuery, state.SelectedLanguages), state.SortKey)
	total := len(sorted)
	start, end := window.Bounds(total)

	return Result{
		Items:  sorted[start:end],
		Total:  total,
		Paging: window.Paging(total),
	}
}
