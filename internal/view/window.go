package view

const (
	// DefaultPageSize 分页模式每页 6 个项目
	DefaultPageSize = 6
	// DefaultIncrement 无限滚动模式每次多显示 12 个项目
	DefaultIncrement = 12
)

// Paging 窗口信息，供展示层渲染分页器或 "加载更多"
type Paging struct {
	Total      int  `json:"total"`
	Page       int  `json:"page,omitempty"`
	PageSize   int  `json:"page_size,omitempty"`
	TotalPages int  `json:"total_pages,omitempty"`
	Displayed  int  `json:"displayed"`
	HasMore    bool `json:"has_more"`
}

// Window 决定过滤排序后的列表中哪一段可见
// PageWindow 和 RevealWindow 可以互相替换
type Window interface {
	// Bounds 返回可见区间 [start, end)
	Bounds(total int) (start, end int)
	// Paging 返回当前窗口的描述
	Paging(total int) Paging
	// Reset 回到第一页 / 初始显示数量
	Reset() Window
	// Advance 前进一步；已经没有更多时返回 false
	Advance(total int) (Window, bool)
}

// PageWindow 固定大小的分页，页码从 1 开始
type PageWindow struct {
	Page     int
	PageSize int
}

func (w PageWindow) normalized(total int) PageWindow {
	if w.PageSize <= 0 {
		w.PageSize = DefaultPageSize
	}
	if w.Page < 1 {
		w.Page = 1
	}
	if pages := totalPages(total, w.PageSize); pages > 0 && w.Page > pages {
		w.Page = pages
	}
	return w
}

func totalPages(total, size int) int {
	return (total + size - 1) / size
}

func (w PageWindow) Bounds(total int) (int, int) {
	w = w.normalized(total)
	start := (w.Page - 1) * w.PageSize
	if start > total {
		start = total
	}
	return start, min(start+w.PageSize, total)
}

func (w PageWindow) Paging(total int) Paging {
	w = w.normalized(total)
	start, end := w.Bounds(total)
	pages := totalPages(total, w.PageSize)
	return Paging{
		Total:      total,
		Page:       w.Page,
		PageSize:   w.PageSize,
		TotalPages: pages,
		Displayed:  end - start,
		HasMore:    w.Page < pages,
	}
}

func (w PageWindow) Reset() Window {
	w.Page = 1
	return w
}

func (w PageWindow) Advance(total int) (Window, bool) {
	w = w.normalized(total)
	if w.Page >= totalPages(total, w.PageSize) {
		return w, false
	}
	w.Page++
	return w, true
}

// RevealWindow 无限滚动：显示数量从 Increment 开始，每次加载增加 Increment
type RevealWindow struct {
	Displayed int
	Increment int
}

// NewRevealWindow 初始状态的无限滚动窗口
func NewRevealWindow(increment int) RevealWindow {
	return RevealWindow{Increment: increment}.Reset().(RevealWindow)
}

func (w RevealWindow) normalized() RevealWindow {
	if w.Increment <= 0 {
		w.Increment = DefaultIncrement
	}
	if w.Displayed <= 0 {
		w.Displayed = w.Increment
	}
	return w
}

func (w RevealWindow) Bounds(total int) (int, int) {
	w = w.normalized()
	return 0, min(w.Displayed, total)
}

func (w RevealWindow) Paging(total int) Paging {
	w = w.normalized()
	shown := min(w.Displayed, total)
	return Paging{
		Total:     total,
		Displayed: shown,
		HasMore:   shown < total,
	}
}

func (w RevealWindow) Reset() Window {
	w = w.normalized()
	w.Displayed = w.Increment
	return w
}

func (w RevealWindow) Advance(total int) (Window, bool) {
	w = w.normalized()
	if w.Displayed >= total {
		return w, false
	}
	w.Displayed = min(w.Displayed+w.Increment, total)
	return w, true
}
