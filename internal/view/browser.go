package view

import (
	"context"
	"sync"
	"time"

	"os228/internal/domain"
)

// DefaultLoadMoreDelay 加载更多前的停顿，只为了让界面变化不那么突兀
const DefaultLoadMoreDelay = 500 * time.Millisecond

// Browser 维护一个项目列表的视图状态
// 修改搜索词、排序或语言筛选都会把窗口重置到起点；替换项目数据不会
type Browser struct {
	mu          sync.Mutex
	projects    []domain.EnrichedProject
	state       State
	generation  int // 每次输入变化加一，用来丢弃过期的加载请求
	loadingMore bool
	delay       time.Duration
}

// NewBrowser window 为 nil 时使用默认的无限滚动窗口
func NewBrowser(projects []domain.EnrichedProject, window Window) *Browser {
	if window == nil {
		window = NewRevealWindow(DefaultIncrement)
	}
	return &Browser{
		projects: projects,
		state: State{
			SortKey: SortByRecency,
			Window:  window.Reset(),
		},
		delay: DefaultLoadMoreDelay,
	}
}

// SetDelay 设置加载更多的停顿时间
func (b *Browser) SetDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d >= 0 {
		b.delay = d
	}
}

// SetProjects 替换项目数据 (例如富化进度更新)，窗口位置保持不变
func (b *Browser) SetProjects(projects []domain.EnrichedProject) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projects = projects
}

// SetSearchQuery 修改搜索词并重置窗口
func (b *Browser) SetSearchQuery(query string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.SearchQuery = query
	b.resetLocked()
}

// SetSort 修改排序方式并重置窗口
func (b *Browser) SetSort(key SortKey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.SortKey = key
	b.resetLocked()
}

// SetLanguages 修改语言筛选并重置窗口
func (b *Browser) SetLanguages(languages []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.SelectedLanguages = append([]string(nil), languages...)
	b.resetLocked()
}

// ToggleLanguage 选中或取消一个语言，与页面上的筛选按钮行为一致
func (b *Browser) ToggleLanguage(language string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	selected := make([]string, 0, len(b.state.SelectedLanguages)+1)
	removed := false
	for _, l := range b.state.SelectedLanguages {
		if l == language {
			removed = true
			continue
		}
		selected = append(selected, l)
	}
	if !removed {
		selected = append(selected, language)
	}
	b.state.SelectedLanguages = selected
	b.resetLocked()
}

func (b *Browser) resetLocked() {
	b.state.Window = b.state.Window.Reset()
	b.generation++
}

// State 当前视图输入的副本
func (b *Browser) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.state
	s.SelectedLanguages = append([]string(nil), s.SelectedLanguages...)
	return s
}

// View 根据当前状态推导可见项目
func (b *Browser) View() Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Derive(b.projects, b.state)
}

// IsLoadingMore 是否有加载更多正在进行
func (b *Browser) IsLoadingMore() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadingMore
}

// GoToPage 跳到指定页，只对 PageWindow 有效
func (b *Browser) GoToPage(page int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, ok := b.state.Window.(PageWindow)
	if !ok {
		return false
	}
	w.Page = page
	b.state.Window = w.normalized(b.totalLocked())
	return true
}

func (b *Browser) totalLocked() int {
	return len(Filter(b.projects, b.state.SearchQuery, b.state.SelectedLanguages))
}

// LoadMore 在哨兵元素进入视口时调用
// 已经在加载或没有更多项目时什么也不做，返回 false
// 停顿期间如果输入变化，本次加载作废
func (b *Browser) LoadMore(ctx context.Context) (bool, error) {
	b.mu.Lock()
	if b.loadingMore || !b.state.Window.Paging(b.totalLocked()).HasMore {
		b.mu.Unlock()
		return false, nil
	}
	b.loadingMore = true
	gen := b.generation
	delay := b.delay
	b.mu.Unlock()

	var waitErr error
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			waitErr = ctx.Err()
		case <-timer.C:
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadingMore = false

	if waitErr != nil {
		return false, waitErr
	}
	if gen != b.generation {
		return false, nil
	}

	next, advanced := b.state.Window.Advance(b.totalLocked())
	b.state.Window = next
	return advanced, nil
}
