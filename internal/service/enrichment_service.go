package service

import (
	"context"
	"log"
	"sync"
	"time"

	"os228/internal/adapter/cache"
	"os228/internal/adapter/github"
	"os228/internal/domain"
	"os228/internal/port"
)

// DefaultStatsTTL 统计信息在缓存中保留 5 分钟
const DefaultStatsTTL = 5 * time.Minute

// EnrichmentService 给静态项目列表附加 GitHub 统计信息
type EnrichmentService struct {
	fetcher  port.StatsFetcher
	cache    port.Cache
	statsTTL time.Duration
}

// NewEnrichmentService 创建新的富化服务
func NewEnrichmentService(fetcher port.StatsFetcher, c port.Cache) *EnrichmentService {
	return &EnrichmentService{
		fetcher:  fetcher,
		cache:    c,
		statsTTL: DefaultStatsTTL,
	}
}

// SetStatsTTL 设置统计信息的缓存时间
func (s *EnrichmentService) SetStatsTTL(ttl time.Duration) {
	if ttl > 0 {
		s.statsTTL = ttl
	}
}

// enrichResult 单个项目的富化结果，生成后不再修改
type enrichResult struct {
	id    int
	stats *domain.GitHubStats
}

// EnrichmentBatch 一次富化任务的进度，按项目 id 合并结果
type EnrichmentBatch struct {
	mu       sync.RWMutex
	projects []domain.EnrichedProject
	index    map[int][]int
	pending  int
	done     chan struct{}
	onUpdate func(domain.EnrichedProject)
}

// Start 为每个项目启动一个独立的协程，立即返回
// 所有项目一开始都处于加载中，各自完成时单独翻转，互不等待
// onUpdate 可以为 nil，否则在每个项目完成时调用一次
func (s *EnrichmentService) Start(ctx context.Context, projects []domain.Project, onUpdate func(domain.EnrichedProject)) *EnrichmentBatch {
	batch := &EnrichmentBatch{
		projects: make([]domain.EnrichedProject, len(projects)),
		index:    make(map[int][]int, len(projects)),
		done:     make(chan struct{}),
		onUpdate: onUpdate,
	}
	for i, p := range projects {
		batch.projects[i] = domain.EnrichedProject{Project: p, IsLoadingStats: true}
		batch.index[p.ID] = append(batch.index[p.ID], i)
	}
	batch.pending = len(batch.index)

	if len(projects) == 0 {
		close(batch.done)
		return batch
	}

	// 视图变化不会取消已经发出的请求，让它们跑完并写入缓存
	lookupCtx := context.WithoutCancel(ctx)

	results := make(chan enrichResult, batch.pending)
	for id, positions := range batch.index {
		go func(id int, p domain.Project) {
			results <- enrichResult{id: id, stats: s.enrichOne(lookupCtx, p)}
		}(id, projects[positions[0]])
	}

	go func() {
		for n := batch.pending; n > 0; n-- {
			batch.apply(<-results)
		}
		close(batch.done)
	}()

	return batch
}

// Enrich 启动富化并等待全部完成；ctx 取消时返回当前快照
func (s *EnrichmentService) Enrich(ctx context.Context, projects []domain.Project) []domain.EnrichedProject {
	batch := s.Start(ctx, projects, nil)
	snapshot, err := batch.Wait(ctx)
	if err != nil {
		log.Printf("[Enrich] ⏰ 等待统计信息被中断: %v", err)
	}
	return snapshot
}

// enrichOne 查缓存，未命中再请求 GitHub；任何失败都只是 "没有统计"
func (s *EnrichmentService) enrichOne(ctx context.Context, p domain.Project) (stats *domain.GitHubStats) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Enrich] ❌ 加载 %s 的统计信息时出错: %v", p.Name, r)
			stats = nil
		}
	}()

	id, ok := github.ExtractRepoIdentity(p.Link)
	if !ok {
		return nil
	}

	key := id.StatsKey()
	if cached, ok := cache.Lookup[*domain.GitHubStats](s.cache, key); ok {
		return cached
	}

	stats = s.fetcher.FetchRepoStats(ctx, id.Owner, id.Repo)
	if stats != nil {
		s.cache.Set(key, stats, s.statsTTL)
	}
	return stats
}

// apply 把结果写回所有 id 相同的项目
func (b *EnrichmentBatch) apply(r enrichResult) {
	b.mu.Lock()
	positions := b.index[r.id]
	updated := make([]domain.EnrichedProject, 0, len(positions))
	for _, i := range positions {
		b.projects[i].GitHubStats = r.stats
		b.projects[i].IsLoadingStats = false
		updated = append(updated, b.projects[i])
	}
	b.pending--
	b.mu.Unlock()

	if b.onUpdate != nil {
		for _, p := range updated {
			b.onUpdate(p)
		}
	}
}

// Snapshot 返回当前状态的副本
func (b *EnrichmentBatch) Snapshot() []domain.EnrichedProject {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.EnrichedProject, len(b.projects))
	copy(out, b.projects)
	return out
}

// IsLoading 只要还有一个项目在加载中就是 true
func (b *EnrichmentBatch) IsLoading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pending > 0
}

// Done 全部项目完成后关闭
func (b *EnrichmentBatch) Done() <-chan struct{} {
	return b.done
}

// Wait 等待全部项目完成或 ctx 结束
func (b *EnrichmentBatch) Wait(ctx context.Context) ([]domain.EnrichedProject, error) {
	select {
	case <-b.done:
		return b.Snapshot(), nil
	case <-ctx.Done():
		return b.Snapshot(), ctx.Err()
	}
}
