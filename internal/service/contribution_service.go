package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"os228/internal/adapter/cache"
	"os228/internal/common"
	"os228/internal/domain"
	"os228/internal/port"

	"golang.org/x/sync/errgroup"
)

const (
	// 只看最近 100 条公开事件
	maxEvents = 100
	// 返回的仓库列表上限
	topRepositories = 10
	// 仓库详情的缓存时间
	defaultDetailsTTL = 5 * time.Minute
)

// ContributionService 把用户的公开事件聚合成按仓库统计的贡献数
type ContributionService struct {
	fetcher       port.ActivityFetcher
	cache         port.Cache
	maxGoroutines int // 拉取仓库详情的最大并发数
	detailsTTL    time.Duration
}

// NewContributionService 创建贡献聚合服务
func NewContributionService(fetcher port.ActivityFetcher, c port.Cache) *ContributionService {
	return &ContributionService{
		fetcher:       fetcher,
		cache:         c,
		maxGoroutines: 5,
		detailsTTL:    defaultDetailsTTL,
	}
}

// SetMaxGoroutines 设置最大并发数
func (s *ContributionService) SetMaxGoroutines(max int) {
	if max > 0 {
		s.maxGoroutines = max
	}
}

// Aggregate 聚合当前用户的贡献
// 事件列表拿不到时整体失败；单个仓库详情拿不到只丢掉这一个仓库
func (s *ContributionService) Aggregate(ctx context.Context, session domain.Session) (*domain.UserContributions, error) {
	if !session.Authenticated() {
		return nil, common.NewError(common.ErrCodeUnauthenticated, "没有可用的会话")
	}

	// 1. 拉取事件
	events, err := s.fetcher.FetchUserPublicEvents(ctx, session.Username, session.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("聚合 %s 的贡献失败: %w", session.Username, err)
	}
	if len(events) > maxEvents {
		events = events[:maxEvents]
	}

	// 2-3. 过滤并按仓库计数
	counts, order := countContributions(events)

	// 4. 拉取仓库详情
	records := s.collectRecords(ctx, order, counts, session.AccessToken)

	// 5. 按贡献数降序，相同时保持发现顺序
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Contributions > records[j].Contributions
	})

	// 6. 截断
	if len(records) > topRepositories {
		records = records[:topRepositories]
	}

	// 7. 总数基于全部仓库，而不只是前 10 个
	total := 0
	for _, n := range counts {
		total += n
	}

	log.Printf("[Contrib] ✅ %s: %d 次贡献，涉及 %d 个仓库", session.Username, total, len(counts))

	return &domain.UserContributions{
		Username:           session.Username,
		AvatarURL:          session.AvatarURL,
		TotalContributions: total,
		Repositories:       records,
	}, nil
}

// countContributions 统计每个仓库的贡献数，order 记录仓库第一次出现的顺序
func countContributions(events []domain.Event) (map[string]int, []string) {
	counts := make(map[string]int)
	var order []string
	for _, e := range events {
		if !domain.IsContributionEvent(e.Type) || e.RepoName == "" {
			continue
		}
		if _, seen := counts[e.RepoName]; !seen {
			order = append(order, e.RepoName)
		}
		counts[e.RepoName]++
	}
	return counts, order
}

// collectRecords 并发拉取仓库详情，失败的仓库直接丢弃，不重试
func (s *ContributionService) collectRecords(ctx context.Context, order []string, counts map[string]int, token string) []domain.ContributionRecord {
	details := make([]*domain.RepoDetails, len(order))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxGoroutines)
	for i, name := range order {
		g.Go(func() error {
			details[i] = s.repoDetails(gctx, name, token)
			return nil
		})
	}
	_ = g.Wait() // 任务本身从不返回错误

	records := make([]domain.ContributionRecord, 0, len(order))
	for i, name := range order {
		if details[i] == nil {
			log.Printf("[Contrib] ⏭️ 跳过仓库 %s", name)
			continue
		}
		records = append(records, domain.ContributionRecord{
			Repo:          *details[i],
			Contributions: counts[name],
		})
	}
	return records
}

// repoDetails 公开仓库的详情走缓存；私有仓库只对当前令牌可见，不缓存
func (s *ContributionService) repoDetails(ctx context.Context, fullName, token string) *domain.RepoDetails {
	key := "repo:" + fullName
	if cached, ok := cache.Lookup[*domain.RepoDetails](s.cache, key); ok {
		return cached
	}

	details := s.fetcher.FetchRepoDetails(ctx, fullName, token)
	if details != nil && !details.Private {
		s.cache.Set(key, details, s.detailsTTL)
	}
	return details
}
