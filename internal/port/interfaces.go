package port

import (
	"context"
	"time"

	"os228/internal/domain"
)

// Cache (缓存): 带过期时间的键值存储，用来避免重复请求 GitHub
// 未命中是正常结果，不是错误
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
}

// StatsFetcher 负责拉取项目的 star/fork 统计
// 拉取失败返回 nil，由调用方当作 "统计不可用"
type StatsFetcher interface {
	FetchRepoStats(ctx context.Context, owner, repo string) *domain.GitHubStats
}

// ContributorFetcher 负责拉取仓库贡献者
type ContributorFetcher interface {
	FetchContributors(ctx context.Context, owner, repo string) []domain.Contributor
}

// ActivityFetcher 贡献聚合用到的接口，需要用户的访问令牌
type ActivityFetcher interface {
	// 失败时必须返回明确的错误，调用方要区分 "未认证" 和 "没有事件"
	FetchUserPublicEvents(ctx context.Context, username, token string) ([]domain.Event, error)

	// 失败时返回 nil，不影响整批结果
	FetchRepoDetails(ctx context.Context, fullName, token string) *domain.RepoDetails
}

// ProjectSource 静态项目列表
type ProjectSource interface {
	Projects() []domain.Project
}

// ContributionAggregator 被 HTTP 层调用的贡献聚合服务
type ContributionAggregator interface {
	Aggregate(ctx context.Context, session domain.Session) (*domain.UserContributions, error)
}
