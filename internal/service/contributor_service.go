package service

import (
	"context"
	"time"

	"os228/internal/adapter/cache"
	"os228/internal/domain"
	"os228/internal/port"
)

// DefaultContributorsTTL 贡献者列表变化很慢，缓存 1 小时
const DefaultContributorsTTL = time.Hour

// ContributorService 展示目录仓库本身的贡献者 ("感谢我们的贡献者")
type ContributorService struct {
	fetcher port.ContributorFetcher
	cache   port.Cache
	repo    domain.RepoIdentity
	ttl     time.Duration
}

// NewContributorService 创建贡献者服务，repo 是目录自身所在的仓库
func NewContributorService(fetcher port.ContributorFetcher, c port.Cache, repo domain.RepoIdentity) *ContributorService {
	return &ContributorService{
		fetcher: fetcher,
		cache:   c,
		repo:    repo,
		ttl:     DefaultContributorsTTL,
	}
}

// SetTTL 设置缓存时间
func (s *ContributorService) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// EventContributors 返回贡献者列表；拉取失败时返回 nil，页面显示占位文案
func (s *ContributorService) EventContributors(ctx context.Context) []domain.Contributor {
	key := s.repo.ContributorsKey()
	if cached, ok := cache.Lookup[[]domain.Contributor](s.cache, key); ok {
		return cached
	}

	contributors := s.fetcher.FetchContributors(ctx, s.repo.Owner, s.repo.Repo)
	if contributors != nil {
		s.cache.Set(key, contributors, s.ttl)
	}
	return contributors
}
