package service

import (
	"context"
	"sync"

	"os228/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockStatsFetcher 模拟 StatsFetcher 接口
type MockStatsFetcher struct {
	mock.Mock
}

func (m *MockStatsFetcher) FetchRepoStats(ctx context.Context, owner, repo string) *domain.GitHubStats {
	args := m.Called(ctx, owner, repo)
	stats, _ := args.Get(0).(*domain.GitHubStats)
	return stats
}

// MockActivityFetcher 模拟 ActivityFetcher 接口
type MockActivityFetcher struct {
	mock.Mock
}

func (m *MockActivityFetcher) FetchUserPublicEvents(ctx context.Context, username, token string) ([]domain.Event, error) {
	args := m.Called(ctx, username, token)
	events, _ := args.Get(0).([]domain.Event)
	return events, args.Error(1)
}

func (m *MockActivityFetcher) FetchRepoDetails(ctx context.Context, fullName, token string) *domain.RepoDetails {
	args := m.Called(ctx, fullName, token)
	details, _ := args.Get(0).(*domain.RepoDetails)
	return details
}

// MockContributorFetcher 模拟 ContributorFetcher 接口
type MockContributorFetcher struct {
	mock.Mock
}

func (m *MockContributorFetcher) FetchContributors(ctx context.Context, owner, repo string) []domain.Contributor {
	args := m.Called(ctx, owner, repo)
	contributors, _ := args.Get(0).([]domain.Contributor)
	return contributors
}

// gatedStatsFetcher 每个仓库的请求都卡在各自的 gate 上，用来验证互不阻塞
type gatedStatsFetcher struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	stats map[string]*domain.GitHubStats
}

func newGatedStatsFetcher() *gatedStatsFetcher {
	return &gatedStatsFetcher{
		gates: make(map[string]chan struct{}),
		stats: make(map[string]*domain.GitHubStats),
	}
}

func (g *gatedStatsFetcher) gate(fullName string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[fullName]
	if !ok {
		ch = make(chan struct{})
		g.gates[fullName] = ch
	}
	return ch
}

func (g *gatedStatsFetcher) release(fullName string) {
	close(g.gate(fullName))
}

func (g *gatedStatsFetcher) FetchRepoStats(ctx context.Context, owner, repo string) *domain.GitHubStats {
	name := owner + "/" + repo
	<-g.gate(name)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats[name]
}
