package service

import (
	"context"
	"testing"

	"os228/internal/adapter/cache"
	"os228/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestContributorService_EventContributors(t *testing.T) {
	fetcher := new(MockContributorFetcher)
	repo := domain.RepoIdentity{Owner: "Docteur-Parfait", Repo: "os228"}
	contributors := []domain.Contributor{
		{ID: 1, Login: "alice", Contributions: 20},
		{ID: 2, Login: "bob", Contributions: 3},
	}
	fetcher.On("FetchContributors", mock.Anything, "Docteur-Parfait", "os228").Return(contributors).Once()

	c := cache.New()
	svc := NewContributorService(fetcher, c, repo)

	assert.Equal(t, contributors, svc.EventContributors(context.Background()))
	assert.Equal(t, contributors, svc.EventContributors(context.Background()), "第二次走缓存")

	_, ok := c.Get("contributors:Docteur-Parfait/os228")
	assert.True(t, ok)
	fetcher.AssertExpectations(t)
}

func TestContributorService_FailureIsNotCached(t *testing.T) {
	fetcher := new(MockContributorFetcher)
	repo := domain.RepoIdentity{Owner: "o", Repo: "r"}
	fetcher.On("FetchContributors", mock.Anything, "o", "r").Return(nil).Twice()

	svc := NewContributorService(fetcher, cache.New(), repo)

	assert.Nil(t, svc.EventContributors(context.Background()))
	assert.Nil(t, svc.EventContributors(context.Background()))
	fetcher.AssertExpectations(t)
}
