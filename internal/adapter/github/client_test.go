package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"os228/internal/common"
	"os228/internal/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ port.StatsFetcher       = (*Client)(nil)
	_ port.ContributorFetcher = (*Client)(nil)
	_ port.ActivityFetcher    = (*Client)(nil)
)

// setupMockGitHubServer 创建一个模拟的 GitHub API 服务器
func setupMockGitHubServer(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)

	opts = append([]Option{
		WithBaseURL(baseURL),
		WithRetryOptions(common.WithMaxRetries(0)),
	}, opts...)
	return NewClient("", opts...)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func TestExtractRepoIdentity(t *testing.T) {
	tests := []struct {
		name      string
		link      string
		wantOK    bool
		wantOwner string
		wantRepo  string
	}{
		{name: "标准链接", link: "https://github.com/Docteur-Parfait/os228", wantOK: true, wantOwner: "Docteur-Parfait", wantRepo: "os228"},
		{name: "带 www 和结尾斜杠", link: "https://www.github.com/owner/repo/", wantOK: true, wantOwner: "owner", wantRepo: "repo"},
		{name: "带 .git 后缀", link: "https://github.com/owner/repo.git", wantOK: true, wantOwner: "owner", wantRepo: "repo"},
		{name: "仓库名带点", link: "https://github.com/owner/my.lib.js", wantOK: true, wantOwner: "owner", wantRepo: "my.lib.js"},
		{name: "子路径", link: "https://github.com/owner/repo/tree/main/docs", wantOK: true, wantOwner: "owner", wantRepo: "repo"},
		{name: "带查询参数", link: "https://github.com/owner/repo?tab=readme", wantOK: true, wantOwner: "owner", wantRepo: "repo"},
		{name: "省略协议", link: "github.com/owner/repo", wantOK: true, wantOwner: "owner", wantRepo: "repo"},
		{name: "前后空白", link: "  https://github.com/owner/repo  ", wantOK: true, wantOwner: "owner", wantRepo: "repo"},
		{name: "只有用户", link: "https://github.com/owner", wantOK: false},
		{name: "其他托管平台", link: "https://gitlab.com/owner/repo", wantOK: false},
		{name: "相似域名", link: "https://notgithub.com/owner/repo", wantOK: false},
		{name: "空字符串", link: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractRepoIdentity(tt.link)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantOwner, id.Owner)
				assert.Equal(t, tt.wantRepo, id.Repo)
			}
		})
	}
}

func TestClient_FetchRepoStats(t *testing.T) {
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo", r.URL.Path)
		writeJSON(w, http.StatusOK, `{
			"full_name": "owner/repo",
			"stargazers_count": 128,
			"forks_count": 16,
			"pushed_at": "2025-10-02T08:00:00Z",
			"updated_at": "2025-09-01T08:00:00Z"
		}`)
	})

	stats := client.FetchRepoStats(context.Background(), "owner", "repo")
	require.NotNil(t, stats)
	assert.Equal(t, 128, stats.Stars)
	assert.Equal(t, 16, stats.Forks)
	assert.Equal(t, time.Date(2025, 10, 2, 8, 0, 0, 0, time.UTC), stats.LastUpdated.UTC())
}

func TestClient_FetchRepoStats_FallsBackToUpdatedAt(t *testing.T) {
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"stargazers_count": 1, "updated_at": "2025-09-01T08:00:00Z"}`)
	})

	stats := client.FetchRepoStats(context.Background(), "owner", "repo")
	require.NotNil(t, stats)
	assert.Equal(t, time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC), stats.LastUpdated.UTC())
}

func TestClient_FetchRepoStats_APIError(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusForbidden, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, status, `{"message": "nope"}`)
			})
			assert.Nil(t, client.FetchRepoStats(context.Background(), "owner", "repo"))
		})
	}
}

func TestClient_FetchContributors(t *testing.T) {
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/Docteur-Parfait/os228/contributors", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		writeJSON(w, http.StatusOK, `[
			{"id": 1, "login": "alice", "avatar_url": "https://a/1", "html_url": "https://github.com/alice", "contributions": 30},
			{"id": 2, "login": "bob", "avatar_url": "https://a/2", "html_url": "https://github.com/bob", "contributions": 12}
		]`)
	})

	contributors := client.FetchContributors(context.Background(), "Docteur-Parfait", "os228")
	require.Len(t, contributors, 2)
	assert.Equal(t, "alice", contributors[0].Login)
	assert.Equal(t, 30, contributors[0].Contributions)
	assert.Equal(t, int64(2), contributors[1].ID)
	assert.Equal(t, "https://github.com/bob", contributors[1].HTMLURL)
}

func TestClient_FetchContributors_Failure(t *testing.T) {
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"message": "boom"}`)
	})
	assert.Nil(t, client.FetchContributors(context.Background(), "o", "r"))
}

func TestClient_FetchUserPublicEvents(t *testing.T) {
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/events/public", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Bearer gho_token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `[
			{"type": "PushEvent", "repo": {"name": "a/x"}, "created_at": "2025-10-03T10:00:00Z"},
			{"type": "WatchEvent", "repo": {"name": "b/y"}, "created_at": "2025-10-02T10:00:00Z"}
		]`)
	})

	events, err := client.FetchUserPublicEvents(context.Background(), "octocat", "gho_token")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "PushEvent", events[0].Type)
	assert.Equal(t, "a/x", events[0].RepoName)
	assert.Equal(t, "b/y", events[1].RepoName)
}

func TestClient_FetchUserPublicEvents_Errors(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		status   int
		wantCode string
	}{
		{name: "缺少令牌", token: "", wantCode: common.ErrCodeInvalidInput},
		{name: "令牌失效", token: "bad", status: http.StatusUnauthorized, wantCode: common.ErrCodeGitHubAPI},
		{name: "服务端错误", token: "tok", status: http.StatusBadGateway, wantCode: common.ErrCodeGitHubAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, `{"message": "error"}`)
			})

			events, err := client.FetchUserPublicEvents(context.Background(), "octocat", tt.token)
			require.Error(t, err)
			assert.Nil(t, events)
			assert.Equal(t, tt.wantCode, common.CodeOf(err))
		})
	}
}

func TestClient_FetchUserPublicEvents_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, `{"message": "unavailable"}`)
			return
		}
		writeJSON(w, http.StatusOK, `[{"type": "IssuesEvent", "repo": {"name": "a/x"}}]`)
	}, WithRetryOptions(common.WithMaxRetries(2), common.WithInitialDelay(time.Millisecond)))

	events, err := client.FetchUserPublicEvents(context.Background(), "octocat", "tok")
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_FetchUserPublicEvents_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusNotFound, `{"message": "Not Found"}`)
	}, WithRetryOptions(common.WithMaxRetries(3), common.WithInitialDelay(time.Millisecond)))

	_, err := client.FetchUserPublicEvents(context.Background(), "ghost", "tok")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_FetchRepoDetails(t *testing.T) {
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/a/x":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, `{
				"name": "x", "full_name": "a/x", "description": "desc",
				"html_url": "https://github.com/a/x", "language": "Go",
				"stargazers_count": 7, "forks_count": 3, "private": true,
				"owner": {"login": "a"}
			}`)
		default:
			writeJSON(w, http.StatusNotFound, `{"message": "Not Found"}`)
		}
	})

	details := client.FetchRepoDetails(context.Background(), "a/x", "tok")
	require.NotNil(t, details)
	assert.Equal(t, "x", details.Name)
	assert.Equal(t, "a/x", details.FullName)
	require.NotNil(t, details.Description)
	assert.Equal(t, "desc", *details.Description)
	require.NotNil(t, details.Language)
	assert.Equal(t, "Go", *details.Language)
	assert.Equal(t, 7, details.Stars)
	assert.Equal(t, 3, details.Forks)
	assert.Equal(t, "a", details.Owner)
	assert.True(t, details.Private)

	assert.Nil(t, client.FetchRepoDetails(context.Background(), "a/missing", "tok"))
	assert.Nil(t, client.FetchRepoDetails(context.Background(), "not-a-full-name", "tok"))
}

func TestClient_FetchAuthenticatedUser(t *testing.T) {
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "Bearer gho_abc", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"login": "octocat", "avatar_url": "https://avatars/octocat"}`)
	})

	session, err := client.FetchAuthenticatedUser(context.Background(), "gho_abc")
	require.NoError(t, err)
	assert.Equal(t, "octocat", session.Username)
	assert.Equal(t, "https://avatars/octocat", session.AvatarURL)
	assert.Equal(t, "gho_abc", session.AccessToken)

	_, err = client.FetchAuthenticatedUser(context.Background(), "")
	assert.Equal(t, common.ErrCodeInvalidInput, common.CodeOf(err))
}

func TestWithBaseURL_AddsTrailingSlash(t *testing.T) {
	u, _ := url.Parse("https://ghe.example.com/api/v3")
	client := NewClient("", WithBaseURL(u))
	assert.Equal(t, "https://ghe.example.com/api/v3/", client.api.BaseURL.String())
}
