package github

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"os228/internal/common"
	"os228/internal/domain"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// 识别 github.com/{owner}/{repo} 形式的链接，允许省略协议、带 .git 后缀或子路径
var repoLinkPattern = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?(?:[/?#].*)?$`)

// ExtractRepoIdentity 从项目链接中解析 owner/repo，不做任何网络请求
func ExtractRepoIdentity(link string) (domain.RepoIdentity, bool) {
	m := repoLinkPattern.FindStringSubmatch(strings.TrimSpace(link))
	if m == nil {
		return domain.RepoIdentity{}, false
	}
	return domain.RepoIdentity{Owner: m[1], Repo: m[2]}, true
}

// Client 实现了 port.StatsFetcher / port.ContributorFetcher / port.ActivityFetcher
type Client struct {
	api        *github.Client // 使用服务端令牌 (可为空，匿名访问限制 60次/小时)
	baseURL    *url.URL
	httpClient *http.Client
	retryOpts  []common.Option
}

// Option 客户端配置项
type Option func(*Client)

// WithBaseURL 指向其他 API 地址 (测试或 GitHub Enterprise)
func WithBaseURL(u *url.URL) Option {
	return func(c *Client) {
		if u == nil {
			return
		}
		cp := *u
		if !strings.HasSuffix(cp.Path, "/") {
			cp.Path += "/"
		}
		c.baseURL = &cp
	}
}

// WithHTTPClient 替换底层 HTTP 客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryOptions 调整用户事件请求的重试策略
func WithRetryOptions(opts ...common.Option) Option {
	return func(c *Client) {
		c.retryOpts = append(c.retryOpts, opts...)
	}
}

// NewClient 初始化 GitHub 客户端
// token: 服务端 Personal Access Token，用于统计和贡献者查询，可以为空
func NewClient(token string, opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	c.api = c.newAPI(token)
	return c
}

// newAPI 为指定令牌创建一个 go-github 客户端
func (c *Client) newAPI(token string) *github.Client {
	hc := c.httpClient
	if token != "" {
		ctx := context.Background()
		if c.httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
		}
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		hc = oauth2.NewClient(ctx, ts)
	}

	api := github.NewClient(hc)
	if c.baseURL != nil {
		api.BaseURL = c.baseURL
	}
	return api
}

// FetchRepoStats 获取仓库的 star/fork 数量
// 任何失败都返回 nil：统计只是装饰信息，调用方按 "不可用" 处理
func (c *Client) FetchRepoStats(ctx context.Context, owner, repo string) *domain.GitHubStats {
	item, _, err := c.api.Repositories.Get(ctx, owner, repo)
	if err != nil {
		log.Printf("[GitHub] ⚠️ 获取 %s/%s 统计失败: %v", owner, repo, err)
		return nil
	}

	lastUpdated := item.GetPushedAt().Time
	if lastUpdated.IsZero() {
		lastUpdated = item.GetUpdatedAt().Time
	}

	return &domain.GitHubStats{
		Stars:       item.GetStargazersCount(),
		Forks:       item.GetForksCount(),
		LastUpdated: lastUpdated,
	}
}

// FetchContributors 获取仓库贡献者，保持 GitHub 返回的顺序 (贡献数降序)
func (c *Client) FetchContributors(ctx context.Context, owner, repo string) []domain.Contributor {
	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	items, _, err := c.api.Repositories.ListContributors(ctx, owner, repo, opts)
	if err != nil {
		log.Printf("[GitHub] ⚠️ 获取 %s/%s 贡献者失败: %v", owner, repo, err)
		return nil
	}

	contributors := make([]domain.Contributor, 0, len(items))
	for _, item := range items {
		contributors = append(contributors, domain.Contributor{
			ID:            item.GetID(),
			Login:         item.GetLogin(),
			AvatarURL:     item.GetAvatarURL(),
			HTMLURL:       item.GetHTMLURL(),
			Contributions: item.GetContributions(),
		})
	}
	return contributors
}

// FetchUserPublicEvents 获取用户最近 100 条公开事件
// 这是贡献功能的关键路径，失败必须返回明确的错误
func (c *Client) FetchUserPublicEvents(ctx context.Context, username, token string) ([]domain.Event, error) {
	if token == "" {
		return nil, common.NewError(common.ErrCodeInvalidInput, "缺少访问令牌")
	}
	if username == "" {
		return nil, common.NewError(common.ErrCodeInvalidInput, "缺少用户名")
	}

	api := c.newAPI(token)
	opts := &github.ListOptions{PerPage: 100}

	var items []*github.Event
	retryOpts := append([]common.Option{common.WithRetryIf(isRetryable)}, c.retryOpts...)
	err := common.Do(ctx, func() error {
		var apiErr error
		items, _, apiErr = api.Activity.ListEventsPerformedByUser(ctx, username, true, opts)
		return apiErr
	}, retryOpts...)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeGitHubAPI, fmt.Sprintf("获取用户 %s 的公开事件失败", username), err)
	}

	events := make([]domain.Event, 0, len(items))
	for _, item := range items {
		events = append(events, domain.Event{
			Type:      item.GetType(),
			RepoName:  item.GetRepo().GetName(),
			CreatedAt: item.GetCreatedAt().Time,
		})
	}
	return events, nil
}

// FetchRepoDetails 获取单个仓库的详情，失败返回 nil 并记录日志
func (c *Client) FetchRepoDetails(ctx context.Context, fullName, token string) *domain.RepoDetails {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		log.Printf("[GitHub] ⚠️ 无法解析仓库名 %q", fullName)
		return nil
	}

	api := c.api
	if token != "" {
		api = c.newAPI(token)
	}

	item, _, err := api.Repositories.Get(ctx, owner, repo)
	if err != nil {
		log.Printf("[GitHub] ⚠️ 获取仓库 %s 详情失败: %v", fullName, err)
		return nil
	}

	return &domain.RepoDetails{
		Name:        item.GetName(),
		FullName:    item.GetFullName(),
		Description: item.Description,
		HTMLURL:     item.GetHTMLURL(),
		Language:    item.Language,
		Stars:       item.GetStargazersCount(),
		Forks:       item.GetForksCount(),
		Owner:       item.GetOwner().GetLogin(),
		Private:     item.GetPrivate(),
	}
}

// FetchAuthenticatedUser 用 OAuth 令牌读取当前用户，生成会话
func (c *Client) FetchAuthenticatedUser(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, common.NewError(common.ErrCodeInvalidInput, "缺少访问令牌")
	}

	user, _, err := c.newAPI(token).Users.Get(ctx, "")
	if err != nil {
		return nil, common.WrapError(common.ErrCodeGitHubAPI, "获取当前用户失败", err)
	}

	return &domain.Session{
		Username:    user.GetLogin(),
		AvatarURL:   user.GetAvatarURL(),
		AccessToken: token,
	}, nil
}

// isRetryable 只重试服务端错误和网络错误，4xx 与限流直接返回
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return false
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		return respErr.Response != nil && respErr.Response.StatusCode >= http.StatusInternalServerError
	}
	return true
}
