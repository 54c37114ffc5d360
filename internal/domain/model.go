package domain

import (
	"fmt"
	"time"
)

// Project 代表目录中的一个开源项目 (来自社区维护的 projects.json)
// 加载后只读，不会被修改
type Project struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Author       string   `json:"author"`
	Category     string   `json:"category"`
	Language     string   `json:"language"` // 可能是 "TypeScript, Go" 这样的多值字符串
	Link         string   `json:"link"`
}

// GitHubStats 项目的 GitHub 统计信息，只活在缓存 TTL 之内
type GitHubStats struct {
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// EnrichedProject 附带了 GitHub 统计信息的项目
type EnrichedProject struct {
	Project
	GitHubStats    *GitHubStats `json:"githubStats,omitempty"`
	IsLoadingStats bool         `json:"isLoadingStats"`
}

// Stars 没有统计信息时按 0 处理
func (p EnrichedProject) Stars() int {
	if p.GitHubStats == nil {
		return 0
	}
	return p.GitHubStats.Stars
}

// RepoIdentity 仓库标识 owner/repo
type RepoIdentity struct {
	Owner string
	Repo  string
}

// FullName 例如 "Docteur-Parfait/os228"
func (r RepoIdentity) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Repo)
}

// StatsKey 统计信息的缓存键
func (r RepoIdentity) StatsKey() string {
	return "stats:" + r.FullName()
}

// ContributorsKey 贡献者列表的缓存键
func (r RepoIdentity) ContributorsKey() string {
	return "contributors:" + r.FullName()
}

// Contributor 仓库贡献者，顺序沿用 GitHub 的排序 (贡献数降序)
type Contributor struct {
	ID            int64  `json:"id"`
	Login         string `json:"login"`
	AvatarURL     string `json:"avatar_url"`
	HTMLURL       string `json:"html_url"`
	Contributions int    `json:"contributions"`
}

// Event 用户的一条公开活动
type Event struct {
	Type      string    `json:"type"`
	RepoName  string    `json:"repo"` // owner/repo
	CreatedAt time.Time `json:"created_at"`
}

// 计入贡献的事件类型
var contributionEventTypes = map[string]bool{
	"PushEvent":              true,
	"PullRequestEvent":       true,
	"IssuesEvent":            true,
	"IssueCommentEvent":      true,
	"PullRequestReviewEvent": true,
}

// IsContributionEvent 判断事件是否算作一次真实的贡献 (Watch/Fork/Star 不算)
func IsContributionEvent(eventType string) bool {
	return contributionEventTypes[eventType]
}

// RepoDetails 贡献聚合时拉取的仓库详情
type RepoDetails struct {
	Name        string  `json:"name"`
	FullName    string  `json:"full_name"`
	Description *string `json:"description"`
	HTMLURL     string  `json:"html_url"`
	Language    *string `json:"language"`
	Stars       int     `json:"stargazers_count"`
	Forks       int     `json:"forks_count"`
	Owner       string  `json:"-"`
	Private     bool    `json:"-"`
}

// ContributionRecord 单个仓库的贡献统计
type ContributionRecord struct {
	Repo          RepoDetails `json:"repo"`
	Contributions int         `json:"contributions"`
}

// UserContributions /api/contributions 的响应体
type UserContributions struct {
	Username           string               `json:"username"`
	AvatarURL          string               `json:"avatar_url"`
	TotalContributions int                  `json:"total_contributions"`
	Repositories       []ContributionRecord `json:"repositories"`
}

// Session 登录完成后一次性填充的会话信息
type Session struct {
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar_url"`
	AccessToken string `json:"-"`
}

// Authenticated 是否持有可用的访问凭证
func (s *Session) Authenticated() bool {
	return s != nil && s.Username != "" && s.AccessToken != ""
}
