package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"os228/internal/domain"

	"github.com/caarlos0/env/v11"
)

// Config 服务运行配置，全部来自环境变量
type Config struct {
	Addr string `env:"OS228_ADDR" envDefault:":8080"`

	// 服务端令牌，用于统计和贡献者查询；为空时匿名访问
	GitHubToken  string `env:"GITHUB_TOKEN"`
	GitHubAPIURL string `env:"OS228_GITHUB_API_URL"`

	ClientID     string `env:"GITHUB_CLIENT_ID"`
	ClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	RedirectURL  string `env:"OS228_OAUTH_REDIRECT_URL" envDefault:"http://localhost:8080/auth/callback"`

	SessionSecret string        `env:"OS228_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"OS228_SESSION_TTL" envDefault:"24h"`

	ProjectsFile    string        `env:"OS228_PROJECTS_FILE"`
	StatsTTL        time.Duration `env:"OS228_STATS_TTL" envDefault:"5m"`
	ContributorsTTL time.Duration `env:"OS228_CONTRIBUTORS_TTL" envDefault:"1h"`
	DirectoryRepo   string        `env:"OS228_DIRECTORY_REPO" envDefault:"Docteur-Parfait/os228"`
}

// Load 解析环境变量
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.StatsTTL <= 0 || c.ContributorsTTL <= 0 || c.SessionTTL <= 0 {
		return errors.New("缓存和会话的 TTL 必须大于 0")
	}
	if _, err := c.Directory(); err != nil {
		return err
	}
	if c.GitHubAPIURL != "" {
		if _, err := url.Parse(c.GitHubAPIURL); err != nil {
			return fmt.Errorf("OS228_GITHUB_API_URL 无效: %w", err)
		}
	}
	return nil
}

// Directory 目录仓库本身，贡献者列表从这里读取
func (c Config) Directory() (domain.RepoIdentity, error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(c.DirectoryRepo), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return domain.RepoIdentity{}, fmt.Errorf("OS228_DIRECTORY_REPO 必须是 owner/repo 格式: %q", c.DirectoryRepo)
	}
	return domain.RepoIdentity{Owner: owner, Repo: repo}, nil
}

// OAuthEnabled 是否配置了 GitHub 登录
func (c Config) OAuthEnabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.SessionSecret != ""
}

// APIBaseURL 解析后的 API 地址，未配置时为 nil
func (c Config) APIBaseURL() *url.URL {
	if c.GitHubAPIURL == "" {
		return nil
	}
	u, err := url.Parse(c.GitHubAPIURL)
	if err != nil {
		return nil
	}
	return u
}
