package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"os228/internal/adapter/auth"
	"os228/internal/adapter/cache"
	"os228/internal/adapter/github"
	"os228/internal/adapter/httpapi"
	"os228/internal/adapter/projects"
	"os228/internal/config"
	"os228/internal/domain"
	"os228/internal/service"
)

func main() {
	// 1. 命令行参数，优先于环境变量
	addr := flag.String("addr", "", "监听地址，覆盖 OS228_ADDR")
	refresh := flag.Duration("refresh", 0, "统计信息刷新间隔，0 表示与 OS228_STATS_TTL 相同")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	interval := cfg.StatsTTL
	if *refresh > 0 {
		interval = *refresh
	}

	// 2. 组装依赖
	a, err := newApp(cfg)
	if err != nil {
		log.Fatalf("❌ 初始化失败: %v", err)
	}

	// 设置信号处理，优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 预热项目统计，之后定时刷新
	go a.runScheduledRefresh(ctx, interval)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		fmt.Println("\n👋 收到停止信号，正在退出...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️ 关闭服务失败: %v", err)
		}
	}()

	fmt.Printf("🚀 OS228 已启动: http://localhost%s\n", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("❌ 服务异常退出: %v", err)
	}
}

// app 组装好的服务
type app struct {
	handler http.Handler
	catalog *service.Catalog
}

func newApp(cfg config.Config) (*app, error) {
	source, err := projects.LoadFile(cfg.ProjectsFile)
	if err != nil {
		return nil, err
	}
	directory, err := cfg.Directory()
	if err != nil {
		return nil, err
	}

	// 一个进程内缓存，统计、贡献者、仓库详情和会话共用
	store := cache.New()
	client := github.NewClient(cfg.GitHubToken, github.WithBaseURL(cfg.APIBaseURL()))

	enricher := service.NewEnrichmentService(client, store)
	enricher.SetStatsTTL(cfg.StatsTTL)
	catalog := service.NewCatalog(enricher, source)

	contributors := service.NewContributorService(client, store, directory)
	contributors.SetTTL(cfg.ContributorsTTL)

	deps := httpapi.Deps{
		Aggregator:   service.NewContributionService(client, store),
		Projects:     catalog,
		Contributors: contributors,
	}

	if cfg.OAuthEnabled() {
		sessions, err := auth.NewSessionStore(store, []byte(cfg.SessionSecret), cfg.SessionTTL)
		if err != nil {
			return nil, err
		}
		deps.Sessions = sessions
		deps.Auth = auth.NewHandler(auth.OAuthConfig{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
		}, client, sessions)
	} else {
		log.Println("⚠️ 未配置 GitHub 登录 (GITHUB_CLIENT_ID / GITHUB_CLIENT_SECRET / OS228_SESSION_SECRET)，贡献接口将返回 401")
	}

	fmt.Printf("📚 已加载 %d 个项目，目录仓库 %s\n", source.Len(), directory.FullName())
	return &app{handler: httpapi.NewRouter(deps), catalog: catalog}, nil
}

// runScheduledRefresh 立即刷新一次，之后每隔 interval 刷新
func (a *app) runScheduledRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.refreshOnce(ctx)
	for {
		select {
		case <-ticker.C:
			a.refreshOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// refreshOnce 启动一轮富化，等它完成后打印摘要
func (a *app) refreshOnce(ctx context.Context) {
	snapshot, err := a.catalog.Refresh(ctx).Wait(ctx)
	if err != nil {
		return
	}
	logSummary(snapshot)
}

func logSummary(snapshot []domain.EnrichedProject) {
	withStats, stars := 0, 0
	for _, p := range snapshot {
		if p.GitHubStats != nil {
			withStats++
			stars += p.GitHubStats.Stars
		}
	}
	log.Printf("[Catalog] 📊 %d 个项目，%d 个有统计信息，共 %d ⭐", len(snapshot), withStats, stars)
}
