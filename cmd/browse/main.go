package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"os228/internal/adapter/cache"
	"os228/internal/adapter/github"
	"os228/internal/adapter/projects"
	"os228/internal/config"
	"os228/internal/domain"
	"os228/internal/service"
	"os228/internal/view"
)

// options 命令行参数
type options struct {
	query        string
	sort         string
	languages    string
	page         int
	size         int
	more         int
	contributors bool
	timeout      time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.query, "q", "", "搜索关键词 (名称、描述、技术、作者、分类)")
	flag.StringVar(&opts.sort, "sort", "id", "排序方式: id (最新) / name / stars")
	flag.StringVar(&opts.languages, "lang", "", "语言筛选，逗号分隔，例如 Go,Dart")
	flag.IntVar(&opts.page, "page", 0, "页码；为 0 时使用无限滚动模式")
	flag.IntVar(&opts.size, "size", 0, "每页数量 / 每次加载数量")
	flag.IntVar(&opts.more, "more", 0, "无限滚动模式下额外加载的次数")
	flag.BoolVar(&opts.contributors, "contributors", true, "同时打印目录仓库的贡献者")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "等待统计信息的最长时间")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}

	if err := run(context.Background(), cfg, opts, os.Stdout); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, opts options, out io.Writer) error {
	sortKey, err := view.ParseSortKey(opts.sort)
	if err != nil {
		return err
	}

	source, err := projects.LoadFile(cfg.ProjectsFile)
	if err != nil {
		return err
	}

	store := cache.New()
	client := github.NewClient(cfg.GitHubToken, github.WithBaseURL(cfg.APIBaseURL()))
	enricher := service.NewEnrichmentService(client, store)
	enricher.SetStatsTTL(cfg.StatsTTL)

	fmt.Fprintf(out, "📥 正在获取 %d 个项目的 GitHub 统计...\n", source.Len())
	waitCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	enriched := enricher.Enrich(waitCtx, source.Projects())

	var window view.Window
	if opts.page > 0 {
		window = view.PageWindow{Page: opts.page, PageSize: opts.size}
	} else {
		window = view.NewRevealWindow(opts.size)
	}

	browser := view.NewBrowser(enriched, window)
	browser.SetDelay(0)
	browser.SetSort(sortKey)
	browser.SetSearchQuery(opts.query)
	if opts.languages != "" {
		browser.SetLanguages(view.SplitLanguages(opts.languages))
	}
	if opts.page > 0 {
		browser.GoToPage(opts.page)
	}
	for i := 0; i < opts.more; i++ {
		ok, err := browser.LoadMore(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}

	printResult(out, browser.View(), view.Languages(enriched))

	if opts.contributors {
		directory, err := cfg.Directory()
		if err != nil {
			return err
		}
		contributors := service.NewContributorService(client, store, directory)
		printContributors(out, directory, contributors.EventContributors(ctx))
	}
	return nil
}

func printResult(out io.Writer, result view.Result, languages []string) {
	fmt.Fprintln(out, "\n================ [ 项目 ] ================")
	if len(result.Items) == 0 {
		fmt.Fprintln(out, "📭 没有符合条件的项目")
	}
	for _, p := range result.Items {
		stats := "统计不可用"
		if p.GitHubStats != nil {
			stats = fmt.Sprintf("⭐ %d  🍴 %d  更新于 %s", p.GitHubStats.Stars, p.GitHubStats.Forks, p.GitHubStats.LastUpdated.Format("2006-01-02"))
		}
		fmt.Fprintf(out, "#%d %s [%s] - %s\n", p.ID, p.Name, p.Language, p.Author)
		if p.Description != "" {
			fmt.Fprintf(out, "    %s\n", p.Description)
		}
		if len(p.Technologies) > 0 {
			fmt.Fprintf(out, "    技术: %s\n", strings.Join(p.Technologies, ", "))
		}
		fmt.Fprintf(out, "    %s\n    %s\n", stats, p.Link)
	}

	paging := result.Paging
	if paging.TotalPages > 0 {
		fmt.Fprintf(out, "\n第 %d/%d 页，共 %d 个项目\n", paging.Page, paging.TotalPages, paging.Total)
	} else {
		fmt.Fprintf(out, "\n已显示 %d/%d 个项目\n", paging.Displayed, paging.Total)
	}
	if paging.HasMore {
		fmt.Fprintln(out, "还有更多项目，使用 -more 或 -page 继续查看")
	}
	if len(languages) > 0 {
		fmt.Fprintf(out, "可用语言: %s\n", strings.Join(languages, ", "))
	}
}

func printContributors(out io.Writer, repo domain.RepoIdentity, list []domain.Contributor) {
	fmt.Fprintf(out, "\n================ [ %s 的贡献者 ] ================\n", repo.FullName())
	if len(list) == 0 {
		fmt.Fprintln(out, "暂时无法获取贡献者")
		return
	}
	for _, c := range list {
		fmt.Fprintf(out, "👤 %-20s %d 次贡献  %s\n", c.Login, c.Contributions, c.HTMLURL)
	}
}
