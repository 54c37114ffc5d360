package service

import (
	"context"
	"log"
	"sync"

	"os228/internal/domain"
	"os228/internal/port"
)

// Catalog 服务端持有的项目目录快照
// 刷新时旧的快照继续对外提供，新一轮富化全部完成后再替换
type Catalog struct {
	enricher *EnrichmentService
	source   port.ProjectSource

	mu        sync.RWMutex
	current   *EnrichmentBatch
	seq       int
	installed int
}

// NewCatalog 创建目录，调用 Refresh 之前快照里的项目都处于加载中
func NewCatalog(enricher *EnrichmentService, source port.ProjectSource) *Catalog {
	return &Catalog{enricher: enricher, source: source}
}

// Refresh 启动新一轮富化并立即返回
// 第一次刷新会直接作为当前快照，之后的刷新在完成时才替换
func (c *Catalog) Refresh(ctx context.Context) *EnrichmentBatch {
	batch := c.enricher.Start(ctx, c.source.Projects(), nil)

	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.current == nil {
		c.current = batch
		c.installed = seq
	}
	c.mu.Unlock()

	go func() {
		<-batch.Done()
		c.mu.Lock()
		defer c.mu.Unlock()
		// 晚完成的旧批次不能覆盖新批次
		if seq >= c.installed {
			c.current = batch
			c.installed = seq
		}
		log.Printf("[Catalog] ✅ 第 %d 轮富化完成，共 %d 个项目", seq, len(c.source.Projects()))
	}()

	return batch
}

// Snapshot 当前对外提供的项目列表
func (c *Catalog) Snapshot() []domain.EnrichedProject {
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()

	if current == nil {
		projects := c.source.Projects()
		out := make([]domain.EnrichedProject, len(projects))
		for i, p := range projects {
			out[i] = domain.EnrichedProject{Project: p, IsLoadingStats: true}
		}
		return out
	}
	return current.Snapshot()
}
