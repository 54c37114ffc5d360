package projects

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"os228/internal/common"
	"os228/internal/domain"
)

//go:embed projects.json
var embeddedProjects []byte

// Source 只读的项目目录，实现了 port.ProjectSource
type Source struct {
	projects []domain.Project
}

// Projects 返回副本，调用方修改不会影响目录
func (s *Source) Projects() []domain.Project {
	out := make([]domain.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// Len 项目数量
func (s *Source) Len() int {
	return len(s.projects)
}

// Default 内置的项目目录
func Default() (*Source, error) {
	return Parse(embeddedProjects)
}

// LoadFile 从本地 JSON 文件加载；path 为空时使用内置目录
func LoadFile(path string) (*Source, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取项目文件失败: %w", err)
	}
	return Parse(data)
}

// Parse 解析并校验 JSON 数组
func Parse(data []byte) (*Source, error) {
	var list []domain.Project
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, common.WrapError(common.ErrCodeInvalidInput, "项目列表不是合法的 JSON", err)
	}
	if err := validate(list); err != nil {
		return nil, err
	}
	return &Source{projects: list}, nil
}

// validate id 必须为正且唯一，名称不能为空
func validate(list []domain.Project) error {
	seen := make(map[int]bool, len(list))
	for i, p := range list {
		if p.ID <= 0 {
			return common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("第 %d 个项目的 id 无效: %d", i+1, p.ID))
		}
		if seen[p.ID] {
			return common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("项目 id 重复: %d", p.ID))
		}
		seen[p.ID] = true
		if strings.TrimSpace(p.Name) == "" {
			return common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("项目 %d 缺少名称", p.ID))
		}
	}
	return nil
}
