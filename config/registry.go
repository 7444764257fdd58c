package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/cardiokit/artifact"
)

// SourceBuilder 根据配置构建工件源。
// 各实现在 init 中调用 Register(typeName, builder) 即可被配置驱动。
type SourceBuilder func(cfg ArtifactsConfig) (artifact.Source, error)

var (
	defaultBuilders   = make(map[string]SourceBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种工件源的构建逻辑。
// 建议在 init 中调用，例如：func init() { config.Register("file", BuildFileSource) }
func Register(typeName string, builder SourceBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的工件源类型（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// BuildSource 按 cfg.Type 构建工件源；未注册的类型返回包含已支持列表的错误。
func BuildSource(cfg ArtifactsConfig) (artifact.Source, error) {
	defaultBuildersMu.RLock()
	builder, ok := defaultBuilders[cfg.Type]
	defaultBuildersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported artifacts.type %q (supported: %v)", cfg.Type, SupportedTypes())
	}
	return builder(cfg)
}
