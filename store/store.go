// Package store 提供 core.Store 的实现。
//
// 注意：此包只包含实现，接口定义在 core 包。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
//	r, err := store.NewRedisStore("localhost:6379", 0)
package store

import (
	"fmt"

	"github.com/rushteam/cardiokit/core"
)

// Options 是按配置构建 Store 时使用的参数。
type Options struct {
	Type     string // memory / redis
	Addr     string
	Password string
	DB       int
}

// New 根据配置构建 Store，空类型默认 memory。
func New(opts Options) (core.Store, error) {
	switch opts.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStoreWithOptions(opts.Addr, opts.Password, opts.DB)
	default:
		return nil, fmt.Errorf("unknown store type: %s", opts.Type)
	}
}
