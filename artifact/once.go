package artifact

import (
	"context"
	"sync"
)

// LoadFunc 加载一次 Bundle
type LoadFunc func(ctx context.Context) (*Bundle, error)

// Once 保证 Bundle 只加载一次：第一次 Get 执行加载，
// 其余并发调用方阻塞等待并拿到同一结果。加载失败的错误同样会被保留。
type Once struct {
	once   sync.Once
	load   LoadFunc
	bundle *Bundle
	err    error
}

// NewOnce 创建一次性加载器
func NewOnce(load LoadFunc) *Once {
	return &Once{load: load}
}

// NewOnceFromSource 从工件源创建一次性加载器
func NewOnceFromSource(src Source) *Once {
	return NewOnce(func(ctx context.Context) (*Bundle, error) {
		return Load(ctx, src)
	})
}

// Get 返回已加载的 Bundle，首次调用时执行加载
func (o *Once) Get(ctx context.Context) (*Bundle, error) {
	o.once.Do(func() {
		o.bundle, o.err = o.load(ctx)
	})
	return o.bundle, o.err
}
