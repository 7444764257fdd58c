package config

import (
	"fmt"

	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/feast"
	"github.com/rushteam/cardiokit/source"
	"github.com/rushteam/cardiokit/store"
)

// BuildStore 按配置构建结果缓存/报告存储
func BuildStore(cfg StoreConfig) (core.Store, error) {
	return store.New(store.Options{
		Type:     cfg.Type,
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// BuildRecordSource 按配置构建病人记录源。未启用时返回 nil, nil, nil。
// 返回的 close 用于关闭底层客户端。
func BuildRecordSource(cfg FeastConfig) (source.RecordSource, func() error, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}
	opts := []feast.ClientOption{feast.WithTimeout(cfg.Timeout)}
	if cfg.Token != "" {
		opts = append(opts, feast.WithAuth(&feast.AuthConfig{Type: "static", Token: cfg.Token}))
	}
	client, err := feast.NewClient(cfg.Endpoint, cfg.Project, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("feast client: %w", err)
	}
	var srcOpts []source.FeastOption
	if cfg.Entity != "" {
		srcOpts = append(srcOpts, source.WithEntity(cfg.Entity))
	}
	return source.NewFeastSource(client, cfg.View, srcOpts...), client.Close, nil
}
