// Package pipeline 把一次推理拆成有序的 Stage 链：
// 特征工程 -> 对齐 -> 变换 -> 集成预测 -> 汇总。
// 除只读的 Bundle 外不持有任何跨请求状态。
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rushteam/cardiokit/artifact"
	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/feature"
)

// Pipeline 顺序执行 Stages，遇到第一个错误即停止。
type Pipeline struct {
	Stages  []Stage
	Version string
	Logger  *slog.Logger // 可为空
}

// Option 修改 New 构建的 Pipeline
type Option func(*options)

type options struct {
	monitor       *feature.Monitor
	logger        *slog.Logger
	maxConcurrent int
}

// WithMonitor 在特征工程后记录特征使用情况
func WithMonitor(m *feature.Monitor) Option { return func(o *options) { o.monitor = m } }

// WithLogger 设置阶段级调试日志
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithMaxConcurrent 限制集成内并发预测的模型数（0 表示无限制）
func WithMaxConcurrent(n int) Option { return func(o *options) { o.maxConcurrent = n } }

// New 用 Bundle 组装标准的五个阶段
func New(b *artifact.Bundle, opts ...Option) (*Pipeline, error) {
	if b == nil || b.Registry == nil || b.Chain == nil || b.Ensemble == nil {
		return nil, fmt.Errorf("pipeline: incomplete bundle")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	ens := b.Ensemble
	if o.maxConcurrent > 0 {
		limited := *ens
		limited.MaxConcurrent = o.maxConcurrent
		ens = &limited
	}
	return &Pipeline{
		Stages: []Stage{
			&EngineerStage{Engineer: feature.NewEngineer(b.Registry), Monitor: o.monitor},
			&AlignStage{Expected: b.Registry.Expected, Logger: o.logger},
			&TransformStage{Chain: b.Chain},
			&PredictStage{Ensemble: ens},
			&AggregateStage{},
		},
		Version: b.Version,
		Logger:  o.logger,
	}, nil
}

// Run 对一条原始输入执行完整推理。结果的 ID 由调用方分配。
func (p *Pipeline) Run(ctx context.Context, raw core.RawInput) (*core.Result, error) {
	f, err := p.RunFrame(ctx, raw)
	if err != nil {
		return nil, err
	}
	return &core.Result{
		Version:     p.Version,
		Inputs:      f.Raw,
		Overall:     f.Overall,
		Predictions: f.Predictions,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// RunFrame 执行全部阶段并返回中间产物，便于调试与测试。
func (p *Pipeline) RunFrame(ctx context.Context, raw core.RawInput) (*Frame, error) {
	f := &Frame{Raw: raw.Clone()}
	for _, s := range p.Stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		if err := s.Process(ctx, f); err != nil {
			return nil, err
		}
		if p.Logger != nil {
			p.Logger.LogAttrs(ctx, slog.LevelDebug, "stage done",
				slog.String("stage", s.Name()),
				slog.String("kind", string(s.Kind())),
				slog.Duration("elapsed", time.Since(start)))
		}
	}
	return f, nil
}
