package pipeline

import (
	"context"

	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/ensemble"
)

// Kind 用于标记 Stage 类型，方便观测/编排（例如按阶段打点）。
type Kind string

const (
	KindEngineer  Kind = "engineer"  // 特征工程：原始输入 -> 工程特征行
	KindAlign     Kind = "align"     // 对齐：按期望列投影，缺失补 0
	KindTransform Kind = "transform" // 变换：多项式展开 -> 标准化
	KindPredict   Kind = "predict"   // 预测：集成内全部模型投票
	KindAggregate Kind = "aggregate" // 汇总：逐模型结论与总体百分比
)

// Frame 是单次请求在各阶段之间传递的数据，每个请求独立分配。
type Frame struct {
	Raw         core.RawInput
	Engineered  core.Row
	Aligned     core.Row
	Vector      []float64
	Votes       []ensemble.Vote
	Predictions core.PredictionSet
	Overall     core.AggregateResult
}

// Stage 是 Pipeline 的最小单元：读取 Frame 中上一阶段的产物，写入本阶段的产物。
type Stage interface {
	Name() string
	Kind() Kind
	Process(ctx context.Context, f *Frame) error
}
