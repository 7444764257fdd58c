// Package cardiokit 是心脏病风险预测工具包（Cardio Kit）。
//
// 设计要点：
// - Artifact-first: 期望列、多项式、标准化器与五个模型都来自离线拟合的工件，启动时加载一次
// - Pipeline-first: 一次推理通过 Stage 串联（Engineer → Align → Transform → Predict → Aggregate）
// - Fail-fast: 输入无效、维度不一致或任一模型失败都让整个请求失败，不做静默降级
package cardiokit

import (
	"context"

	"github.com/rushteam/cardiokit/artifact"
	"github.com/rushteam/cardiokit/pipeline"
	"github.com/rushteam/cardiokit/service"
)

// 轻量 facade：便于用户直接 import "cardiokit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Stage = pipeline.Stage
type Kind = pipeline.Kind
type Predictor = service.Predictor

const (
	KindEngineer  = pipeline.KindEngineer
	KindAlign     = pipeline.KindAlign
	KindTransform = pipeline.KindTransform
	KindPredict   = pipeline.KindPredict
	KindAggregate = pipeline.KindAggregate
)

// Open 从本地工件目录加载 Bundle 并创建 Predictor。
func Open(ctx context.Context, dir string, opts ...service.Option) (*Predictor, error) {
	b, err := artifact.Load(ctx, artifact.NewFileSource(dir))
	if err != nil {
		return nil, err
	}
	return service.NewPredictor(b, opts...)
}
