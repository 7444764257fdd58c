// Package ensemble 把同一个向量并发分发给全部成员模型，按成员顺序收集投票。
package ensemble

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/model"
)

// Vote 是单个成员的预测结果
type Vote struct {
	Model string
	Label int
}

// Ensemble 是有序的模型集合，构建后只读。
// 任何一个成员失败，整个请求失败（不产出部分结果）。
type Ensemble struct {
	members []model.Classifier

	MaxConcurrent int // 最大并发数（0 表示无限制）
}

// New 创建集成，成员为空或名称重复时返回 SchemaLoadError。
func New(members ...model.Classifier) (*Ensemble, error) {
	if len(members) == 0 {
		return nil, core.SchemaLoadError(core.ModuleEnsemble, "members", fmt.Errorf("empty ensemble"))
	}
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m == nil {
			return nil, core.SchemaLoadError(core.ModuleEnsemble, "members", fmt.Errorf("nil member"))
		}
		if _, ok := seen[m.Name()]; ok {
			return nil, core.SchemaLoadError(core.ModuleEnsemble, m.Name(), fmt.Errorf("duplicate member"))
		}
		seen[m.Name()] = struct{}{}
	}
	return &Ensemble{members: append([]model.Classifier(nil), members...)}, nil
}

// Members 返回成员名称（集成顺序）
func (e *Ensemble) Members() []string {
	out := make([]string, len(e.members))
	for i, m := range e.members {
		out[i] = m.Name()
	}
	return out
}

// Len 返回成员数
func (e *Ensemble) Len() int { return len(e.members) }

// Check 校验每个成员的输入维度都等于 width
func (e *Ensemble) Check(width int) error {
	for _, m := range e.members {
		if m.NumFeatures() != width {
			return core.SchemaLoadError(core.ModuleEnsemble, m.Name(),
				fmt.Errorf("model expects %d features, transform produces %d", m.NumFeatures(), width))
		}
	}
	return nil
}

// Predict 并发调用全部成员。返回顺序与成员顺序一致，与完成顺序无关。
// 每个成员拿到独立的向量副本。
func (e *Ensemble) Predict(ctx context.Context, x []float64) ([]Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	votes := make([]Vote, len(e.members))
	eg, egCtx := errgroup.WithContext(ctx)
	if e.MaxConcurrent > 0 {
		eg.SetLimit(e.MaxConcurrent)
	}

	for i, member := range e.members {
		eg.Go(func() error {
			// 其他成员已失败时不再预测
			if err := egCtx.Err(); err != nil {
				return err
			}
			xs := append([]float64(nil), x...)
			label, err := member.Predict(xs)
			if err != nil {
				if core.IsModelInference(err) {
					return err
				}
				return core.ModelInferenceError(member.Name(), err)
			}
			if label != 0 && label != 1 {
				return core.ModelInferenceError(member.Name(), fmt.Errorf("label %d is not binary", label))
			}
			votes[i] = Vote{Model: member.Name(), Label: label}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return votes, nil
}
