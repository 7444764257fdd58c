package model

import (
	"fmt"
	"math"
)

// BoostedTree 是 XGBoost JSON 导出中的单棵回归树：
// x[SplitIndices[i]] < SplitConditions[i] 走左子树（yes），否则走右子树（no），
// 缺失值（NaN）按 DefaultLeft 决定方向；叶子节点的输出值存放在 SplitConditions[i]。
// 分裂比较在 float32 精度下进行，与 XGBoost 的 DMatrix 一致。
type BoostedTree struct {
	LeftChildren    []int     `json:"left_children"`
	RightChildren   []int     `json:"right_children"`
	SplitIndices    []int     `json:"split_indices"`
	SplitConditions []float64 `json:"split_conditions"`
	DefaultLeft     []bool    `json:"default_left,omitempty"`
}

func (t *BoostedTree) validate(nFeatures int) error {
	n := len(t.LeftChildren)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.RightChildren) != n || len(t.SplitIndices) != n || len(t.SplitConditions) != n {
		return fmt.Errorf("tree arrays have inconsistent lengths")
	}
	if len(t.DefaultLeft) != 0 && len(t.DefaultLeft) != n {
		return fmt.Errorf("default_left has %d entries, want %d", len(t.DefaultLeft), n)
	}
	for i := 0; i < n; i++ {
		l, r := t.LeftChildren[i], t.RightChildren[i]
		if (l == leaf) != (r == leaf) {
			return fmt.Errorf("node %d has a single child", i)
		}
		if l == leaf {
			continue
		}
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("node %d has invalid children (%d, %d)", i, l, r)
		}
		if f := t.SplitIndices[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d, model has %d", i, f, nFeatures)
		}
	}
	return nil
}

// Score 返回 x 落入叶子的输出值
func (t *BoostedTree) Score(x []float64) float64 {
	i := 0
	for t.LeftChildren[i] != leaf {
		v := x[t.SplitIndices[i]]
		switch {
		case math.IsNaN(v):
			if len(t.DefaultLeft) > 0 && t.DefaultLeft[i] {
				i = t.LeftChildren[i]
			} else {
				i = t.RightChildren[i]
			}
		case float32(v) < float32(t.SplitConditions[i]):
			i = t.LeftChildren[i]
		default:
			i = t.RightChildren[i]
		}
	}
	return t.SplitConditions[i]
}

// GradientBoosting 是 binary:logistic 目标的梯度提升树：
//
//	margin = logit(BaseScore) + sum(tree_k(x))
//
// margin > 0（即概率 > 0.5）判为正类。
type GradientBoosting struct {
	base
	BaseScore float64
	Trees     []*BoostedTree

	baseMargin float64
}

// Margin 返回原始 margin
func (m *GradientBoosting) Margin(x []float64) (float64, error) {
	if err := m.check(x); err != nil {
		return 0, err
	}
	s := m.baseMargin
	for _, t := range m.Trees {
		s += t.Score(x)
	}
	return s, nil
}

func (m *GradientBoosting) Predict(x []float64) (int, error) {
	margin, err := m.Margin(x)
	if err != nil {
		return 0, err
	}
	return m.decide(margin)
}

type boostingSpec struct {
	BaseScore *float64       `json:"base_score"`
	Trees     []*BoostedTree `json:"trees"`
}

func (s *boostingSpec) build(h header, name string) (Classifier, error) {
	if h.NFeatures <= 0 {
		return nil, fmt.Errorf("gradient_boosting requires n_features")
	}
	if len(s.Trees) == 0 {
		return nil, fmt.Errorf("gradient_boosting has no trees")
	}
	classes, err := parseClasses(h.Classes)
	if err != nil {
		return nil, err
	}
	baseScore := 0.5
	if s.BaseScore != nil {
		baseScore = *s.BaseScore
	}
	if baseScore <= 0 || baseScore >= 1 {
		return nil, fmt.Errorf("base_score %v is not a probability in (0, 1)", baseScore)
	}
	for i, t := range s.Trees {
		if t == nil {
			return nil, fmt.Errorf("trees[%d] is null", i)
		}
		if err := t.validate(h.NFeatures); err != nil {
			return nil, fmt.Errorf("trees[%d]: %w", i, err)
		}
	}
	return &GradientBoosting{
		base:       base{name: name, nFeatures: h.NFeatures, classes: classes},
		BaseScore:  baseScore,
		Trees:      s.Trees,
		baseMargin: logit(baseScore),
	}, nil
}

// logit 是 sigmoid 的反函数
func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
