// Package model 定义二分类器能力以及可移植的 JSON 模型格式。
//
// 所有模型在加载后只读，可被多个 goroutine 并发调用。
// 支持的格式（format_version = 1，按 kind 区分）：
//   - logistic_regression
//   - svm（linear / rbf / poly / sigmoid）
//   - decision_tree
//   - random_forest
//   - gradient_boosting（XGBoost 导出）
package model

import (
	"fmt"
	"math"

	"github.com/rushteam/cardiokit/core"
)

// Classifier 是集成中单个成员的最小抽象：输入定长向量，输出类别标签 0 或 1。
type Classifier interface {
	Name() string
	NumFeatures() int
	Predict(x []float64) (int, error)
}

// 模型类型
const (
	KindLogisticRegression = "logistic_regression"
	KindSVM                = "svm"
	KindDecisionTree       = "decision_tree"
	KindRandomForest       = "random_forest"
	KindGradientBoosting   = "gradient_boosting"
)

// DefaultClasses 是未声明 classes 时使用的类别映射
var DefaultClasses = [2]int{0, 1}

type base struct {
	name      string
	nFeatures int
	classes   [2]int
}

func (b *base) Name() string { return b.name }

func (b *base) NumFeatures() int { return b.nFeatures }

func (b *base) check(x []float64) error {
	if len(x) != b.nFeatures {
		return core.DimensionMismatchError(core.ModuleModel, b.name, b.nFeatures, len(x))
	}
	return nil
}

// decide 把决策值映射为类别：decision > 0 为第二个类别。
func (b *base) decide(decision float64) (int, error) {
	if math.IsNaN(decision) {
		return 0, core.ModelInferenceError(b.name, fmt.Errorf("decision value is NaN"))
	}
	if decision > 0 {
		return b.classes[1], nil
	}
	return b.classes[0], nil
}

// argmax 返回第一个最大值的下标
func (b *base) argmax(scores []float64) (int, error) {
	best := -1
	for i, v := range scores {
		if math.IsNaN(v) {
			return 0, core.ModelInferenceError(b.name, fmt.Errorf("class score %d is NaN", i))
		}
		if best < 0 || v > scores[best] {
			best = i
		}
	}
	if best < 0 {
		return 0, core.ModelInferenceError(b.name, fmt.Errorf("empty class scores"))
	}
	return b.classes[best], nil
}

func parseClasses(classes []int) ([2]int, error) {
	if len(classes) == 0 {
		return DefaultClasses, nil
	}
	if len(classes) != 2 {
		return [2]int{}, fmt.Errorf("classes must have 2 entries, got %d", len(classes))
	}
	if classes[0] == classes[1] {
		return [2]int{}, fmt.Errorf("duplicate class %d", classes[0])
	}
	for _, c := range classes {
		if c != 0 && c != 1 {
			return [2]int{}, fmt.Errorf("class %d is not binary", c)
		}
	}
	return [2]int{classes[0], classes[1]}, nil
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
