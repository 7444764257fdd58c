package model

import (
	"fmt"
	"math"
)

// LogisticRegression 实现了逻辑回归分类器。
//
// 预测原理：
// 1. 线性加权求和: z = Intercept + sum(Coef_i * x_i)
// 2. z > 0（等价于 sigmoid(z) > 0.5）判为正类
type LogisticRegression struct {
	base
	Coef      []float64 // 特征权重
	Intercept float64   // 偏置项
}

// NewLogisticRegression 创建逻辑回归模型
func NewLogisticRegression(name string, coef []float64, intercept float64) (*LogisticRegression, error) {
	if len(coef) == 0 {
		return nil, fmt.Errorf("logistic_regression: empty coef")
	}
	return &LogisticRegression{
		base:      base{name: name, nFeatures: len(coef), classes: DefaultClasses},
		Coef:      append([]float64(nil), coef...),
		Intercept: intercept,
	}, nil
}

// Decision 返回线性决策值 z
func (m *LogisticRegression) Decision(x []float64) (float64, error) {
	if err := m.check(x); err != nil {
		return 0, err
	}
	return m.Intercept + dot(m.Coef, x), nil
}

// Probability 返回正类概率 sigmoid(z)
func (m *LogisticRegression) Probability(x []float64) (float64, error) {
	z, err := m.Decision(x)
	if err != nil {
		return 0, err
	}
	return 1 / (1 + math.Exp(-z)), nil
}

func (m *LogisticRegression) Predict(x []float64) (int, error) {
	z, err := m.Decision(x)
	if err != nil {
		return 0, err
	}
	return m.decide(z)
}

type logisticSpec struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func (s *logisticSpec) build(h header, name string) (Classifier, error) {
	m, err := NewLogisticRegression(name, s.Coef, s.Intercept)
	if err != nil {
		return nil, err
	}
	if h.NFeatures != 0 && h.NFeatures != len(s.Coef) {
		return nil, fmt.Errorf("n_features=%d but coef has %d entries", h.NFeatures, len(s.Coef))
	}
	if m.classes, err = parseClasses(h.Classes); err != nil {
		return nil, err
	}
	return m, nil
}
