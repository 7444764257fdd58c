package model

import (
	"fmt"
	"math"
)

// 核函数类型
const (
	KernelLinear  = "linear"
	KernelRBF     = "rbf"
	KernelPoly    = "poly"
	KernelSigmoid = "sigmoid"
)

// SVM 是拟合好的二分类支持向量机。
// 线性核可直接给出 Coef；其余核使用支持向量与对偶系数：
//
//	decision = sum(DualCoef_i * K(SV_i, x)) + Intercept
//
// decision > 0 判为正类。
type SVM struct {
	base
	Kernel         string
	Coef           []float64
	SupportVectors [][]float64
	DualCoef       []float64
	Intercept      float64
	Gamma          float64
	Coef0          float64
	Degree         int
}

func (m *SVM) kernel(a, b []float64) float64 {
	switch m.Kernel {
	case KernelRBF:
		var d float64
		for i := range a {
			diff := a[i] - b[i]
			d += diff * diff
		}
		return math.Exp(-m.Gamma * d)
	case KernelPoly:
		return math.Pow(m.Gamma*dot(a, b)+m.Coef0, float64(m.Degree))
	case KernelSigmoid:
		return math.Tanh(m.Gamma*dot(a, b) + m.Coef0)
	default:
		return dot(a, b)
	}
}

// Decision 返回决策函数值
func (m *SVM) Decision(x []float64) (float64, error) {
	if err := m.check(x); err != nil {
		return 0, err
	}
	if len(m.Coef) > 0 {
		return dot(m.Coef, x) + m.Intercept, nil
	}
	d := m.Intercept
	for i, sv := range m.SupportVectors {
		d += m.DualCoef[i] * m.kernel(sv, x)
	}
	return d, nil
}

func (m *SVM) Predict(x []float64) (int, error) {
	d, err := m.Decision(x)
	if err != nil {
		return 0, err
	}
	return m.decide(d)
}

type svmSpec struct {
	Kernel         string      `json:"kernel"`
	Coef           []float64   `json:"coef"`
	SupportVectors [][]float64 `json:"support_vectors"`
	DualCoef       []float64   `json:"dual_coef"`
	Intercept      float64     `json:"intercept"`
	Gamma          float64     `json:"gamma"`
	Coef0          float64     `json:"coef0"`
	Degree         int         `json:"degree"`
}

func (s *svmSpec) build(h header, name string) (Classifier, error) {
	classes, err := parseClasses(h.Classes)
	if err != nil {
		return nil, err
	}
	m := &SVM{
		base:      base{name: name, classes: classes},
		Kernel:    s.Kernel,
		Intercept: s.Intercept,
		Gamma:     s.Gamma,
		Coef0:     s.Coef0,
		Degree:    s.Degree,
	}
	if m.Kernel == "" {
		m.Kernel = KernelLinear
	}
	switch m.Kernel {
	case KernelLinear, KernelRBF, KernelPoly, KernelSigmoid:
	default:
		return nil, fmt.Errorf("unknown kernel %q", m.Kernel)
	}
	if m.Kernel == KernelPoly && m.Degree <= 0 {
		m.Degree = 3
	}
	if m.Kernel != KernelLinear && m.Gamma <= 0 {
		return nil, fmt.Errorf("kernel %s requires gamma > 0", m.Kernel)
	}

	if m.Kernel == KernelLinear && len(s.Coef) > 0 {
		m.Coef = append([]float64(nil), s.Coef...)
		m.nFeatures = len(m.Coef)
	} else {
		if len(s.SupportVectors) == 0 {
			return nil, fmt.Errorf("kernel %s requires support_vectors", m.Kernel)
		}
		if len(s.DualCoef) != len(s.SupportVectors) {
			return nil, fmt.Errorf("dual_coef has %d entries, support_vectors has %d", len(s.DualCoef), len(s.SupportVectors))
		}
		m.nFeatures = len(s.SupportVectors[0])
		m.SupportVectors = make([][]float64, len(s.SupportVectors))
		for i, sv := range s.SupportVectors {
			if len(sv) != m.nFeatures {
				return nil, fmt.Errorf("support_vectors[%d] has %d entries, want %d", i, len(sv), m.nFeatures)
			}
			m.SupportVectors[i] = append([]float64(nil), sv...)
		}
		m.DualCoef = append([]float64(nil), s.DualCoef...)
	}
	if m.nFeatures == 0 {
		return nil, fmt.Errorf("svm: no features")
	}
	if h.NFeatures != 0 && h.NFeatures != m.nFeatures {
		return nil, fmt.Errorf("n_features=%d but parameters have %d", h.NFeatures, m.nFeatures)
	}
	return m, nil
}
