package transform

import (
	"fmt"

	"github.com/rushteam/cardiokit/core"
)

// Scaler 是拟合好的按列仿射变换：z = (x - Mean) / Scale。
// WithMean=false 时不减均值，WithStd=false 时不除尺度。
// Scale 为 0 的列按 1 处理（常数列）。
type Scaler struct {
	Mean     []float64
	Scale    []float64
	WithMean bool
	WithStd  bool
}

// NewScaler 校验参数宽度一致后构建标准化器
func NewScaler(mean, scale []float64, withMean, withStd bool) (*Scaler, error) {
	width := len(mean)
	if !withMean && width == 0 {
		width = len(scale)
	}
	if width == 0 {
		return nil, fmt.Errorf("scaler: empty parameters")
	}
	if withMean && len(mean) != width {
		return nil, fmt.Errorf("scaler: mean has %d entries, want %d", len(mean), width)
	}
	if withStd && len(scale) != width {
		return nil, fmt.Errorf("scaler: scale has %d entries, want %d", len(scale), width)
	}
	s := &Scaler{
		Mean:     append([]float64(nil), mean...),
		Scale:    append([]float64(nil), scale...),
		WithMean: withMean,
		WithStd:  withStd,
	}
	for i, v := range s.Scale {
		if v == 0 {
			s.Scale[i] = 1
		}
	}
	return s, nil
}

// Width 返回拟合时的列数
func (s *Scaler) Width() int {
	if s.WithMean || len(s.Scale) == 0 {
		return len(s.Mean)
	}
	return len(s.Scale)
}

// Transform 标准化单行向量，宽度不一致时返回 DimensionMismatchError
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != s.Width() {
		return nil, core.DimensionMismatchError(core.ModuleTransform, "scaler", s.Width(), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		if s.WithMean {
			v -= s.Mean[i]
		}
		if s.WithStd {
			v /= s.Scale[i]
		}
		out[i] = v
	}
	return out, nil
}
