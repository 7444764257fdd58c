package transform

import (
	"encoding/json"
	"fmt"
	"io"
)

// FormatVersion 是当前支持的工件格式版本
const FormatVersion = 1

// PolynomialSpec 是多项式展开工件的 JSON 格式。
// 优先使用 powers（拟合时的精确输出顺序）；缺省时按 degree 等参数生成。
type PolynomialSpec struct {
	FormatVersion   int     `json:"format_version"`
	NInput          int     `json:"n_input"`
	Degree          int     `json:"degree"`
	InteractionOnly bool    `json:"interaction_only"`
	IncludeBias     bool    `json:"include_bias"`
	Powers          [][]int `json:"powers,omitempty"`
}

// ScalerSpec 是标准化器工件的 JSON 格式
type ScalerSpec struct {
	FormatVersion int       `json:"format_version"`
	Mean          []float64 `json:"mean"`
	Scale         []float64 `json:"scale"`
	WithMean      *bool     `json:"with_mean,omitempty"`
	WithStd       *bool     `json:"with_std,omitempty"`
}

// DecodePolynomial 读取多项式展开工件
func DecodePolynomial(r io.Reader) (*Polynomial, error) {
	var spec PolynomialSpec
	if err := json.NewDecoder(r).Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode polynomial: %w", err)
	}
	if spec.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("polynomial: unsupported format_version %d", spec.FormatVersion)
	}
	if len(spec.Powers) > 0 {
		return NewPolynomial(spec.NInput, spec.Powers)
	}
	return NewPolynomialFromDegree(spec.NInput, spec.Degree, spec.InteractionOnly, spec.IncludeBias)
}

// DecodeScaler 读取标准化器工件，with_mean / with_std 缺省为 true
func DecodeScaler(r io.Reader) (*Scaler, error) {
	var spec ScalerSpec
	if err := json.NewDecoder(r).Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	if spec.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("scaler: unsupported format_version %d", spec.FormatVersion)
	}
	withMean, withStd := true, true
	if spec.WithMean != nil {
		withMean = *spec.WithMean
	}
	if spec.WithStd != nil {
		withStd = *spec.WithStd
	}
	return NewScaler(spec.Mean, spec.Scale, withMean, withStd)
}
