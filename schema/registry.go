// Package schema 定义原始输入字段、对齐用的期望列以及分桶边界。
// Registry 在启动时构建一次，之后只读，可在请求间共享。
package schema

import (
	"fmt"

	"github.com/rushteam/cardiokit/core"
)

// 原始临床字段名
const (
	Age      = "age"
	Sex      = "sex"
	CP       = "cp"
	Trestbps = "trestbps"
	Chol     = "chol"
	FBS      = "fbs"
	RestECG  = "restecg"
	Thalach  = "thalach"
	Exang    = "exang"
	Oldpeak  = "oldpeak"
	Slope    = "slope"
	CA       = "ca"
	Thal     = "thal"
)

// 派生列名
const (
	ThalachOldpeak = "thalach_oldpeak"
	CPTrestbps     = "cp_trestbps"
	AgeBins        = "age_bins"
	CholBins       = "chol_bins"
)

// RawFeatures 是 13 个原始字段，顺序即表单/报告中的顺序。
var RawFeatures = []string{
	Age, Sex, CP, Trestbps, Chol,
	FBS, RestECG, Thalach, Exang,
	Oldpeak, Slope, CA, Thal,
}

// Registry 保存原始字段、期望列（来自拟合工件）以及两组分桶。
type Registry struct {
	Raw      []string
	Expected []string
	AgeBins  *Bins
	CholBins *Bins

	index map[string]int
}

// Option 修改 Registry 的可选配置
type Option func(*Registry)

// WithAgeBins 覆盖年龄分桶
func WithAgeBins(b *Bins) Option { return func(r *Registry) { r.AgeBins = b } }

// WithCholBins 覆盖胆固醇分桶
func WithCholBins(b *Bins) Option { return func(r *Registry) { r.CholBins = b } }

// NewRegistry 根据期望列构建 Registry。
// 期望列为空、有空名或重复时返回 SchemaLoadError。
func NewRegistry(expected []string, opts ...Option) (*Registry, error) {
	if len(expected) == 0 {
		return nil, core.SchemaLoadError(core.ModuleSchema, "expected_columns", fmt.Errorf("empty column list"))
	}
	index := make(map[string]int, len(expected))
	for i, col := range expected {
		if col == "" {
			return nil, core.SchemaLoadError(core.ModuleSchema, "expected_columns", fmt.Errorf("empty column name at %d", i))
		}
		if _, dup := index[col]; dup {
			return nil, core.SchemaLoadError(core.ModuleSchema, "expected_columns", fmt.Errorf("duplicate column %q", col))
		}
		index[col] = i
	}

	r := &Registry{
		Raw:      append([]string(nil), RawFeatures...),
		Expected: append([]string(nil), expected...),
		AgeBins:  DefaultAgeBins(),
		CholBins: DefaultCholBins(),
		index:    index,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.AgeBins.validate(); err != nil {
		return nil, core.SchemaLoadError(core.ModuleSchema, AgeBins, err)
	}
	if err := r.CholBins.validate(); err != nil {
		return nil, core.SchemaLoadError(core.ModuleSchema, CholBins, err)
	}
	return r, nil
}

// Width 返回期望列数
func (r *Registry) Width() int { return len(r.Expected) }

// Index 返回期望列下标，不存在时返回 -1
func (r *Registry) Index(col string) int {
	if i, ok := r.index[col]; ok {
		return i
	}
	return -1
}

// Missing 返回期望列中不在 cols 内的列（用于启动时诊断）
func (r *Registry) Missing(cols []string) []string {
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		seen[c] = struct{}{}
	}
	var missing []string
	for _, c := range r.Expected {
		if _, ok := seen[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Engineered 返回特征工程在当前分桶配置下能产出的全部列名
func (r *Registry) Engineered() []string {
	cols := append([]string(nil), r.Raw...)
	cols = append(cols, ThalachOldpeak, CPTrestbps)
	cols = append(cols, r.AgeBins.IndicatorColumns()...)
	return append(cols, r.CholBins.IndicatorColumns()...)
}

// Unproducible 返回期望列中特征工程无法产出的列，以及期望列缺少的原始字段。
// 两者皆空才说明期望列与特征工程的命名一致。
func (r *Registry) Unproducible() (unknown, absent []string) {
	unknown = r.Missing(r.Engineered())
	for _, c := range r.Raw {
		if r.Index(c) < 0 {
			absent = append(absent, c)
		}
	}
	return unknown, absent
}

// DefaultExpectedColumns 返回训练时的标准列顺序：原始字段、交叉特征、分桶指示列。
// 线上以工件中的 expected_columns 为准，此函数用于测试与工件校验。
func DefaultExpectedColumns() []string {
	cols := append([]string(nil), RawFeatures...)
	cols = append(cols, ThalachOldpeak, CPTrestbps)
	cols = append(cols, DefaultAgeBins().IndicatorColumns()...)
	cols = append(cols, DefaultCholBins().IndicatorColumns()...)
	return cols
}
