package feature

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/pkg/conv"
	"github.com/rushteam/cardiokit/pkg/dsl"
	"github.com/rushteam/cardiokit/schema"
)

// Validator 是调用方侧的输入校验：把提交的值解析为 RawInput，并执行范围规则。
// 推理链路只接收通过校验的 RawInput。
type Validator struct {
	fields []string
	rules  *dsl.RuleSet
}

// DefaultRules 由分桶边界生成的范围规则：超出分桶范围的年龄/胆固醇直接拒绝。
func DefaultRules(reg *schema.Registry) []dsl.Rule {
	rules := make([]dsl.Rule, 0, 2)
	for _, b := range []*schema.Bins{reg.AgeBins, reg.CholBins} {
		rules = append(rules, dsl.Rule{
			Name:  b.Column + "_range",
			Field: b.Column,
			Expr:  b.Column + " >= " + celDouble(b.Min()) + " && " + b.Column + " <= " + celDouble(b.Max()),
		})
	}
	return rules
}

// celDouble 输出 CEL double 字面量（保证带小数点，避免被解析为 int）
func celDouble(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// NewValidator 编译默认规则与额外规则。规则无法编译属于启动期配置错误。
func NewValidator(reg *schema.Registry, extra ...dsl.Rule) (*Validator, error) {
	rules := append(DefaultRules(reg), extra...)
	set, err := dsl.Compile(reg.Raw, rules)
	if err != nil {
		return nil, core.SchemaLoadError(core.ModuleFeature, "validation_rules", err)
	}
	return &Validator{fields: reg.Raw, rules: set}, nil
}

// Fields 返回必填字段（按表单顺序）
func (v *Validator) Fields() []string { return v.fields }

// Validate 校验已是数值的输入：缺字段、NaN/Inf、规则不通过均返回 ValidationError。
func (v *Validator) Validate(raw core.RawInput) error {
	for _, f := range v.fields {
		val, ok := raw[f]
		if !ok {
			return core.ValidationError(f, "missing required field")
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return core.ValidationError(f, "value is not a finite number")
		}
	}

	vars := make(map[string]float64, len(v.fields))
	for _, f := range v.fields {
		vars[f] = raw[f]
	}
	failed, err := v.rules.Check(vars)
	if err != nil {
		return core.ValidationError("", "rule evaluation failed: %v", err)
	}
	if failed != nil {
		return core.ValidationError(failed.Field, "rule %s not satisfied", failed.Name)
	}
	return nil
}

// ParseForm 解析字符串表单（每个字段一个值），只保留必填字段后校验。
func (v *Validator) ParseForm(form map[string]string) (core.RawInput, error) {
	raw := make(core.RawInput, len(v.fields))
	for _, f := range v.fields {
		s, ok := form[f]
		if !ok {
			return nil, core.ValidationError(f, "missing required field")
		}
		val, ok := conv.ParseFloat(s)
		if !ok {
			return nil, core.ValidationError(f, "value %q is not numeric", s)
		}
		raw[f] = val
	}
	if err := v.Validate(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ParseValues 解析 url.Values（HTML 表单提交），取每个字段的第一个值。
func (v *Validator) ParseValues(values url.Values) (core.RawInput, error) {
	form := make(map[string]string, len(v.fields))
	for _, f := range v.fields {
		if _, ok := values[f]; ok {
			form[f] = values.Get(f)
		}
	}
	return v.ParseForm(form)
}

// ParseAny 解析 JSON 解码后的对象，数值与数值字符串均可接受。
func (v *Validator) ParseAny(m map[string]any) (core.RawInput, error) {
	raw := make(core.RawInput, len(v.fields))
	for _, f := range v.fields {
		x, ok := m[f]
		if !ok || x == nil {
			return nil, core.ValidationError(f, "missing required field")
		}
		val, ok := conv.ToFloat64(x)
		if !ok {
			return nil, core.ValidationError(f, "value %v is not numeric", x)
		}
		raw[f] = val
	}
	if err := v.Validate(raw); err != nil {
		return nil, err
	}
	return raw, nil
}
