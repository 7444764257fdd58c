package feature

import (
	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/schema"
)

// Interaction 是两列相乘得到的交叉特征。
type Interaction struct {
	Name  string
	Left  string
	Right string
}

// DefaultInteractions 最大心率 × ST 段压低；胸痛类型 × 静息血压。
func DefaultInteractions() []Interaction {
	return []Interaction{
		{Name: schema.ThalachOldpeak, Left: schema.Thalach, Right: schema.Oldpeak},
		{Name: schema.CPTrestbps, Left: schema.CP, Right: schema.Trestbps},
	}
}

// Engineer 把原始输入映射为特征工程后的单行表。
//
// 处理顺序：
//  1. 按 Registry.Raw 顺序复制 13 个原始字段
//  2. 交叉特征（thalach_oldpeak、cp_trestbps）
//  3. 年龄、胆固醇分桶
//  4. 分桶结果 one-hot：每组只产生命中的那一列（值为 1），其余列由 Align 补 0
//
// Engineer 构建后只读，纯函数，可并发调用。
type Engineer struct {
	reg          *schema.Registry
	interactions []Interaction
	bins         []*schema.Bins
}

func NewEngineer(reg *schema.Registry) *Engineer {
	return &Engineer{
		reg:          reg,
		interactions: DefaultInteractions(),
		bins:         []*schema.Bins{reg.AgeBins, reg.CholBins},
	}
}

// Engineer 生成 EngineeredRow。缺字段或分桶越界返回 ValidationError。
func (e *Engineer) Engineer(raw core.RawInput) (core.Row, error) {
	width := len(e.reg.Raw) + len(e.interactions) + len(e.bins)
	row := core.Row{
		Columns: make([]string, 0, width),
		Values:  make([]float64, 0, width),
	}

	for _, name := range e.reg.Raw {
		v, ok := raw[name]
		if !ok {
			return core.Row{}, core.ValidationError(name, "missing required field")
		}
		row.Append(name, v)
	}

	for _, it := range e.interactions {
		l := raw[it.Left]
		r := raw[it.Right]
		row.Append(it.Name, l*r)
	}

	for _, b := range e.bins {
		label, err := b.Assign(raw[b.Column])
		if err != nil {
			return core.Row{}, err
		}
		row.Append(b.IndicatorColumn(label), 1)
	}

	return row, nil
}
