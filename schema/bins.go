package schema

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rushteam/cardiokit/core"
)

// Bins 是按边界分桶的定义。
//
// 区间为右闭 (Edges[i], Edges[i+1]]，第一个区间额外包含 Edges[0]；
// 落在边界上的值归入较低的桶。超出 [Edges[0], Edges[last]] 的值视为无效输入。
type Bins struct {
	Column string    // 被分桶的原始字段，例如 age
	Group  string    // one-hot 列名前缀，例如 age_bins
	Edges  []float64 // 升序边界，len = len(Labels)+1
	Labels []int     // 每个区间的标签
}

// DefaultAgeBins 年龄分桶：{0,40,55,70,100} -> {0,1,2,3}
func DefaultAgeBins() *Bins {
	return &Bins{
		Column: Age,
		Group:  AgeBins,
		Edges:  []float64{0, 40, 55, 70, 100},
		Labels: []int{0, 1, 2, 3},
	}
}

// DefaultCholBins 胆固醇分桶：{0,200,240,600} -> {0,1,2}
func DefaultCholBins() *Bins {
	return &Bins{
		Column: Chol,
		Group:  CholBins,
		Edges:  []float64{0, 200, 240, 600},
		Labels: []int{0, 1, 2},
	}
}

func (b *Bins) validate() error {
	if b == nil {
		return fmt.Errorf("bins not configured")
	}
	if len(b.Edges) < 2 || len(b.Labels) != len(b.Edges)-1 {
		return fmt.Errorf("%s: need len(labels) == len(edges)-1, got %d edges %d labels", b.Group, len(b.Edges), len(b.Labels))
	}
	for i := 1; i < len(b.Edges); i++ {
		if !(b.Edges[i] > b.Edges[i-1]) {
			return fmt.Errorf("%s: edges must be strictly increasing", b.Group)
		}
	}
	return nil
}

// Min 返回允许的最小值
func (b *Bins) Min() float64 { return b.Edges[0] }

// Max 返回允许的最大值
func (b *Bins) Max() float64 { return b.Edges[len(b.Edges)-1] }

// Assign 返回 v 所在区间的标签；越界或 NaN 返回 ValidationError。
func (b *Bins) Assign(v float64) (int, error) {
	if math.IsNaN(v) || v < b.Min() || v > b.Max() {
		return 0, core.ValidationError(b.Column, "value %v outside [%v, %v]", v, b.Min(), b.Max())
	}
	for i := 1; i < len(b.Edges); i++ {
		if v <= b.Edges[i] {
			return b.Labels[i-1], nil
		}
	}
	return b.Labels[len(b.Labels)-1], nil
}

// IndicatorColumn 返回某个标签对应的 one-hot 列名，例如 age_bins_2
func (b *Bins) IndicatorColumn(label int) string {
	return b.Group + "_" + strconv.Itoa(label)
}

// IndicatorColumns 返回全部 one-hot 列名（按标签顺序）
func (b *Bins) IndicatorColumns() []string {
	cols := make([]string, len(b.Labels))
	for i, l := range b.Labels {
		cols[i] = b.IndicatorColumn(l)
	}
	return cols
}
