// Package transform 实现推理阶段的数值变换链：多项式展开 → 标准化。
// 两个变换都只使用训练时拟合好的参数，推理时从不重新拟合。
package transform

import (
	"fmt"
	"math"

	"github.com/rushteam/cardiokit/core"
)

// term 是一个输出分量的稀疏表示：Π x[idx]^pow
type term struct {
	idx []int
	pow []int
}

// Polynomial 是拟合好的多项式展开。
// Powers[k][i] 为第 k 个输出分量中第 i 个输入的幂次，顺序即拟合时的输出顺序。
type Polynomial struct {
	NInput int
	Powers [][]int

	terms []term
}

// NewPolynomial 使用拟合时导出的 powers 矩阵构建展开器。
func NewPolynomial(nInput int, powers [][]int) (*Polynomial, error) {
	if nInput <= 0 {
		return nil, fmt.Errorf("polynomial: n_input must be positive, got %d", nInput)
	}
	if len(powers) == 0 {
		return nil, fmt.Errorf("polynomial: empty powers")
	}
	p := &Polynomial{
		NInput: nInput,
		Powers: make([][]int, len(powers)),
		terms:  make([]term, len(powers)),
	}
	for k, row := range powers {
		if len(row) != nInput {
			return nil, fmt.Errorf("polynomial: powers[%d] has %d entries, want %d", k, len(row), nInput)
		}
		p.Powers[k] = append([]int(nil), row...)
		for i, e := range row {
			if e < 0 {
				return nil, fmt.Errorf("polynomial: negative power at [%d][%d]", k, i)
			}
			if e > 0 {
				p.terms[k].idx = append(p.terms[k].idx, i)
				p.terms[k].pow = append(p.terms[k].pow, e)
			}
		}
	}
	return p, nil
}

// NewPolynomialFromDegree 在未导出 powers 时按标准顺序生成。
func NewPolynomialFromDegree(nInput, degree int, interactionOnly, includeBias bool) (*Polynomial, error) {
	powers, err := GeneratePowers(nInput, degree, interactionOnly, includeBias)
	if err != nil {
		return nil, err
	}
	return NewPolynomial(nInput, powers)
}

// GeneratePowers 生成标准顺序的幂次矩阵：
// 偏置项（可选），随后按次数 1..degree，每个次数内按特征下标的
// 字典序组合（interactionOnly 时为不重复组合，否则为可重复组合）。
func GeneratePowers(nInput, degree int, interactionOnly, includeBias bool) ([][]int, error) {
	if nInput <= 0 || degree < 0 {
		return nil, fmt.Errorf("polynomial: invalid n_input=%d degree=%d", nInput, degree)
	}
	var powers [][]int
	if includeBias {
		powers = append(powers, make([]int, nInput))
	}
	for d := 1; d <= degree; d++ {
		combo := make([]int, d)
		var walk func(pos, start int)
		walk = func(pos, start int) {
			if pos == d {
				row := make([]int, nInput)
				for _, i := range combo {
					row[i]++
				}
				powers = append(powers, row)
				return
			}
			for i := start; i < nInput; i++ {
				combo[pos] = i
				next := i
				if interactionOnly {
					next = i + 1
				}
				walk(pos+1, next)
			}
		}
		walk(0, 0)
	}
	if len(powers) == 0 {
		return nil, fmt.Errorf("polynomial: no output terms")
	}
	return powers, nil
}

// InputWidth 返回拟合时的输入列数
func (p *Polynomial) InputWidth() int { return p.NInput }

// OutputWidth 返回展开后的维度
func (p *Polynomial) OutputWidth() int { return len(p.terms) }

// Transform 展开单行向量。输入宽度与拟合宽度不一致时返回 DimensionMismatchError。
func (p *Polynomial) Transform(x []float64) ([]float64, error) {
	if len(x) != p.NInput {
		return nil, core.DimensionMismatchError(core.ModuleTransform, "polynomial", p.NInput, len(x))
	}
	out := make([]float64, len(p.terms))
	for k, t := range p.terms {
		v := 1.0
		for j, i := range t.idx {
			v *= ipow(x[i], t.pow[j])
		}
		out[k] = v
	}
	return out, nil
}

func ipow(x float64, n int) float64 {
	switch n {
	case 1:
		return x
	case 2:
		return x * x
	default:
		return math.Pow(x, float64(n))
	}
}
