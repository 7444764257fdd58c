package transform

import (
	"fmt"

	"github.com/rushteam/cardiokit/core"
)

// Chain 按固定顺序执行：多项式展开 → 标准化。
// 构建后只读，可在请求间共享。
type Chain struct {
	Poly   *Polynomial
	Scaler *Scaler
}

// NewChain 构建变换链并检查两段宽度衔接，不一致时返回 SchemaLoadError。
func NewChain(poly *Polynomial, scaler *Scaler) (*Chain, error) {
	c := &Chain{Poly: poly, Scaler: scaler}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// Check 校验多项式输出宽度等于标准化器的拟合宽度
func (c *Chain) Check() error {
	if c.Poly == nil || c.Scaler == nil {
		return core.SchemaLoadError(core.ModuleTransform, "chain", fmt.Errorf("polynomial and scaler are required"))
	}
	if c.Poly.OutputWidth() != c.Scaler.Width() {
		return core.SchemaLoadError(core.ModuleTransform, "chain",
			fmt.Errorf("polynomial outputs %d columns, scaler expects %d", c.Poly.OutputWidth(), c.Scaler.Width()))
	}
	return nil
}

// InputWidth 返回变换链期望的对齐列数
func (c *Chain) InputWidth() int { return c.Poly.InputWidth() }

// OutputWidth 返回最终向量维度（即模型输入维度）
func (c *Chain) OutputWidth() int { return c.Scaler.Width() }

// Transform 对已对齐的单行做展开与标准化
func (c *Chain) Transform(aligned core.Row) ([]float64, error) {
	expanded, err := c.Poly.Transform(aligned.Values)
	if err != nil {
		return nil, err
	}
	return c.Scaler.Transform(expanded)
}
