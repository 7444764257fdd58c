// Package aggregate 把集成投票汇总为逐模型结论与总体百分比。
package aggregate

import (
	"fmt"
	"math"

	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/ensemble"
)

// 结论文案
const (
	VerdictHigh = "High Chance of Heart Disease"
	VerdictLow  = "Low Chance of Heart Disease"
)

// MessageFormat 是总体结论的文案模板
const MessageFormat = "%d%% chance that you have heart disease"

// Verdict 把标签映射为文案：1 为高风险，0 为低风险。
func Verdict(label int) string {
	if label == 1 {
		return VerdictHigh
	}
	return VerdictLow
}

// Percent 计算 100 × positives / total，四舍六入五成双。
func Percent(positives, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.RoundToEven(100 * float64(positives) / float64(total)))
}

// Aggregate 汇总投票。投票为空或标签不是 0/1 时返回 ModelInferenceError。
func Aggregate(votes []ensemble.Vote) (core.PredictionSet, core.AggregateResult, error) {
	if len(votes) == 0 {
		return nil, core.AggregateResult{}, core.ModelInferenceError("ensemble", fmt.Errorf("empty ensemble"))
	}
	preds := make(core.PredictionSet, 0, len(votes))
	positives := 0
	for _, v := range votes {
		if v.Label != 0 && v.Label != 1 {
			return nil, core.AggregateResult{}, core.ModelInferenceError(v.Model, fmt.Errorf("label %d is not binary", v.Label))
		}
		positives += v.Label
		preds = append(preds, core.Prediction{Model: v.Model, Label: v.Label, Verdict: Verdict(v.Label)})
	}
	pct := Percent(positives, len(votes))
	return preds, core.AggregateResult{
		Positives: positives,
		Total:     len(votes),
		Percent:   pct,
		Message:   fmt.Sprintf(MessageFormat, pct),
	}, nil
}
