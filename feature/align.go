package feature

import "github.com/rushteam/cardiokit/core"

// Align 按期望列重排单行表：
//   - 期望列存在于 row 中：复制值
//   - 期望列不存在：补 0（单行 one-hot 不可能产出全部指示列）
//   - row 中多余的列：丢弃
//
// 输出列顺序与数量严格等于 expected，对已对齐的行幂等。
func Align(row core.Row, expected []string) core.Row {
	values := row.AsMap()
	out := core.Row{
		Columns: append([]string(nil), expected...),
		Values:  make([]float64, len(expected)),
	}
	for i, col := range expected {
		if v, ok := values[col]; ok {
			out.Values[i] = v
		}
	}
	return out
}

// Dropped 返回 row 中不在 expected 内、会被 Align 丢弃的列（用于诊断日志）
func Dropped(row core.Row, expected []string) []string {
	keep := make(map[string]struct{}, len(expected))
	for _, c := range expected {
		keep[c] = struct{}{}
	}
	var dropped []string
	for _, c := range row.Columns {
		if _, ok := keep[c]; !ok {
			dropped = append(dropped, c)
		}
	}
	return dropped
}
