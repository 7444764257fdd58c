package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
	"time"
)

// RawInput 是一次请求提交的原始临床测量值：字段名 -> 数值。
// 进入推理链路之前由调用方完成解析与校验，链路内部只读。
type RawInput map[string]float64

// Get 读取字段值
func (r RawInput) Get(name string) (float64, bool) {
	v, ok := r[name]
	return v, ok
}

// Clone 返回一份独立副本
func (r RawInput) Clone() RawInput {
	out := make(RawInput, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Fingerprint 返回输入的稳定摘要（按字段名排序后对 name + float64 bits 做 SHA-256），
// 用作结果缓存 key。同一输入总是得到同一摘要。
func (r RawInput) Fingerprint() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	var buf [8]byte
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(r[k]))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Row 是有序的单行表：Columns 与 Values 一一对应。
// 特征工程的输出（EngineeredRow）与对齐后的输出（AlignedRow）都使用此结构。
type Row struct {
	Columns []string
	Values  []float64
}

// Len 返回列数
func (r Row) Len() int { return len(r.Columns) }

// Get 按列名读取值
func (r Row) Get(col string) (float64, bool) {
	for i, c := range r.Columns {
		if c == col {
			return r.Values[i], true
		}
	}
	return 0, false
}

// Append 追加一列（同名列不去重，由调用方保证）
func (r *Row) Append(col string, v float64) {
	r.Columns = append(r.Columns, col)
	r.Values = append(r.Values, v)
}

// AsMap 转为 列名 -> 值
func (r Row) AsMap() map[string]float64 {
	out := make(map[string]float64, len(r.Columns))
	for i, c := range r.Columns {
		out[c] = r.Values[i]
	}
	return out
}

// Prediction 是单个模型的预测：二分类标签及其文字结论。
type Prediction struct {
	Model   string `json:"model"`
	Label   int    `json:"label"`
	Verdict string `json:"verdict"`
}

// PredictionSet 按集成顺序保存每个模型的预测，创建后不再修改。
type PredictionSet []Prediction

// Labels 返回 模型名 -> 标签
func (s PredictionSet) Labels() map[string]int {
	out := make(map[string]int, len(s))
	for _, p := range s {
		out[p.Model] = p.Label
	}
	return out
}

// Verdicts 返回 模型名 -> 结论
func (s PredictionSet) Verdicts() map[string]string {
	out := make(map[string]string, len(s))
	for _, p := range s {
		out[p.Model] = p.Verdict
	}
	return out
}

// Positives 返回预测为 1 的模型数
func (s PredictionSet) Positives() int {
	n := 0
	for _, p := range s {
		if p.Label == 1 {
			n++
		}
	}
	return n
}

// AggregateResult 是投票汇总：阳性数、模型总数、百分比及展示文案。
type AggregateResult struct {
	Positives int    `json:"positives"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
	Message   string `json:"message"`
}

// Result 是一次推理的完整结果，供 HTTP 层与报告渲染使用。
type Result struct {
	ID          string          `json:"id"`
	Version     string          `json:"version,omitempty"`
	Inputs      RawInput        `json:"inputs"`
	Overall     AggregateResult `json:"overall"`
	Predictions PredictionSet   `json:"predictions"`
	CreatedAt   time.Time       `json:"created_at"`
}
