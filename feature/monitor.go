package feature

import (
	"sort"
	"sync"

	"github.com/rushteam/cardiokit/core"
)

// FeatureStats 单个特征列的使用情况
type FeatureStats struct {
	FeatureName string `json:"feature_name"`
	UsageCount  int64  `json:"usage_count"`
	*FeatureStatistics
}

// Monitor 是内存特征监控实现，记录每列的使用次数与最近样本的分布。
// 生产环境可以替换为 Prometheus 等外部监控系统。
type Monitor struct {
	mu         sync.Mutex
	counts     map[string]int64
	samples    map[string][]float64
	maxSamples int
}

// NewMonitor 创建特征监控，maxSamples 为每列保留的最大样本数
func NewMonitor(maxSamples int) *Monitor {
	if maxSamples <= 0 {
		maxSamples = 1000
	}
	return &Monitor{
		counts:     make(map[string]int64),
		samples:    make(map[string][]float64),
		maxSamples: maxSamples,
	}
}

// Record 记录一行特征（通常是特征工程输出）
func (m *Monitor) Record(row core.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, col := range row.Columns {
		m.counts[col]++
		values := m.samples[col]
		if len(values) >= m.maxSamples {
			values = values[1:]
		}
		m.samples[col] = append(values, row.Values[i])
	}
}

// Stats 返回某列的统计；未记录过的列返回 NOT_FOUND
func (m *Monitor) Stats(col string) (*FeatureStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.counts[col]
	if !ok {
		return nil, core.NotFoundError(core.ModuleFeature, col)
	}
	return &FeatureStats{
		FeatureName:       col,
		UsageCount:        n,
		FeatureStatistics: ComputeStatistics(m.samples[col]),
	}, nil
}

// Snapshot 返回全部列的统计（按列名排序）
func (m *Monitor) Snapshot() []*FeatureStats {
	m.mu.Lock()
	cols := make([]string, 0, len(m.counts))
	for c := range m.counts {
		cols = append(cols, c)
	}
	m.mu.Unlock()

	sort.Strings(cols)
	out := make([]*FeatureStats, 0, len(cols))
	for _, c := range cols {
		if s, err := m.Stats(c); err == nil {
			out = append(out, s)
		}
	}
	return out
}
