package artifact

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/cardiokit/schema"
)

// ManifestKey 是清单在工件目录中的默认键
const ManifestKey = "manifest.yaml"

// DefaultModelNames 是五个集成成员的展示名（集成顺序）
var DefaultModelNames = []string{
	"Logistic Regression",
	"SVM",
	"Decision Tree",
	"Random Forest",
	"XGBoost",
}

// Manifest 描述一组拟合工件（YAML）。
//
// 示例：
//
//	version: "2024-06-01"
//	expected_columns: expected_columns.json
//	polynomial: poly.json
//	scaler: scaler.json
//	models:
//	  - name: Logistic Regression
//	    path: models/logistic_regression.json
//	bins:
//	  age: {edges: [0, 40, 55, 70, 100], labels: [0, 1, 2, 3]}
type Manifest struct {
	Version         string       `yaml:"version"`
	ExpectedColumns string       `yaml:"expected_columns"`
	Polynomial      string       `yaml:"polynomial"`
	Scaler          string       `yaml:"scaler"`
	Models          []ModelRef   `yaml:"models"`
	Bins            BinsOverride `yaml:"bins"`
}

// ModelRef 指向一个模型文件，列表顺序即集成顺序
type ModelRef struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// BinsOverride 覆盖默认分桶
type BinsOverride struct {
	Age  *BinsSpec `yaml:"age"`
	Chol *BinsSpec `yaml:"chol"`
}

// BinsSpec 是分桶边界与标签
type BinsSpec struct {
	Edges  []float64 `yaml:"edges"`
	Labels []int     `yaml:"labels"`
}

// ParseManifest 读取 YAML 清单并补齐默认值
func ParseManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if m.ExpectedColumns == "" {
		m.ExpectedColumns = "expected_columns.json"
	}
	if m.Polynomial == "" {
		m.Polynomial = "poly.json"
	}
	if m.Scaler == "" {
		m.Scaler = "scaler.json"
	}
	if len(m.Models) == 0 {
		return nil, fmt.Errorf("manifest lists no models")
	}
	for i := range m.Models {
		if m.Models[i].Path == "" {
			return nil, fmt.Errorf("models[%d] has no path", i)
		}
		if m.Models[i].Name == "" {
			if i >= len(DefaultModelNames) {
				return nil, fmt.Errorf("models[%d] has no name", i)
			}
			m.Models[i].Name = DefaultModelNames[i]
		}
	}
	return &m, nil
}

// registryOptions 把分桶覆盖转为 schema.Option
func (m *Manifest) registryOptions() []schema.Option {
	var opts []schema.Option
	if b := m.Bins.Age; b != nil {
		opts = append(opts, schema.WithAgeBins(&schema.Bins{
			Column: schema.Age, Group: schema.AgeBins, Edges: b.Edges, Labels: b.Labels,
		}))
	}
	if b := m.Bins.Chol; b != nil {
		opts = append(opts, schema.WithCholBins(&schema.Bins{
			Column: schema.Chol, Group: schema.CholBins, Edges: b.Edges, Labels: b.Labels,
		}))
	}
	return opts
}
