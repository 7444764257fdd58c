package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rushteam/cardiokit/core"
)

// FormatVersion 是当前支持的模型格式版本
const FormatVersion = 1

type header struct {
	FormatVersion int    `json:"format_version"`
	Kind          string `json:"kind"`
	NFeatures     int    `json:"n_features"`
	Classes       []int  `json:"classes"`
}

type builder interface {
	build(h header, name string) (Classifier, error)
}

func newBuilder(kind string) (builder, error) {
	switch kind {
	case KindLogisticRegression:
		return &logisticSpec{}, nil
	case KindSVM:
		return &svmSpec{}, nil
	case KindDecisionTree:
		return &treeSpec{}, nil
	case KindRandomForest:
		return &forestSpec{}, nil
	case KindGradientBoosting:
		return &boostingSpec{}, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", kind)
	}
}

// Load 读取一个 JSON 模型，按 kind 分发构建。
// 格式版本不支持、kind 未知或参数不一致时返回 SchemaLoadError。
func Load(r io.Reader, name string) (Classifier, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, core.SchemaLoadError(core.ModuleModel, name, err)
	}
	m, err := decode(data, name)
	if err != nil {
		return nil, core.SchemaLoadError(core.ModuleModel, name, err)
	}
	return m, nil
}

// LoadFile 从本地文件读取模型
func LoadFile(path, name string) (Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.SchemaLoadError(core.ModuleModel, name, err)
	}
	defer f.Close()
	return Load(f, name)
}

func decode(data []byte, name string) (Classifier, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if h.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported format_version %d", h.FormatVersion)
	}
	b, err := newBuilder(h.Kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("parse %s: %w", h.Kind, err)
	}
	return b.build(h, name)
}
