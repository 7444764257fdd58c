// Package artifact 负责读取并校验一组拟合工件（期望列、多项式展开、标准化器、模型），
// 组装为只读的 Bundle。工件缺失、损坏或彼此不兼容时返回 SchemaLoadError，
// 进程应在提供服务前失败退出。
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/ensemble"
	"github.com/rushteam/cardiokit/model"
	"github.com/rushteam/cardiokit/schema"
	"github.com/rushteam/cardiokit/transform"
)

// Bundle 是加载完成的推理资源，加载后只读，可在所有请求间共享。
type Bundle struct {
	Version  string
	Registry *schema.Registry
	Chain    *transform.Chain
	Ensemble *ensemble.Ensemble
}

// Load 从 src 读取清单及其引用的全部工件，并校验一致性：
//   - 期望列名均可由特征工程产出，且包含全部原始字段
//   - 期望列数 == 多项式输入宽度
//   - 多项式输出宽度 == 标准化器宽度
//   - 每个模型的输入维度 == 标准化器宽度
func Load(ctx context.Context, src Source) (*Bundle, error) {
	var manifest *Manifest
	if err := read(ctx, src, ManifestKey, func(r io.Reader) (err error) {
		manifest, err = ParseManifest(r)
		return err
	}); err != nil {
		return nil, core.SchemaLoadError(core.ModuleArtifact, ManifestKey, err)
	}

	var columns []string
	if err := read(ctx, src, manifest.ExpectedColumns, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&columns)
	}); err != nil {
		return nil, core.SchemaLoadError(core.ModuleArtifact, manifest.ExpectedColumns, err)
	}
	reg, err := schema.NewRegistry(columns, manifest.registryOptions()...)
	if err != nil {
		return nil, err
	}
	if unknown, absent := reg.Unproducible(); len(unknown) > 0 || len(absent) > 0 {
		return nil, core.SchemaLoadError(core.ModuleArtifact, manifest.ExpectedColumns,
			fmt.Errorf("column names do not match feature engineering: unknown %v, missing raw fields %v", unknown, absent))
	}

	var poly *transform.Polynomial
	if err := read(ctx, src, manifest.Polynomial, func(r io.Reader) (err error) {
		poly, err = transform.DecodePolynomial(r)
		return err
	}); err != nil {
		return nil, core.SchemaLoadError(core.ModuleTransform, manifest.Polynomial, err)
	}
	if poly.InputWidth() != reg.Width() {
		return nil, core.SchemaLoadError(core.ModuleTransform, manifest.Polynomial,
			fmt.Errorf("polynomial expects %d inputs, expected_columns has %d", poly.InputWidth(), reg.Width()))
	}

	var scaler *transform.Scaler
	if err := read(ctx, src, manifest.Scaler, func(r io.Reader) (err error) {
		scaler, err = transform.DecodeScaler(r)
		return err
	}); err != nil {
		return nil, core.SchemaLoadError(core.ModuleTransform, manifest.Scaler, err)
	}

	chain, err := transform.NewChain(poly, scaler)
	if err != nil {
		return nil, err
	}

	members := make([]model.Classifier, 0, len(manifest.Models))
	for _, ref := range manifest.Models {
		var m model.Classifier
		if err := read(ctx, src, ref.Path, func(r io.Reader) (err error) {
			m, err = model.Load(r, ref.Name)
			return err
		}); err != nil {
			if core.IsSchemaLoad(err) {
				return nil, err
			}
			return nil, core.SchemaLoadError(core.ModuleModel, ref.Name, err)
		}
		members = append(members, m)
	}
	ens, err := ensemble.New(members...)
	if err != nil {
		return nil, err
	}
	if err := ens.Check(chain.OutputWidth()); err != nil {
		return nil, err
	}

	return &Bundle{
		Version:  manifest.Version,
		Registry: reg,
		Chain:    chain,
		Ensemble: ens,
	}, nil
}

func read(ctx context.Context, src Source, key string, decode func(io.Reader) error) error {
	rc, err := src.Open(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()
	return decode(rc)
}
