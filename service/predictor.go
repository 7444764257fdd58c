// Package service 是推理链路的门面：输入校验、结果缓存、报告保存、按病人 ID 推理。
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rushteam/cardiokit/artifact"
	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/feature"
	"github.com/rushteam/cardiokit/pipeline"
	"github.com/rushteam/cardiokit/pkg/dsl"
	"github.com/rushteam/cardiokit/source"
	"github.com/rushteam/cardiokit/store"
)

const (
	resultKeyPrefix = "result:"
	reportKeyPrefix = "report:"
)

// newDefaultReports 创建未设置 WithReports 时使用的报告存储
var newDefaultReports = func() core.Store { return store.NewMemoryStore() }

// Predictor 持有只读的 Bundle 与 Pipeline，可被多个请求并发调用。
type Predictor struct {
	bundle    *artifact.Bundle
	pipeline  *pipeline.Pipeline
	validator *feature.Validator
	monitor   *feature.Monitor

	cache     core.Store // 可为空：不缓存
	cacheTTL  time.Duration
	reports   core.Store
	ownsStore bool // reports 由 NewPredictor 创建，Close 时释放
	reportTTL time.Duration
	records   source.RecordSource // 可为空：不支持按病人 ID 推理

	logger *slog.Logger
	newID  func() string
}

// Option 修改 Predictor 的可选配置
type Option func(*config)

type config struct {
	cache         core.Store
	cacheTTL      time.Duration
	reports       core.Store
	reportTTL     time.Duration
	records       source.RecordSource
	rules         []dsl.Rule
	monitor       *feature.Monitor
	logger        *slog.Logger
	maxConcurrent int
	newID         func() string
}

// WithCache 按输入指纹缓存推理结果
func WithCache(s core.Store, ttl time.Duration) Option {
	return func(c *config) { c.cache, c.cacheTTL = s, ttl }
}

// WithReports 设置报告存储（默认内存存储，24 小时过期）
func WithReports(s core.Store, ttl time.Duration) Option {
	return func(c *config) { c.reports, c.reportTTL = s, ttl }
}

// WithRecordSource 设置病人记录源
func WithRecordSource(src source.RecordSource) Option {
	return func(c *config) { c.records = src }
}

// WithRules 追加输入校验规则
func WithRules(rules ...dsl.Rule) Option {
	return func(c *config) { c.rules = append(c.rules, rules...) }
}

// WithMonitor 记录特征使用情况
func WithMonitor(m *feature.Monitor) Option {
	return func(c *config) { c.monitor = m }
}

// WithLogger 设置日志
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMaxConcurrent 限制集成内并发预测的模型数
func WithMaxConcurrent(n int) Option {
	return func(c *config) { c.maxConcurrent = n }
}

// WithIDGenerator 替换报告 ID 生成器（默认 UUIDv4）
func WithIDGenerator(fn func() string) Option {
	return func(c *config) { c.newID = fn }
}

// NewPredictor 创建 Predictor。校验规则无法编译时返回 SchemaLoadError。
// 未设置 WithReports 时使用内存存储，调用方应在不再使用时调用 Close。
func NewPredictor(b *artifact.Bundle, opts ...Option) (*Predictor, error) {
	c := &config{
		reportTTL: 24 * time.Hour,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	validator, err := feature.NewValidator(b.Registry, c.rules...)
	if err != nil {
		return nil, err
	}
	p, err := pipeline.New(b,
		pipeline.WithMonitor(c.monitor),
		pipeline.WithLogger(c.logger),
		pipeline.WithMaxConcurrent(c.maxConcurrent),
	)
	if err != nil {
		return nil, err
	}

	owns := c.reports == nil
	if owns {
		c.reports = newDefaultReports()
	}

	return &Predictor{
		bundle:    b,
		pipeline:  p,
		validator: validator,
		monitor:   c.monitor,
		cache:     c.cache,
		cacheTTL:  c.cacheTTL,
		reports:   c.reports,
		ownsStore: owns,
		reportTTL: c.reportTTL,
		records:   c.records,
		logger:    c.logger,
		newID:     c.newID,
	}, nil
}

// Close 释放 Predictor 自己创建的默认报告存储。
// 通过 WithReports、WithCache 传入的存储由调用方负责关闭。可重复调用。
func (p *Predictor) Close() error {
	if p.ownsStore {
		return p.reports.Close()
	}
	return nil
}

// Bundle 返回加载的工件
func (p *Predictor) Bundle() *artifact.Bundle { return p.bundle }

// Validator 返回输入校验器（HTTP 层用它解析表单）
func (p *Predictor) Validator() *feature.Validator { return p.validator }

// Monitor 返回特征监控，未配置时为 nil
func (p *Predictor) Monitor() *feature.Monitor { return p.monitor }

// Predict 校验输入并推理，结果保存为可下载的报告。
// 同一输入（按指纹）命中缓存时跳过推理，但仍分配新的报告 ID。
func (p *Predictor) Predict(ctx context.Context, raw core.RawInput) (*core.Result, error) {
	if err := p.validator.Validate(raw); err != nil {
		return nil, err
	}
	clean := make(core.RawInput, len(p.validator.Fields()))
	for _, f := range p.validator.Fields() {
		clean[f] = raw[f]
	}

	key := resultKeyPrefix + p.bundle.Version + ":" + clean.Fingerprint()
	res, hit := p.cached(ctx, key)
	if !hit {
		var err error
		res, err = p.pipeline.Run(ctx, clean)
		if err != nil {
			return nil, err
		}
		p.remember(ctx, key, res)
	}

	res.ID = p.newID()
	res.CreatedAt = time.Now().UTC()
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := p.reports.Set(ctx, reportKeyPrefix+res.ID, payload, p.reportTTL); err != nil {
		return nil, &core.DomainError{
			Module:  core.ModuleService,
			Code:    core.ErrorCodeUnavailable,
			Message: "save report failed",
			Field:   res.ID,
			Err:     err,
		}
	}

	p.logger.LogAttrs(ctx, slog.LevelInfo, "prediction",
		slog.String("report_id", res.ID),
		slog.Int("percent", res.Overall.Percent),
		slog.Int("positives", res.Overall.Positives),
		slog.Bool("cache_hit", hit))
	return res, nil
}

// PredictForm 解析字符串表单后推理
func (p *Predictor) PredictForm(ctx context.Context, form map[string]string) (*core.Result, error) {
	raw, err := p.validator.ParseForm(form)
	if err != nil {
		return nil, err
	}
	return p.Predict(ctx, raw)
}

// PredictPatient 从病人记录源取数后推理
func (p *Predictor) PredictPatient(ctx context.Context, patientID string) (*core.Result, error) {
	if p.records == nil {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeNotSupported, "record source not configured")
	}
	raw, err := p.records.Fetch(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return p.Predict(ctx, raw)
}

// Report 按报告 ID 读取结果，不存在或已过期时返回 NOT_FOUND
func (p *Predictor) Report(ctx context.Context, id string) (*core.Result, error) {
	data, err := p.reports.Get(ctx, reportKeyPrefix+id)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NotFoundError(core.ModuleService, "report "+id)
		}
		return nil, err
	}
	var res core.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &res, nil
}

// cached 读取缓存；缓存只做加速，读取失败按未命中处理
func (p *Predictor) cached(ctx context.Context, key string) (*core.Result, bool) {
	if p.cache == nil {
		return nil, false
	}
	data, err := p.cache.Get(ctx, key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			p.logger.Warn("cache get failed", "store", p.cache.Name(), "error", err)
		}
		return nil, false
	}
	var res core.Result
	if err := json.Unmarshal(data, &res); err != nil {
		p.logger.Warn("cache entry corrupted", "key", key, "error", err)
		return nil, false
	}
	return &res, true
}

func (p *Predictor) remember(ctx context.Context, key string, res *core.Result) {
	if p.cache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, key, data, p.cacheTTL); err != nil {
		p.logger.Warn("cache set failed", "store", p.cache.Name(), "error", err)
	}
}
