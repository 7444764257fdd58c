package pipeline

import (
	"context"
	"log/slog"

	"github.com/rushteam/cardiokit/aggregate"
	"github.com/rushteam/cardiokit/ensemble"
	"github.com/rushteam/cardiokit/feature"
	"github.com/rushteam/cardiokit/transform"
)

// EngineerStage 派生交叉特征与分桶指示列
type EngineerStage struct {
	Engineer *feature.Engineer
	Monitor  *feature.Monitor // 可为空
}

func (s *EngineerStage) Name() string { return "feature.engineer" }
func (s *EngineerStage) Kind() Kind   { return KindEngineer }

func (s *EngineerStage) Process(_ context.Context, f *Frame) error {
	row, err := s.Engineer.Engineer(f.Raw)
	if err != nil {
		return err
	}
	f.Engineered = row
	if s.Monitor != nil {
		s.Monitor.Record(row)
	}
	return nil
}

// AlignStage 把工程特征行投影到期望列
type AlignStage struct {
	Expected []string
	Logger   *slog.Logger // 可为空；非空时以 debug 级别记录被丢弃的列
}

func (s *AlignStage) Name() string { return "feature.align" }
func (s *AlignStage) Kind() Kind   { return KindAlign }

func (s *AlignStage) Process(_ context.Context, f *Frame) error {
	f.Aligned = feature.Align(f.Engineered, s.Expected)
	if s.Logger != nil {
		if dropped := feature.Dropped(f.Engineered, s.Expected); len(dropped) > 0 {
			s.Logger.Debug("align dropped columns", "dropped", dropped)
		}
	}
	return nil
}

// TransformStage 执行多项式展开与标准化
type TransformStage struct {
	Chain *transform.Chain
}

func (s *TransformStage) Name() string { return "transform.chain" }
func (s *TransformStage) Kind() Kind   { return KindTransform }

func (s *TransformStage) Process(_ context.Context, f *Frame) error {
	vec, err := s.Chain.Transform(f.Aligned)
	if err != nil {
		return err
	}
	f.Vector = vec
	return nil
}

// PredictStage 把向量分发给集成内全部模型
type PredictStage struct {
	Ensemble *ensemble.Ensemble
}

func (s *PredictStage) Name() string { return "ensemble.predict" }
func (s *PredictStage) Kind() Kind   { return KindPredict }

func (s *PredictStage) Process(ctx context.Context, f *Frame) error {
	votes, err := s.Ensemble.Predict(ctx, f.Vector)
	if err != nil {
		return err
	}
	f.Votes = votes
	return nil
}

// AggregateStage 汇总投票
type AggregateStage struct{}

func (s *AggregateStage) Name() string { return "aggregate" }
func (s *AggregateStage) Kind() Kind   { return KindAggregate }

func (s *AggregateStage) Process(_ context.Context, f *Frame) error {
	preds, overall, err := aggregate.Aggregate(f.Votes)
	if err != nil {
		return err
	}
	f.Predictions = preds
	f.Overall = overall
	return nil
}
