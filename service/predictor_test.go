package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rushteam/cardiokit/artifact"
	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/feature"
	"github.com/rushteam/cardiokit/pkg/dsl"
	"github.com/rushteam/cardiokit/source"
	"github.com/rushteam/cardiokit/store"
)

func loadBundle(t *testing.T) *artifact.Bundle {
	t.Helper()
	b, err := artifact.Load(context.Background(), artifact.NewFileSource("../testdata/bundle"))
	if err != nil {
		t.Fatalf("artifact.Load() error = %v", err)
	}
	return b
}

func sequentialIDs() func() string {
	var n atomic.Int32
	return func() string { return fmt.Sprintf("report-%d", n.Add(1)) }
}

func scenario() core.RawInput {
	return core.RawInput{
		"age": 63, "sex": 1, "cp": 3, "trestbps": 145, "chol": 233,
		"fbs": 1, "restecg": 0, "thalach": 150, "exang": 0,
		"oldpeak": 2.3, "slope": 0, "ca": 0, "thal": 1,
	}
}

// countingStore 统计缓存读写次数
type countingStore struct {
	core.Store
	gets, sets atomic.Int32
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.gets.Add(1)
	return s.Store.Get(ctx, key)
}

func (s *countingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.sets.Add(1)
	return s.Store.Set(ctx, key, value, ttl)
}

// closeCountingStore 统计 Close 调用次数
type closeCountingStore struct {
	core.Store
	closes atomic.Int32
}

func (s *closeCountingStore) Close() error {
	s.closes.Add(1)
	return s.Store.Close()
}

func TestPredictor_Close(t *testing.T) {
	owned := &closeCountingStore{Store: store.NewMemoryStore()}
	orig := newDefaultReports
	newDefaultReports = func() core.Store { return owned }
	t.Cleanup(func() { newDefaultReports = orig })

	injected := &closeCountingStore{Store: store.NewMemoryStore()}
	defer injected.Store.Close()

	tests := []struct {
		name         string
		opts         []Option
		wantOwned    int32
		wantInjected int32
	}{
		{name: "default reports store", wantOwned: 1},
		{name: "caller reports store", opts: []Option{WithReports(injected, time.Minute)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owned.closes.Store(0)
			p, err := NewPredictor(loadBundle(t), tt.opts...)
			if err != nil {
				t.Fatalf("NewPredictor() error = %v", err)
			}
			if err := p.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if got := owned.closes.Load(); got != tt.wantOwned {
				t.Errorf("default store closes = %d, want %d", got, tt.wantOwned)
			}
			if got := injected.closes.Load(); got != tt.wantInjected {
				t.Errorf("caller store closes = %d, want %d", got, tt.wantInjected)
			}
		})
	}
}

func TestPredictor_Predict(t *testing.T) {
	p, err := NewPredictor(loadBundle(t), WithIDGenerator(sequentialIDs()))
	if err != nil {
		t.Fatalf("NewPredictor() error = %v", err)
	}
	ctx := context.Background()

	res, err := p.Predict(ctx, scenario())
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if res.ID != "report-1" {
		t.Errorf("ID = %q, want report-1", res.ID)
	}
	if res.Overall.Percent != 60 || res.Overall.Message != "60% chance that you have heart disease" {
		t.Errorf("Overall = %+v", res.Overall)
	}

	saved, err := p.Report(ctx, res.ID)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if saved.Overall != res.Overall || len(saved.Predictions) != 5 || saved.Inputs["oldpeak"] != 2.3 {
		t.Errorf("Report() = %+v", saved)
	}

	if _, err := p.Report(ctx, "missing"); !core.IsNotFound(err) {
		t.Errorf("Report(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestPredictor_Validation(t *testing.T) {
	p, err := NewPredictor(loadBundle(t), WithRules(dsl.Rule{Name: "bp_range", Field: "trestbps", Expr: "trestbps <= 250.0"}))
	if err != nil {
		t.Fatalf("NewPredictor() error = %v", err)
	}
	tests := []struct {
		name      string
		mutate    func(core.RawInput)
		wantField string
	}{
		{"missing thal", func(r core.RawInput) { delete(r, "thal") }, "thal"},
		{"age above range", func(r core.RawInput) { r["age"] = 120 }, "age"},
		{"negative chol", func(r core.RawInput) { r["chol"] = -1 }, "chol"},
		{"extra rule", func(r core.RawInput) { r["trestbps"] = 300 }, "trestbps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := scenario()
			tt.mutate(raw)
			_, err := p.Predict(context.Background(), raw)
			if !core.IsValidation(err) {
				t.Fatalf("Predict() error = %v, want VALIDATION", err)
			}
			if de := core.GetDomainError(err); de.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", de.Field, tt.wantField)
			}
		})
	}
}

func TestPredictor_Cache(t *testing.T) {
	cache := &countingStore{Store: store.NewMemoryStore()}
	defer cache.Close()
	p, err := NewPredictor(loadBundle(t), WithCache(cache, time.Minute), WithIDGenerator(sequentialIDs()))
	if err != nil {
		t.Fatalf("NewPredictor() error = %v", err)
	}
	ctx := context.Background()

	first, err := p.Predict(ctx, scenario())
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	// 多余字段被忽略，指纹不变
	extra := scenario()
	extra["note"] = 42
	second, err := p.Predict(ctx, extra)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	if cache.gets.Load() != 2 || cache.sets.Load() != 1 {
		t.Errorf("cache gets/sets = %d/%d, want 2/1", cache.gets.Load(), cache.sets.Load())
	}
	if first.ID == second.ID {
		t.Error("cache hit reused report ID")
	}
	if first.Overall != second.Overall {
		t.Errorf("cached Overall = %+v, want %+v", second.Overall, first.Overall)
	}
	if _, ok := second.Inputs["note"]; ok {
		t.Error("unknown field leaked into result inputs")
	}
}

func TestPredictor_PredictPatient(t *testing.T) {
	b := loadBundle(t)

	p, _ := NewPredictor(b)
	if _, err := p.PredictPatient(context.Background(), "p-1"); !core.IsNotSupported(err) {
		t.Errorf("PredictPatient() without source error = %v, want NOT_SUPPORTED", err)
	}

	records := source.NewMemorySource()
	records.Put("p-1", scenario())
	mon := feature.NewMonitor(100)
	p, err := NewPredictor(b, WithRecordSource(records), WithMonitor(mon))
	if err != nil {
		t.Fatalf("NewPredictor() error = %v", err)
	}
	res, err := p.PredictPatient(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("PredictPatient() error = %v", err)
	}
	if res.Overall.Percent != 60 {
		t.Errorf("Percent = %d, want 60", res.Overall.Percent)
	}
	if _, err := p.PredictPatient(context.Background(), "p-404"); !core.IsNotFound(err) {
		t.Errorf("PredictPatient(p-404) error = %v, want NOT_FOUND", err)
	}
	if len(p.Monitor().Snapshot()) != 17 {
		t.Errorf("monitor columns = %d, want 17", len(p.Monitor().Snapshot()))
	}
}

func TestPredictor_PredictForm(t *testing.T) {
	p, _ := NewPredictor(loadBundle(t))
	form := map[string]string{
		"age": "63", "sex": "1", "cp": "3", "trestbps": "145", "chol": "233",
		"fbs": "1", "restecg": "0", "thalach": "150", "exang": "0",
		"oldpeak": "2.3", "slope": "0", "ca": "0", "thal": "1",
	}
	res, err := p.PredictForm(context.Background(), form)
	if err != nil {
		t.Fatalf("PredictForm() error = %v", err)
	}
	if res.Overall.Percent != 60 {
		t.Errorf("Percent = %d, want 60", res.Overall.Percent)
	}

	form["chol"] = "abc"
	_, err = p.PredictForm(context.Background(), form)
	if de := core.GetDomainError(err); de == nil || de.Code != core.ErrorCodeValidation || de.Field != "chol" {
		t.Errorf("PredictForm(chol=abc) error = %v, want VALIDATION on chol", err)
	}
}
