package cardiokit

import (
	"context"
	"testing"

	"github.com/rushteam/cardiokit/core"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	pred, err := Open(ctx, "testdata/bundle")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	res, err := pred.Predict(ctx, core.RawInput{
		"age": 63, "sex": 1, "cp": 3, "trestbps": 145, "chol": 233,
		"fbs": 1, "restecg": 0, "thalach": 150, "exang": 0,
		"oldpeak": 2.3, "slope": 0, "ca": 0, "thal": 1,
	})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if res.Overall.Percent != 60 {
		t.Errorf("percent = %d, want 60", res.Overall.Percent)
	}

	if _, err := Open(ctx, t.TempDir()); !core.IsSchemaLoad(err) {
		t.Errorf("Open(empty dir) error = %v, want SCHEMA_LOAD", err)
	}
}
