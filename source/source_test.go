package source

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/feast"
	"github.com/rushteam/cardiokit/schema"
)

type fakeFeast struct {
	rows map[string]map[string]interface{}
	err  error
	last *feast.GetOnlineFeaturesRequest
}

func (f *fakeFeast) GetOnlineFeatures(_ context.Context, req *feast.GetOnlineFeaturesRequest) (*feast.GetOnlineFeaturesResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	id, _ := req.EntityRows[0]["patient_id"].(string)
	values := make(map[string]interface{})
	for _, name := range req.Features {
		if v, ok := f.rows[id][name]; ok {
			values[name] = v
		}
	}
	return &feast.GetOnlineFeaturesResponse{
		FeatureVectors: []feast.FeatureVector{{Values: values, EntityRow: req.EntityRows[0]}},
	}, nil
}

func (f *fakeFeast) Close() error { return nil }

func patientRow() map[string]interface{} {
	vals := map[string]interface{}{
		"age": float64(63), "sex": float64(1), "cp": float64(3), "trestbps": float64(145), "chol": float64(233),
		"fbs": float64(1), "restecg": float64(0), "thalach": float64(150), "exang": float64(0),
		"oldpeak": 2.3, "slope": float64(0), "ca": float64(0), "thal": "1",
	}
	out := make(map[string]interface{}, len(vals))
	for k, v := range vals {
		out["patient_vitals:"+k] = v
	}
	return out
}

func TestFeastSource_Fetch(t *testing.T) {
	broken := patientRow()
	delete(broken, "patient_vitals:ca")
	garbled := patientRow()
	garbled["patient_vitals:chol"] = "high"

	client := &fakeFeast{rows: map[string]map[string]interface{}{
		"p-1": patientRow(),
		"p-2": broken,
		"p-3": garbled,
	}}
	src := NewFeastSource(client, "patient_vitals", WithProject("heart"))

	raw, err := src.Fetch(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(raw) != len(schema.RawFeatures) || raw["oldpeak"] != 2.3 || raw["thal"] != 1 {
		t.Errorf("Fetch() = %v", raw)
	}
	if client.last.Project != "heart" || len(client.last.Features) != 13 || client.last.Features[0] != "patient_vitals:age" {
		t.Errorf("request = %+v", client.last)
	}

	tests := []struct {
		id        string
		check     func(error) bool
		wantField string
	}{
		{"p-404", core.IsNotFound, "p-404"},
		{"p-2", core.IsValidation, "ca"},
		{"p-3", core.IsValidation, "chol"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := src.Fetch(context.Background(), tt.id)
			if !tt.check(err) {
				t.Fatalf("Fetch() error = %v", err)
			}
			if de := core.GetDomainError(err); de.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", de.Field, tt.wantField)
			}
		})
	}
}

func TestFeastSource_Unavailable(t *testing.T) {
	boom := errors.New("connection refused")
	src := NewFeastSource(&fakeFeast{err: boom}, "patient_vitals")
	_, err := src.Fetch(context.Background(), "p-1")
	if !core.IsUnavailable(err) || !errors.Is(err, boom) {
		t.Errorf("Fetch() error = %v, want UNAVAILABLE wrapping cause", err)
	}
}

func TestMemorySource(t *testing.T) {
	src := NewMemorySource()
	src.Put("p-1", core.RawInput{"age": 40})
	raw, err := src.Fetch(context.Background(), "p-1")
	if err != nil || raw["age"] != 40 {
		t.Fatalf("Fetch() = %v, %v", raw, err)
	}
	raw["age"] = 99
	again, _ := src.Fetch(context.Background(), "p-1")
	if again["age"] != 40 {
		t.Error("Fetch() returned shared map")
	}
	if _, err := src.Fetch(context.Background(), "nope"); !core.IsNotFound(err) {
		t.Errorf("Fetch(nope) error = %v, want NOT_FOUND", err)
	}
}
