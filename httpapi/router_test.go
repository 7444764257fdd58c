package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rushteam/cardiokit/artifact"
	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/feature"
	"github.com/rushteam/cardiokit/service"
	"github.com/rushteam/cardiokit/source"
)

const scenarioJSON = `{"age":63,"sex":1,"cp":3,"trestbps":145,"chol":233,"fbs":1,"restecg":0,
"thalach":150,"exang":0,"oldpeak":2.3,"slope":0,"ca":0,"thal":1}`

func scenarioForm() url.Values {
	return url.Values{
		"age": {"63"}, "sex": {"1"}, "cp": {"3"}, "trestbps": {"145"}, "chol": {"233"},
		"fbs": {"1"}, "restecg": {"0"}, "thalach": {"150"}, "exang": {"0"},
		"oldpeak": {"2.3"}, "slope": {"0"}, "ca": {"0"}, "thal": {"1"},
	}
}

func newServer(t *testing.T, opts ...service.Option) *httptest.Server {
	t.Helper()
	b, err := artifact.Load(context.Background(), artifact.NewFileSource("../testdata/bundle"))
	if err != nil {
		t.Fatalf("artifact.Load() error = %v", err)
	}
	pred, err := service.NewPredictor(b, opts...)
	if err != nil {
		t.Fatalf("NewPredictor() error = %v", err)
	}
	t.Cleanup(func() { _ = pred.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewRouter(pred, Options{Logger: logger}))
	t.Cleanup(srv.Close)
	return srv
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("GET /health = %d %q", resp.StatusCode, body)
	}
}

func TestPredict(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"json", "application/json", scenarioJSON},
		{"json strings", "application/json", strings.ReplaceAll(scenarioJSON, `"oldpeak":2.3`, `"oldpeak":"2.3"`)},
		{"form", "application/x-www-form-urlencoded", scenarioForm().Encode()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/predict", tt.contentType, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			res := decode[core.Result](t, resp)
			if res.ID == "" {
				t.Error("missing report id")
			}
			if res.Overall.Percent != 60 || res.Overall.Message != "60% chance that you have heart disease" {
				t.Errorf("overall = %+v", res.Overall)
			}
			if len(res.Predictions) != 5 || res.Predictions[0].Model != "Logistic Regression" {
				t.Errorf("predictions = %+v", res.Predictions)
			}
		})
	}
}

func TestPredictErrors(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantField   string
	}{
		{"malformed json", "application/json", `{"age":`, http.StatusBadRequest, ""},
		{"missing field", "application/json", `{"age":63}`, http.StatusBadRequest, "sex"},
		{"non numeric", "application/x-www-form-urlencoded",
			strings.Replace(scenarioForm().Encode(), "chol=233", "chol=high", 1), http.StatusBadRequest, "chol"},
		{"age out of range", "application/json",
			strings.Replace(scenarioJSON, `"age":63`, `"age":120`, 1), http.StatusBadRequest, "age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/predict", tt.contentType, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			er := decode[ErrorResponse](t, resp)
			if er.Field != tt.wantField {
				t.Errorf("field = %q, want %q (%+v)", er.Field, tt.wantField, er)
			}
		})
	}
}

func TestReportDownload(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/v1/predict", "application/json", strings.NewReader(scenarioJSON))
	if err != nil {
		t.Fatal(err)
	}
	res := decode[core.Result](t, resp)

	tests := []struct {
		format   string
		filename string
		contains string
	}{
		{"", "heart_disease_report.md", "# Heart Disease Prediction Report"},
		{"text", "heart_disease_report.txt", "Heart Disease Prediction Report"},
	}
	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/v1/reports/" + res.ID + "?format=" + tt.format)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			cd := resp.Header.Get("Content-Disposition")
			if !strings.HasPrefix(cd, "attachment") || !strings.Contains(cd, tt.filename) {
				t.Errorf("Content-Disposition = %q", cd)
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tt.contains) || !strings.Contains(string(body), "60% chance") {
				t.Errorf("body = %s", body)
			}
		})
	}

	t.Run("unknown report", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/reports/nope")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/reports/" + res.ID + "?format=pdf")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestPredictPatient(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		srv := newServer(t)
		resp, err := http.Get(srv.URL + "/v1/patients/p1/predict")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotImplemented {
			t.Errorf("status = %d, want 501", resp.StatusCode)
		}
	})

	records := source.NewMemorySource()
	records.Put("p1", core.RawInput{
		"age": 68, "sex": 1, "cp": 3, "trestbps": 170, "chol": 300,
		"fbs": 1, "restecg": 1, "thalach": 100, "exang": 1,
		"oldpeak": 4.5, "slope": 0, "ca": 3, "thal": 3,
	})
	srv := newServer(t, service.WithRecordSource(records))

	resp, err := http.Get(srv.URL + "/v1/patients/p1/predict")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if res := decode[core.Result](t, resp); res.Overall.Percent != 100 {
		t.Errorf("overall = %+v", res.Overall)
	}

	resp, err = http.Get(srv.URL + "/v1/patients/unknown/predict")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown patient status = %d, want 404", resp.StatusCode)
	}
}

func TestFeatureStats(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/v1/stats/features")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status without monitor = %d, want 501", resp.StatusCode)
	}

	srv = newServer(t, service.WithMonitor(feature.NewMonitor(10)))
	if _, err := http.Post(srv.URL+"/v1/predict", "application/json", strings.NewReader(scenarioJSON)); err != nil {
		t.Fatal(err)
	}
	resp, err = http.Get(srv.URL + "/v1/stats/features")
	if err != nil {
		t.Fatal(err)
	}
	body := decode[struct {
		Features []feature.FeatureStats `json:"features"`
	}](t, resp)
	found := false
	for _, f := range body.Features {
		if f.FeatureName == "thalach_oldpeak" {
			found = true
			if f.UsageCount != 1 || f.FeatureStatistics == nil || f.Max != 345 {
				t.Errorf("thalach_oldpeak stats = %+v", f)
			}
		}
	}
	if !found {
		t.Errorf("thalach_oldpeak missing from %+v", body.Features)
	}
}

func TestSchema(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/v1/schema")
	if err != nil {
		t.Fatal(err)
	}
	s := decode[SchemaResponse](t, resp)
	if s.Version != "2024-06-01" || len(s.Raw) != 13 || len(s.Expected) != 22 || len(s.Models) != 5 {
		t.Errorf("schema = %+v", s)
	}
}

func TestCORS(t *testing.T) {
	srv := newServer(t)
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/v1/predict", nil)
	req.Header.Set("Origin", "https://clinic.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", core.ValidationError("age", "bad"), http.StatusBadRequest},
		{"not found", core.NotFoundError(core.ModuleService, "x"), http.StatusNotFound},
		{"not supported", core.NewDomainError(core.ModuleService, core.ErrorCodeNotSupported, "x"), http.StatusNotImplemented},
		{"unavailable", core.NewDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "x"), http.StatusServiceUnavailable},
		{"dimension", core.DimensionMismatchError(core.ModuleTransform, "scaler", 3, 2), http.StatusInternalServerError},
		{"inference", core.ModelInferenceError("SVM", errors.New("boom")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
