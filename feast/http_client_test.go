package feast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeFeatureServer 模拟 feast serve 的 /get-online-features
func fakeFeatureServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	data := map[string]map[string]interface{}{
		"p-1": {"age": 63.0, "chol": 233.0},
		"p-2": {"age": 41.0},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-online-features" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Features []string                 `json:"features"`
			Entities map[string][]interface{} `json:"entities"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ids := req.Entities["patient_id"]

		type column struct {
			Values   []interface{} `json:"values"`
			Statuses []string      `json:"statuses"`
		}
		names := []string{"patient_id"}
		results := []column{{Values: ids}}
		for _, ref := range req.Features {
			_, name, _ := strings.Cut(ref, ":")
			col := column{}
			for _, id := range ids {
				v, ok := data[id.(string)][name]
				if ok {
					col.Values = append(col.Values, v)
					col.Statuses = append(col.Statuses, "PRESENT")
				} else {
					col.Values = append(col.Values, nil)
					col.Statuses = append(col.Statuses, "NOT_FOUND")
				}
			}
			names = append(names, name)
			results = append(results, col)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"metadata": map[string]interface{}{"feature_names": names},
			"results":  results,
		})
	}))
}

func TestHTTPClient_GetOnlineFeatures(t *testing.T) {
	srv := fakeFeatureServer(t, "")
	defer srv.Close()

	client, err := NewClient(srv.URL+"/", "heart")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()
	if _, ok := client.(*HTTPClient); !ok {
		t.Fatalf("NewClient(http://...) = %T, want *HTTPClient", client)
	}

	resp, err := client.GetOnlineFeatures(context.Background(), &GetOnlineFeaturesRequest{
		Features:   []string{"patient_vitals:age", "patient_vitals:chol"},
		EntityRows: []map[string]interface{}{{"patient_id": "p-1"}, {"patient_id": "p-2"}, {"patient_id": "p-9"}},
	})
	if err != nil {
		t.Fatalf("GetOnlineFeatures() error = %v", err)
	}
	if len(resp.FeatureVectors) != 3 {
		t.Fatalf("got %d vectors, want 3", len(resp.FeatureVectors))
	}

	tests := []struct {
		idx  int
		want map[string]interface{}
	}{
		{0, map[string]interface{}{"patient_vitals:age": 63.0, "patient_vitals:chol": 233.0}},
		{1, map[string]interface{}{"patient_vitals:age": 41.0}},
		{2, map[string]interface{}{}},
	}
	for _, tt := range tests {
		got := resp.FeatureVectors[tt.idx].Values
		if len(got) != len(tt.want) {
			t.Errorf("vector %d = %v, want %v", tt.idx, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("vector %d [%s] = %v, want %v", tt.idx, k, got[k], v)
			}
		}
	}
}

func TestHTTPClient_Auth(t *testing.T) {
	srv := fakeFeatureServer(t, "secret")
	defer srv.Close()
	req := &GetOnlineFeaturesRequest{
		Features:   []string{"patient_vitals:age"},
		EntityRows: []map[string]interface{}{{"patient_id": "p-1"}},
	}

	anon, _ := NewHTTPClient(srv.URL, "heart")
	if _, err := anon.GetOnlineFeatures(context.Background(), req); err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("anonymous request error = %v, want 401", err)
	}

	authed, _ := NewHTTPClient(srv.URL, "heart", WithAuth(&AuthConfig{Type: "static", Token: "secret"}))
	resp, err := authed.GetOnlineFeatures(context.Background(), req)
	if err != nil {
		t.Fatalf("GetOnlineFeatures() error = %v", err)
	}
	if resp.FeatureVectors[0].Values["patient_vitals:age"] != 63.0 {
		t.Errorf("values = %v", resp.FeatureVectors[0].Values)
	}
}

func TestHTTPClient_RequestValidation(t *testing.T) {
	client, err := NewHTTPClient("http://127.0.0.1:1", "heart")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		req  *GetOnlineFeaturesRequest
	}{
		{"no features", &GetOnlineFeaturesRequest{EntityRows: []map[string]interface{}{{"patient_id": "p"}}}},
		{"no entities", &GetOnlineFeaturesRequest{Features: []string{"v:age"}}},
		{"ragged entities", &GetOnlineFeaturesRequest{
			Features:   []string{"v:age"},
			EntityRows: []map[string]interface{}{{"patient_id": "p"}, {"other": "q"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := client.GetOnlineFeatures(context.Background(), tt.req); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := NewHTTPClient("", "heart"); err == nil {
		t.Error("NewHTTPClient(\"\") expected error")
	}
}
