package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/report"
)

// POST /v1/predict
// Body: JSON 对象（数值或数值字符串），或 urlencoded / multipart 表单
func (r *Router) handlePredict(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	v := r.pred.Validator()

	var (
		raw core.RawInput
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := req.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
		raw, err = v.ParseValues(req.PostForm)
	default:
		var body map[string]any
		dec := json.NewDecoder(req.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
		raw, err = v.ParseAny(body)
	}
	if err != nil {
		return err
	}

	res, err := r.pred.Predict(req.Context(), raw)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/patients/{id}/predict
func (r *Router) handlePredictPatient(w http.ResponseWriter, req *http.Request) error {
	res, err := r.pred.PredictPatient(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/reports/{id}?format=markdown|text
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) error {
	format, err := report.Normalize(req.URL.Query().Get("format"))
	if err != nil {
		return core.ValidationError("format", "%s", core.GetDomainError(err).Message)
	}
	res, err := r.pred.Report(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, res, format); err != nil {
		return err
	}
	w.Header().Set("Content-Type", report.ContentType(format))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment",
		map[string]string{"filename": report.FileName(format)}))
	_, err = buf.WriteTo(w)
	return err
}

// GET /v1/stats/features
func (r *Router) handleFeatureStats(w http.ResponseWriter, _ *http.Request) error {
	m := r.pred.Monitor()
	if m == nil {
		return core.NewDomainError(core.ModuleService, core.ErrorCodeNotSupported, "feature monitor not configured")
	}
	return writeJSON(w, http.StatusOK, map[string]any{"features": m.Snapshot()})
}

// SchemaResponse 是 /v1/schema 的响应体
type SchemaResponse struct {
	Version  string   `json:"version"`
	Raw      []string `json:"raw"`
	Expected []string `json:"expected"`
	Models   []string `json:"models"`
}

// GET /v1/schema
func (r *Router) handleSchema(w http.ResponseWriter, _ *http.Request) error {
	b := r.pred.Bundle()
	return writeJSON(w, http.StatusOK, SchemaResponse{
		Version:  b.Version,
		Raw:      b.Registry.Raw,
		Expected: b.Registry.Expected,
		Models:   b.Ensemble.Members(),
	})
}
