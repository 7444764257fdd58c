// Package httpapi 是推理服务的 HTTP 接口：表单/JSON 推理、报告下载、特征统计与 schema 查询。
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/rushteam/cardiokit/service"
)

// maxBodyBytes 限制推理请求体大小
const maxBodyBytes = 64 << 10

// Options 是路由的可选配置
type Options struct {
	CORSOrigins []string
	Logger      *slog.Logger
}

type Router struct {
	pred   *service.Predictor
	logger *slog.Logger
}

// NewRouter 创建 HTTP 路由
func NewRouter(pred *service.Predictor, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{pred: pred, logger: logger}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(Recoverer(logger))
	mux.Use(Logging(logger))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Origin"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/predict", r.wrap(r.handlePredict))
		rt.Get("/patients/{id}/predict", r.wrap(r.handlePredictPatient))
		rt.Get("/reports/{id}", r.wrap(r.handleReport))
		rt.Get("/stats/features", r.wrap(r.handleFeatureStats))
		rt.Get("/schema", r.wrap(r.handleSchema))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			r.writeError(w, req, err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
