package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rushteam/cardiokit/core"
)

// ErrorResponse 是错误响应体
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// errBadRequest 表示请求体本身无法解析
var errBadRequest = errors.New("malformed request body")

// StatusCode 把领域错误映射为 HTTP 状态码
func StatusCode(err error) int {
	if errors.Is(err, errBadRequest) {
		return http.StatusBadRequest
	}
	de := core.GetDomainError(err)
	if de == nil {
		return http.StatusInternalServerError
	}
	switch de.Code {
	case core.ErrorCodeValidation:
		return http.StatusBadRequest
	case core.ErrorCodeNotFound:
		return http.StatusNotFound
	case core.ErrorCodeNotSupported:
		return http.StatusNotImplemented
	case core.ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (r *Router) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status := StatusCode(err)
	resp := ErrorResponse{Code: "INTERNAL", Message: err.Error()}
	if errors.Is(err, errBadRequest) {
		resp.Code = "BAD_REQUEST"
	}
	if de := core.GetDomainError(err); de != nil {
		resp.Code = de.Code
		resp.Message = de.Message
		resp.Field = de.Field
	}
	if status >= http.StatusInternalServerError {
		r.logger.LogAttrs(req.Context(), slog.LevelError, "request failed",
			slog.String("path", req.URL.Path),
			slog.String("code", resp.Code),
			slog.Any("error", err))
		if status == http.StatusInternalServerError {
			// 内部错误不向调用方暴露细节
			resp.Message = "internal error"
		}
	}
	_ = writeJSON(w, status, resp)
}
