package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 推理链路上的错误都使用此类型
//   - 提供错误代码（Code）、模块（Module）和出错字段/列/模型（Field）
//   - 支持 errors.Is / errors.As，以及错误检查函数（IsXXX）
//
// 使用场景：
//   - 启动加载：SCHEMA_LOAD（致命，进程不应继续提供服务）
//   - 调用方输入校验：VALIDATION
//   - 列数/维度不一致：DIMENSION_MISMATCH
//   - 单个模型预测失败：MODEL_INFERENCE（整个请求失败）
type DomainError struct {
	Code    string // 错误代码（如 "VALIDATION", "SCHEMA_LOAD"）
	Message string // 错误消息
	Module  string // 模块名称（如 "schema", "feature", "model"）
	Field   string // 出错的字段、列或模型名（可为空）
	Err     error  // 底层错误（可为空）
}

func (e *DomainError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Field)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is 按 Code 比较，便于 errors.Is(err, core.ErrValidation) 这类判断。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Module == "" || t.Module == e.Module)
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound          = "NOT_FOUND"          // 资源不存在
	ErrorCodeNotSupported      = "NOT_SUPPORTED"      // 操作不支持
	ErrorCodeUnavailable       = "UNAVAILABLE"        // 服务不可用
	ErrorCodeSchemaLoad        = "SCHEMA_LOAD"        // 工件缺失/损坏/不兼容
	ErrorCodeValidation        = "VALIDATION"         // 输入无效
	ErrorCodeDimensionMismatch = "DIMENSION_MISMATCH" // 列数与拟合参数不一致
	ErrorCodeModelInference    = "MODEL_INFERENCE"    // 模型预测失败
)

// 模块名称常量
const (
	ModuleStore     = "store"
	ModuleSchema    = "schema"
	ModuleFeature   = "feature"
	ModuleTransform = "transform"
	ModuleModel     = "model"
	ModuleEnsemble  = "ensemble"
	ModuleAggregate = "aggregate"
	ModuleArtifact  = "artifact"
	ModuleSource    = "source"
	ModuleService   = "service"
)

// 哨兵错误，仅用于 errors.Is 比较（不限定模块）。
var (
	ErrSchemaLoad        = &DomainError{Code: ErrorCodeSchemaLoad}
	ErrValidation        = &DomainError{Code: ErrorCodeValidation}
	ErrDimensionMismatch = &DomainError{Code: ErrorCodeDimensionMismatch}
	ErrModelInference    = &DomainError{Code: ErrorCodeModelInference}
	ErrNotFound          = &DomainError{Code: ErrorCodeNotFound}
)

// SchemaLoadError 表示某个拟合工件缺失、损坏或与其他工件不兼容。
func SchemaLoadError(module, artifact string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    ErrorCodeSchemaLoad,
		Message: "artifact load failed",
		Field:   artifact,
		Err:     err,
	}
}

// ValidationError 表示调用方提交的原始输入缺字段或非数值。
func ValidationError(field, format string, args ...any) *DomainError {
	return &DomainError{
		Module:  ModuleFeature,
		Code:    ErrorCodeValidation,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	}
}

// DimensionMismatchError 表示某一阶段的输入宽度与拟合宽度不一致。
func DimensionMismatchError(module, stage string, want, got int) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    ErrorCodeDimensionMismatch,
		Message: fmt.Sprintf("width mismatch: want %d, got %d", want, got),
		Field:   stage,
	}
}

// ModelInferenceError 表示某个模型的预测失败。
func ModelInferenceError(modelName string, err error) *DomainError {
	return &DomainError{
		Module:  ModuleModel,
		Code:    ErrorCodeModelInference,
		Message: "model prediction failed",
		Field:   modelName,
		Err:     err,
	}
}

// NotFoundError 表示请求的资源（报告、病人记录等）不存在。
func NotFoundError(module, what string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    ErrorCodeNotFound,
		Message: "not found",
		Field:   what,
	}
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsSchemaLoad 检查错误是否为 SCHEMA_LOAD
func IsSchemaLoad(err error) bool { return hasCode(err, ErrorCodeSchemaLoad) }

// IsValidation 检查错误是否为 VALIDATION
func IsValidation(err error) bool { return hasCode(err, ErrorCodeValidation) }

// IsDimensionMismatch 检查错误是否为 DIMENSION_MISMATCH
func IsDimensionMismatch(err error) bool { return hasCode(err, ErrorCodeDimensionMismatch) }

// IsModelInference 检查错误是否为 MODEL_INFERENCE
func IsModelInference(err error) bool { return hasCode(err, ErrorCodeModelInference) }

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }
