// Package report 把一次推理结果渲染为可下载的文档。
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/feature"
	"github.com/rushteam/cardiokit/schema"
)

// Title 是报告标题
const Title = "Heart Disease Prediction Report"

// 报告格式
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// baseName 是下载文件名（不含扩展名）
const baseName = "heart_disease_report"

// Normalize 规范化格式名，空值为 markdown；未知格式返回 NOT_SUPPORTED
func Normalize(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatText, "txt":
		return FormatText, nil
	default:
		return "", core.NewDomainError(core.ModuleService, core.ErrorCodeNotSupported,
			fmt.Sprintf("unsupported report format %q", format))
	}
}

// FileName 返回下载文件名
func FileName(format string) string {
	if format == FormatText {
		return baseName + ".txt"
	}
	return baseName + ".md"
}

// ContentType 返回对应的 MIME 类型
func ContentType(format string) string {
	if format == FormatText {
		return "text/plain; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Render 按 format 渲染报告：用户输入（友好标签，字段顺序）、总体结论、逐模型结论。
func Render(w io.Writer, res *core.Result, format string) error {
	f, err := Normalize(format)
	if err != nil {
		return err
	}
	var b strings.Builder
	if f == FormatText {
		renderText(&b, res)
	} else {
		renderMarkdown(&b, res)
	}
	_, err = io.WriteString(w, b.String())
	return err
}

// inputs 按原始字段顺序返回 (友好标签, 值)，未知字段不展示
func inputs(res *core.Result) [][2]string {
	out := make([][2]string, 0, len(schema.RawFeatures))
	for _, name := range schema.RawFeatures {
		v, ok := res.Inputs[name]
		if !ok {
			continue
		}
		out = append(out, [2]string{feature.Label(name), formatValue(v)})
	}
	return out
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func renderMarkdown(b *strings.Builder, res *core.Result) {
	fmt.Fprintf(b, "# %s\n\n", Title)
	if res.ID != "" {
		fmt.Fprintf(b, "Report ID: `%s`  \n", res.ID)
	}
	if !res.CreatedAt.IsZero() {
		fmt.Fprintf(b, "Generated: %s  \n", res.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	if res.Version != "" {
		fmt.Fprintf(b, "Model bundle: %s  \n", res.Version)
	}

	b.WriteString("\n## User Inputs\n\n")
	for _, kv := range inputs(res) {
		fmt.Fprintf(b, "- **%s**: %s\n", kv[0], kv[1])
	}

	b.WriteString("\n## Overall Prediction\n\n")
	fmt.Fprintf(b, "%s\n", res.Overall.Message)

	b.WriteString("\n## Model-by-Model Results\n\n")
	b.WriteString("| Model | Prediction |\n")
	b.WriteString("|---|---|\n")
	for _, p := range res.Predictions {
		fmt.Fprintf(b, "| %s | %s |\n", p.Model, p.Verdict)
	}
}

func renderText(b *strings.Builder, res *core.Result) {
	b.WriteString(Title + "\n")
	b.WriteString(strings.Repeat("=", len(Title)) + "\n")
	if res.ID != "" {
		fmt.Fprintf(b, "Report ID: %s\n", res.ID)
	}
	if !res.CreatedAt.IsZero() {
		fmt.Fprintf(b, "Generated: %s\n", res.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}

	b.WriteString("\nUser Inputs:\n")
	for _, kv := range inputs(res) {
		fmt.Fprintf(b, "%s: %s\n", kv[0], kv[1])
	}

	b.WriteString("\nOverall Prediction:\n")
	fmt.Fprintf(b, "%s\n", res.Overall.Message)

	b.WriteString("\nModel-by-Model Results:\n")
	width := 0
	for _, p := range res.Predictions {
		if len(p.Model) > width {
			width = len(p.Model)
		}
	}
	for _, p := range res.Predictions {
		fmt.Fprintf(b, "%-*s  %s\n", width, p.Model, p.Verdict)
	}
}
