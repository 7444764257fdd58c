// cardiokit-predict 对单条临床记录做一次推理。
//
//	cardiokit-predict -artifacts ./artifacts -input age=63,sex=1,cp=3,...
//	echo '{"age":63,...}' | cardiokit-predict -artifacts ./artifacts -output markdown
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rushteam/cardiokit"
	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/report"
)

func main() {
	artifacts := flag.String("artifacts", "artifacts", "artifact bundle directory")
	input := flag.String("input", "", "comma separated field=value pairs; reads JSON from stdin when empty")
	output := flag.String("output", "json", "output format: json, markdown or text")
	flag.Parse()

	if err := run(*artifacts, *input, *output, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func run(dir, input, output string, stdin io.Reader, stdout io.Writer) error {
	ctx := context.Background()
	pred, err := cardiokit.Open(ctx, dir)
	if err != nil {
		return err
	}
	defer pred.Close()

	var raw core.RawInput
	if input != "" {
		form, err := parsePairs(input)
		if err != nil {
			return err
		}
		raw, err = pred.Validator().ParseForm(form)
		if err != nil {
			return err
		}
	} else {
		var body map[string]any
		dec := json.NewDecoder(stdin)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("decode stdin: %w", err)
		}
		raw, err = pred.Validator().ParseAny(body)
		if err != nil {
			return err
		}
	}

	res, err := pred.Predict(ctx, raw)
	if err != nil {
		return err
	}
	if output == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return report.Render(stdout, res, output)
}

// parsePairs 解析 "k=v,k=v"
func parsePairs(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid pair %q, want field=value", pair)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

func exitCode(err error) int {
	switch {
	case core.IsValidation(err):
		return 2
	case core.IsSchemaLoad(err):
		return 3
	default:
		return 1
	}
}
