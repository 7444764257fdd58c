package dsl

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Rule 是一条输入校验规则，使用 CEL (Common Expression Language) 表达式。
//
// 表达式中可直接引用原始字段（类型为 double）：
//   - 范围：age >= 0.0 && age <= 100.0
//   - 组合：trestbps > 0.0 && thalach > 0.0
//   - 枚举：sex == 0.0 || sex == 1.0
//
// Field 为规则失败时报告的字段名。
type Rule struct {
	Name  string `yaml:"name" json:"name"`
	Field string `yaml:"field" json:"field"`
	Expr  string `yaml:"expr" json:"expr"`
}

type compiledRule struct {
	rule Rule
	prg  cel.Program
}

// RuleSet 是编译后的规则集合。
// cel.Program 线程安全，RuleSet 构建后只读，可在请求间共享。
type RuleSet struct {
	env   *cel.Env
	rules []compiledRule
}

// Compile 为给定字段构建 CEL 环境并编译全部规则。
// 任一规则编译失败或返回值不是 bool 时返回错误（启动期配置错误）。
func Compile(fields []string, rules []Rule) (*RuleSet, error) {
	opts := make([]cel.EnvOption, 0, len(fields))
	for _, f := range fields {
		opts = append(opts, cel.Variable(f, cel.DoubleType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	set := &RuleSet{env: env, rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		ast, issues := env.Compile(r.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %q compile error: %v", r.Name, issues.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("rule %q must return bool, got %v", r.Name, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule %q program error: %v", r.Name, err)
		}
		set.rules = append(set.rules, compiledRule{rule: r, prg: prg})
	}
	return set, nil
}

// Len 返回规则数
func (s *RuleSet) Len() int { return len(s.rules) }

// Check 按顺序执行规则，返回第一条未通过的规则；全部通过时返回 nil。
// 表达式执行出错（例如缺少变量）时返回 error。
func (s *RuleSet) Check(vars map[string]float64) (*Rule, error) {
	input := make(map[string]any, len(vars))
	for k, v := range vars {
		input[k] = v
	}

	for i := range s.rules {
		cr := &s.rules[i]
		out, _, err := cr.prg.Eval(input)
		if err != nil {
			return nil, fmt.Errorf("rule %q eval error: %v", cr.rule.Name, err)
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return nil, fmt.Errorf("rule %q must return boolean, got %T", cr.rule.Name, out.Value())
		}
		if !ok {
			failed := cr.rule
			return &failed, nil
		}
	}
	return nil, nil
}
