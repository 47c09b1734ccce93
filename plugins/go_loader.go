// Package plugins loads user-supplied commit type rules from interpreted
// Go files, so a project can extend the rule table without recompiling.
package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"

	"github.com/trunkrel/trunkrel/internal/commit"
)

const ruleFuncName = "ReleaseRules"

// LoadRuleDir evaluates every .go file in dir and collects the commit
// type rules each declares via ReleaseRules(). A missing or empty dir
// yields no rules.
func LoadRuleDir(dir string) ([]commit.TypeRule, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		paths = append(paths, filepath.Join(trimmed, entry.Name()))
	}
	sort.Strings(paths)

	var rules []commit.TypeRule
	for _, path := range paths {
		fileRules, err := loadRuleFile(path)
		if err != nil {
			return nil, err
		}
		rules = append(rules, fileRules...)
	}
	return rules, nil
}

func loadRuleFile(path string) ([]commit.TypeRule, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("plugin: %s is empty", path)
	}

	i := interp.New(interp.Options{})
	i.Use(stdlib.Symbols)
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(ruleFuncName)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s must define %s() ([]map[string]any, error): %w", path, ruleFuncName, err)
	}

	raw, err := invokeRuleFunc(fnValue)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", path, err)
	}

	rules := make([]commit.TypeRule, 0, len(raw))
	for idx, entry := range raw {
		payload, err := yaml.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("plugin: %s rule[%d]: %w", path, idx, err)
		}
		var rule commit.TypeRule
		if err := yaml.Unmarshal(payload, &rule); err != nil {
			return nil, fmt.Errorf("plugin: %s rule[%d]: %w", path, idx, err)
		}
		if strings.TrimSpace(rule.Name) == "" {
			return nil, fmt.Errorf("plugin: %s rule[%d]: missing name", path, idx)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func invokeRuleFunc(value reflect.Value) ([]map[string]any, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", ruleFuncName)
	}
	fn := value
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", ruleFuncName)
	}
	results := fn.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([]map[string]any[, error])", ruleFuncName)
	}
	if len(results) == 2 {
		if !results[1].IsNil() {
			if e, ok := results[1].Interface().(error); ok && e != nil {
				return nil, e
			}
			return nil, fmt.Errorf("%s returned non-error second value", ruleFuncName)
		}
	}
	rulesVal := results[0]
	if rules, ok := rulesVal.Interface().([]map[string]any); ok {
		return rules, nil
	}
	if rulesVal.Kind() == reflect.Slice {
		result := make([]map[string]any, rulesVal.Len())
		for i := 0; i < rulesVal.Len(); i++ {
			entry := rulesVal.Index(i).Interface()
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d] is not map[string]any", ruleFuncName, i)
			}
			result[i] = m
		}
		return result, nil
	}
	return nil, fmt.Errorf("%s must return []map[string]any", ruleFuncName)
}
