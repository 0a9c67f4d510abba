package workflows

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// "{{{name}}}" as a whole string leaf injects the raw value.
	rawPlaceholder = regexp.MustCompile(`^\{\{\{\s*([\w.-]+)\s*\}\}\}$`)
	// {{name}} or { { name } } anywhere inside a string leaf.
	placeholder = regexp.MustCompile(`\{\s*\{\s*([\w.-]+)\s*\}\s*\}`)
)

// Compile substitutes params into template and returns the resulting JSON.
// The template is parsed first and placeholders are replaced leaf by leaf,
// so substituted values can never break the document structure. A
// placeholder with no matching param fails the compilation.
func Compile(template string, params map[string]interface{}) (json.RawMessage, error) {
	dec := json.NewDecoder(strings.NewReader(template))
	dec.UseNumber()

	var tree interface{}
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	s := substituter{params: params, missing: map[string]struct{}{}}
	out := s.walk(tree)
	if len(s.missing) > 0 {
		names := make([]string, 0, len(s.missing))
		for name := range s.missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("missing params: %s", strings.Join(names, ", "))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode compiled workflow: %w", err)
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

type substituter struct {
	params  map[string]interface{}
	missing map[string]struct{}
}

func (s *substituter) walk(node interface{}) interface{} {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, child := range v {
			v[k] = s.walk(child)
		}
		return v
	case []interface{}:
		for i, child := range v {
			v[i] = s.walk(child)
		}
		return v
	case string:
		return s.leaf(v)
	default:
		return v
	}
}

func (s *substituter) leaf(str string) interface{} {
	if m := rawPlaceholder.FindStringSubmatch(str); m != nil {
		value, ok := s.params[m[1]]
		if !ok {
			s.missing[m[1]] = struct{}{}
			return str
		}
		return value
	}

	if !strings.Contains(str, "{") {
		return str
	}
	return placeholder.ReplaceAllStringFunc(str, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		value, ok := s.params[name]
		if !ok {
			s.missing[name] = struct{}{}
			return match
		}
		return stringify(value)
	})
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
