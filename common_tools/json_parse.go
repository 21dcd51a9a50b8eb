package common_tools

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var ErrFieldNotFound = errors.New("field not found")

// JsonParseTool is the JSON codec shared by the HTTP-backed tools.
type JsonParseTool struct {
	indent bool
}

func NewJsonParseTool() *JsonParseTool {
	return &JsonParseTool{}
}

// NewIndentedJsonParseTool returns a tool whose ToJSON output is indented.
func NewIndentedJsonParseTool() *JsonParseTool {
	return &JsonParseTool{indent: true}
}

func (j *JsonParseTool) ToJSON(v any) (string, error) {
	var (
		b   []byte
		err error
	)
	if j.indent {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(b), nil
}

func (j *JsonParseTool) FromJSON(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

// FieldValue walks path through nested objects and arrays (array steps are
// decimal indexes) and returns the value found there.
func (j *JsonParseTool) FieldValue(data []byte, path ...string) (any, error) {
	var current any
	if err := j.FromJSON(data, &current); err != nil {
		return nil, err
	}

	for i, step := range path {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[step]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, strings.Join(path[:i+1], "."))
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(step)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, strings.Join(path[:i+1], "."))
			}
			current = node[idx]
		default:
			return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, strings.Join(path[:i+1], "."))
		}
	}
	return current, nil
}
