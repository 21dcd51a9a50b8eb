package models

import "context"

// ToolFunc is the callable behind a tool. Args are the decoded JSON arguments
// chosen by the model or the caller.
type ToolFunc func(ctx context.Context, args map[string]any) (string, error)

type FunctionDeclaration struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
	Callable    ToolFunc   `json:"-"`
}

// Parameters defines the JSON Schema for function parameters
type Parameters struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Required   []string               `json:"required"`
}
