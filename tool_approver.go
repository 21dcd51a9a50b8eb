package agentstudio

import "context"

// ToolApprover decides whether a tool call may run.
type ToolApprover func(ctx context.Context, toolName string, args map[string]any) (bool, error)

// AutoApprove approves every tool call.
func AutoApprove(ctx context.Context, toolName string, args map[string]any) (bool, error) {
	return true, nil
}

// AllowList approves only the named tools.
func AllowList(names ...string) ToolApprover {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}
	return func(ctx context.Context, toolName string, args map[string]any) (bool, error) {
		return allowed[toolName], nil
	}
}
