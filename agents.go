package agentstudio

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Desarso/agentstudio/common_tools"
	applog "github.com/Desarso/agentstudio/logger"
	"github.com/Desarso/agentstudio/models"
)

// Agent exposes the configured tools to tool-calling hosts.
type Agent struct {
	Tools    *common_tools.ToolRegistry
	Approver ToolApprover
	logger   *zap.Logger
}

func NewAgent(tools *common_tools.ToolRegistry, logger *zap.Logger) *Agent {
	logger = applog.OrNop(logger)
	return &Agent{Tools: tools, Approver: AutoApprove, logger: logger}
}

// Declarations lists the tools the agent can call.
func (agent *Agent) Declarations() []models.FunctionDeclaration {
	return agent.Tools.Declarations()
}

// ApproveTool checks if a tool call may run
func (agent *Agent) ApproveTool(ctx context.Context, name string, args map[string]any) (bool, error) {
	if agent.Approver == nil {
		return AutoApprove(ctx, name, args)
	}
	return agent.Approver(ctx, name, args)
}

// ExecuteTool executes a tool by name. The returned string is always JSON:
// {"result": ...} on success, {"error": ...} otherwise, in which case the
// Go error is returned as well.
func (agent *Agent) ExecuteTool(ctx context.Context, functionName string, functionCallArgs map[string]any) (string, error) {
	var toolResultJSON string
	var toolExecErr error

	tool, found := agent.Tools.Get(functionName)
	switch {
	case !found:
		toolExecErr = fmt.Errorf("unknown or unavailable tool: %s", functionName)
	default:
		approved, err := agent.ApproveTool(ctx, functionName, functionCallArgs)
		if err != nil {
			toolExecErr = fmt.Errorf("approval for '%s' failed: %w", functionName, err)
			break
		}
		if !approved {
			toolExecErr = fmt.Errorf("tool '%s' was not approved", functionName)
			break
		}

		agent.logger.Debug("executing tool", zap.String("tool", functionName), zap.Any("args", functionCallArgs))
		result, err := tool.Callable(ctx, functionCallArgs)
		if err != nil {
			toolExecErr = err
			break
		}
		resultBytes, marshalErr := json.Marshal(map[string]string{"result": result})
		if marshalErr != nil {
			toolExecErr = fmt.Errorf("failed marshal result for '%s': %v", functionName, marshalErr)
			break
		}
		toolResultJSON = string(resultBytes)
	}

	if toolExecErr != nil {
		agent.logger.Warn("tool execution failed", zap.String("tool", functionName), zap.Error(toolExecErr))
		errorBytes, _ := json.Marshal(map[string]string{"error": toolExecErr.Error()})
		toolResultJSON = string(errorBytes)
	}

	return toolResultJSON, toolExecErr
}
