package models

// ChatClientRunResult is the outcome of one run.
type ChatClientRunResult struct {
	Input     ClientRunActionParam `json:"input"`
	Result    ActionResult         `json:"result"`
	ChatID    string               `json:"chatID"`
	Telemetry TelemetryResult      `json:"telemetry"`
}

type ActionResult struct {
	Response string `json:"response"`
}

type TelemetryResult struct {
	TraceID string `json:"traceId"`
}

// Result is the envelope every studio API response is wrapped in.
type Result[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

const (
	CodeSuccess  = 10000
	CodeNotFound = 10004
	CodeInvalid  = 10001
	CodeInternal = 10500
)

func Success[T any](data T) Result[T] {
	return Result[T]{Code: CodeSuccess, Message: "success", Data: data}
}

func Failure(code int, message string) Result[any] {
	return Result[any]{Code: code, Message: message}
}
