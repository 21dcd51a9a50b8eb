package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Desarso/agentstudio/chat"
	"github.com/Desarso/agentstudio/models"
	"github.com/Desarso/agentstudio/stores"
	"github.com/Desarso/agentstudio/studio"
)

type echoModel struct{}

func (echoModel) Call(ctx context.Context, prompt chat.Prompt) (*chat.Response, error) {
	last := prompt.Messages[len(prompt.Messages)-1]
	if last.Content == "explode" {
		return nil, errors.New("upstream exploded")
	}
	return &chat.Response{Content: "echo: " + last.Content}, nil
}

func (echoModel) DefaultOptions() chat.Options { return chat.Options{Model: "echo-1"} }

type fakeTools struct{}

func (fakeTools) Declarations() []models.FunctionDeclaration {
	return []models.FunctionDeclaration{{Name: "upper", Description: "uppercase text"}}
}

func (fakeTools) ExecuteTool(ctx context.Context, name string, args map[string]any) (string, error) {
	text, _ := args["text"].(string)
	if text == "" {
		return `{"error":"text is required"}`, errors.New("text is required")
	}
	b, _ := json.Marshal(map[string]string{"result": strings.ToUpper(text)})
	return string(b), nil
}

type testEnv struct {
	server *Server
	traces *stores.GORMTraceStore
	store  stores.MessageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	store, err := stores.NewSQLiteStoreSimple(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	traces, err := stores.NewGORMTraceStore(store.DB())
	require.NoError(t, err)

	reg := studio.NewRegistry()
	mem := chat.NewStoreMemory(store)
	require.NoError(t, reg.Register("echo", chat.NewClient(echoModel{},
		chat.WithDefaultSystem("You echo."),
		chat.WithDefaultAdvisors(chat.NewMessageMemoryAdvisor(mem, 10)))))
	require.NoError(t, reg.Register("broken", &chat.DefaultClient{}))

	delegate := studio.NewDelegate(reg,
		studio.WithTracer(tp.Tracer("studio")),
		studio.WithTraceStore(traces),
		studio.WithConversationStore(store))

	return &testEnv{
		server: NewServer(Options{
			Delegate: delegate,
			Tools:    fakeTools{},
			Messages: store,
			Traces:   traces,
			Tracer:   tp.Tracer("api"),
		}),
		traces: traces,
		store:  store,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) models.Result[T] {
	t.Helper()
	var res models.Result[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(TraceIDHeader))
}

func TestGetChatClient(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/studio/api/chat-clients/echo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[models.ChatClient](t, w)
	assert.Equal(t, models.CodeSuccess, res.Code)
	assert.Equal(t, "echo", res.Data.Name)
	assert.Equal(t, "You echo.", res.Data.DefaultSystemText)
	assert.True(t, res.Data.IsMemoryEnabled)
	require.NotNil(t, res.Data.ChatModel)
	assert.Equal(t, "echo-1", res.Data.ChatModel.Model)

	w = env.do(t, http.MethodGet, "/studio/api/chat-clients/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.CodeNotFound, decode[any](t, w).Code)

	w = env.do(t, http.MethodGet, "/studio/api/chat-clients/broken", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, models.CodeInternal, decode[any](t, w).Code)
}

func TestListChatClients_InternalError(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/studio/api/chat-clients", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRunChatClient(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/studio/api/chat-clients/run", models.ClientRunActionParam{Key: "echo", Input: "hello"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[models.ChatClientRunResult](t, w)
	assert.Equal(t, "echo: hello", res.Data.Result.Response)
	assert.NotEmpty(t, res.Data.ChatID)
	assert.Equal(t, w.Header().Get(TraceIDHeader), res.Data.Telemetry.TraceID)

	w = env.do(t, http.MethodPost, "/studio/api/chat-clients/run", models.ClientRunActionParam{Key: "echo", Input: "again", ChatID: res.Data.ChatID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, res.Data.ChatID, decode[models.ChatClientRunResult](t, w).Data.ChatID)

	w = env.do(t, http.MethodGet, "/studio/api/traces/"+res.Data.ChatID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]stores.RunTrace](t, w).Data, 2)

	w = env.do(t, http.MethodGet, "/studio/api/traces?trace_id="+res.Data.Telemetry.TraceID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	byTrace := decode[[]stores.RunTrace](t, w).Data
	require.Len(t, byTrace, 1)
	assert.Equal(t, "hello", byTrace[0].Input)

	w = env.do(t, http.MethodGet, "/studio/api/traces", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/studio/api/conversations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	convs := decode[[]stores.ConversationInfo](t, w).Data
	require.Len(t, convs, 1)
	assert.Equal(t, "echo", convs[0].ClientName)

	w = env.do(t, http.MethodGet, "/studio/api/conversations/"+res.Data.ChatID+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	msgs := decode[[]models.ChatMessageResponse](t, w).Data
	require.Len(t, msgs, 4)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "echo: again", msgs[3].Content)

	w = env.do(t, http.MethodDelete, "/studio/api/conversations/"+res.Data.ChatID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/studio/api/traces/"+res.Data.ChatID, nil)
	assert.Empty(t, decode[[]stores.RunTrace](t, w).Data)
}

func TestRunChatClient_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	tests := map[string]any{
		"malformed body": "{",
		"missing key":    models.ClientRunActionParam{Input: "hi"},
		"blank input":    models.ClientRunActionParam{Key: "echo", Input: "  "},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/studio/api/chat-clients/run", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, models.CodeInvalid, decode[any](t, w).Code)
		})
	}

	w := env.do(t, http.MethodPost, "/studio/api/chat-clients/run", models.ClientRunActionParam{Key: "nope", Input: "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/studio/api/chat-clients/run", models.ClientRunActionParam{Key: "echo", Input: "explode"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode[any](t, w).Message, "upstream exploded")
}

func TestTools(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/studio/api/tools", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decls := decode[[]models.FunctionDeclaration](t, w).Data
	require.Len(t, decls, 1)
	assert.Equal(t, "upper", decls[0].Name)

	w = env.do(t, http.MethodPost, "/studio/api/tools/upper/invoke", models.ToolInvokeRequest{Args: map[string]any{"text": "go"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"result":"GO"}`, string(decode[json.RawMessage](t, w).Data))

	w = env.do(t, http.MethodPost, "/studio/api/tools/upper/invoke", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"text is required"}`, string(decode[json.RawMessage](t, w).Data))

	w = env.do(t, http.MethodPost, "/studio/api/tools/missing/invoke", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTraces_NotRecorded(t *testing.T) {
	server := NewServer(Options{Delegate: studio.NewDelegate(studio.NewRegistry())})
	req := httptest.NewRequest(http.MethodGet, "/studio/api/traces/abc", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/studio/api/conversations", nil)
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunChatClientWS(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.server.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/studio/api/chat-clients/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.ClientRunActionParam{Key: "echo", Input: "one"}))
	var result models.ChatClientRunResult
	require.NoError(t, conn.ReadJSON(&result))
	assert.Equal(t, "echo: one", result.Result.Response)
	assert.NotEmpty(t, result.ChatID)
	assert.NotEmpty(t, result.Telemetry.TraceID)

	require.NoError(t, conn.WriteJSON(models.ClientRunActionParam{Key: "echo", Input: "two", ChatID: result.ChatID}))
	var second models.ChatClientRunResult
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, result.ChatID, second.ChatID)
	assert.NotEqual(t, result.Telemetry.TraceID, second.Telemetry.TraceID)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var errFrame map[string]string
	require.NoError(t, conn.ReadJSON(&errFrame))
	assert.Contains(t, errFrame["error"], "invalid request")

	require.NoError(t, conn.WriteJSON(models.ClientRunActionParam{Key: "missing", Input: "x"}))
	errFrame = nil
	require.NoError(t, conn.ReadJSON(&errFrame))
	assert.Contains(t, errFrame["error"], "chat client not found")

	require.NoError(t, conn.WriteJSON(models.ClientRunActionParam{Key: "echo", Input: ""}))
	errFrame = nil
	require.NoError(t, conn.ReadJSON(&errFrame))
	assert.Equal(t, "input is required", errFrame["error"])
}
