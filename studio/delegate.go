// Package studio inspects and runs the registered chat clients.
package studio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Desarso/agentstudio/chat"
	"github.com/Desarso/agentstudio/models"
	"github.com/Desarso/agentstudio/models/openai"
	"github.com/Desarso/agentstudio/stores"
)

const (
	// DefaultTopK bounds the history the memory advisor replays on a run.
	DefaultTopK = 100

	// ChatModelName is the descriptor name reported for a client's model.
	ChatModelName = "chatModel"

	runSpanName  = "chat_client.run"
	tracerName   = "github.com/Desarso/agentstudio/studio"
	runOperation = "run"
)

// ChatClientDelegate is the service layer behind the studio API.
type ChatClientDelegate interface {
	List(ctx context.Context) ([]models.ChatClient, error)
	Get(ctx context.Context, name string) (*models.ChatClient, error)
	Run(ctx context.Context, param models.ClientRunActionParam) (*models.ChatClientRunResult, error)
}

// ConversationRecorder notes which client a conversation belongs to.
type ConversationRecorder interface {
	CreateConversation(ctx context.Context, conversationID, clientName string) error
}

// Delegate implements ChatClientDelegate over a Registry.
type Delegate struct {
	registry      *Registry
	tracer        trace.Tracer
	traces        stores.TraceStore
	conversations ConversationRecorder
	logger        *zap.Logger
	newID         func() string
}

var _ ChatClientDelegate = (*Delegate)(nil)

type DelegateOption func(*Delegate)

func WithTracer(tracer trace.Tracer) DelegateOption {
	return func(d *Delegate) { d.tracer = tracer }
}

// WithTraceStore records every run in store.
func WithTraceStore(store stores.TraceStore) DelegateOption {
	return func(d *Delegate) { d.traces = store }
}

// WithConversationStore records the client name of each conversation a run touches.
func WithConversationStore(store ConversationRecorder) DelegateOption {
	return func(d *Delegate) { d.conversations = store }
}

func WithLogger(logger *zap.Logger) DelegateOption {
	return func(d *Delegate) { d.logger = logger }
}

// NewDelegate creates a Delegate. Without WithTracer, runs are traced by a
// private SDK provider that exports nothing, so trace ids are still real;
// pass a tracer from the process provider to join request traces.
func NewDelegate(registry *Registry, opts ...DelegateOption) *Delegate {
	d := &Delegate{
		registry: registry,
		tracer:   sdktrace.NewTracerProvider().Tracer(tracerName),
		logger:   zap.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Delegate) List(ctx context.Context) ([]models.ChatClient, error) {
	names := d.registry.Names()
	res := make([]models.ChatClient, 0, len(names))
	for _, name := range names {
		client, err := d.registry.Get(name)
		if err != nil {
			// unregistered concurrently
			continue
		}
		d.logger.Info("chat client", zap.String("name", name), zap.String("type", fmt.Sprintf("%T", client)))

		summary, err := d.describe(name, client)
		if err != nil {
			return nil, err
		}
		res = append(res, summary)
	}
	return res, nil
}

func (d *Delegate) Get(ctx context.Context, name string) (*models.ChatClient, error) {
	client, err := d.registry.Get(name)
	if err != nil {
		return nil, err
	}
	summary, err := d.describe(name, client)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Run executes one turn on the client named by param.Key.
func (d *Delegate) Run(ctx context.Context, param models.ClientRunActionParam) (*models.ChatClientRunResult, error) {
	client, err := d.registry.Get(param.Key)
	if err != nil {
		return nil, err
	}

	chatID := param.ChatID
	if strings.TrimSpace(chatID) == "" {
		chatID = d.newID()
	}

	ctx, span := d.tracer.Start(ctx, runSpanName, trace.WithAttributes(
		attribute.String("chat_client.name", param.Key),
		attribute.String("chat.conversation_id", chatID),
	))
	defer span.End()

	if d.conversations != nil {
		if err := d.conversations.CreateConversation(ctx, chatID, param.Key); err != nil {
			d.logger.Warn("failed to record conversation", zap.String("chat_id", chatID), zap.Error(err))
		}
	}

	spec := client.Prompt()
	if strings.TrimSpace(param.Prompt) != "" {
		spec.System(param.Prompt)
	}
	if param.ChatOptions != nil {
		spec.Options(param.ChatOptions)
	}
	spec.AdvisorParam(chat.ConversationIDKey, chatID).
		AdvisorParam(chat.TopKKey, DefaultTopK)

	start := time.Now()
	resp, err := spec.User(param.Input).Call(ctx)
	d.recordRun(ctx, span, param, chatID, resp, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Error("chat client run failed", zap.String("client", param.Key), zap.String("chat_id", chatID), zap.Error(err))
		return nil, err
	}

	return &models.ChatClientRunResult{
		Input:     param,
		Result:    models.ActionResult{Response: resp.Content},
		ChatID:    chatID,
		Telemetry: models.TelemetryResult{TraceID: span.SpanContext().TraceID().String()},
	}, nil
}

func (d *Delegate) recordRun(ctx context.Context, span trace.Span, param models.ClientRunActionParam, chatID string, resp *chat.Response, runErr error, elapsed time.Duration) {
	if d.traces == nil {
		return
	}
	sc := span.SpanContext()
	rec := &stores.RunTrace{
		ConversationID: chatID,
		ClientName:     param.Key,
		TraceID:        sc.TraceID().String(),
		SpanID:         sc.SpanID().String(),
		Operation:      runOperation,
		Status:         "ok",
		Input:          param.Input,
		DurationMS:     elapsed.Milliseconds(),
	}
	if runErr != nil {
		rec.Status = "error"
		rec.Error = runErr.Error()
	} else if resp != nil {
		rec.Output = resp.Content
	}
	if err := d.traces.SaveTrace(ctx, rec); err != nil {
		d.logger.Warn("failed to save run trace", zap.String("chat_id", chatID), zap.Error(err))
	}
}

// describe builds the summary of one client. Clients that cannot report
// their defaults only get a name.
func (d *Delegate) describe(name string, client chat.Client) (models.ChatClient, error) {
	summary := models.ChatClient{Name: name}

	introspectable, ok := client.(chat.Introspectable)
	if !ok {
		return summary, nil
	}
	snap, err := introspectable.Snapshot()
	if err != nil {
		d.logger.Error("failed to read chat client defaults", zap.String("name", name), zap.Error(err))
		return models.ChatClient{}, &ServiceInternalError{Message: err.Error(), Err: err}
	}

	summary.DefaultSystemText = snap.SystemText
	summary.DefaultSystemParams = snap.SystemParams
	if !snap.ChatOptions.IsZero() {
		opts := snap.ChatOptions
		summary.ChatOptions = &opts
	}
	for _, advisor := range snap.Advisors {
		summary.Advisors = append(summary.Advisors, models.AdvisorInfo{
			Name: advisor.Name(),
			Type: fmt.Sprintf("%T", advisor),
		})
		if _, ok := advisor.(chat.MemoryAdvisor); ok {
			summary.IsMemoryEnabled = true
		}
	}
	if snap.ChatModel != nil {
		summary.ChatModel = describeModel(snap.ChatModel)
	}
	return summary, nil
}

// describeModel reports model-specific options for the OpenAI-compatible
// backend only; other backends get the portable descriptor.
func describeModel(model chat.Model) *models.ChatModelConfig {
	cfg := &models.ChatModelConfig{
		Name:      ChatModelName,
		Model:     model.DefaultOptions().Model,
		ModelType: models.ModelTypeChat,
	}
	if m, ok := model.(*openai.ChatModel); ok {
		cfg.ChatOptions = m.ModelOptions()
	}
	return cfg
}
