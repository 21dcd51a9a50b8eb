package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Desarso/agentstudio/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketWriter serializes writes to one connection.
type WebSocketWriter struct {
	Conn *websocket.Conn
	mu   sync.Mutex
}

func (w *WebSocketWriter) WriteResponse(resp interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(resp)
}

func (w *WebSocketWriter) WriteError(message string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(map[string]string{"error": message})
}

// runChatClientWS answers every text frame (a ClientRunActionParam) with a
// ChatClientRunResult or an {"error": ...} frame. Each frame runs under its
// own root span, so every turn gets its own trace id.
func (s *Server) runChatClientWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	writer := &WebSocketWriter{Conn: conn}
	ctx := c.Request.Context()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			if err := writer.WriteError("only text frames are supported"); err != nil {
				return
			}
			continue
		}

		var param models.ClientRunActionParam
		if err := json.Unmarshal(data, &param); err != nil {
			if err := writer.WriteError("invalid request: " + err.Error()); err != nil {
				return
			}
			continue
		}
		if msg := validateRunParam(param); msg != "" {
			if err := writer.WriteError(msg); err != nil {
				return
			}
			continue
		}

		result, err := s.runFrame(ctx, param)
		if err != nil {
			if err := writer.WriteError(err.Error()); err != nil {
				return
			}
			continue
		}
		if err := writer.WriteResponse(result); err != nil {
			s.logger.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) runFrame(ctx context.Context, param models.ClientRunActionParam) (*models.ChatClientRunResult, error) {
	ctx, span := s.tracer.Start(ctx, "websocket run",
		trace.WithNewRoot(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithLinks(trace.LinkFromContext(ctx)))
	defer span.End()
	return s.delegate.Run(ctx, param)
}
