// Package api serves the studio over HTTP (gin) and websockets.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	applog "github.com/Desarso/agentstudio/logger"
	"github.com/Desarso/agentstudio/models"
	"github.com/Desarso/agentstudio/stores"
	"github.com/Desarso/agentstudio/studio"
)

const shutdownTimeout = 10 * time.Second

// ToolExecutor lists and invokes the configured tools.
type ToolExecutor interface {
	Declarations() []models.FunctionDeclaration
	ExecuteTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// Options are the server's collaborators. Only Delegate is required.
type Options struct {
	Delegate studio.ChatClientDelegate
	Tools    ToolExecutor
	Messages stores.MessageStore
	Traces   stores.TraceStore
	Logger   *zap.Logger
	Tracer   trace.Tracer
	Debug    bool
}

type Server struct {
	delegate studio.ChatClientDelegate
	tools    ToolExecutor
	messages stores.MessageStore
	traces   stores.TraceStore
	logger   *zap.Logger
	tracer   trace.Tracer
	router   *gin.Engine
}

func NewServer(opts Options) *Server {
	opts.Logger = applog.OrNop(opts.Logger)
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("github.com/Desarso/agentstudio/api")
	}
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		delegate: opts.Delegate,
		tools:    opts.Tools,
		messages: opts.Messages,
		traces:   opts.Traces,
		logger:   opts.Logger,
		tracer:   opts.Tracer,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), Tracing(s.tracer), RequestLogger(s.logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r := router.Group("/studio/api")

	clients := r.Group("/chat-clients")
	clients.GET("", s.listChatClients)
	clients.POST("/run", s.runChatClient)
	clients.GET("/ws", s.runChatClientWS)
	clients.GET("/:name", s.getChatClient)

	r.GET("/tools", s.listTools)
	r.POST("/tools/:name/invoke", s.invokeTool)

	r.GET("/traces", s.findTraces)
	r.GET("/traces/:conversationID", s.getTraces)

	r.GET("/conversations", s.listConversations)
	r.GET("/conversations/:conversationID/messages", s.getConversationMessages)
	r.DELETE("/conversations/:conversationID", s.deleteConversation)

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("studio server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down studio server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
