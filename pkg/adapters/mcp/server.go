package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tablebot"
	"github.com/aretw0/tablebot/internal/logging"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/runner"
	"github.com/aretw0/tablebot/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionsURI is the resource listing known session IDs.
const SessionsURI = "tablebot://sessions"

// TurnResponse mirrors the HTTP adapter's turn answer.
type TurnResponse struct {
	Reply   string          `json:"reply" jsonschema_description:"The assistant's reply"`
	Session *domain.Session `json:"session,omitempty" jsonschema_description:"The conversation state after the turn"`
}

// Server exposes the booking assistant as an MCP server.
type Server struct {
	bot       runner.Turner
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(bot runner.Turner, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		bot:       bot,
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("tablebot-mcp", strings.TrimSpace(tablebot.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send one customer utterance to the booking assistant and get its reply. Turns of the same session continue the conversation."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation identifier; unknown IDs start a new conversation")),
		mcp.WithString("utterance", mcp.Required(), mcp.Description("What the customer said")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSendMessage))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Inspect the stored state of a conversation."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation identifier")),
	), s.handleGetSession)
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResponse, error) {
	id, _ := args["session_id"].(string)
	utterance, _ := args["utterance"].(string)
	if id == "" {
		return TurnResponse{}, domain.ErrInvalidSession
	}

	clean, err := runner.SanitizeInput(utterance)
	if err != nil {
		s.logger.Warn("MCP send_message: input rejected", "err", err, "size", len(utterance))
		return TurnResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	if clean == "" {
		return TurnResponse{}, errors.New("utterance is empty")
	}

	var reply string
	sess, err := s.sessions.Turn(ctx, id, func(ctx context.Context, sess *domain.Session) error {
		reply = s.bot.Turn(ctx, sess, clean)
		return nil
	})
	if err != nil {
		return TurnResponse{}, fmt.Errorf("turn failed: %w", err)
	}
	return TurnResponse{Reply: reply, Session: sess}, nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := s.sessions.Load(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("session %q not found", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(sess)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Active Sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SessionsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
