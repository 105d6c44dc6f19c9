// Package mcpserver exposes the workflow catalog as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/liberioai/dossier/internal/catalog"
	"github.com/liberioai/dossier/internal/history"
	"github.com/liberioai/dossier/internal/logger"
)

// Name is the server name reported during MCP initialization.
const Name = "dossier-mcp"

// Transports accepted by Serve.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Recorder stores completed invocations.
type Recorder interface {
	Record(ctx context.Context, name string, args catalog.Arguments, source history.Source, started time.Time, err error) (string, error)
}

// Server serves catalog workflows over MCP. The registered tool set is
// rebuilt from the catalog whenever a client lists tools.
//
// Every cataloged workflow gets a handler, but only workflows with a
// descriptor are listed. Calls resolve names against the catalog, so a
// workflow skipped from the listing can still be invoked and an unknown
// name fails with the catalog's not-found error.
type Server struct {
	mcp      *server.MCPServer
	catalog  *catalog.Catalog
	recorder Recorder
	log      *logrus.Entry

	mu sync.RWMutex
	// registered maps each registered tool name to whether it is listed.
	registered map[string]bool
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder records every tool call.
func WithRecorder(r Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithLogger sets the log entry.
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Server) { s.log = entry }
}

// New creates a Server for cat.
func New(cat *catalog.Catalog, version string, opts ...Option) *Server {
	s := &Server{
		catalog:    cat,
		log:        logger.New("mcp"),
		registered: map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}

	hooks := &server.Hooks{}
	hooks.AddBeforeListTools(func(ctx context.Context, id any, req *mcp.ListToolsRequest) {
		if err := s.Sync(ctx); err != nil {
			s.log.WithError(err).Error("refresh tool list")
		}
	})
	hooks.AddBeforeCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest) {
		name := req.Params.Name
		if s.isRegistered(name) {
			return
		}
		if err := s.Sync(ctx); err != nil {
			s.log.WithError(err).Error("refresh tool list")
		}
		if !s.isRegistered(name) {
			s.addHidden(name)
		}
	})

	s.mcp = server.NewMCPServer(Name, version,
		server.WithToolCapabilities(false),
		server.WithHooks(hooks),
		server.WithToolFilter(s.listedOnly),
		server.WithRecovery(),
	)
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Sync replaces the registered tools with the catalog's current workflows.
// On a discovery failure the previous tool set is kept.
func (s *Server) Sync(ctx context.Context) error {
	results, err := s.catalog.Describe(ctx)
	if err != nil {
		return err
	}

	tools := make([]server.ServerTool, 0, len(results))
	names := make(map[string]bool, len(results))
	for _, r := range results {
		tool, listed := s.toolFor(r)
		tools = append(tools, server.ServerTool{Tool: tool, Handler: s.handleCall})
		names[r.Ref.Name] = listed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mcp.SetTools(tools...)
	s.registered = names
	return nil
}

func (s *Server) toolFor(r catalog.ToolResult) (mcp.Tool, bool) {
	if r.Descriptor == nil {
		return mcp.NewTool(r.Ref.Name), false
	}
	d := r.Descriptor
	schema, err := json.Marshal(d.InputSchema)
	if err != nil {
		s.log.WithField("workflow", d.Name).WithError(err).Warn("unlisting tool with unencodable schema")
		return mcp.NewTool(d.Name), false
	}
	return mcp.NewToolWithRawSchema(d.Name, d.Description, schema), true
}

// addHidden registers an unlisted handler for name until the next Sync.
func (s *Server) addHidden(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registered[name]; ok {
		return
	}
	s.mcp.AddTool(mcp.NewTool(name), s.handleCall)
	s.registered[name] = false
}

func (s *Server) isRegistered(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registered[name]
	return ok
}

func (s *Server) listedOnly(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if s.registered[t.Name] {
			out = append(out, t)
		}
	}
	return out
}

func (s *Server) handleCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.Params.Name
	args := catalog.ArgumentsFromMap(req.GetArguments())
	started := time.Now()

	text, err := s.catalog.Invoke(ctx, name, args)

	entry := s.log.WithFields(logrus.Fields{"workflow": name, "args": len(args)})
	if s.recorder != nil {
		if _, rerr := s.recorder.Record(ctx, name, args, history.SourceMCP, started, err); rerr != nil {
			entry.WithError(rerr).Warn("record invocation")
		}
	}
	if err != nil {
		entry.WithError(err).Warn("workflow call failed")
		return nil, err
	}
	entry.WithField("duration", time.Since(started)).Debug("workflow call")
	return mcp.NewToolResultText(text), nil
}

// Serve runs the server on the given transport until ctx is done.
// addr is ignored for stdio.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	if err := s.Sync(ctx); err != nil {
		s.log.WithError(err).Warn("initial tool sync failed")
	}

	switch transport {
	case "", TransportStdio:
		stdio := server.NewStdioServer(s.mcp)
		stdio.SetErrorLogger(log.New(s.log.WriterLevel(logrus.ErrorLevel), "", 0))
		s.log.Info("serving MCP over stdio")
		return stdio.Listen(ctx, os.Stdin, os.Stdout)
	case TransportSSE:
		sse := server.NewSSEServer(s.mcp)
		s.log.WithField("addr", addr).Info("serving MCP over SSE")
		return serveUntilDone(ctx, func() error { return sse.Start(addr) }, sse.Shutdown)
	case TransportHTTP:
		h := server.NewStreamableHTTPServer(s.mcp)
		s.log.WithField("addr", addr).Info("serving MCP over streamable HTTP")
		return serveUntilDone(ctx, func() error { return h.Start(addr) }, h.Shutdown)
	default:
		return fmt.Errorf("unknown transport %q: want stdio, sse, or http", transport)
	}
}

func serveUntilDone(ctx context.Context, start func() error, shutdown func(context.Context) error) error {
	errc := make(chan error, 1)
	go func() { errc <- start() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
