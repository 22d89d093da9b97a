// Package mcp exposes the tool catalog as a Model Context Protocol server.
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

	"github.com/aretw0/toolshed"
	"github.com/aretw0/toolshed/internal/logging"
	"github.com/aretw0/toolshed/pkg/catalog"
	"github.com/aretw0/toolshed/pkg/compare"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource listing the whole catalog.
const CatalogURI = "toolshed://catalog"

// SearchArgs are the arguments of search_tools.
type SearchArgs struct {
	Text      string  `json:"text,omitempty"`
	Category  string  `json:"category,omitempty"`
	Pricing   string  `json:"pricing,omitempty"`
	Status    string  `json:"status,omitempty"`
	MinRating float64 `json:"min_rating,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}

// SearchResponse is the structured result of search_tools.
type SearchResponse struct {
	Tools []domain.Tool `json:"tools" jsonschema_description:"Matching tools, best rated first"`
	Total int           `json:"total" jsonschema_description:"Number of matching tools"`
}

// GetArgs are the arguments of get_tool.
type GetArgs struct {
	ID string `json:"id"`
}

// CompareArgs are the arguments of compare_tools.
type CompareArgs struct {
	IDs []string `json:"ids"`
}

// CompareResponse is the structured result of compare_tools.
type CompareResponse struct {
	Items      []domain.ComparisonItem `json:"items" jsonschema_description:"Selected tools in the order given"`
	CanCompare bool                    `json:"can_compare" jsonschema_description:"Whether enough tools were selected"`
}

// Server wraps a catalog and exposes it as an MCP Server.
type Server struct {
	catalog   ports.Catalog
	capacity  int
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCompareCapacity bounds how many tools compare_tools accepts.
func WithCompareCapacity(n int) Option {
	return func(s *Server) {
		s.capacity = n
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(c ports.Catalog, opts ...Option) *Server {
	s := &Server{
		catalog:   c,
		capacity:  compare.DefaultCapacity,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("toolshed-mcp", strings.TrimSpace(toolshed.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on addr using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

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
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	searchTool := mcp.NewTool("search_tools",
		mcp.WithDescription("Search the AI tool catalog. Text matching ignores case and accents."),
		mcp.WithString("text", mcp.Description("Free text matched against name, description, category and tags")),
		mcp.WithString("category", mcp.Description("Exact category, e.g. Chat or Code")),
		mcp.WithString("pricing", mcp.Description("free, freemium, paid or enterprise")),
		mcp.WithString("status", mcp.Description("active, beta, pending or deprecated")),
		mcp.WithNumber("min_rating", mcp.Description("Minimum rating between 0 and 5")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results")),
		mcp.WithOutputSchema[SearchResponse](),
	)
	s.mcpServer.AddTool(searchTool, mcp.NewStructuredToolHandler(s.handleSearch))

	getTool := mcp.NewTool("get_tool",
		mcp.WithDescription("Get one catalog tool by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Tool id, e.g. claude")),
		mcp.WithOutputSchema[domain.Tool](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGet))

	compareTool := mcp.NewTool("compare_tools",
		mcp.WithDescription(fmt.Sprintf("Build a side-by-side comparison of %d to %d tools.", compare.MinCompare, s.capacity)),
		mcp.WithArray("ids", mcp.Required(), mcp.Description("Tool ids to compare"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithOutputSchema[CompareResponse](),
	)
	s.mcpServer.AddTool(compareTool, mcp.NewStructuredToolHandler(s.handleCompare))
}

func (s *Server) handleSearch(ctx context.Context, _ mcp.CallToolRequest, args SearchArgs) (SearchResponse, error) {
	q := catalog.Query{
		Text:      args.Text,
		Category:  args.Category,
		Pricing:   domain.Pricing(args.Pricing),
		Status:    domain.ToolStatus(args.Status),
		MinRating: args.MinRating,
		Limit:     args.Limit,
	}
	tools, err := catalog.Search(ctx, s.catalog, q)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search failed: %w", err)
	}
	if tools == nil {
		tools = []domain.Tool{}
	}
	s.logger.Debug("MCP search", "text", args.Text, "results", len(tools))
	return SearchResponse{Tools: tools, Total: len(tools)}, nil
}

func (s *Server) handleGet(ctx context.Context, _ mcp.CallToolRequest, args GetArgs) (domain.Tool, error) {
	return s.catalog.Get(ctx, args.ID)
}

func (s *Server) handleCompare(ctx context.Context, _ mcp.CallToolRequest, args CompareArgs) (CompareResponse, error) {
	set := compare.New(s.capacity)
	for _, id := range args.IDs {
		tool, err := s.catalog.Get(ctx, id)
		if err != nil {
			return CompareResponse{}, err
		}
		if err := set.Add(tool.ComparisonItem()); err != nil {
			return CompareResponse{}, err
		}
	}
	return CompareResponse{Items: set.Items(), CanCompare: set.CanCompare()}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Tool Catalog",
		mcp.WithResourceDescription("Every tool in the catalog"),
		mcp.WithMIMEType("application/json"),
	), s.readCatalog)
}

func (s *Server) readCatalog(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tools, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	jsonBytes, err := json.Marshal(tools)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
