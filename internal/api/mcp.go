package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/chicbot/chicbot/internal/conversation"
	"github.com/chicbot/chicbot/internal/search"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Bot        ChatBot
	Engine     *search.Engine
	Store      InteractionStore
	Sessions   *conversation.Manager
	MaxResults int // default search limit; 0 means search.DefaultMaxResults
}

func (d MCPDeps) defaultLimit() int {
	if d.MaxResults > 0 {
		return d.MaxResults
	}
	return search.DefaultMaxResults
}

// NewMCPServer creates an MCP server exposing catalog search and the
// conversational assistant as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"chicbot",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("chicbot — multilingual fashion shopping assistant over a product catalog."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_products",
			mcp.WithDescription("Search the fashion catalog and return ranked products."),
			mcp.WithString("query", mcp.Description("Free-text search query, e.g. 'black leather jacket'"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 5)")),
			mcp.WithString("sort", mcp.Description("Sort order: relevance, price_asc, price_desc, newest")),
		),
		mcpSearchProducts(deps),
	)

	s.AddTool(
		mcp.NewTool("chat",
			mcp.WithDescription("Send a message to the shopping assistant in any supported language (en, fr, ar, tn_latn). Pass the same session_id across calls to keep conversational context."),
			mcp.WithString("message", mcp.Description("The user message"), mcp.Required()),
			mcp.WithString("session_id", mcp.Description("Conversation session identifier; generated when omitted")),
		),
		mcpChat(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"catalog://stats",
			"Catalog Statistics",
			mcp.WithResourceDescription("Product count and active session count as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceStats(deps),
	)

	return s
}

func mcpSearchProducts(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", deps.defaultLimit())
		if limit <= 0 {
			limit = deps.defaultLimit()
		}
		if limit > 50 {
			limit = 50
		}
		sortBy := search.ParseSortMode(req.GetString("sort", ""))

		results := deps.Engine.Search(query, nil, limit, sortBy)
		if len(results) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpChat(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}

		sessionID := req.GetString("session_id", "")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		result, err := deps.Bot.Process(ctx, sessionID, message)
		if err != nil {
			return mcpError(fmt.Sprintf("chat failed: %v", err)), nil
		}

		products := result.Products
		if len(products) > maxChatProducts {
			products = products[:maxChatProducts]
		}

		b, err := json.Marshal(map[string]any{
			"session_id":        sessionID,
			"response":          result.Response,
			"products":          products,
			"status":            result.Status,
			"detected_language": result.DetectedLanguage,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal reply: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceStats(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		count, err := deps.Store.CountProducts()
		if err != nil {
			return nil, fmt.Errorf("counting products: %w", err)
		}

		b, err := json.Marshal(map[string]any{
			"products": count,
			"sessions": deps.Sessions.Len(),
		})
		if err != nil {
			return nil, fmt.Errorf("marshaling stats: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
