package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/chicbot/chicbot/internal/catalog"
	"github.com/chicbot/chicbot/internal/conversation"
	"github.com/chicbot/chicbot/internal/pipeline"
	"github.com/chicbot/chicbot/internal/search"
)

// --- helpers ---

func newTestMCPDeps(bot ChatBot) MCPDeps {
	return MCPDeps{
		Bot:      bot,
		Engine:   testCatalogEngine(),
		Store:    &mockStore{count: 2},
		Sessions: conversation.NewManager(),
	}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// --- tests ---

func TestMCPTool_SearchProducts(t *testing.T) {
	deps := newTestMCPDeps(&mockBot{})
	handler := mcpSearchProducts(deps)

	req := makeCallToolRequest("search_products", map[string]interface{}{
		"query": "black jacket",
		"limit": 5,
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}

	var products []search.Result
	if err := json.Unmarshal([]byte(toolText(t, result)), &products); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(products) != 1 || products[0].SKU != "J1" {
		t.Fatalf("products = %+v, want just J1", products)
	}
}

func TestMCPTool_SearchProducts_Empty(t *testing.T) {
	deps := newTestMCPDeps(&mockBot{})
	handler := mcpSearchProducts(deps)

	req := makeCallToolRequest("search_products", map[string]interface{}{
		"query": "submarine",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := toolText(t, result); text != "[]" {
		t.Fatalf("expected empty array, got: %s", text)
	}
}

func TestMCPTool_SearchProducts_ConfiguredDefaultLimit(t *testing.T) {
	p := 20.0
	deps := newTestMCPDeps(&mockBot{})
	deps.Engine = search.NewEngine(catalog.NewStore([]catalog.Product{
		{SKU: "J1", Name: "Black Leather Jacket", ProductType: "jacket", Category: "Jackets", Color: "black", BaseColor: "black", Price: &p},
		{SKU: "J2", Name: "Black Bomber Jacket", ProductType: "jacket", Category: "Jackets", Color: "black", BaseColor: "black", Price: &p},
	}))
	deps.MaxResults = 1
	handler := mcpSearchProducts(deps)

	result, err := handler(context.Background(), makeCallToolRequest("search_products", map[string]interface{}{
		"query": "black jacket",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var products []search.Result
	if err := json.Unmarshal([]byte(toolText(t, result)), &products); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("got %d products, want the configured default of 1", len(products))
	}
}

func TestMCPTool_SearchProducts_MissingQuery(t *testing.T) {
	deps := newTestMCPDeps(&mockBot{})
	handler := mcpSearchProducts(deps)

	result, err := handler(context.Background(), makeCallToolRequest("search_products", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result without query")
	}
}

func TestMCPTool_Chat(t *testing.T) {
	bot := &mockBot{result: pipeline.Result{
		Response:         "voilà",
		Status:           pipeline.StatusCompleted,
		DetectedLanguage: "fr",
	}}
	deps := newTestMCPDeps(bot)
	handler := mcpChat(deps)

	req := makeCallToolRequest("chat", map[string]interface{}{
		"message":    "montre-moi des vestes",
		"session_id": "s9",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}

	var reply map[string]any
	if err := json.Unmarshal([]byte(toolText(t, result)), &reply); err != nil {
		t.Fatalf("failed to parse reply: %v", err)
	}
	if reply["session_id"] != "s9" || reply["response"] != "voilà" || reply["detected_language"] != "fr" {
		t.Fatalf("reply = %v", reply)
	}
	if bot.message != "montre-moi des vestes" {
		t.Errorf("bot message = %q", bot.message)
	}
}

func TestMCPTool_Chat_GeneratesSessionID(t *testing.T) {
	bot := &mockBot{result: pipeline.Result{Status: pipeline.StatusCompleted}}
	deps := newTestMCPDeps(bot)
	handler := mcpChat(deps)

	result, err := handler(context.Background(), makeCallToolRequest("chat", map[string]interface{}{
		"message": "hello",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}
	if bot.sessionID == "" {
		t.Error("expected generated session id")
	}
}

func TestMCPResource_Stats(t *testing.T) {
	deps := newTestMCPDeps(&mockBot{})
	deps.Sessions.Get("s1")

	handler := mcpResourceStats(deps)
	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "catalog://stats"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}

	var stats map[string]float64
	if err := json.Unmarshal([]byte(tc.Text), &stats); err != nil {
		t.Fatalf("failed to parse stats: %v", err)
	}
	if stats["products"] != 2 || stats["sessions"] != 1 {
		t.Fatalf("stats = %v", stats)
	}
}
