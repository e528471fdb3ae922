package mcp

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func listTools(t *testing.T, s *mcp.Server) []string {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := s.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer func() { _ = ss.Close() }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer func() { _ = cs.Close() }()

	res, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := make([]string, len(res.Tools))
	for i, tool := range res.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)
	return names
}

func TestCreateServer_WithCorpus(t *testing.T) {
	s := CreateServer(ServerConfig{Name: "lexcase", Version: "1.0.0", Corpus: setupCorpus(t)})

	got := listTools(t, s)
	if len(got) != 2 || got[0] != "score_criminal" || got[1] != "search_sources" {
		t.Errorf("tools = %v", got)
	}
}

func TestCreateServer_WithoutCorpus(t *testing.T) {
	s := CreateServer(ServerConfig{Name: "lexcase"})

	got := listTools(t, s)
	if len(got) != 1 || got[0] != "score_criminal" {
		t.Errorf("tools = %v", got)
	}
}

func TestCreateServer_CallScoreTool(t *testing.T) {
	ctx := context.Background()
	s := CreateServer(ServerConfig{Name: "lexcase"})

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := s.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer func() { _ = ss.Close() }()

	cs, err := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil).Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer func() { _ = cs.Close() }()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name: "score_criminal",
		Arguments: map[string]any{
			"intent": 4, "history": 4, "manner": 4, "victim_impact": 4, "social_harm": 4,
		},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	if text := resultText(t, res); !strings.HasPrefix(text, "TOTAL: 20") {
		t.Errorf("unexpected text %q", text)
	}
}
