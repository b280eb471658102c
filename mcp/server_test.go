package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hagborg/kin-go/internal/build"
	"github.com/hagborg/kin-go/internal/person"
	"github.com/hagborg/kin-go/internal/query"
	"github.com/hagborg/kin-go/internal/resolve"
)

// testServer builds an MCP server over a small two-generation family.
func testServer(t *testing.T) *Server {
	t.Helper()

	store := person.NewStore([]*person.Record{
		{ID: "dad", Name: "Dad Guy", LineageName: "Fam", Spouses: []string{"Mom Guy [Fam]"}},
		{ID: "mom", Name: "Mom Guy", LineageName: "Fam"},
		{ID: "kid1", Name: "First Kid", LineageName: "Fam",
			Father: "Dad Guy [Fam]", Mother: "Mom Guy [Fam]"},
		{ID: "kid2", Name: "Second Kid", LineageName: "Fam",
			Father: "Dad Guy [Fam]", Mother: "Mom Guy [Fam]"},
	})

	g, result, err := build.Build(context.Background(), store, nil)
	require.NoError(t, err)

	svc := query.NewService(g, store, query.DefaultConfig())
	return NewServer(svc, result.Diagnostics)
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	server := testServer(t)

	assert.NotNil(t, server)
	assert.NotNil(t, server.service)
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()

	server := testServer(t)
	tools := server.ListTools()

	toolNames := make(map[string]bool)
	for _, tool := range tools {
		toolNames[tool.Name] = true
		assert.NotEmpty(t, tool.Description)
		assert.NotNil(t, tool.InputSchema)
	}

	expected := []string{
		"kin_family",
		"kin_relate",
		"kin_relate_all",
		"kin_ancestors",
		"kin_descendants",
	}
	for _, name := range expected {
		assert.True(t, toolNames[name], "missing tool %s", name)
	}
}

func TestServer_ListResources(t *testing.T) {
	t.Parallel()

	server := testServer(t)
	resources := server.ListResources()

	uris := make(map[string]bool)
	for _, res := range resources {
		uris[res.URI] = true
	}

	assert.True(t, uris["kin://overview"])
	assert.True(t, uris["kin://diagnostics"])
	assert.True(t, uris["kin://schema"])
}

func TestServer_CallTool(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Family", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		out, err := server.CallTool(ctx, "kin_family", map[string]any{"person": "dad"})
		require.NoError(t, err)

		assert.Contains(t, out, "Dad Guy")
		assert.Contains(t, out, "Mom Guy (mom)")
		assert.Contains(t, out, "First Kid (kid1)")
		assert.Contains(t, out, "## Children (2)")
	})

	t.Run("FamilyUnknownPerson", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		out, err := server.CallTool(ctx, "kin_family", map[string]any{"person": "stranger"})
		require.NoError(t, err)

		assert.Contains(t, out, "not found")
	})

	t.Run("Relate", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		out, err := server.CallTool(ctx, "kin_relate", map[string]any{
			"person1": "kid1",
			"person2": "kid2",
		})
		require.NoError(t, err)

		assert.Contains(t, out, "sibling")
		assert.Contains(t, out, "degree 1")
	})

	t.Run("RelateNoPath", func(t *testing.T) {
		t.Parallel()
		store := person.NewStore([]*person.Record{
			{ID: "a", Name: "Only A", LineageName: "Fam"},
			{ID: "b", Name: "Only B", LineageName: "Fam"},
		})
		g, result, err := build.Build(ctx, store, nil)
		require.NoError(t, err)
		server := NewServer(query.NewService(g, store, query.DefaultConfig()), result.Diagnostics)

		out, err := server.CallTool(ctx, "kin_relate", map[string]any{
			"person1": "a",
			"person2": "b",
		})
		require.NoError(t, err)

		assert.Contains(t, out, "No known relationship")
	})

	t.Run("RelateAll", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		out, err := server.CallTool(ctx, "kin_relate_all", map[string]any{
			"person1": "kid1",
			"person2": "kid2",
		})
		require.NoError(t, err)

		assert.Contains(t, out, "distinct relationship path(s)")
		assert.Contains(t, out, "sibling")
	})

	t.Run("Ancestors", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		out, err := server.CallTool(ctx, "kin_ancestors", map[string]any{
			"person1": "kid1",
			"person2": "kid2",
		})
		require.NoError(t, err)

		assert.Contains(t, out, "Dad Guy")
		assert.Contains(t, out, "Mom Guy")
		assert.Contains(t, out, "1 and 1 generations up")
	})

	t.Run("Descendants", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		out, err := server.CallTool(ctx, "kin_descendants", map[string]any{"person": "dad"})
		require.NoError(t, err)

		assert.Contains(t, out, "## Generation 1")
		assert.Contains(t, out, "First Kid")
		assert.Contains(t, out, "Second Kid")
	})

	t.Run("UnknownTool", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		_, err := server.CallTool(ctx, "kin_bogus", nil)
		assert.Error(t, err)
	})
}

func TestServer_ReadResource(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Overview", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		out, err := server.ReadResource(ctx, "kin://overview")
		require.NoError(t, err)

		assert.Contains(t, out, "People:     4")
	})

	t.Run("Diagnostics", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		out, err := server.ReadResource(ctx, "kin://diagnostics")
		require.NoError(t, err)
		assert.Contains(t, out, "No data-quality issues")
	})

	t.Run("DiagnosticsWithIssues", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)
		server.SetService(server.currentService(), []resolve.Diagnostic{
			{Kind: resolve.DiagUnresolved, Reference: "Ghost [Fam]", PersonID: "kid1", Field: "father"},
		})

		out, err := server.ReadResource(ctx, "kin://diagnostics")
		require.NoError(t, err)
		assert.Contains(t, out, "unresolved")
		assert.Contains(t, out, "Ghost [Fam]")
	})

	t.Run("Schema", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		out, err := server.ReadResource(ctx, "kin://schema")
		require.NoError(t, err)
		assert.Contains(t, out, "reciprocal")
	})

	t.Run("UnknownURI", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		_, err := server.ReadResource(ctx, "kin://bogus")
		assert.Error(t, err)
	})
}

func TestServer_Run(t *testing.T) {
	t.Parallel()

	t.Run("InitializeAndList", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		input := strings.Join([]string{
			`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
			`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
			`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"kin_family","arguments":{"person":"dad"}}}`,
		}, "\n") + "\n"

		var out bytes.Buffer
		err := server.Run(context.Background(), strings.NewReader(input), &out)
		require.NoError(t, err)

		scanner := bufio.NewScanner(&out)
		var responses []map[string]any
		for scanner.Scan() {
			var resp map[string]any
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
			responses = append(responses, resp)
		}
		require.Len(t, responses, 3)

		init := responses[0]["result"].(map[string]any)
		assert.Equal(t, "kin-go", init["serverInfo"].(map[string]any)["name"])

		tools := responses[1]["result"].(map[string]any)["tools"].([]any)
		assert.Len(t, tools, 5)

		content := responses[2]["result"].(map[string]any)["content"].([]any)
		text := content[0].(map[string]any)["text"].(string)
		assert.Contains(t, text, "Dad Guy")
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		var out bytes.Buffer
		input := `{"jsonrpc":"2.0","id":1,"method":"nope"}` + "\n"
		require.NoError(t, server.Run(context.Background(), strings.NewReader(input), &out))

		var resp map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		assert.Contains(t, resp, "error")
	})

	t.Run("NilStreams", func(t *testing.T) {
		t.Parallel()
		server := testServer(t)

		assert.Error(t, server.Run(context.Background(), nil, nil))
	})
}

func TestServer_SetService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	server := testServer(t)

	// A rebuild with different data takes effect for new calls.
	store := person.NewStore([]*person.Record{
		{ID: "solo", Name: "Only Person", LineageName: "Fam"},
	})
	g, result, err := build.Build(ctx, store, nil)
	require.NoError(t, err)
	server.SetService(query.NewService(g, store, query.DefaultConfig()), result.Diagnostics)

	out, err := server.ReadResource(ctx, "kin://overview")
	require.NoError(t, err)
	assert.Contains(t, out, "People:     1")

	famOut, err := server.CallTool(ctx, "kin_family", map[string]any{"person": "dad"})
	require.NoError(t, err)
	assert.Contains(t, famOut, "not found")
}
