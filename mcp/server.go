// Package mcp provides the MCP (Model Context Protocol) server for Kin.
//
// It exposes the relationship query surface over stdio JSON-RPC so AI
// clients and UI collaborators (relationship finder dialogs, family
// sidebars) can consume it without linking the Go API.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hagborg/kin-go/internal/pathfind"
	"github.com/hagborg/kin-go/internal/query"
	"github.com/hagborg/kin-go/internal/resolve"
)

// Server represents the MCP server over one query service.
//
// The service can be swapped after a rebuild; a handler that has already
// captured the previous service keeps answering from that generation, so
// no request straddles two generations.
type Server struct {
	mu          sync.RWMutex
	service     *query.Service
	diagnostics []resolve.Diagnostic
	server      *mcpsdk.Server
}

// Tool represents an MCP tool.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Resource represents an MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// NewServer creates a new MCP server over the given query service.
func NewServer(service *query.Service, diagnostics []resolve.Diagnostic) *Server {
	s := &Server{
		service:     service,
		diagnostics: diagnostics,
	}

	s.server = mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "kin-go",
		Version: "0.1.0",
	}, nil)

	return s
}

// SetService atomically swaps in a freshly built query service (new graph
// generation) and its build diagnostics.
func (s *Server) SetService(service *query.Service, diagnostics []resolve.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.service = service
	s.diagnostics = diagnostics
}

// currentService returns the service for the current graph generation.
func (s *Server) currentService() *query.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.service
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []Tool {
	return []Tool{
		{
			Name:        "kin_family",
			Description: "Immediate family of a person: parents, spouses, children, siblings.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"person": {Type: "string", Description: "Person ID"},
				},
				Required: []string{"person"},
			},
		},
		{
			Name:        "kin_relate",
			Description: "Shortest relationship path between two people with a human-readable label.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"person1": {Type: "string", Description: "First person ID"},
					"person2": {Type: "string", Description: "Second person ID"},
				},
				Required: []string{"person1", "person2"},
			},
		},
		{
			Name:        "kin_relate_all",
			Description: "All distinct relationship paths between two people, shortest first.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"person1": {Type: "string", Description: "First person ID"},
					"person2": {Type: "string", Description: "Second person ID"},
				},
				Required: []string{"person1", "person2"},
			},
		},
		{
			Name:        "kin_ancestors",
			Description: "Common ancestors of two people, nearest first.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"person1": {Type: "string", Description: "First person ID"},
					"person2": {Type: "string", Description: "Second person ID"},
					"depth":   {Type: "integer", Description: "Maximum generations to ascend"},
				},
				Required: []string{"person1", "person2"},
			},
		},
		{
			Name:        "kin_descendants",
			Description: "Descendants of a person grouped by generation.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"person": {Type: "string", Description: "Person ID"},
					"depth":  {Type: "integer", Description: "Maximum generations to descend"},
				},
				Required: []string{"person"},
			},
		},
	}
}

// ListResources returns all registered resources.
func (s *Server) ListResources() []Resource {
	return []Resource{
		{
			URI:         "kin://overview",
			Name:        "Population Overview",
			Description: "High-level statistics about the loaded population graph",
			MimeType:    "text/plain",
		},
		{
			URI:         "kin://diagnostics",
			Name:        "Build Diagnostics",
			Description: "Unresolved and ambiguous references found during the last build",
			MimeType:    "text/plain",
		},
		{
			URI:         "kin://schema",
			Name:        "Graph Schema",
			Description: "Description of the Kin relationship graph schema",
			MimeType:    "text/plain",
		},
	}
}

// CallTool executes a tool with the given arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	svc := s.currentService()

	switch name {
	case "kin_family":
		person, _ := args["person"].(string)
		return handleFamily(svc, person)
	case "kin_relate":
		p1, _ := args["person1"].(string)
		p2, _ := args["person2"].(string)
		return handleRelate(svc, p1, p2)
	case "kin_relate_all":
		p1, _ := args["person1"].(string)
		p2, _ := args["person2"].(string)
		return handleRelateAll(svc, p1, p2)
	case "kin_ancestors":
		p1, _ := args["person1"].(string)
		p2, _ := args["person2"].(string)
		depth, _ := args["depth"].(float64)
		if depth == 0 {
			depth = float64(svc.Config().MaxDegree)
		}
		return handleAncestors(svc, p1, p2, int(depth))
	case "kin_descendants":
		person, _ := args["person"].(string)
		depth, _ := args["depth"].(float64)
		if depth == 0 {
			depth = float64(svc.Config().MaxDegree)
		}
		return handleDescendants(svc, person, int(depth))
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case "kin://overview":
		return getOverview(s.currentService()), nil
	case "kin://diagnostics":
		s.mu.RLock()
		diags := s.diagnostics
		s.mu.RUnlock()
		return formatDiagnostics(diags), nil
	case "kin://schema":
		return getSchema(), nil
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if stdin == nil || stdout == nil {
		return fmt.Errorf("stdin and stdout must not be nil")
	}

	reader := bufio.NewReader(stdin)
	encoder := json.NewEncoder(stdout)
	// Note: Do NOT use SetIndent - MCP protocol requires compact JSON (one line per message)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}

		resp := s.handleRequest(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req map[string]any) map[string]any {
	method, _ := req["method"].(string)
	id := req["id"]

	switch method {
	case "initialize":
		return s.handleInitialize(id)
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(ctx, id, req)
	case "resources/list":
		return s.handleResourcesList(id)
	case "resources/read":
		return s.handleResourcesRead(ctx, id, req)
	default:
		return errorResponse(id, -32601, "Method not found: "+method)
	}
}

func (s *Server) handleInitialize(id any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]any{
				"name":    "kin-go",
				"version": "0.1.0",
			},
			"capabilities": map[string]any{
				"tools": map[string]any{
					"listChanged": false,
				},
				"resources": map[string]any{
					"listChanged": false,
				},
			},
		},
	}
}

func (s *Server) handleToolsList(id any) map[string]any {
	tools := s.ListTools()
	toolList := make([]map[string]any, len(tools))
	for i, tool := range tools {
		schema, _ := json.Marshal(tool.InputSchema)
		var schemaMap map[string]any
		json.Unmarshal(schema, &schemaMap)

		toolList[i] = map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": schemaMap,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"tools": toolList,
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	name, _ := params["name"].(string)
	args, _ := params["arguments"].(map[string]any)

	result, err := s.CallTool(ctx, name, args)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": result,
				},
			},
		},
	}
}

func (s *Server) handleResourcesList(id any) map[string]any {
	resources := s.ListResources()
	resourceList := make([]map[string]any, len(resources))
	for i, res := range resources {
		resourceList[i] = map[string]any{
			"uri":         res.URI,
			"name":        res.Name,
			"description": res.Description,
			"mimeType":    res.MimeType,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"resources": resourceList,
		},
	}
}

func (s *Server) handleResourcesRead(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	uri, _ := params["uri"].(string)

	content, err := s.ReadResource(ctx, uri)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"contents": []map[string]any{
				{
					"uri":      uri,
					"mimeType": "text/plain",
					"text":     content,
				},
			},
		},
	}
}

// Tool Handlers

func handleFamily(svc *query.Service, personID string) (string, error) {
	if personID == "" {
		return "No person provided", nil
	}

	family, err := svc.ImmediateFamily(personID)
	if errors.Is(err, pathfind.ErrPersonNotFound) {
		return fmt.Sprintf("Person '%s' not found in the population", personID), nil
	}
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Immediate family of %s:\n\n", displayName(svc, personID)))
	writeFamilyGroup(&sb, svc, "Parents", family.Parents)
	writeFamilyGroup(&sb, svc, "Spouses", family.Spouses)
	writeFamilyGroup(&sb, svc, "Children", family.Children)
	writeFamilyGroup(&sb, svc, "Siblings", family.Siblings)

	sb.WriteString("\nNext: Use `kin_relate` to see how two people are connected.")
	return sb.String(), nil
}

func writeFamilyGroup(sb *strings.Builder, svc *query.Service, title string, ids []string) {
	sb.WriteString(fmt.Sprintf("## %s (%d)\n", title, len(ids)))
	if len(ids) == 0 {
		sb.WriteString("None known\n\n")
		return
	}
	for _, id := range ids {
		sb.WriteString(fmt.Sprintf("- %s\n", displayName(svc, id)))
	}
	sb.WriteString("\n")
}

func handleRelate(svc *query.Service, p1, p2 string) (string, error) {
	if p1 == "" || p2 == "" {
		return "Two person IDs are required", nil
	}

	res, err := svc.FindRelationship(p1, p2)
	if errors.Is(err, pathfind.ErrPersonNotFound) {
		return "One of the given person IDs is not in the population", nil
	}
	if errors.Is(err, pathfind.ErrNoPath) {
		return fmt.Sprintf("No known relationship found within %d generations", svc.Config().MaxDegree), nil
	}
	if err != nil {
		return "", err
	}

	return formatPath(svc, res), nil
}

func handleRelateAll(svc *query.Service, p1, p2 string) (string, error) {
	if p1 == "" || p2 == "" {
		return "Two person IDs are required", nil
	}

	results, err := svc.FindAllRelationships(p1, p2)
	if errors.Is(err, pathfind.ErrPersonNotFound) {
		return "One of the given person IDs is not in the population", nil
	}
	if errors.Is(err, pathfind.ErrNoPath) {
		return fmt.Sprintf("No known relationship found within %d generations", svc.Config().MaxDegree), nil
	}
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d distinct relationship path(s):\n\n", len(results)))
	for i, res := range results {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatPath(svc, res)))
	}
	return sb.String(), nil
}

func handleAncestors(svc *query.Service, p1, p2 string, depth int) (string, error) {
	if p1 == "" || p2 == "" {
		return "Two person IDs are required", nil
	}

	ancestors, err := svc.CommonAncestors(p1, p2, depth)
	if errors.Is(err, pathfind.ErrPersonNotFound) {
		return "One of the given person IDs is not in the population", nil
	}
	if err != nil {
		return "", err
	}

	if len(ancestors) == 0 {
		return fmt.Sprintf("No common ancestors found within %d generations", depth), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Common ancestors of %s and %s:\n\n",
		displayName(svc, p1), displayName(svc, p2)))
	for _, a := range ancestors {
		sb.WriteString(fmt.Sprintf("- %s (%d and %d generations up)\n",
			displayName(svc, a.PersonID), a.DegreeFromFirst, a.DegreeFromSecond))
	}
	return sb.String(), nil
}

func handleDescendants(svc *query.Service, personID string, depth int) (string, error) {
	if personID == "" {
		return "No person provided", nil
	}

	descendants, err := svc.Descendants(personID, depth)
	if errors.Is(err, pathfind.ErrPersonNotFound) {
		return fmt.Sprintf("Person '%s' not found in the population", personID), nil
	}
	if err != nil {
		return "", err
	}

	if len(descendants) == 0 {
		return fmt.Sprintf("No known descendants of %s", displayName(svc, personID)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Descendants of %s:\n\n", displayName(svc, personID)))

	lastDegree := 0
	for _, d := range descendants {
		if d.Degree != lastDegree {
			sb.WriteString(fmt.Sprintf("## Generation %d\n", d.Degree))
			lastDegree = d.Degree
		}
		sb.WriteString(fmt.Sprintf("- %s\n", displayName(svc, d.PersonID)))
	}
	return sb.String(), nil
}

// formatPath renders one path as "A -> (parent) -> B" with its label.
func formatPath(svc *query.Service, res *pathfind.PathResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s** (degree %d): ", res.Relationship, res.Degree))
	sb.WriteString(displayName(svc, res.SourceID))
	for _, step := range res.Steps {
		sb.WriteString(fmt.Sprintf(" -> (%s) -> %s", step.Type, displayName(svc, step.To)))
	}
	return sb.String()
}

// displayName prefers the record's name, falling back to the bare ID.
func displayName(svc *query.Service, id string) string {
	if rec := svc.Record(id); rec != nil && rec.Name != "" {
		return fmt.Sprintf("%s (%s)", rec.Name, id)
	}
	return id
}

func getOverview(svc *query.Service) string {
	g := svc.Graph()
	stats := g.Stats()

	var sb strings.Builder
	sb.WriteString("Kin population overview\n\n")
	sb.WriteString(fmt.Sprintf("People:     %d\n", stats["people"]))
	sb.WriteString(fmt.Sprintf("Edges:      %d\n", stats["edges"]))
	sb.WriteString(fmt.Sprintf("Generation: %d\n", g.Generation()))
	sb.WriteString(fmt.Sprintf("Precomputed sources: %d\n", svc.Cache().SourceCount()))
	return sb.String()
}

func formatDiagnostics(diags []resolve.Diagnostic) string {
	if len(diags) == 0 {
		return "No data-quality issues found in the last build."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d data-quality issue(s):\n\n", len(diags)))
	for _, d := range diags {
		sb.WriteString(fmt.Sprintf("- [%s] %s field of %s: %q", d.Kind, d.Field, d.PersonID, d.Reference))
		if len(d.Candidates) > 0 {
			sb.WriteString(fmt.Sprintf(" (candidates: %s)", strings.Join(d.Candidates, ", ")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func getSchema() string {
	return `Kin relationship graph schema

Nodes: one per person, keyed by person ID.
Edges (always reciprocal):
  parent/child  - added from resolved father/mother references
  spouse        - added from resolved spouse references, remarriage allowed
  sibling       - derived from identical resolved parent sets, never parsed

Paths are classified by their edge-type sequence (parent,parent ->
grandparent, parent,sibling -> aunt/uncle, ...); unnamed sequences fall
back to "N degrees of separation".`
}

func errorResponse(id any, code int, message string) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}
