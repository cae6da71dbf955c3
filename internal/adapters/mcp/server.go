package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/ports"
)

const defaultTopicLimit = 10

// Server exposes the knowledge graph read model as MCP tools over stdio.
type Server struct {
	graphs ports.GraphRepository
}

func NewServer(graphs ports.GraphRepository) *Server {
	return &Server{graphs: graphs}
}

func (s *Server) MCPServer(version string) *server.MCPServer {
	srv := server.NewMCPServer("docgraph", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	srv.AddTool(
		mcp.NewTool("list_key_themes",
			mcp.WithDescription("List the significant cross-source topics of a project's knowledge graph."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier.")),
		),
		s.handleListKeyThemes,
	)

	srv.AddTool(
		mcp.NewTool("get_document_graph",
			mcp.WithDescription("Fetch one document's knowledge graph: atoms, hierarchy, flow and summaries."),
			mcp.WithString("document_id", mcp.Required(), mcp.Description("Document identifier.")),
		),
		s.handleGetDocumentGraph,
	)

	srv.AddTool(
		mcp.NewTool("find_atoms_by_topic",
			mcp.WithDescription("Find atoms tagged with a topic across all sources of a project."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier.")),
			mcp.WithString("topic", mcp.Required(), mcp.Description("Topic to look up, case-insensitive.")),
			mcp.WithNumber("limit", mcp.Description("Maximum atoms to return, default 10.")),
		),
		s.handleFindAtomsByTopic,
	)

	return srv
}

func (s *Server) ServeStdio(version string) error {
	return server.ServeStdio(s.MCPServer(version))
}

func (s *Server) handleListKeyThemes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	themes, err := s.listKeyThemes(ctx, projectID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonToolResult(map[string]any{"project_id": projectID, "key_themes": themes})
}

func (s *Server) handleGetDocumentGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	graph, err := s.graphs.GetDocumentGraph(ctx, documentID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonToolResult(graph)
}

func (s *Server) handleFindAtomsByTopic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", defaultTopicLimit)

	atoms, err := s.findAtomsByTopic(ctx, projectID, topic, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonToolResult(map[string]any{"topic": topic, "atoms": atoms})
}

func (s *Server) listKeyThemes(ctx context.Context, projectID string) ([]domain.Theme, error) {
	graph, err := s.graphs.GetKnowledgeGraph(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if graph.KeyThemes == nil {
		return []domain.Theme{}, nil
	}
	return graph.KeyThemes, nil
}

// topicAtom is the tool-facing view of one matched atom.
type topicAtom struct {
	AtomID   string `json:"atom_id"`
	SourceID string `json:"source_id"`
	Type     string `json:"type"`
	Content  string `json:"content"`
}

func (s *Server) findAtomsByTopic(ctx context.Context, projectID, topic string, limit int) ([]topicAtom, error) {
	graph, err := s.graphs.GetKnowledgeGraph(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopicLimit
	}

	wanted := strings.ToLower(strings.TrimSpace(topic))
	var atomIDs []string
	for key, ids := range graph.TopicIndex {
		if strings.ToLower(key) == wanted {
			atomIDs = ids
			break
		}
	}

	out := make([]topicAtom, 0, len(atomIDs))
	for _, id := range atomIDs {
		atom, ok := graph.Atoms[id]
		if !ok {
			continue
		}
		out = append(out, topicAtom{
			AtomID:   id,
			SourceID: graph.AtomSource[id],
			Type:     string(atom.Type),
			Content:  atom.Content,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func jsonToolResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
